package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/observability"
)

var ErrDiaryEntryNotFound = errors.New("diary entry not found")

type DiaryRepository interface {
	// Create inserts the entry and its emotion links in one transaction.
	Create(entry *domain.DiaryEntry, emotionIDs []string) (*domain.DiaryEntry, error)
	ListByUserAndDate(userID string, date time.Time) ([]domain.DiaryEntry, error)
	FindByIDForUser(userID, entryID string) (*domain.DiaryEntry, error)
	// Update patches the entry fields and, when emotionIDs is non-nil,
	// replaces the emotion links.
	Update(entryID string, fields map[string]any, emotionIDs []string) (*domain.DiaryEntry, error)
	// Delete removes the entry together with its join rows.
	Delete(entryID string) error
}

type GormDiaryRepository struct{ db *gorm.DB }

func NewDiaryRepository(db *gorm.DB) DiaryRepository { return &GormDiaryRepository{db: db} }

func (r *GormDiaryRepository) Create(entry *domain.DiaryEntry, emotionIDs []string) (*domain.DiaryEntry, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		for _, emotionID := range emotionIDs {
			link := domain.DiaryEntryEmotion{DiaryEntryID: entry.ID, EmotionID: emotionID}
			if err := tx.Omit("Emotion").Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "diary", "create", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "diary", "create", "success")
	return r.findByID(entry.ID)
}

func (r *GormDiaryRepository) ListByUserAndDate(userID string, date time.Time) ([]domain.DiaryEntry, error) {
	var entries []domain.DiaryEntry
	err := r.db.Preload("Emotions.Emotion").
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "diary", "list_by_user_and_date", "error")
		return entries, err
	}
	observability.RecordRepositoryOperation(context.Background(), "diary", "list_by_user_and_date", "success")
	return entries, nil
}

func (r *GormDiaryRepository) FindByIDForUser(userID, entryID string) (*domain.DiaryEntry, error) {
	var e domain.DiaryEntry
	err := r.db.Preload("Emotions.Emotion").
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "diary", "find_by_id_for_user", "not_found")
			return nil, ErrDiaryEntryNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "diary", "find_by_id_for_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "diary", "find_by_id_for_user", "success")
	return &e, nil
}

func (r *GormDiaryRepository) Update(entryID string, fields map[string]any, emotionIDs []string) (*domain.DiaryEntry, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Model(&domain.DiaryEntry{}).Where("id = ?", entryID).Updates(fields).Error; err != nil {
				return err
			}
		}
		if emotionIDs != nil {
			if err := tx.Where("diary_entry_id = ?", entryID).Delete(&domain.DiaryEntryEmotion{}).Error; err != nil {
				return err
			}
			for _, emotionID := range emotionIDs {
				link := domain.DiaryEntryEmotion{DiaryEntryID: entryID, EmotionID: emotionID}
				if err := tx.Omit("Emotion").Create(&link).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "diary", "update", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "diary", "update", "success")
	return r.findByID(entryID)
}

func (r *GormDiaryRepository) Delete(entryID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("diary_entry_id = ?", entryID).Delete(&domain.DiaryEntryEmotion{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", entryID).Delete(&domain.DiaryEntry{}).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "diary", "delete", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "diary", "delete", "success")
	return nil
}

func (r *GormDiaryRepository) findByID(entryID string) (*domain.DiaryEntry, error) {
	var e domain.DiaryEntry
	err := r.db.Preload("Emotions.Emotion").Where("id = ?", entryID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiaryEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}
