package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/observability"
)

var ErrEmotionNotFound = errors.New("emotion not found")

type EmotionRepository interface {
	List() ([]domain.Emotion, error)
	FindByID(id string) (*domain.Emotion, error)
	FindByIDs(ids []string) ([]domain.Emotion, error)
	Upsert(emotion *domain.Emotion) error
}

type GormEmotionRepository struct{ db *gorm.DB }

func NewEmotionRepository(db *gorm.DB) EmotionRepository { return &GormEmotionRepository{db: db} }

func (r *GormEmotionRepository) List() ([]domain.Emotion, error) {
	var emotions []domain.Emotion
	err := r.db.Order("title ASC").Find(&emotions).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "emotion", "list", "error")
		return emotions, err
	}
	observability.RecordRepositoryOperation(context.Background(), "emotion", "list", "success")
	return emotions, nil
}

func (r *GormEmotionRepository) FindByID(id string) (*domain.Emotion, error) {
	var e domain.Emotion
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "emotion", "find_by_id", "not_found")
			return nil, ErrEmotionNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "emotion", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "emotion", "find_by_id", "success")
	return &e, nil
}

func (r *GormEmotionRepository) FindByIDs(ids []string) ([]domain.Emotion, error) {
	var emotions []domain.Emotion
	if len(ids) == 0 {
		return emotions, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&emotions).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "emotion", "find_by_ids", "error")
		return emotions, err
	}
	observability.RecordRepositoryOperation(context.Background(), "emotion", "find_by_ids", "success")
	return emotions, nil
}

func (r *GormEmotionRepository) Upsert(emotion *domain.Emotion) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title"}),
	}).Create(emotion).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "emotion", "upsert", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "emotion", "upsert", "success")
	return nil
}
