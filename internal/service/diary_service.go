package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

var (
	ErrDiaryEntryNotFound = errors.New("diary entry not found")
	ErrUnknownEmotions    = errors.New("some emotions do not exist")
)

type CreateDiaryInput struct {
	Title       string
	Description string
	Date        *time.Time
	Emotions    []string
}

type UpdateDiaryInput struct {
	Title       *string
	Description *string
	Date        *time.Time
	// Emotions replaces the full tag set when non-nil.
	Emotions []string
}

// DiaryView is a diary entry with its emotion tags resolved to titles.
type DiaryView struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        string        `json:"date"`
	Emotions    []EmotionView `json:"emotions"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

type EmotionView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type DiaryService struct {
	diaries  repository.DiaryRepository
	emotions repository.EmotionRepository
}

func NewDiaryService(diaries repository.DiaryRepository, emotions repository.EmotionRepository) *DiaryService {
	return &DiaryService{diaries: diaries, emotions: emotions}
}

func (s *DiaryService) Create(userID string, input CreateDiaryInput) (*DiaryView, error) {
	date := timeutil.Today()
	if input.Date != nil {
		date = timeutil.Truncate(*input.Date)
	}
	if err := s.assertEmotionsExist(input.Emotions); err != nil {
		return nil, err
	}

	entry := &domain.DiaryEntry{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Date:        date,
	}
	created, err := s.diaries.Create(entry, dedupe(input.Emotions))
	if err != nil {
		return nil, err
	}
	return toDiaryView(created), nil
}

func (s *DiaryService) ListByDate(userID string, date time.Time) ([]DiaryView, error) {
	entries, err := s.diaries.ListByUserAndDate(userID, timeutil.Truncate(date))
	if err != nil {
		return nil, err
	}
	views := make([]DiaryView, 0, len(entries))
	for i := range entries {
		views = append(views, *toDiaryView(&entries[i]))
	}
	return views, nil
}

func (s *DiaryService) Update(userID, entryID string, input UpdateDiaryInput) (*DiaryView, error) {
	if _, err := s.diaries.FindByIDForUser(userID, entryID); err != nil {
		if errors.Is(err, repository.ErrDiaryEntryNotFound) {
			return nil, ErrDiaryEntryNotFound
		}
		return nil, err
	}

	fields := map[string]any{}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Date != nil {
		fields["date"] = timeutil.Truncate(*input.Date)
	}

	var emotionIDs []string
	if input.Emotions != nil {
		if err := s.assertEmotionsExist(input.Emotions); err != nil {
			return nil, err
		}
		emotionIDs = dedupe(input.Emotions)
	}

	updated, err := s.diaries.Update(entryID, fields, emotionIDs)
	if err != nil {
		return nil, err
	}
	return toDiaryView(updated), nil
}

func (s *DiaryService) Delete(userID, entryID string) error {
	if _, err := s.diaries.FindByIDForUser(userID, entryID); err != nil {
		if errors.Is(err, repository.ErrDiaryEntryNotFound) {
			return ErrDiaryEntryNotFound
		}
		return err
	}
	return s.diaries.Delete(entryID)
}

func (s *DiaryService) assertEmotionsExist(ids []string) error {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil
	}
	found, err := s.emotions.FindByIDs(unique)
	if err != nil {
		return err
	}
	if len(found) != len(unique) {
		known := make(map[string]bool, len(found))
		for _, e := range found {
			known[e.ID] = true
		}
		for _, id := range unique {
			if !known[id] {
				return fmt.Errorf("%w: %s", ErrUnknownEmotions, id)
			}
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func toDiaryView(entry *domain.DiaryEntry) *DiaryView {
	emotions := make([]EmotionView, 0, len(entry.Emotions))
	for _, link := range entry.Emotions {
		emotions = append(emotions, EmotionView{ID: link.Emotion.ID, Title: link.Emotion.Title})
	}
	return &DiaryView{
		ID:          entry.ID,
		UserID:      entry.UserID,
		Title:       entry.Title,
		Description: entry.Description,
		Date:        timeutil.FormatDate(entry.Date),
		Emotions:    emotions,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
}
