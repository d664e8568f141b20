package service

import (
	"errors"

	"github.com/mamatrack/mamatrack-api/internal/repository"
)

var ErrEmotionNotFound = errors.New("emotion not found")

type EmotionService struct {
	emotions repository.EmotionRepository
}

func NewEmotionService(emotions repository.EmotionRepository) *EmotionService {
	return &EmotionService{emotions: emotions}
}

func (s *EmotionService) List() ([]EmotionView, error) {
	emotions, err := s.emotions.List()
	if err != nil {
		return nil, err
	}
	views := make([]EmotionView, 0, len(emotions))
	for _, e := range emotions {
		views = append(views, EmotionView{ID: e.ID, Title: e.Title})
	}
	return views, nil
}

func (s *EmotionService) GetByID(id string) (*EmotionView, error) {
	emotion, err := s.emotions.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrEmotionNotFound) {
			return nil, ErrEmotionNotFound
		}
		return nil, err
	}
	return &EmotionView{ID: emotion.ID, Title: emotion.Title}, nil
}
