package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/observability"
)

var ErrWeekNotFound = errors.New("week not found")

type WeekRepository interface {
	FindBabyState(weekNumber int) (*domain.WeekBabyState, error)
	FindMomState(weekNumber int) (*domain.WeekMomState, error)
	UpsertBabyState(state *domain.WeekBabyState) error
	UpsertMomState(state *domain.WeekMomState) error
}

type GormWeekRepository struct{ db *gorm.DB }

func NewWeekRepository(db *gorm.DB) WeekRepository { return &GormWeekRepository{db: db} }

func (r *GormWeekRepository) FindBabyState(weekNumber int) (*domain.WeekBabyState, error) {
	var s domain.WeekBabyState
	err := r.db.Where("week_number = ?", weekNumber).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "week", "find_baby_state", "not_found")
			return nil, ErrWeekNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "week", "find_baby_state", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "week", "find_baby_state", "success")
	return &s, nil
}

func (r *GormWeekRepository) FindMomState(weekNumber int) (*domain.WeekMomState, error) {
	var s domain.WeekMomState
	err := r.db.Where("week_number = ?", weekNumber).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "week", "find_mom_state", "not_found")
			return nil, ErrWeekNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "week", "find_mom_state", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "week", "find_mom_state", "success")
	return &s, nil
}

func (r *GormWeekRepository) UpsertBabyState(state *domain.WeekBabyState) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "week_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"analogy", "baby_size", "baby_weight", "image",
			"baby_activity", "baby_development", "interesting_fact", "mom_daily_tips",
		}),
	}).Create(state).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "week", "upsert_baby_state", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "week", "upsert_baby_state", "success")
	return nil
}

func (r *GormWeekRepository) UpsertMomState(state *domain.WeekMomState) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "week_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"feelings_states", "sensation_descr", "comfort_tips",
		}),
	}).Create(state).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "week", "upsert_mom_state", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "week", "upsert_mom_state", "success")
	return nil
}
