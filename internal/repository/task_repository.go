package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/observability"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	Create(task *domain.Task) error
	ListByUserAndDate(userID string, date time.Time) ([]domain.Task, error)
	FindByIDForUser(userID, taskID string) (*domain.Task, error)
	UpdateStatus(taskID string, isDone bool) (*domain.Task, error)
}

type GormTaskRepository struct{ db *gorm.DB }

func NewTaskRepository(db *gorm.DB) TaskRepository { return &GormTaskRepository{db: db} }

func (r *GormTaskRepository) Create(task *domain.Task) error {
	err := r.db.Create(task).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "task", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "task", "create", "success")
	return nil
}

func (r *GormTaskRepository) ListByUserAndDate(userID string, date time.Time) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.Where("user_id = ? AND date = ?", userID, date).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "task", "list_by_user_and_date", "error")
		return tasks, err
	}
	observability.RecordRepositoryOperation(context.Background(), "task", "list_by_user_and_date", "success")
	return tasks, nil
}

func (r *GormTaskRepository) FindByIDForUser(userID, taskID string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.Where("id = ? AND user_id = ?", taskID, userID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "task", "find_by_id_for_user", "not_found")
			return nil, ErrTaskNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "task", "find_by_id_for_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "task", "find_by_id_for_user", "success")
	return &t, nil
}

func (r *GormTaskRepository) UpdateStatus(taskID string, isDone bool) (*domain.Task, error) {
	err := r.db.Model(&domain.Task{}).Where("id = ?", taskID).Update("is_done", isDone).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "task", "update_status", "error")
		return nil, err
	}
	var t domain.Task
	if err := r.db.Where("id = ?", taskID).First(&t).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "task", "update_status", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "task", "update_status", "success")
	return &t, nil
}
