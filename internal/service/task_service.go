package service

import (
	"errors"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrTaskInPast   = errors.New("task date must be today or later")
)

type CreateTaskInput struct {
	Name   string
	Date   time.Time
	IsDone bool
}

type TaskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) Create(userID string, input CreateTaskInput) (*domain.Task, error) {
	date := timeutil.Truncate(input.Date)
	if date.Before(timeutil.Today()) {
		return nil, ErrTaskInPast
	}
	task := &domain.Task{
		UserID: userID,
		Name:   input.Name,
		Date:   date,
		IsDone: input.IsDone,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListByDate(userID string, date time.Time) ([]domain.Task, error) {
	return s.tasks.ListByUserAndDate(userID, timeutil.Truncate(date))
}

func (s *TaskService) SetStatus(userID, taskID string, isDone bool) (*domain.Task, error) {
	if _, err := s.tasks.FindByIDForUser(userID, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return s.tasks.UpdateStatus(taskID, isDone)
}
