package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

type inMemoryTaskRepo struct {
	tasks map[string]*domain.Task
}

func newInMemoryTaskRepo() *inMemoryTaskRepo {
	return &inMemoryTaskRepo{tasks: map[string]*domain.Task{}}
}

func (r *inMemoryTaskRepo) Create(task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	cp := *task
	r.tasks[cp.ID] = &cp
	return nil
}

func (r *inMemoryTaskRepo) ListByUserAndDate(userID string, date time.Time) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range r.tasks {
		if task.UserID == userID && task.Date.Equal(date) {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *inMemoryTaskRepo) FindByIDForUser(userID, taskID string) (*domain.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (r *inMemoryTaskRepo) UpdateStatus(taskID string, isDone bool) (*domain.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	task.IsDone = isDone
	cp := *task
	return &cp, nil
}

func TestCreateTaskRejectsPastDate(t *testing.T) {
	svc := NewTaskService(newInMemoryTaskRepo())

	_, err := svc.Create("user-1", CreateTaskInput{
		Name: "buy vitamins",
		Date: timeutil.Today().Add(-24 * time.Hour),
	})
	if !errors.Is(err, ErrTaskInPast) {
		t.Fatalf("expected ErrTaskInPast, got %v", err)
	}
}

func TestCreateTaskTodayNormalizesDate(t *testing.T) {
	repo := newInMemoryTaskRepo()
	svc := NewTaskService(repo)

	// A timestamp later today must land on the day bucket, not fail the
	// past-date check.
	task, err := svc.Create("user-1", CreateTaskInput{
		Name: "buy vitamins",
		Date: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !task.Date.Equal(timeutil.Today()) {
		t.Fatalf("date = %v, want %v", task.Date, timeutil.Today())
	}

	listed, err := svc.ListByDate("user-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d tasks, want 1", len(listed))
	}
}

func TestSetStatusScopedToOwner(t *testing.T) {
	repo := newInMemoryTaskRepo()
	svc := NewTaskService(repo)

	task, err := svc.Create("user-1", CreateTaskInput{Name: "pack bag", Date: timeutil.Today()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SetStatus("user-2", task.ID, true); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("other user's update: expected ErrTaskNotFound, got %v", err)
	}

	updated, err := svc.SetStatus("user-1", task.ID, true)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if !updated.IsDone {
		t.Fatal("expected task marked done")
	}
}
