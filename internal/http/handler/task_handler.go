package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mamatrack/mamatrack-api/internal/http/response"
	"github.com/mamatrack/mamatrack-api/internal/service"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type createTaskRequest struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	IsDone bool   `json:"isDone"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}

	fields := map[string]string{}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		fields["name"] = "name is required"
	} else if len(name) > 96 {
		fields["name"] = "name must be at most 96 characters"
	}
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		fields["date"] = "date must be YYYY-MM-DD"
	}
	if len(fields) > 0 {
		response.ValidationError(w, r, fields)
		return
	}

	task, err := h.tasks.Create(userID, service.CreateTaskInput{Name: name, Date: date, IsDone: req.IsDone})
	if err != nil {
		if errors.Is(err, service.ErrTaskInPast) {
			response.ValidationError(w, r, map[string]string{"date": "date must be today or later"})
			return
		}
		slog.ErrorContext(r.Context(), "create task failed", "error", err)
		response.Internal(w, r)
		return
	}
	response.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	date, err := dateFromQuery(r, "date")
	if err != nil {
		response.ValidationError(w, r, map[string]string{"date": "date must be YYYY-MM-DD"})
		return
	}
	tasks, err := h.tasks.ListByDate(userID, date)
	if err != nil {
		slog.ErrorContext(r.Context(), "list tasks failed", "error", err)
		response.Internal(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, tasks)
}

type updateTaskStatusRequest struct {
	IsDone *bool `json:"isDone"`
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateTaskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}
	if req.IsDone == nil {
		response.ValidationError(w, r, map[string]string{"isDone": "isDone is required"})
		return
	}

	task, err := h.tasks.SetStatus(userID, chi.URLParam(r, "taskID"), *req.IsDone)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "task not found", nil)
			return
		}
		slog.ErrorContext(r.Context(), "update task failed", "error", err)
		response.Internal(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, task)
}
