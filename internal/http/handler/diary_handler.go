package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mamatrack/mamatrack-api/internal/http/response"
	"github.com/mamatrack/mamatrack-api/internal/service"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

const maxDiaryEmotions = 12

type DiaryHandler struct {
	diaries *service.DiaryService
}

func NewDiaryHandler(diaries *service.DiaryService) *DiaryHandler {
	return &DiaryHandler{diaries: diaries}
}

type createDiaryRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        *string  `json:"date"`
	Emotions    []string `json:"emotions"`
}

func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createDiaryRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}

	fields := map[string]string{}
	title, msg := validateDiaryTitle(req.Title)
	if msg != "" {
		fields["title"] = msg
	}
	description, msg := validateDiaryDescription(req.Description)
	if msg != "" {
		fields["description"] = msg
	}
	var date *time.Time
	if req.Date != nil {
		parsed, err := timeutil.ParseDate(*req.Date)
		if err != nil {
			fields["date"] = "date must be YYYY-MM-DD"
		} else {
			date = &parsed
		}
	}
	if msg := validateDiaryEmotions(req.Emotions, true); msg != "" {
		fields["emotions"] = msg
	}
	if len(fields) > 0 {
		response.ValidationError(w, r, fields)
		return
	}

	entry, err := h.diaries.Create(userID, service.CreateDiaryInput{
		Title:       title,
		Description: description,
		Date:        date,
		Emotions:    req.Emotions,
	})
	if err != nil {
		h.renderDiaryError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, entry)
}

func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	date, err := dateFromQuery(r, "date")
	if err != nil {
		response.ValidationError(w, r, map[string]string{"date": "date must be YYYY-MM-DD"})
		return
	}
	entries, err := h.diaries.ListByDate(userID, date)
	if err != nil {
		slog.ErrorContext(r.Context(), "list diaries failed", "error", err)
		response.Internal(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, entries)
}

type updateDiaryRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
	Emotions    []string `json:"emotions"`
}

func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateDiaryRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}
	if req.Title == nil && req.Description == nil && req.Date == nil && req.Emotions == nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "at least one field must be provided", nil)
		return
	}

	fields := map[string]string{}
	input := service.UpdateDiaryInput{Emotions: req.Emotions}
	if req.Title != nil {
		title, msg := validateDiaryTitle(*req.Title)
		if msg != "" {
			fields["title"] = msg
		} else {
			input.Title = &title
		}
	}
	if req.Description != nil {
		description, msg := validateDiaryDescription(*req.Description)
		if msg != "" {
			fields["description"] = msg
		} else {
			input.Description = &description
		}
	}
	if req.Date != nil {
		parsed, err := timeutil.ParseDate(*req.Date)
		if err != nil {
			fields["date"] = "date must be YYYY-MM-DD"
		} else {
			input.Date = &parsed
		}
	}
	if req.Emotions != nil {
		if msg := validateDiaryEmotions(req.Emotions, false); msg != "" {
			fields["emotions"] = msg
		}
	}
	if len(fields) > 0 {
		response.ValidationError(w, r, fields)
		return
	}

	entry, err := h.diaries.Update(userID, chi.URLParam(r, "diaryID"), input)
	if err != nil {
		h.renderDiaryError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, entry)
}

func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.diaries.Delete(userID, chi.URLParam(r, "diaryID")); err != nil {
		h.renderDiaryError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DiaryHandler) renderDiaryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrDiaryEntryNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "diary entry not found", nil)
	case errors.Is(err, service.ErrUnknownEmotions):
		response.ValidationError(w, r, map[string]string{"emotions": err.Error()})
	default:
		slog.ErrorContext(r.Context(), "diary operation failed", "error", err)
		response.Internal(w, r)
	}
}

func validateDiaryTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "title is required"
	}
	if len(title) > 64 {
		return "", "title must be at most 64 characters"
	}
	return title, ""
}

func validateDiaryDescription(description string) (string, string) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", "description is required"
	}
	if len(description) > 1000 {
		return "", "description must be at most 1000 characters"
	}
	return description, ""
}

func validateDiaryEmotions(ids []string, required bool) string {
	if ids == nil {
		if required {
			return "emotions are required"
		}
		return ""
	}
	if len(ids) == 0 {
		return "at least one emotion is required"
	}
	if len(ids) > maxDiaryEmotions {
		return "at most 12 emotions are allowed"
	}
	for _, id := range ids {
		if id == "" {
			return "emotion ids must be non-empty"
		}
	}
	return ""
}
