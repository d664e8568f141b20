package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mamatrack/mamatrack-api/internal/http/response"
	"github.com/mamatrack/mamatrack-api/internal/service"
)

type WeekHandler struct {
	weeks *service.WeekService
}

func NewWeekHandler(weeks *service.WeekService) *WeekHandler {
	return &WeekHandler{weeks: weeks}
}

// Dashboard is the public week view: no auth, no per-user data.
func (h *WeekHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	weekNumber, ok := h.weekNumberParam(w, r)
	if !ok {
		return
	}
	dashboard, err := h.weeks.GetDashboard(weekNumber)
	if err != nil {
		h.renderWeekError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, dashboard)
}

// Current derives the pregnancy week from the authenticated user's due
// date.
func (h *WeekHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	info, err := h.weeks.GetCurrentWeek(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		h.renderWeekError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, info)
}

func (h *WeekHandler) BabyState(w http.ResponseWriter, r *http.Request) {
	weekNumber, ok := h.weekNumberParam(w, r)
	if !ok {
		return
	}
	state, err := h.weeks.GetBabyState(weekNumber)
	if err != nil {
		h.renderWeekError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, state)
}

func (h *WeekHandler) MomState(w http.ResponseWriter, r *http.Request) {
	weekNumber, ok := h.weekNumberParam(w, r)
	if !ok {
		return
	}
	state, err := h.weeks.GetMomState(weekNumber)
	if err != nil {
		h.renderWeekError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, state)
}

func (h *WeekHandler) weekNumberParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "weekNumber")
	n, err := strconv.Atoi(raw)
	if err != nil || n < service.MinWeekNumber || n > service.MaxWeekNumber {
		response.ValidationError(w, r, map[string]string{
			"weekNumber": "weekNumber must be an integer between 1 and 42",
		})
		return 0, false
	}
	return n, true
}

func (h *WeekHandler) renderWeekError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrWeekNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "week content not found", nil)
		return
	}
	slog.ErrorContext(r.Context(), "week operation failed", "error", err)
	response.Internal(w, r)
}
