package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mamatrack/mamatrack-api/internal/http/response"
	"github.com/mamatrack/mamatrack-api/internal/service"
)

type EmotionHandler struct {
	emotions *service.EmotionService
}

func NewEmotionHandler(emotions *service.EmotionService) *EmotionHandler {
	return &EmotionHandler{emotions: emotions}
}

func (h *EmotionHandler) List(w http.ResponseWriter, r *http.Request) {
	emotions, err := h.emotions.List()
	if err != nil {
		slog.ErrorContext(r.Context(), "list emotions failed", "error", err)
		response.Internal(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, emotions)
}

func (h *EmotionHandler) Get(w http.ResponseWriter, r *http.Request) {
	emotion, err := h.emotions.GetByID(chi.URLParam(r, "emotionID"))
	if err != nil {
		if errors.Is(err, service.ErrEmotionNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "emotion not found", nil)
			return
		}
		slog.ErrorContext(r.Context(), "get emotion failed", "error", err)
		response.Internal(w, r)
		return
	}
	response.JSON(w, r, http.StatusOK, emotion)
}
