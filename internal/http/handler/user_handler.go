package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/http/response"
	"github.com/mamatrack/mamatrack-api/internal/service"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetCurrent(userID)
	if err != nil {
		h.renderUserError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

// Update implements PATCH semantics over raw JSON: a key that is absent
// stays untouched, a key set to null (or "") clears the field.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		badJSON(w, r)
		return
	}

	var input service.UpdateUserInput
	fields := map[string]string{}
	for key, value := range raw {
		switch key {
		case "name":
			var v *string
			if err := json.Unmarshal(value, &v); err != nil || v == nil {
				fields["name"] = "name must be a string"
				continue
			}
			name, msg := validateName(*v)
			if msg != "" {
				fields["name"] = msg
				continue
			}
			input.Name = &name
		case "gender":
			gender, msg := parseNullableGender(value)
			if msg != "" {
				fields["gender"] = msg
				continue
			}
			input.Gender = &gender
		case "dueDate":
			dueDate, msg := parseNullableDate(value)
			if msg != "" {
				fields["dueDate"] = msg
				continue
			}
			input.DueDate = &dueDate
		default:
			fields[key] = "unknown field"
		}
	}
	if len(fields) > 0 {
		response.ValidationError(w, r, fields)
		return
	}
	if input.Name == nil && input.Gender == nil && input.DueDate == nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "at least one field must be provided", nil)
		return
	}

	user, err := h.users.Update(userID, input)
	if err != nil {
		h.renderUserError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

// UpdateAvatar accepts a multipart upload in the "avatar" field.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(service.MaxAvatarBytes + 1<<20); err != nil {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "expected multipart form with an avatar file", nil)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		response.ValidationError(w, r, map[string]string{"avatar": "avatar file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxAvatarBytes+1))
	if err != nil {
		slog.ErrorContext(r.Context(), "read avatar upload", "error", err)
		response.Internal(w, r)
		return
	}

	user, err := h.users.UpdateAvatar(userID, service.AvatarUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidAvatar) {
			response.ValidationError(w, r, map[string]string{"avatar": err.Error()})
			return
		}
		h.renderUserError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) renderUserError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrUserNotFound) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
		return
	}
	slog.ErrorContext(r.Context(), "user operation failed", "error", err)
	response.Internal(w, r)
}

func parseNullableGender(value json.RawMessage) (*domain.Gender, string) {
	var v *string
	if err := json.Unmarshal(value, &v); err != nil {
		return nil, "gender must be boy, girl or null"
	}
	if v == nil || *v == "" {
		return nil, ""
	}
	return parseGender(v)
}

func parseNullableDate(value json.RawMessage) (*time.Time, string) {
	var v *string
	if err := json.Unmarshal(value, &v); err != nil {
		return nil, "dueDate must be a YYYY-MM-DD string or null"
	}
	if v == nil || *v == "" {
		return nil, ""
	}
	parsed, err := timeutil.ParseDate(*v)
	if err != nil {
		return nil, "dueDate must be YYYY-MM-DD"
	}
	return &parsed, ""
}
