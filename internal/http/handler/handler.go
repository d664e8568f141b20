// Package handler holds the HTTP boundary: request decoding, validation
// and translation of service errors into the response envelope.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/http/middleware"
	"github.com/mamatrack/mamatrack-api/internal/http/response"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

// decodeJSON rejects unknown fields so a typoed key fails loudly instead
// of being silently dropped.
func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected trailing data")
	}
	return nil
}

func badJSON(w http.ResponseWriter, r *http.Request) {
	response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "malformed request body", nil)
}

// requireUserID reads the id the auth guard stored. A miss means the
// route was mounted without the guard, which is a programming error, but
// the client still just sees a 401.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return "", false
	}
	return userID, true
}

// dateFromQuery reads an optional YYYY-MM-DD query parameter, defaulting
// to today.
func dateFromQuery(r *http.Request, param string) (time.Time, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return timeutil.Today(), nil
	}
	return timeutil.ParseDate(raw)
}

func validateEmail(email string) (string, string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", "email is required"
	}
	if len(email) > 64 {
		return "", "email must be at most 64 characters"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", "email must be a valid address"
	}
	return email, ""
}

func validatePassword(password string) string {
	if len(password) < 8 {
		return "password must be at least 8 characters"
	}
	if len(password) > 128 {
		return "password must be at most 128 characters"
	}
	return ""
}

func validateName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "name is required"
	}
	if len(name) > 32 {
		return "", "name must be at most 32 characters"
	}
	return name, ""
}

func parseGender(raw *string) (*domain.Gender, string) {
	if raw == nil {
		return nil, ""
	}
	switch domain.Gender(*raw) {
	case domain.GenderBoy, domain.GenderGirl:
		g := domain.Gender(*raw)
		return &g, ""
	default:
		return nil, "gender must be boy or girl"
	}
}

// parseDueDate enforces the registration window: at least one week and at
// most forty weeks from today.
func parseDueDate(raw *string) (*time.Time, string) {
	if raw == nil {
		return nil, ""
	}
	due, err := timeutil.ParseDate(*raw)
	if err != nil {
		return nil, "dueDate must be in format YYYY-MM-DD"
	}
	today := timeutil.Today()
	min := today.Add(7 * 24 * time.Hour)
	max := today.Add(280 * 24 * time.Hour)
	if due.Before(min) || due.After(max) {
		return nil, fmt.Sprintf("dueDate must be between %s and %s",
			timeutil.FormatDate(min), timeutil.FormatDate(max))
	}
	return &due, ""
}
