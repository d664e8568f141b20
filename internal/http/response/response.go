// Package response renders the API's JSON envelope. Every body, success
// or failure, carries request metadata so a client can correlate its logs
// with the server's.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
	Meta    meta      `json:"meta"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, envelope{Success: true, Data: data, Meta: buildMeta(r)}, status)
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	write(w, envelope{Success: false, Error: &apiError{Code: code, Message: message, Details: details}, Meta: buildMeta(r)}, status)
}

// ValidationError reports a 400 with per-field messages.
func ValidationError(w http.ResponseWriter, r *http.Request, fields map[string]string) {
	Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed", fields)
}

// Internal hides the underlying error from the client; the cause belongs
// in the log line, not the body.
func Internal(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
}

func write(w http.ResponseWriter, body envelope, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func buildMeta(r *http.Request) meta {
	id := chimiddleware.GetReqID(r.Context())
	if id == "" {
		id = r.Header.Get("X-Request-Id")
	}
	if id == "" {
		id = "req-unknown"
	}
	return meta{RequestID: id, Timestamp: time.Now().UTC()}
}
