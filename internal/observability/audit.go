package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Audit emits one structured log line for a security-relevant action
// (registration, login, logout). Attrs carry identifiers and outcomes
// only, never credentials or raw tokens.
func Audit(r *http.Request, event string, attrs ...any) {
	fields := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"request_id", chimiddleware.GetReqID(r.Context()),
	}
	slog.InfoContext(r.Context(), "audit", append(fields, attrs...)...)
}
