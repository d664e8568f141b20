package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/http/response"
	"github.com/mamatrack/mamatrack-api/internal/observability"
	"github.com/mamatrack/mamatrack-api/internal/security"
	"github.com/mamatrack/mamatrack-api/internal/service"
)

type AuthHandler struct {
	auth       service.AuthServiceInterface
	cookies    security.CookieSettings
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthHandler(auth service.AuthServiceInterface, cookies security.CookieSettings, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Gender   *string `json:"gender"`
	DueDate  *string `json:"dueDate"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}

	fields := map[string]string{}
	name, msg := validateName(req.Name)
	if msg != "" {
		fields["name"] = msg
	}
	email, msg := validateEmail(req.Email)
	if msg != "" {
		fields["email"] = msg
	}
	if msg := validatePassword(req.Password); msg != "" {
		fields["password"] = msg
	}
	gender, msg := parseGender(req.Gender)
	if msg != "" {
		fields["gender"] = msg
	}
	dueDate, msg := parseDueDate(req.DueDate)
	if msg != "" {
		fields["dueDate"] = msg
	}
	if len(fields) > 0 {
		response.ValidationError(w, r, fields)
		return
	}

	result, err := h.auth.Register(service.RegisterInput{
		Name:     name,
		Email:    email,
		Password: req.Password,
		Gender:   gender,
		DueDate:  dueDate,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Error(w, r, http.StatusConflict, "EMAIL_TAKEN", "email already registered", nil)
			return
		}
		slog.ErrorContext(r.Context(), "register failed", "error", err)
		response.Internal(w, r)
		return
	}

	observability.Audit(r, "auth.register", slog.String("user_id", result.User.ID))
	security.SetAuthCookies(w, result.Tokens, h.cookies, h.accessTTL, h.refreshTTL)
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badJSON(w, r)
		return
	}
	fields := map[string]string{}
	email, msg := validateEmail(req.Email)
	if msg != "" {
		fields["email"] = msg
	}
	if msg := validatePassword(req.Password); msg != "" {
		fields["password"] = msg
	}
	if len(fields) > 0 {
		response.ValidationError(w, r, fields)
		return
	}

	result, err := h.auth.Login(email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
			return
		}
		slog.ErrorContext(r.Context(), "login failed", "error", err)
		response.Internal(w, r)
		return
	}

	observability.Audit(r, "auth.login", slog.String("user_id", result.User.ID))
	security.SetAuthCookies(w, result.Tokens, h.cookies, h.accessTTL, h.refreshTTL)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh rotates a session. The token may arrive in the JSON body or the
// refresh cookie; an explicit body wins.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := h.refreshTokenFromRequest(r)
	if raw == "" {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing refresh token", nil)
		return
	}

	tokens, err := h.auth.Refresh(raw)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			// The presented token is dead either way; stale cookies would just
			// make the client repeat the failure.
			security.ClearAuthCookies(w, h.cookies)
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired refresh token", nil)
			return
		}
		slog.ErrorContext(r.Context(), "refresh failed", "error", err)
		response.Internal(w, r)
		return
	}

	security.SetAuthCookies(w, tokens, h.cookies, h.accessTTL, h.refreshTTL)
	response.JSON(w, r, http.StatusOK, map[string]any{"tokens": tokens})
}

// Logout revokes the presented session, or every session for the user
// when no refresh token accompanies the request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	scope, err := h.auth.Logout(userID, h.refreshTokenFromRequest(r))
	if err != nil {
		slog.ErrorContext(r.Context(), "logout failed", "error", err)
		response.Internal(w, r)
		return
	}

	observability.Audit(r, "auth.logout",
		slog.String("user_id", userID),
		slog.String("scope", string(scope)))
	security.ClearAuthCookies(w, h.cookies)
	response.JSON(w, r, http.StatusOK, map[string]any{"scope": scope})
}

func (h *AuthHandler) refreshTokenFromRequest(r *http.Request) string {
	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err == nil && req.RefreshToken != "" {
			return req.RefreshToken
		}
	}
	return security.GetCookie(r, security.RefreshTokenCookie)
}
