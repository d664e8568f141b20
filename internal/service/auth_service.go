package service

import (
	"errors"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/observability"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/security"
)

var (
	// ErrEmailTaken is returned when registration collides with an
	// existing account.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password so a caller cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized covers every refresh/access verification failure:
	// bad signature, expiry, missing session, digest mismatch. Sub-cases
	// are deliberately indistinguishable.
	ErrUnauthorized = errors.New("invalid or expired token")
)

// LogoutScope reports how much was revoked by a logout call.
type LogoutScope string

const (
	LogoutScopeSingle LogoutScope = "single"
	LogoutScopeAll    LogoutScope = "all"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Gender   *domain.Gender
	DueDate  *time.Time
}

type AuthResult struct {
	User   PublicUser
	Tokens security.TokenPair
}

type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   *security.PasswordHasher
	jwtMgr   *security.JWTManager
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, hasher *security.PasswordHasher, jwtMgr *security.JWTManager) *AuthService {
	return &AuthService{users: users, sessions: sessions, hasher: hasher, jwtMgr: jwtMgr}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	if _, err := s.users.FindByEmail(input.Email); err == nil {
		observability.RecordAuthRegister("conflict")
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Gender:       input.Gender,
		DueDate:      input.DueDate,
	}
	if err := s.users.Create(user); err != nil {
		observability.RecordAuthRegister("error")
		return nil, err
	}

	tokens, err := s.issueSession(user.ID)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthRegister("success")
	return &AuthResult{User: toPublicUser(user), Tokens: tokens}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthLogin("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		observability.RecordAuthLogin("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueSession(user.ID)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthLogin("success")
	return &AuthResult{User: toPublicUser(user), Tokens: tokens}, nil
}

// issueSession runs the two-phase issuance sequence. The session row is
// created with a placeholder digest first because the refresh token embeds
// the session id; the row only becomes usable once Finalize installs the
// real digest.
func (s *AuthService) issueSession(userID string) (security.TokenPair, error) {
	expiresAt := time.Now().Add(s.jwtMgr.RefreshTTL())
	session, err := s.sessions.Create(userID, expiresAt)
	if err != nil {
		return security.TokenPair{}, err
	}

	refreshToken, err := s.jwtMgr.SignRefreshToken(userID, session.ID)
	if err != nil {
		return security.TokenPair{}, err
	}
	digest := security.HashRefreshToken(refreshToken)
	if err := s.sessions.Finalize(session.ID, digest, time.Now().Add(s.jwtMgr.RefreshTTL())); err != nil {
		return security.TokenPair{}, err
	}

	accessToken, err := s.jwtMgr.SignAccessToken(userID)
	if err != nil {
		return security.TokenPair{}, err
	}
	return security.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// session's stored digest. Presenting an already-rotated token is treated
// as theft: the whole session lineage is destroyed.
func (s *AuthService) Refresh(rawRefresh string) (security.TokenPair, error) {
	claims, err := s.jwtMgr.ParseRefreshToken(rawRefresh)
	if err != nil {
		observability.RecordAuthRefresh("invalid_token")
		return security.TokenPair{}, ErrUnauthorized
	}

	session, err := s.sessions.FindByID(claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			observability.RecordAuthRefresh("session_missing")
			return security.TokenPair{}, ErrUnauthorized
		}
		return security.TokenPair{}, err
	}
	// The signature already binds the subject; checking the row's owner as
	// well keeps a forged-subject token from walking another user's session.
	if session.UserID != claims.Subject {
		observability.RecordAuthRefresh("subject_mismatch")
		return security.TokenPair{}, ErrUnauthorized
	}

	if session.ExpiresAt.Before(time.Now()) {
		// Cleanup is best effort; the Unauthorized decision stands even if
		// the delete fails.
		_ = s.sessions.DeleteByID(session.ID)
		observability.RecordAuthRefresh("session_expired")
		return security.TokenPair{}, ErrUnauthorized
	}

	presentedDigest := security.HashRefreshToken(rawRefresh)
	if presentedDigest != session.RefreshTokenHash {
		// Reuse of a rotated-away token. Revoke the lineage so a stolen old
		// token kills the session instead of extending it.
		_ = s.sessions.DeleteByID(session.ID)
		observability.RecordAuthRefresh("reuse_detected")
		return security.TokenPair{}, ErrUnauthorized
	}

	newRefresh, err := s.jwtMgr.SignRefreshToken(session.UserID, session.ID)
	if err != nil {
		return security.TokenPair{}, err
	}
	newDigest := security.HashRefreshToken(newRefresh)
	err = s.sessions.Rotate(session.ID, presentedDigest, newDigest, time.Now().Add(s.jwtMgr.RefreshTTL()))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			// Lost the rotate race (or the session vanished): the presented
			// token is no longer the valid one.
			observability.RecordAuthRefresh("rotate_conflict")
			return security.TokenPair{}, ErrUnauthorized
		}
		return security.TokenPair{}, err
	}

	accessToken, err := s.jwtMgr.SignAccessToken(session.UserID)
	if err != nil {
		return security.TokenPair{}, err
	}
	observability.RecordAuthRefresh("success")
	return security.TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

// Logout revokes a single session when a refresh token is supplied, or all
// of the user's sessions otherwise. Deleting zero rows is still success.
func (s *AuthService) Logout(userID, rawRefresh string) (LogoutScope, error) {
	if rawRefresh != "" {
		if _, err := s.sessions.DeleteByUserAndDigest(userID, security.HashRefreshToken(rawRefresh)); err != nil {
			return "", err
		}
		observability.RecordAuthLogout(string(LogoutScopeSingle))
		return LogoutScopeSingle, nil
	}
	if _, err := s.sessions.DeleteAllForUser(userID); err != nil {
		return "", err
	}
	observability.RecordAuthLogout(string(LogoutScopeAll))
	return LogoutScopeAll, nil
}

// VerifyAccessToken resolves an access token to the user id it was issued
// for. This is the request-guard contract used by the HTTP middleware.
func (s *AuthService) VerifyAccessToken(raw string) (string, error) {
	claims, err := s.jwtMgr.ParseAccessToken(raw)
	if err != nil {
		return "", ErrUnauthorized
	}
	return claims.Subject, nil
}
