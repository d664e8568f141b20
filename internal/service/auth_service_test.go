package service

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/security"
)

type inMemoryUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{
		byID:    map[string]*domain.User{},
		byEmail: map[string]*domain.User{},
	}
}

func (r *inMemoryUserRepo) FindByID(id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) FindByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.byID[cp.ID] = &cp
	r.byEmail[cp.Email] = &cp
	return nil
}

func (r *inMemoryUserRepo) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	r.byID[cp.ID] = &cp
	r.byEmail[cp.Email] = &cp
	return nil
}

type inMemorySessionRepo struct {
	mu   sync.Mutex
	byID map[string]*domain.Session
}

func newInMemorySessionRepo() *inMemorySessionRepo {
	return &inMemorySessionRepo{byID: map[string]*domain.Session{}}
}

func (r *inMemorySessionRepo) Create(userID string, expiresAt time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		RefreshTokenHash: "pending-" + uuid.NewString(),
		ExpiresAt:        expiresAt,
	}
	cp := *s
	r.byID[s.ID] = &cp
	return s, nil
}

func (r *inMemorySessionRepo) Finalize(sessionID, digest string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.RefreshTokenHash = digest
	s.ExpiresAt = expiresAt
	return nil
}

func (r *inMemorySessionRepo) FindByID(sessionID string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *inMemorySessionRepo) Rotate(sessionID, oldDigest, newDigest string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[sessionID]
	if !ok || s.RefreshTokenHash != oldDigest {
		return repository.ErrSessionNotFound
	}
	s.RefreshTokenHash = newDigest
	s.ExpiresAt = expiresAt
	return nil
}

func (r *inMemorySessionRepo) DeleteByID(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, sessionID)
	return nil
}

func (r *inMemorySessionRepo) DeleteAllForUser(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, s := range r.byID {
		if s.UserID == userID {
			delete(r.byID, id)
			count++
		}
	}
	return count, nil
}

func (r *inMemorySessionRepo) DeleteByUserAndDigest(userID, digest string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, s := range r.byID {
		if s.UserID == userID && s.RefreshTokenHash == digest {
			delete(r.byID, id)
			count++
		}
	}
	return count, nil
}

func (r *inMemorySessionRepo) CleanupExpired() (int64, error) { return 0, nil }

func (r *inMemorySessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func newTestAuthService(t *testing.T, sessions repository.SessionRepository) (*AuthService, *inMemoryUserRepo) {
	t.Helper()
	hasher, err := security.NewPasswordHasher(security.MinBcryptCost)
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	jwtMgr := security.NewJWTManager(
		"mamatrack-api",
		"mamatrack",
		"access-secret-abcdefghijklmnop",
		"refresh-secret-abcdefghijklmno",
		15*time.Minute,
		24*time.Hour,
	)
	users := newInMemoryUserRepo()
	return NewAuthService(users, sessions, hasher, jwtMgr), users
}

func registerTestUser(t *testing.T, svc *AuthService) *AuthResult {
	t.Helper()
	res, err := svc.Register(RegisterInput{
		Name:     "Anna",
		Email:    "anna@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return res
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, newInMemorySessionRepo())
	registerTestUser(t, svc)

	_, err := svc.Register(RegisterInput{Name: "Other", Email: "anna@example.com", Password: "something else"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterIssuesWorkingTokenPair(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	res := registerTestUser(t, svc)

	userID, err := svc.VerifyAccessToken(res.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if userID != res.User.ID {
		t.Fatalf("access token subject = %q, want %q", userID, res.User.ID)
	}
	if _, err := svc.Refresh(res.Tokens.RefreshToken); err != nil {
		t.Fatalf("refresh fresh token: %v", err)
	}
	if sessions.count() != 1 {
		t.Fatalf("expected 1 session, got %d", sessions.count())
	}
}

func TestLoginUnknownEmailAndWrongPasswordAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService(t, newInMemorySessionRepo())
	registerTestUser(t, svc)

	_, errUnknown := svc.Login("nobody@example.com", "correct horse battery")
	_, errWrong := svc.Login("anna@example.com", "wrong password")
	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrong, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Fatal("unknown-email and wrong-password errors must be identical")
	}
}

func TestLoginCreatesIndependentSessions(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	registerTestUser(t, svc)

	first, err := svc.Login("anna@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := svc.Login("anna@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.Tokens.RefreshToken == second.Tokens.RefreshToken {
		t.Fatal("two logins produced the same refresh token")
	}
	// register + two logins
	if sessions.count() != 3 {
		t.Fatalf("expected 3 sessions, got %d", sessions.count())
	}
}

func TestRefreshRotatesAndOldTokenKillsSession(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	res := registerTestUser(t, svc)

	rotated, err := svc.Refresh(res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if rotated.RefreshToken == res.Tokens.RefreshToken {
		t.Fatal("refresh did not rotate the refresh token")
	}

	// Replaying the pre-rotation token is reuse: it must fail and destroy
	// the session.
	if _, err := svc.Refresh(res.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("replayed token: expected ErrUnauthorized, got %v", err)
	}
	if sessions.count() != 0 {
		t.Fatalf("expected session deleted after reuse, %d left", sessions.count())
	}

	// The lineage is dead, so even the latest token is now useless.
	if _, err := svc.Refresh(rotated.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("post-reuse refresh: expected ErrUnauthorized, got %v", err)
	}
}

func TestRefreshChainStaysAlive(t *testing.T) {
	svc, _ := newTestAuthService(t, newInMemorySessionRepo())
	res := registerTestUser(t, svc)

	current := res.Tokens.RefreshToken
	for i := 0; i < 3; i++ {
		pair, err := svc.Refresh(current)
		if err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
		current = pair.RefreshToken
	}
}

func TestConcurrentRefreshHasExactlyOneWinner(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	res := registerTestUser(t, svc)

	type outcome struct {
		tokens security.TokenPair
		err    error
	}
	results := make(chan outcome, 2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			tokens, err := svc.Refresh(res.Tokens.RefreshToken)
			results <- outcome{tokens: tokens, err: err}
		}()
	}
	close(start)

	var wins, losses int
	for i := 0; i < 2; i++ {
		r := <-results
		switch {
		case r.err == nil:
			wins++
			if r.tokens.RefreshToken == res.Tokens.RefreshToken {
				t.Fatal("winning refresh did not rotate the token")
			}
		case errors.Is(r.err, ErrUnauthorized):
			losses++
		default:
			t.Fatalf("unexpected refresh error: %v", r.err)
		}
	}
	// The stored digest matches the presented token exactly once, so the
	// conditional rotate can only succeed for one caller.
	if wins != 1 || losses != 1 {
		t.Fatalf("wins=%d losses=%d, want exactly one of each", wins, losses)
	}
}

func TestRefreshMalformedTokenLeavesSessionsAlone(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	res := registerTestUser(t, svc)

	if _, err := svc.Refresh("not-a-token"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if sessions.count() != 1 {
		t.Fatalf("malformed token must not touch sessions, %d left", sessions.count())
	}
	if _, err := svc.Refresh(res.Tokens.RefreshToken); err != nil {
		t.Fatalf("valid token after malformed attempt: %v", err)
	}
}

func TestRefreshExpiredSessionIsRemoved(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	res := registerTestUser(t, svc)

	sessions.mu.Lock()
	for _, s := range sessions.byID {
		s.ExpiresAt = time.Now().Add(-time.Hour)
	}
	sessions.mu.Unlock()

	if _, err := svc.Refresh(res.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if sessions.count() != 0 {
		t.Fatalf("expected expired session removed, %d left", sessions.count())
	}
}

func TestRefreshAccessTokenIsRejected(t *testing.T) {
	svc, _ := newTestAuthService(t, newInMemorySessionRepo())
	res := registerTestUser(t, svc)

	if _, err := svc.Refresh(res.Tokens.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("access token used as refresh: expected ErrUnauthorized, got %v", err)
	}
}

func TestLogoutSingleRevokesOnlyThatSession(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	res := registerTestUser(t, svc)

	other, err := svc.Login("anna@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	scope, err := svc.Logout(res.User.ID, res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if scope != LogoutScopeSingle {
		t.Fatalf("scope = %q, want %q", scope, LogoutScopeSingle)
	}
	if _, err := svc.Refresh(res.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("logged-out token: expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Refresh(other.Tokens.RefreshToken); err != nil {
		t.Fatalf("untouched session must survive single logout: %v", err)
	}
}

func TestLogoutWithoutTokenRevokesEverything(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	res := registerTestUser(t, svc)
	if _, err := svc.Login("anna@example.com", "correct horse battery"); err != nil {
		t.Fatalf("login: %v", err)
	}

	scope, err := svc.Logout(res.User.ID, "")
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if scope != LogoutScopeAll {
		t.Fatalf("scope = %q, want %q", scope, LogoutScopeAll)
	}
	if sessions.count() != 0 {
		t.Fatalf("expected all sessions gone, %d left", sessions.count())
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _ := newTestAuthService(t, newInMemorySessionRepo())
	res := registerTestUser(t, svc)

	if _, err := svc.Logout(res.User.ID, res.Tokens.RefreshToken); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if _, err := svc.Logout(res.User.ID, res.Tokens.RefreshToken); err != nil {
		t.Fatalf("repeated logout must succeed: %v", err)
	}
}

func TestVerifyAccessTokenRejectsRefreshToken(t *testing.T) {
	svc, _ := newTestAuthService(t, newInMemorySessionRepo())
	res := registerTestUser(t, svc)

	if _, err := svc.VerifyAccessToken(res.Tokens.RefreshToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("refresh token used as access: expected ErrUnauthorized, got %v", err)
	}
}

func TestStoredDigestNeverContainsRawToken(t *testing.T) {
	sessions := newInMemorySessionRepo()
	svc, _ := newTestAuthService(t, sessions)
	res := registerTestUser(t, svc)

	sessions.mu.Lock()
	defer sessions.mu.Unlock()
	for _, s := range sessions.byID {
		if s.RefreshTokenHash == res.Tokens.RefreshToken {
			t.Fatal("raw refresh token stored in session row")
		}
		if strings.Contains(res.Tokens.RefreshToken, s.RefreshTokenHash) {
			t.Fatal("session digest is a substring of the raw token")
		}
		if s.RefreshTokenHash != security.HashRefreshToken(res.Tokens.RefreshToken) {
			t.Fatal("session digest does not match the issued token's digest")
		}
	}
}
