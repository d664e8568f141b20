package service

import (
	"github.com/mamatrack/mamatrack-api/internal/security"
)

// AuthServiceInterface is what the HTTP boundary consumes from the auth
// core.
type AuthServiceInterface interface {
	Register(input RegisterInput) (*AuthResult, error)
	Login(email, password string) (*AuthResult, error)
	Refresh(rawRefresh string) (security.TokenPair, error)
	Logout(userID, rawRefresh string) (LogoutScope, error)
	VerifyAccessToken(raw string) (string, error)
}

// AvatarStore persists uploaded avatar images and returns the public URL
// to record on the user.
type AvatarStore interface {
	Save(filename string, data []byte) (url string, err error)
}
