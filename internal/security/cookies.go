package security

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieSettings are the transport attributes shared by both auth cookies.
type CookieSettings struct {
	Secure   bool
	SameSite http.SameSite
}

// TokenPair is an access/refresh token pair as delivered to clients.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SetAuthCookies delivers both tokens as HttpOnly cookies with lifetimes
// matching each token's TTL. Clients may use the cookies, the JSON body, or
// both.
func SetAuthCookies(w http.ResponseWriter, pair TokenPair, settings CookieSettings, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, authCookie(AccessTokenCookie, pair.AccessToken, settings, accessTTL))
	http.SetCookie(w, authCookie(RefreshTokenCookie, pair.RefreshToken, settings, refreshTTL))
}

// ClearAuthCookies expires both auth cookies using the same name and
// attributes they were set with.
func ClearAuthCookies(w http.ResponseWriter, settings CookieSettings) {
	http.SetCookie(w, authCookie(AccessTokenCookie, "", settings, -time.Second))
	http.SetCookie(w, authCookie(RefreshTokenCookie, "", settings, -time.Second))
}

func authCookie(name, value string, settings CookieSettings, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: settings.SameSite,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
		c.Expires = time.Now().Add(ttl)
	} else {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	}
	return c
}

// GetCookie returns the named cookie value or "" when absent.
func GetCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
