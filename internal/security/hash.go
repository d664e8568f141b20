package security

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashRefreshToken returns the digest stored in place of a raw refresh
// token: SHA-256, URL-safe base64 without padding.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
