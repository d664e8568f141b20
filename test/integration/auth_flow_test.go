package integration

import (
	"net/http"
	"testing"
)

func TestRegisterSetsCookiesAndAuthenticates(t *testing.T) {
	baseURL, _, client := newTestServer(t)

	register(t, client, baseURL, "ivy@example.com")
	if cookieValue(t, client, baseURL, "accessToken") == "" {
		t.Fatal("access token cookie not set")
	}
	if cookieValue(t, client, baseURL, "refreshToken") == "" {
		t.Fatal("refresh token cookie not set")
	}

	resp, env := doJSON(t, client, http.MethodGet, baseURL+"/api/users/current", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("current user: status=%d success=%v", resp.StatusCode, env.Success)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	baseURL, _, client := newTestServer(t)
	register(t, client, baseURL, "dup@example.com")

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/register", map[string]string{
		"name":     "Other",
		"email":    "dup@example.com",
		"password": "valid-pass-123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if code := errorCode(t, env); code != "EMAIL_TAKEN" {
		t.Fatalf("code = %q", code)
	}
}

func TestLoginWithWrongPassword(t *testing.T) {
	baseURL, _, client := newTestServer(t)
	register(t, client, baseURL, "login@example.com")

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "not-the-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, env); code != "INVALID_CREDENTIALS" {
		t.Fatalf("code = %q", code)
	}
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	baseURL, _, client := newTestServer(t)
	register(t, client, baseURL, "rotate@example.com")

	oldToken := cookieValue(t, client, baseURL, "refreshToken")

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/refresh", nil)
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("refresh: status=%d success=%v", resp.StatusCode, env.Success)
	}
	newToken := cookieValue(t, client, baseURL, "refreshToken")
	if newToken == "" || newToken == oldToken {
		t.Fatal("refresh must rotate the refresh token cookie")
	}

	// Replaying the pre-rotation token is treated as theft and kills
	// the whole session.
	resp, env = doJSON(t, client, http.MethodPost, baseURL+"/api/auth/refresh", map[string]string{
		"refreshToken": oldToken,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replay status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, env); code != "UNAUTHORIZED" {
		t.Fatalf("replay code = %q", code)
	}

	resp, _ = doJSON(t, client, http.MethodPost, baseURL+"/api/auth/refresh", map[string]string{
		"refreshToken": newToken,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("post-replay refresh status = %d, the session must be revoked", resp.StatusCode)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	baseURL, _, client := newTestServer(t)
	register(t, client, baseURL, "logout@example.com")
	refreshToken := cookieValue(t, client, baseURL, "refreshToken")

	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/logout", map[string]string{
		"refreshToken": refreshToken,
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("logout: status=%d success=%v", resp.StatusCode, env.Success)
	}

	resp, _ = doJSON(t, client, http.MethodPost, baseURL+"/api/auth/refresh", map[string]string{
		"refreshToken": refreshToken,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh after logout = %d, want 401", resp.StatusCode)
	}
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	baseURL, _, client := newTestServer(t)

	for _, path := range []string{"/api/users/current", "/api/tasks", "/api/diaries", "/api/weeks/current"} {
		resp, env := doJSON(t, client, http.MethodGet, baseURL+path, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", path, resp.StatusCode)
		}
		if code := errorCode(t, env); code != "UNAUTHORIZED" {
			t.Fatalf("%s: code = %q", path, code)
		}
	}
}
