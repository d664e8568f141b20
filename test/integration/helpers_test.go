package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/app"
	"github.com/mamatrack/mamatrack-api/internal/config"
	"github.com/mamatrack/mamatrack-api/internal/repository"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// newTestServer builds the full application on an in-memory database
// and serves it over httptest. The returned DSN can be opened again to
// seed reference data, the shared cache makes both connections see the
// same store.
func newTestServer(t *testing.T) (baseURL, dsn string, client *http.Client) {
	t.Helper()

	dsn = "file:" + t.Name() + "?mode=memory&cache=shared"
	cfg := &config.Config{
		Env:              "test",
		Port:             0,
		CORSOrigins:      []string{"http://localhost:3000"},
		DatabaseURL:      dsn,
		JWTAccessSecret:  "access-secret-abcdefghijklmnop",
		JWTRefreshSecret: "refresh-secret-abcdefghijklmno",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		BcryptCost:       8,
		CookieSameSite:   http.SameSiteLaxMode,
		AvatarDir:        filepath.Join(t.TempDir(), "avatars"),
		ShutdownTimeout:  5 * time.Second,
	}

	a, err := app.Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	srv := httptest.NewServer(a.Server.Handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return srv.URL, dsn, &http.Client{Jar: jar}
}

// openSeedDB opens a second connection to the shared in-memory store
// so tests can insert reference rows directly.
func openSeedDB(t *testing.T, dsn string) (repository.EmotionRepository, repository.WeekRepository) {
	t.Helper()
	db, err := repository.Open(dsn)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	return repository.NewEmotionRepository(db), repository.NewWeekRepository(db)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode envelope from %s: %v (body=%s)", url, err, raw)
		}
	}
	return resp, env
}

func errorCode(t *testing.T, env envelope) string {
	t.Helper()
	if env.Error == nil {
		t.Fatal("expected an error envelope")
	}
	return env.Error.Code
}

func cookieValue(t *testing.T, client *http.Client, baseURL, name string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func register(t *testing.T, client *http.Client, baseURL, email string) {
	t.Helper()
	resp, env := doJSON(t, client, http.MethodPost, baseURL+"/api/auth/register", map[string]string{
		"name":     "Ivy",
		"email":    email,
		"password": "valid-pass-123",
	})
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("register failed: status=%d success=%v", resp.StatusCode, env.Success)
	}
}
