package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mamatrack/mamatrack-api/internal/domain"
	"github.com/mamatrack/mamatrack-api/internal/http/middleware"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/service"
	"github.com/mamatrack/mamatrack-api/internal/storage"
	"github.com/mamatrack/mamatrack-api/internal/timeutil"
)

func newTestUserHandler(t *testing.T) (*UserHandler, string) {
	t.Helper()
	db, err := repository.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	users := repository.NewUserRepository(db)
	due := timeutil.Today().Add(100 * 24 * time.Hour)
	gender := domain.GenderGirl
	user := &domain.User{Name: "Anna", Email: "anna@example.com", Gender: &gender, DueDate: &due}
	if err := users.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	avatars, err := storage.NewDiskAvatarStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("avatar store: %v", err)
	}
	return NewUserHandler(service.NewUserService(users, avatars)), user.ID
}

func authedRequest(userID, method, target string, body *strings.Reader) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestUpdateUserPatchKeepsAbsentFields(t *testing.T) {
	h, userID := newTestUserHandler(t)

	rr := httptest.NewRecorder()
	h.Update(rr, authedRequest(userID, http.MethodPatch, "/api/users", strings.NewReader(`{"name":"Anna K"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Anna K") {
		t.Fatalf("name not updated: %s", body)
	}
	if !strings.Contains(body, `"gender":"girl"`) {
		t.Fatalf("gender lost on partial patch: %s", body)
	}
}

func TestUpdateUserNullClearsField(t *testing.T) {
	h, userID := newTestUserHandler(t)

	rr := httptest.NewRecorder()
	h.Update(rr, authedRequest(userID, http.MethodPatch, "/api/users", strings.NewReader(`{"dueDate":null,"gender":null}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"dueDate":null`) || !strings.Contains(body, `"gender":null`) {
		t.Fatalf("nullable fields not cleared: %s", body)
	}
}

func TestUpdateUserRejectsUnknownField(t *testing.T) {
	h, userID := newTestUserHandler(t)

	rr := httptest.NewRecorder()
	h.Update(rr, authedRequest(userID, http.MethodPatch, "/api/users", strings.NewReader(`{"email":"new@example.com"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown field must be rejected, status = %d", rr.Code)
	}
}

func TestUpdateUserEmptyBodyRejected(t *testing.T) {
	h, userID := newTestUserHandler(t)

	rr := httptest.NewRecorder()
	h.Update(rr, authedRequest(userID, http.MethodPatch, "/api/users", strings.NewReader(`{}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty patch must be rejected, status = %d", rr.Code)
	}
}

func TestUpdateAvatarMultipart(t *testing.T) {
	h, userID := newTestUserHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("png bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rr := httptest.NewRecorder()
	h.UpdateAvatar(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "/uploads/") {
		t.Fatalf("avatar url missing: %s", rr.Body.String())
	}
}

func TestUpdateAvatarMissingFile(t *testing.T) {
	h, userID := newTestUserHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", "no file here")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	rr := httptest.NewRecorder()
	h.UpdateAvatar(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
