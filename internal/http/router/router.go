package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mamatrack/mamatrack-api/internal/health"
	"github.com/mamatrack/mamatrack-api/internal/http/handler"
	"github.com/mamatrack/mamatrack-api/internal/http/middleware"
	"github.com/mamatrack/mamatrack-api/internal/http/response"
	"github.com/mamatrack/mamatrack-api/internal/service"
)

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	TaskHandler    *handler.TaskHandler
	DiaryHandler   *handler.DiaryHandler
	EmotionHandler *handler.EmotionHandler
	WeekHandler    *handler.WeekHandler
	Verifier       middleware.TokenVerifier
	CORSOrigins    []string
	Readiness      *health.ProbeRunner
	AvatarDir      string
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))

	guard := middleware.Auth(dep.Verifier)
	// JSON bodies are small; the avatar upload route carries its own
	// larger cap covering the file plus multipart framing.
	jsonBody := middleware.BodyLimit(1 << 20)
	avatarBody := middleware.BodyLimit(service.MaxAvatarBytes + 1<<20)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(jsonBody)
			r.Post("/register", dep.AuthHandler.Register)
			r.Post("/login", dep.AuthHandler.Login)
			r.Post("/refresh", dep.AuthHandler.Refresh)
			r.With(guard).Post("/logout", dep.AuthHandler.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(guard)
			r.Get("/current", dep.UserHandler.Current)
			r.With(jsonBody).Patch("/", dep.UserHandler.Update)
			r.With(avatarBody).Patch("/avatar", dep.UserHandler.UpdateAvatar)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(guard, jsonBody)
			r.Post("/", dep.TaskHandler.Create)
			r.Get("/", dep.TaskHandler.List)
			r.Patch("/{taskID}", dep.TaskHandler.UpdateStatus)
		})

		r.Route("/diaries", func(r chi.Router) {
			r.Use(guard, jsonBody)
			r.Post("/", dep.DiaryHandler.Create)
			r.Get("/", dep.DiaryHandler.List)
			r.Patch("/{diaryID}", dep.DiaryHandler.Update)
			r.Delete("/{diaryID}", dep.DiaryHandler.Delete)
		})

		r.Route("/emotions", func(r chi.Router) {
			r.Get("/", dep.EmotionHandler.List)
			r.Get("/{emotionID}", dep.EmotionHandler.Get)
		})

		r.Route("/weeks", func(r chi.Router) {
			r.With(guard).Get("/current", dep.WeekHandler.Current)
			r.Get("/{weekNumber}", dep.WeekHandler.Dashboard)
			r.With(guard).Get("/{weekNumber}/baby", dep.WeekHandler.BabyState)
			r.With(guard).Get("/{weekNumber}/mom", dep.WeekHandler.MomState)
		})
	})

	if dep.AvatarDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dep.AvatarDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
