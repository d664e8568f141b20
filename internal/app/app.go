// Package app assembles the service: configuration, storage, services,
// HTTP transport and observability, plus the run/shutdown lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mamatrack/mamatrack-api/internal/config"
	"github.com/mamatrack/mamatrack-api/internal/health"
	"github.com/mamatrack/mamatrack-api/internal/http/handler"
	"github.com/mamatrack/mamatrack-api/internal/http/router"
	"github.com/mamatrack/mamatrack-api/internal/observability"
	"github.com/mamatrack/mamatrack-api/internal/repository"
	"github.com/mamatrack/mamatrack-api/internal/security"
	"github.com/mamatrack/mamatrack-api/internal/service"
	"github.com/mamatrack/mamatrack-api/internal/storage"
)

const (
	weekCacheTTL           = 12 * time.Hour
	sessionCleanupInterval = time.Hour
	readHeaderTimeout      = 5 * time.Second
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         *redis.Client

	sessions repository.SessionRepository
}

// Build wires every dependency from configuration. Nothing starts
// listening until Run.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	runtime, err := observability.InitRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	db, err := repository.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	tasks := repository.NewTaskRepository(db)
	diaries := repository.NewDiaryRepository(db)
	emotions := repository.NewEmotionRepository(db)
	weeks := repository.NewWeekRepository(db)

	hasher, err := security.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	jwtMgr := security.NewJWTManager(
		"mamatrack-api",
		"mamatrack",
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		cfg.JWTAccessTTL,
		cfg.JWTRefreshTTL,
	)
	avatars, err := storage.NewDiskAvatarStore(cfg.AvatarDir, "/uploads")
	if err != nil {
		return nil, err
	}

	var weekSource service.WeekStateSource = weeks
	if redisClient != nil {
		weekSource = service.NewCachedWeekSource(weeks, redisClient, "week", weekCacheTTL)
	}

	authSvc := service.NewAuthService(users, sessions, hasher, jwtMgr)
	cookies := security.CookieSettings{Secure: cfg.CookieSecure, SameSite: cfg.CookieSameSite}

	checks := []health.Check{{
		Name: "database",
		Probe: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if redisClient != nil {
		checks = append(checks, health.Check{
			Name: "redis",
			Probe: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		})
	}

	mux := router.NewRouter(router.Dependencies{
		AuthHandler:    handler.NewAuthHandler(authSvc, cookies, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		UserHandler:    handler.NewUserHandler(service.NewUserService(users, avatars)),
		TaskHandler:    handler.NewTaskHandler(service.NewTaskService(tasks)),
		DiaryHandler:   handler.NewDiaryHandler(service.NewDiaryService(diaries, emotions)),
		EmotionHandler: handler.NewEmotionHandler(service.NewEmotionService(emotions)),
		WeekHandler:    handler.NewWeekHandler(service.NewWeekService(weekSource, users)),
		Verifier:       authSvc,
		CORSOrigins:    cfg.CORSOrigins,
		Readiness:      health.NewProbeRunner(2*time.Second, checks...),
		AvatarDir:      avatars.Dir(),
		EnableOTelHTTP: cfg.OTELTracingEnabled || cfg.OTELMetricsEnabled,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		Server:        server,
		Observability: runtime,
		DB:            db,
		Redis:         redisClient,
		sessions:      sessions,
	}, nil
}

// Run serves HTTP and the background session sweeper until ctx is
// cancelled, then drains everything within the shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		a.Logger.Info("http server listening", "addr", a.Server.Addr, "env", a.Config.Env)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				removed, err := a.sessions.CleanupExpired()
				if err != nil {
					a.Logger.Warn("session cleanup failed", "error", err)
					continue
				}
				if removed > 0 {
					a.Logger.Info("expired sessions removed", "count", removed)
				}
			}
		}
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		return a.shutdown(shutdownCtx)
	})

	return group.Wait()
}

func (a *App) shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down")
	errs := []error{a.Server.Shutdown(ctx)}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Observability != nil {
		errs = append(errs, a.Observability.Shutdown(ctx))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}
