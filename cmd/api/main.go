// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	gormlogger "gorm.io/gorm/logger"

	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/config"
	"github.com/datara/scholarhub/internal/database"
	"github.com/datara/scholarhub/internal/email"
	"github.com/datara/scholarhub/internal/handler"
	"github.com/datara/scholarhub/internal/lookup"
	"github.com/datara/scholarhub/internal/middleware"
	"github.com/datara/scholarhub/internal/repository"
	"github.com/datara/scholarhub/internal/service"
	"github.com/datara/scholarhub/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	gormLevel := gormlogger.Warn
	if !cfg.IsProduction() {
		gormLevel = gormlogger.Info
	}
	db, err := database.Open(ctx, cfg, gormLevel)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}
	defer database.Close(db)

	store := repository.NewStore(db)

	// Drafts, refresh tokens and the lookup cache share one session store.
	// Redis is required when more than one instance serves traffic.
	var (
		sessions session.Store
		limiter  middleware.Limiter
	)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("parsing REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}

		sessions = session.NewRedisStore(client, "scholarhub:")
		limiter = middleware.NewRedisLimiter(client, "scholarhub:ratelimit:")
	} else {
		logger.Warn("REDIS_URL not set; using in-process session store and rate limiter")
		memory := session.NewMemoryStore(time.Minute)
		defer memory.Close()
		sessions = memory
		limiter = middleware.NewMemoryLimiter()
	}

	emailService, err := email.NewEmailService(cfg)
	if err != nil {
		return fmt.Errorf("initializing email service: %w", err)
	}
	notifier := email.NewDispatcher(emailService, cfg.Email.FromName)

	// Initialize auth services
	passwordHasher := auth.NewPasswordHasher()
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpiryPeriod)
	provider := auth.NewLocalProvider(store.Admins(), passwordHasher)

	// Initialize services
	identityService := service.NewIdentityService(store, provider, tokenManager, sessions, cfg.JWT.RefreshPeriod)
	intakeService := service.NewIntakeService(store, sessions, notifier, service.IntakeConfig{
		DraftTTL:       cfg.Intake.DraftTTL,
		OTPTTL:         cfg.Intake.OTPTTL,
		OTPMaxAttempts: cfg.Intake.OTPMaxAttempts,
		MinimumAge:     cfg.Intake.MinimumAge,
	})
	reviewService := service.NewReviewService(store, notifier, cfg.BaseURL)
	portalService := service.NewPortalService(store)
	lookupService := lookup.NewService(cfg.Lookup.UniversitiesURL, cfg.Lookup.Timeout, sessions, cfg.Lookup.CacheTTL)

	// Initialize handlers
	handlers := handler.Handlers{
		Public: handler.NewPublicHandler(store.Organizations(), lookupService),
		Apply:  handler.NewApplyHandler(intakeService),
		Auth:   handler.NewAuthHandler(identityService),
		Admin:  handler.NewAdminHandler(reviewService),
		Portal: handler.NewPortalHandler(portalService, reviewService),
	}

	// Create router
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))
	r.Use(middleware.RequestMeta)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", handler.APIRoutes(handlers, tokenManager, handler.RateLimits{
		Limiter:    limiter,
		LoginLimit: cfg.RateLimit.LoginLimit,
		OTPLimit:   cfg.RateLimit.OTPLimit,
		Window:     cfg.RateLimit.Window,
	}))

	// Create server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server error channel
	serverErrors := make(chan error, 1)

	// Start server
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	// Shutdown channel
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Wait for shutdown or error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig)

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"duration", time.Since(start),
					"status", ww.Status(),
					"size", ww.BytesWritten(),
					"requestID", chimw.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						"error", errors.New("panic recovered"),
						"panic", rvr,
						"stack", string(debug.Stack()),
						"requestID", chimw.GetReqID(r.Context()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"ok":false,"error":"Internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
