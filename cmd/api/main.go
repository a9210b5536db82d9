// Package main is the entrypoint for the Pathwise API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pathwise/pathwise/internal/cache"
	"github.com/pathwise/pathwise/internal/config"
	"github.com/pathwise/pathwise/internal/handler"
	"github.com/pathwise/pathwise/internal/identity"
	"github.com/pathwise/pathwise/internal/insight"
	"github.com/pathwise/pathwise/internal/metrics"
	"github.com/pathwise/pathwise/internal/middleware"
	"github.com/pathwise/pathwise/internal/repository"
	"github.com/pathwise/pathwise/internal/server"
	"github.com/pathwise/pathwise/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	repo.SetTxTimeout(cfg.TxTimeout)
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	recorder := metrics.NewInMemory()
	idpClient := identity.New(cfg.IdentityAPIURL, cfg.IdentityAPIKey)
	generator := insight.NewHTTPGenerator(cfg.InsightAPIURL)
	resolver := service.NewResolver(repo, idpClient, logger, recorder)
	insightCache := service.NewInsightCache(repo, generator, recorder)
	profileService := service.NewProfileService(resolver, insightCache, repo, repo, cacheClient, logger, recorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	profileHandler := handler.NewProfileHandler(profileService, logger)
	metricsHandler := handler.NewMetricsHandler(recorder)

	// Setup router
	r := setupRouter(h, healthHandler, profileHandler, metricsHandler, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	profileHandler *handler.ProfileHandler,
	metricsHandler *handler.MetricsHandler,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info and debug endpoints
	r.Get("/", h.Hello)
	r.Get("/metrics", metricsHandler.Snapshot)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Secret: []byte(cfg.SessionJWTSecret),
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Cache:   cacheClient,
		Enabled: cfg.RateLimitEnabled,
		RPM:     cfg.RateLimitRPM,
		Burst:   cfg.RateLimitBurst,
	}

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/status", profileHandler.OnboardingStatus)
			r.With(middleware.RateLimit(rateLimitCfg)).Put("/", profileHandler.Update)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
