// Package main is the entrypoint for the Pontus API server.
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

	"github.com/pontus/pontus/internal/cache"
	"github.com/pontus/pontus/internal/config"
	"github.com/pontus/pontus/internal/handler"
	"github.com/pontus/pontus/internal/metrics"
	"github.com/pontus/pontus/internal/middleware"
	"github.com/pontus/pontus/internal/repository"
	"github.com/pontus/pontus/internal/server"
	"github.com/pontus/pontus/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

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
	logger.Info("connected to database")

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

	recorder := metrics.NewInMemory()

	intakeService := service.NewIntakeService(repo, recorder)
	directoryService := service.NewDirectoryService(repo, recorder)
	eventService := service.NewEventService(repo, recorder)
	personService := service.NewPersonService(repo, cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	scanHandler := handler.NewScanHandler(intakeService, logger)
	tagHandler := handler.NewTagHandler(directoryService, logger)
	eventHandler := handler.NewEventHandler(eventService, logger)
	personHandler := handler.NewPersonHandler(personService, logger)
	metricsHandler := handler.NewMetricsHandler(recorder)

	r := setupRouter(routerDeps{
		base:    h,
		health:  healthHandler,
		scans:   scanHandler,
		tags:    tagHandler,
		events:  eventHandler,
		persons: personHandler,
		metrics: metricsHandler,
		cache:   cacheClient,
		cfg:     cfg,
		logger:  logger,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

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

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
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

type routerDeps struct {
	base    *handler.Handler
	health  *handler.HealthHandler
	scans   *handler.ScanHandler
	tags    *handler.TagHandler
	events  *handler.EventHandler
	persons *handler.PersonHandler
	metrics *handler.MetricsHandler
	cache   *cache.Cache
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(deps.cfg.IsDevelopment()))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Metrics exposition
	r.Get("/metrics", deps.metrics.Metrics)

	authCfg := middleware.AuthConfig{
		Logger:    deps.logger,
		JWTSecret: deps.cfg.JWTSecret,
		JWTIssuer: deps.cfg.JWTIssuer,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:      deps.logger,
		Cache:       deps.cache,
		APIEnabled:  deps.cfg.RateLimitAPIEnabled,
		ScanEnabled: deps.cfg.RateLimitScanEnabled,
		ScanRPS:     deps.cfg.RateLimitScanRPS,
		ScanBurst:   deps.cfg.RateLimitScanBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface: reader intake and self-service auth.
		r.With(middleware.RateLimitIP(rateLimitCfg)).Post("/scans", deps.scans.Submit)
		r.Get("/tags/{uid}", deps.tags.Resolve)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.persons.Register)
			r.Post("/login", deps.persons.Login)
		})

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Use(middleware.RateLimitAPI(rateLimitCfg))

			r.Get("/events", deps.events.List)

			// Administrative surface.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin())

				r.Get("/events/export.csv", deps.events.ExportCSV)

				r.Post("/persons", deps.persons.Create)
				r.Get("/persons", deps.persons.List)
				r.Post("/persons/{id}/tags", deps.tags.Associate)
				r.Delete("/tags/{uid}", deps.tags.Disassociate)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

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
