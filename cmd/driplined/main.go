// Package main is the entrypoint for the dripline daemon, the local
// hydration cache and sync service.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dripline/dripline/internal/config"
	"github.com/dripline/dripline/internal/goal"
	"github.com/dripline/dripline/internal/handler"
	"github.com/dripline/dripline/internal/ledger"
	"github.com/dripline/dripline/internal/metrics"
	"github.com/dripline/dripline/internal/middleware"
	"github.com/dripline/dripline/internal/remote"
	"github.com/dripline/dripline/internal/scheduler"
	"github.com/dripline/dripline/internal/server"
	"github.com/dripline/dripline/internal/stats"
	"github.com/dripline/dripline/internal/store"
	"github.com/dripline/dripline/internal/weather"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err, "db_path", cfg.DBPath)
		os.Exit(1)
	}
	defer st.Close()
	logger.Info("store opened", "db_path", cfg.DBPath)

	// Metrics: prometheus for /metrics, in-memory for the snapshot endpoint.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	inmem := metrics.NewInMemory()
	recorder := metrics.NewTee(metrics.NewPrometheus(registry), inmem)

	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.GeocodingBaseURL)
	weatherService := weather.NewService(st, weatherClient, logger, recorder)
	goalEngine := goal.NewEngine(st, weatherService, logger, recorder)
	aggregator := stats.NewAggregator(st, logger, recorder)

	remoteClient := remote.NewClient(cfg.RemoteBaseURL, st, logger)
	pushQueue := remote.NewQueue(remoteClient, logger, recorder)

	drinkLedger := ledger.New(st, goalEngine, aggregator, pushQueue, logger, recorder)
	pushQueue.SetOnLogged(func(dateKey, drinkID, remoteLogID string) {
		if err := drinkLedger.AttachRemoteLogID(dateKey, drinkID, remoteLogID); err != nil {
			logger.Warn("failed to attach remote log id", "drink_id", drinkID, "error", err)
		}
	})

	queueCtx, stopQueue := context.WithCancel(context.Background())
	go func() {
		if err := pushQueue.Run(queueCtx); err != nil && err != context.Canceled {
			logger.Error("push queue stopped", "error", err)
		}
	}()

	jobs, err := scheduler.New(scheduler.Config{
		ReconcileInterval: cfg.ReconcileInterval,
		WeatherInterval:   cfg.WeatherInterval,
	}, aggregator, goalEngine, weatherService, logger)
	if err != nil {
		logger.Error("failed to build scheduler", "error", err)
		os.Exit(1)
	}
	jobs.Start()

	// Handlers
	healthHandler := handler.NewHealthHandler(st)
	metricsHandler := handler.NewMetricsHandler(inmem)
	drinkHandler := handler.NewDrinkHandler(drinkLedger, logger)
	dayHandler := handler.NewDayHandler(drinkLedger, logger)
	statsHandler := handler.NewStatsHandler(aggregator, st, logger)
	goalHandler := handler.NewGoalHandler(goalEngine, st, logger)
	weatherHandler := handler.NewWeatherHandler(weatherService, weatherClient, st, logger)
	profileHandler := handler.NewProfileHandler(st, goalEngine, remoteClient, logger)
	authHandler := handler.NewAuthHandler(remoteClient, st, drinkLedger, aggregator, recorder, logger)

	r := setupRouter(routerDeps{
		health:   healthHandler,
		metrics:  metricsHandler,
		registry: registry,
		drinks:   drinkHandler,
		days:     dayHandler,
		stats:    statsHandler,
		goals:    goalHandler,
		weather:  weatherHandler,
		profile:  profileHandler,
		auth:     authHandler,
	}, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("scheduler", jobs.Shutdown)
	srv.OnShutdown("push queue", func(ctx context.Context) error {
		stopQueue()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"remote_enabled", cfg.RemoteEnabled(),
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

type routerDeps struct {
	health   *handler.HealthHandler
	metrics  *handler.MetricsHandler
	registry *prometheus.Registry
	drinks   *handler.DrinkHandler
	days     *handler.DayHandler
	stats    *handler.StatsHandler
	goals    *handler.GoalHandler
	weather  *handler.WeatherHandler
	profile  *handler.ProfileHandler
	auth     *handler.AuthHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health and metrics (no rate limit)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Method("GET", "/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))
	r.Get("/metrics/snapshot", deps.metrics.Metrics)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Enabled: cfg.RateLimitEnabled,
		RPS:     cfg.RateLimitRPS,
		Burst:   cfg.RateLimitBurst,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Post("/drinks", deps.drinks.Add)
		r.Delete("/drinks/{id}", deps.drinks.Remove)

		r.Route("/custom-drinks", func(r chi.Router) {
			r.Get("/", deps.drinks.ListCustomDrinks)
			r.Post("/", deps.drinks.CreateCustomDrink)
			r.Patch("/{id}", deps.drinks.UpdateCustomDrink)
			r.Delete("/{id}", deps.drinks.DeleteCustomDrink)
		})

		r.Get("/days", deps.days.List)
		r.Get("/days/{date}", deps.days.Get)
		r.Put("/days/{date}/goal", deps.days.SetGoal)

		r.Get("/stats", deps.stats.Get)
		r.Post("/stats/reconcile", deps.stats.Reconcile)

		r.Get("/goal", deps.goals.Get)
		r.Put("/goal", deps.goals.Set)

		r.Get("/preferences", deps.profile.GetPreferences)
		r.Put("/preferences", deps.profile.PutPreferences)
		r.Get("/profile", deps.profile.GetProfile)
		r.Put("/profile", deps.profile.PutProfile)

		r.Get("/weather", deps.weather.Current)
		r.Get("/weather/weekly", deps.weather.Weekly)
		r.Get("/weather/refresh-quota", deps.weather.RefreshQuota)
		r.Get("/locations/search", deps.weather.SearchLocations)
		r.Put("/location", deps.weather.SetLocation)

		r.Post("/auth/login", deps.auth.Login)
		r.Post("/auth/register", deps.auth.Register)
		r.Post("/auth/logout", deps.auth.Logout)
		r.Get("/sync/status", deps.auth.SyncStatus)
		r.Post("/sync/refresh", deps.auth.SyncRefresh)
	})

	// 404 and 405 handlers
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
