package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrperf/internal/domain/audit"
	"hrperf/internal/domain/performance"
	"hrperf/internal/platform/config"
	"hrperf/internal/platform/db"
	"hrperf/internal/platform/jobs"
	"hrperf/internal/platform/lock"
	"hrperf/internal/platform/metrics"
	audithandler "hrperf/internal/transport/http/handlers/audit"
	performancehandler "hrperf/internal/transport/http/handlers/performance"
	"hrperf/internal/transport/http/middleware"
)

type App struct {
	Config      config.Config
	DB          *pgxpool.Pool
	Router      http.Handler
	Performance *performance.Service
	Jobs        *jobs.Service
	Metrics     *metrics.Collector
	Logger      *slog.Logger

	locker *lock.RedisLocker
}

// New connects to Postgres, applies migrations, seeds the review catalog and
// wires the HTTP router and job service.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}
	app := &App{Config: cfg, DB: pool, Logger: logger}

	if err := app.init(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, a.DB, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}
	if tenantID, err := db.EnsureTenant(ctx, a.DB, cfg.SeedTenantName); err != nil {
		return fmt.Errorf("seed tenant failed: %w", err)
	} else if tenantID != "" {
		a.Logger.Info("seed tenant ready", "tenantId", tenantID)
	}

	if cfg.MetricsEnabled {
		a.Metrics = metrics.New()
	}

	opts := []performance.Option{performance.WithMetrics(metricsOrNil(a.Metrics))}
	if cfg.ScheduleLockRedisAddr != "" {
		locker, err := lock.NewRedis(ctx, cfg.ScheduleLockRedisAddr, cfg.ScheduleLockRedisPassword)
		if err != nil {
			return err
		}
		a.locker = locker
		opts = append(opts, performance.WithRunLocker(locker, cfg.ScheduleLockTTL))
	}

	store := performance.NewStore(a.DB)
	auditLog := audit.New(a.DB)
	a.Performance = performance.NewService(store, auditLog, opts...)

	if err := a.seedCatalog(ctx, store); err != nil {
		return err
	}

	a.Jobs = jobs.New(store, a.Performance, jobs.NewPgRunRecorder(a.DB), jobMetricsOrNil(a.Metrics), cfg.AutoScheduleInterval)
	a.Router = NewRouter(cfg, a.Performance, auditLog, a.Metrics, a.DB.Ping, a.Logger)
	return nil
}

func (a *App) seedCatalog(ctx context.Context, tenants jobs.TenantLister) error {
	if a.Config.ReviewCatalogFile == "" {
		return nil
	}
	cat, err := performance.LoadCatalog(a.Config.ReviewCatalogFile)
	if err != nil {
		return fmt.Errorf("review catalog: %w", err)
	}
	tenantIDs, err := tenants.ListTenantIDs(ctx)
	if err != nil {
		return fmt.Errorf("review catalog tenants: %w", err)
	}
	for _, tenantID := range tenantIDs {
		created, err := a.Performance.SeedCatalog(ctx, tenantID, cat)
		if err != nil {
			return fmt.Errorf("seed review catalog for tenant %s: %w", tenantID, err)
		}
		if created > 0 {
			a.Logger.Info("review catalog seeded", "tenantId", tenantID, "created", created)
		}
	}
	return nil
}

// metricsOrNil avoids handing a typed nil collector to an interface.
func metricsOrNil(c *metrics.Collector) performance.Metrics {
	if c == nil {
		return nil
	}
	return c
}

func jobMetricsOrNil(c *metrics.Collector) jobs.Metrics {
	if c == nil {
		return nil
	}
	return c
}

// NewRouter builds the HTTP surface. auditLog and collector may be nil; a nil
// collector disables /metrics and request metrics.
func NewRouter(cfg config.Config, svc *performance.Service, auditLog audithandler.EntryLister, collector *metrics.Collector, ready func(context.Context) error, logger *slog.Logger) http.Handler {
	var recorder middleware.RequestRecorder
	if collector != nil {
		recorder = collector
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger, recorder))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if ready != nil {
			if err := ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		performancehandler.NewHandler(svc).RegisterRoutes(r)
		if auditLog != nil {
			audithandler.NewHandler(auditLog).RegisterRoutes(r)
		}
	})
	return router
}

// Run serves HTTP and runs background jobs until ctx is cancelled, then shuts
// both down.
func (a *App) Run(ctx context.Context) error {
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer func() {
		cancelJobs()
		a.Jobs.Wait()
	}()
	a.Jobs.Start(jobCtx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	a.Logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.locker != nil {
		if err := a.locker.Close(); err != nil {
			a.Logger.Warn("redis close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
