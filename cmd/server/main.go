package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"taskhub/internal/db"
	authdomain "taskhub/internal/domain/auth"
	"taskhub/internal/domain/planning"
	"taskhub/internal/domain/reports"
	"taskhub/internal/domain/scoring"
	"taskhub/internal/domain/task"
	"taskhub/internal/platform/config"
	"taskhub/internal/platform/jobs"
	"taskhub/internal/platform/metrics"
	"taskhub/internal/transport/http/api"
	authhandler "taskhub/internal/transport/http/handlers/auth"
	planninghandler "taskhub/internal/transport/http/handlers/planning"
	reportshandler "taskhub/internal/transport/http/handlers/reports"
	scoringhandler "taskhub/internal/transport/http/handlers/scoring"
	taskhandler "taskhub/internal/transport/http/handlers/task"
	"taskhub/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	collector := metrics.New()

	authStore := authdomain.NewStore(pool)
	authService := authdomain.NewService(authStore, cfg.JWTSecret)
	taskService := task.NewService(task.NewStore(pool))
	planningService := planning.NewService(planning.NewStore(pool))
	scoringService := scoring.NewService(scoring.NewStore(pool))
	reportsService := reports.NewService(reports.NewStore(pool), cfg.ReportsDir)
	jobsService := jobs.New(pool, cfg, scoringService, collector)
	jobsService.Start(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService).RegisterRoutes(r)
		taskhandler.NewHandler(taskService, authStore).RegisterRoutes(r)
		planninghandler.NewHandler(planningService, authStore).RegisterRoutes(r)
		scoringhandler.NewHandler(scoringService, jobsService, authStore).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, authStore).RegisterRoutes(r)
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "err", err)
	}
}
