// Package main is the entry point of the gradebook API server.
//
// The server keeps all records in memory. Redis, when enabled, only caches
// computed reports (GPA transcripts and course averages); losing it never
// loses data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alem-hub/gradebook/config"
	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/eventhandler"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/infrastructure/messaging"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/gradebook/internal/infrastructure/scheduler"
	"github.com/alem-hub/gradebook/internal/infrastructure/scheduler/jobs"
	httpapi "github.com/alem-hub/gradebook/internal/interface/http"
	"github.com/alem-hub/gradebook/internal/interface/http/handlers"
	"github.com/alem-hub/gradebook/pkg/circuitbreaker"
	"github.com/alem-hub/gradebook/pkg/logger"
	"github.com/alem-hub/gradebook/pkg/retry"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting gradebook",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	eventBus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{
		AsyncMode:      cfg.Events.Async,
		WorkerPoolSize: cfg.Events.WorkerPoolSize,
		Logger:         log,
		EnableMetrics:  true,
	})
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REPORT CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)

	var reportCache records.ReportCache
	if cfg.Redis.Disabled {
		log.Info("report cache disabled")
	} else {
		cache, err := connectRedis(ctx, cfg, log)
		if err != nil {
			// Reports are recomputed from the store; run without the cache.
			log.Warn("failed to connect to Redis, report cache disabled", "error", err)
		} else {
			defer func() {
				log.Info("closing Redis connection...")
				_ = cache.Close()
			}()

			breaker := circuitbreaker.ReportCacheBreaker(func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			})
			reportCache = redis.NewReportCache(cache, breaker, log)
			health.AddOptionalCheck("report_cache", handlers.NewPingCheck(cache))

			if err := eventhandler.NewReportInvalidator(reportCache, log).Register(eventBus); err != nil {
				return fmt.Errorf("failed to register report invalidator: %w", err)
			}
			log.Info("report cache enabled", "ttl", cfg.Reports.CacheTTL.String())
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION
	// ─────────────────────────────────────────────────────────────────────────
	store := records.NewStore()

	var sched *scheduler.Scheduler
	if reportCache != nil && cfg.Reports.WarmupInterval > 0 {
		sched = scheduler.New(scheduler.Config{Logger: log})
		job := jobs.NewWarmReportsJob(store, reportCache, cfg.Reports.CacheTTL, log)
		if err := sched.Register(job, scheduler.Every(cfg.Reports.WarmupInterval)); err != nil {
			return fmt.Errorf("failed to register %s job: %w", job.Name(), err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	deps := httpapi.Dependencies{
		AddStudentHandler:       command.NewAddStudentHandler(store, eventBus, log),
		RemoveStudentHandler:    command.NewRemoveStudentHandler(store, eventBus, log),
		AddCourseHandler:        command.NewAddCourseHandler(store, eventBus, log),
		RemoveCourseHandler:     command.NewRemoveCourseHandler(store, eventBus, log),
		RecordGradeHandler:      command.NewRecordGradeHandler(store, eventBus, log),
		GetStudentGPAHandler:    query.NewGetStudentGPAHandler(store, reportCache, cfg.Reports.CacheTTL, log),
		GetCourseAverageHandler: query.NewGetCourseAverageHandler(store, reportCache, cfg.Reports.CacheTTL, log),
		Reader:                  query.NewReader(store),
		EventMetrics:            eventBus.Metrics(),
		HealthChecker:           health,
		Scheduler:               sched,
		Logger: logger.New(logger.Options{
			Output:    os.Stdout,
			Level:     logger.ParseLevel(cfg.Observability.LogLevel),
			AddCaller: cfg.App.Debug,
		}),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	server, err := httpapi.NewServer(httpapi.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		Version:        cfg.App.Version,
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := server.StartAsync()
	log.Info("gradebook is running", "address", server.Address())

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return errors.New("HTTP server stopped unexpectedly")
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// connectRedis dials Redis, retrying while it comes up.
func connectRedis(ctx context.Context, cfg *config.Config, log *slog.Logger) (*redis.Cache, error) {
	redisCfg := redis.DefaultConfig()
	redisCfg.URL = cfg.Redis.URL
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout
	redisCfg.Namespace = cfg.Redis.Namespace

	log.Info("connecting to Redis...")

	var cache *redis.Cache
	retrier := retry.Startup(func(attempt int, err error, delay time.Duration) {
		log.Warn("Redis not reachable, retrying", "attempt", attempt, "delay", delay.String(), "error", err)
	})
	err := retrier.Do(ctx, func(ctx context.Context) error {
		c, err := redis.NewCache(ctx, redisCfg)
		if err != nil {
			return err
		}
		cache = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Redis connection established")
	return cache, nil
}

// setupLogger configures structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Observability.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if cfg.App.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Observability.LogFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
