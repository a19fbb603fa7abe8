package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/config"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/handlers"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/hostinfo"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/metrics"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/middleware"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/repository"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/supervisor"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/tracing"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/wizard"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/logger"
	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/pkg/redis"
)

const serviceName = "cosmos-platform-api"

func main() {
	// Load configuration (.env first, then the environment)
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatal("Invalid configuration", "error", err)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting Cosmos Platform API", "version", handlers.Version, "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, log.Slog(), tracing.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: serviceName,
		Version:     handlers.Version,
		Environment: cfg.Environment,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}

	// Connect to database
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	repo, err := repository.Open(connectCtx, cfg.DatabaseURL, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	// Redis is optional: it backs rate limiting, drafts and the stats cache
	var rdb *redis.RedisClient
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("Redis unavailable, continuing without it", "error", err)
			rdb = nil
		} else {
			log.Info("Redis connected")
		}
	}

	var drafts wizard.DraftStore
	if rdb != nil {
		drafts = wizard.NewRedisStore(rdb, cfg.DraftTTL)
	} else {
		mem := wizard.NewMemoryStore(cfg.DraftTTL)
		go sweepDrafts(ctx, mem, log)
		drafts = mem
	}

	m := metrics.New()
	deployer := wizard.NewDeployer(repo, cfg.DeployPhaseInterval, log)
	deployer.SetObserver(m)

	sup, err := supervisor.Open(cfg.SupervisorMode, cfg.SupervisorConfig, cfg.DockerHost)
	if err != nil {
		log.Fatal("Failed to set up service supervisor", "mode", cfg.SupervisorMode, "error", err)
	}
	log.Info("Service supervisor ready", "mode", cfg.SupervisorMode)

	h := handlers.New(handlers.Deps{
		Repo:       repo,
		Wizard:     wizard.NewService(drafts, repo, deployer, log),
		Supervisor: sup,
		Host:       hostinfo.NewProcReader(),
		Redis:      rdb,
		Metrics:    m,
		Logger:     log,
	})

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET not set, /api routes are unauthenticated")
	}
	r := h.Router(handlers.RouterOptions{
		JWTSecret:   cfg.JWTSecret,
		RateLimiter: middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, log),
	})

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
	})

	var handler http.Handler = middleware.RequestLogger(log)(c.Handler(r))
	handler = otelhttp.NewHandler(handler, serviceName)

	srv := &http.Server{
		Handler:      handler,
		Addr:         cfg.Addr(),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	deployer.Shutdown()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Tracing shutdown failed", "error", err)
	}
	if rdb != nil {
		rdb.Close()
	}
	if err := repo.Close(); err != nil {
		log.Error("Database close failed", "error", err)
	}
	log.Info("Stopped")
}

func sweepDrafts(ctx context.Context, store *wizard.MemoryStore, log *logger.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug("Expired drafts removed", "count", n)
			}
		}
	}
}
