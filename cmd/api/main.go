// waypoint | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/waypointhq/waypoint/internal/config"
	"github.com/waypointhq/waypoint/internal/core"
	"github.com/waypointhq/waypoint/internal/geomap"
	"github.com/waypointhq/waypoint/internal/group"
	"github.com/waypointhq/waypoint/internal/health"
	"github.com/waypointhq/waypoint/internal/identity"
	"github.com/waypointhq/waypoint/internal/membership"
	"github.com/waypointhq/waypoint/internal/middleware"
	"github.com/waypointhq/waypoint/internal/ops"
	"github.com/waypointhq/waypoint/internal/server"
	"github.com/waypointhq/waypoint/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("generate-keys", false, "generate a dev keypair and exit")
	flag.Parse()

	if *genKeys {
		if err := generateDevKeys(*configPath); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func generateDevKeys(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := identity.GenerateKeyPair(
		cfg.JWT.PrivateKeyPath,
		cfg.JWT.PublicKeyPath,
	); err != nil {
		return err
	}

	slog.Info("keypair written",
		"private", cfg.JWT.PrivateKeyPath,
		"public", cfg.JWT.PublicKeyPath,
	)
	return nil
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	verifier, err := identity.NewVerifier(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token verifier initialized",
		"algorithm", "ES256",
		"key_id", verifier.KeyID(),
	)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	membershipRepo := membership.NewRepository(db.DB)
	resolver := membership.NewResolver(
		membershipRepo,
		cfg.Cache.MaxEntries,
		cfg.Cache.MembershipTTL,
	)

	viewCounter := geomap.NewRedisViewCounter(redis.Client)
	geomapSvc := geomap.NewService(
		geomap.NewTxRunner(db.DB),
		geomap.NewRepository(db.DB),
		resolver,
		cfg.Cache.MaxEntries,
		cfg.Cache.MapListTTL,
		viewCounter,
	)
	geomapHandler := geomap.NewHandler(geomapSvc)

	groupSvc := group.NewService(
		group.NewTxRunner(db.DB),
		group.NewRepository(db.DB),
		membershipRepo,
		resolver,
		userSvc,
		geomapSvc,
		group.NewLogNotifier(logger),
	)
	groupHandler := group.NewHandler(groupSvc)

	healthHandler := health.NewHandler(db, redis)

	opsHandler := ops.NewHandler(ops.HandlerConfig{
		Token:      cfg.Ops.Token,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		CacheSizes: map[string]func() int{
			"memberships": resolver.CacheLen,
			"map_lists":   geomapSvc.MapListCacheLen,
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)
	opsHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", verifier.JWKSHandler())

	// Authenticated routes get the plan-tiered per-user limit on top of
	// the global one. The tier comes from the best plan among the
	// caller's groups, so it rides the same memoized membership lookup
	// the authorization checks use.
	planFor := func(ctx context.Context, userID string) string {
		memberships, err := resolver.Resolve(ctx, userID)
		if err != nil {
			return group.PlanFree
		}

		now := time.Now()
		for _, m := range memberships {
			if group.PlanTag(m.PlanName, m.PlanEndDate, now) == group.PlanPro {
				return group.PlanPro
			}
		}
		return group.PlanFree
	}

	tiered := middleware.TieredRateLimiter(
		redis.Client,
		middleware.DefaultTiers,
		planFor,
	)
	authBase := middleware.Authenticator(verifier)
	authenticated := func(next http.Handler) http.Handler {
		return authBase(tiered(next))
	}

	router.Route("/v1", func(r chi.Router) {
		geomapHandler.RegisterPublicRoutes(r)

		userHandler.RegisterRoutes(r, authenticated)
		groupHandler.RegisterRoutes(r, authenticated)
		geomapHandler.RegisterRoutes(r, authenticated)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
