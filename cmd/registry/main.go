package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/schemahub/pkg/api"
	"github.com/platinummonkey/schemahub/pkg/auth"
	"github.com/platinummonkey/schemahub/pkg/config"
	"github.com/platinummonkey/schemahub/pkg/idempotency"
	"github.com/platinummonkey/schemahub/pkg/lock"
	"github.com/platinummonkey/schemahub/pkg/middleware"
	"github.com/platinummonkey/schemahub/pkg/notifier"
	"github.com/platinummonkey/schemahub/pkg/observability"
	"github.com/platinummonkey/schemahub/pkg/orgs"
	"github.com/platinummonkey/schemahub/pkg/policy"
	"github.com/platinummonkey/schemahub/pkg/publisher"
	"github.com/platinummonkey/schemahub/pkg/purge"
	"github.com/platinummonkey/schemahub/pkg/storage"
	"github.com/platinummonkey/schemahub/pkg/storage/postgres"
	"github.com/platinummonkey/schemahub/pkg/usage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	logger.Info("Starting schema registry")
	logger.Infof("Storage type: %s", cfg.Storage.Type)

	ctx := context.Background()
	otelProviders, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize OpenTelemetry")
	}

	var store storage.Storage
	var pgStore *postgres.PostgresStorage
	switch cfg.Storage.Type {
	case "postgres", "hybrid":
		pgStore, err = postgres.NewPostgresStorage(cfg.Storage)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize PostgreSQL storage")
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
		store = pgStore
		logger.Info("PostgreSQL storage initialized")
	default:
		log.Fatalf("Unknown storage type: %s (the registry requires postgres or hybrid for org/target persistence)", cfg.Storage.Type)
	}

	var redisClient *redis.Client
	if redisWrapper := pgStore.GetRedis(); redisWrapper != nil {
		redisClient = redisWrapper.GetClient()
	} else if cfg.Storage.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Storage.RedisURL})
	} else {
		log.Fatalf("a Redis connection is required for distributed locking and idempotency (set SCHEMAHUB_REDIS_URL)")
	}

	idem, err := idempotency.New(redisClient, cfg.Registry.IdempotencyWindow)
	if err != nil {
		log.Fatalf("Failed to initialize idempotency cache: %v", err)
	}

	notifyManager := notifier.NewManager()
	notifyManager.StartRetryWorker(ctx)

	orgsSvc := orgs.NewPostgresService(pgStore.GetDB())

	authorizer := auth.NewHeaderAuthorizer(loadStaticTokens())

	pub := publisher.New(publisher.Deps{
		Store:         store,
		Locker:        lock.New(redisClient, cfg.Registry.LockTTL),
		Idempotency:   idem,
		Authorizer:    authorizer,
		Notifier:      notifyManager,
		PolicyEngine:  policy.NewLocalEngine(),
		Oracle:        usage.NoopOracle{},
		Orgs:          orgsSvc,
		RetentionDays: int(cfg.Registry.SchemaCheckRetention / (24 * time.Hour)),
	})

	purgeWorker := purge.New(store, purge.WithSchedule(cfg.Registry.PurgeCronSchedule))
	if err := purgeWorker.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start schema check purge worker")
	} else {
		logger.Info("Schema check purge worker started")
	}

	server := api.NewServer(pub, orgsSvc, store, authorizer)

	var handler http.Handler = authorizer.Middleware(server)
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "schemahub-registry",
			otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
		)
		logger.Info("OpenTelemetry HTTP instrumentation enabled")
	}
	orgLimiter := middleware.NewOrgRateLimitMiddleware(redisClient, 1000, time.Minute)
	handler = orgLimiter.Handler(handler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthChecker := observability.NewHealthChecker(pgStore.GetDB(), redisClient)
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, healthChecker)

	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Infof("Starting health/metrics server on port %s", cfg.Server.HealthPort)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Health server failed")
		}
	}()

	shutdownManager := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		logger.Info("Shutting down health server")
		return healthServer.Shutdown(ctx)
	})
	shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
		purgeWorker.Stop()
		return nil
	})
	if otelProviders != nil {
		shutdownManager.RegisterShutdownFunc(func(ctx context.Context) error {
			logger.Info("Shutting down OpenTelemetry")
			return observability.ShutdownOTel(ctx, otelProviders, logger)
		})
	}

	go func() {
		logger.Infof("Starting registry API server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	logger.Info("Server started successfully, waiting for shutdown signal")
	if err := shutdownManager.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
		os.Exit(1)
	}

	logger.Info("Server shutdown complete")
}

// loadStaticTokens parses REGISTRY_AUTH_TOKENS, a comma-separated list of
// token:role:org_id:user_id entries, into the static table HeaderAuthorizer
// checks incoming bearer tokens against.
func loadStaticTokens() map[string]auth.AuthContext {
	raw := os.Getenv("REGISTRY_AUTH_TOKENS")
	tokens := map[string]auth.AuthContext{}
	if raw == "" {
		return tokens
	}
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 {
			continue
		}
		authCtx := auth.AuthContext{Role: auth.Role(parts[1])}
		if len(parts) > 2 {
			authCtx.OrganizationID = parts[2]
		}
		if len(parts) > 3 {
			authCtx.UserID = parts[3]
		}
		tokens[parts[0]] = authCtx
	}
	return tokens
}
