package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/LinkShelf/config"
	"github.com/sifan077/LinkShelf/internal/app/catalog"
	appmodel "github.com/sifan077/LinkShelf/internal/app/model"
	apprepository "github.com/sifan077/LinkShelf/internal/app/repository"
	appserver "github.com/sifan077/LinkShelf/internal/app/server"
	appservice "github.com/sifan077/LinkShelf/internal/app/service"
	"github.com/sifan077/LinkShelf/internal/infra/logger"
	infraNATS "github.com/sifan077/LinkShelf/internal/infra/nats"
	infraPostgres "github.com/sifan077/LinkShelf/internal/infra/postgres"
	infraPrometheus "github.com/sifan077/LinkShelf/internal/infra/prometheus"
	infraRedis "github.com/sifan077/LinkShelf/internal/infra/redis"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	isDev := cfg.App.IsDevelopment()
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       cfg.Log.Level,
		Encoding:    cfg.Log.Encoding,
		Service:     "linkshelf",
	})
	defer func() { _ = logger.Sync() }()

	log.Info("Configuration loaded successfully",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Bool("catalog_cache_disabled", cfg.Catalog.CacheDisabled),
	)

	if cfg.App.DevSessionsEnabled() {
		log.Warn("Dev sessions enabled, POST /api/dev/session mints tokens for any user")
	}
	if cfg.App.SessionSecret == "" {
		if !cfg.App.DevSessionsEnabled() {
			log.Fatal("SESSION_SECRET must be set unless dev sessions are enabled")
		}
		cfg.App.SessionSecret = uuid.NewString()
		log.Warn("SESSION_SECRET not set, using an ephemeral development secret")
	}

	collectionRepo, linkRepo, pool, closeStorage := openStorage(ctx, cfg, log)
	defer closeStorage()

	var redisClient *redis.Client
	if infraRedis.Enabled(cfg.Redis) {
		redisClient, err = infraRedis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("Connected to Redis successfully")
	} else {
		log.Info("Redis not configured, public catalog rate limiting disabled")
	}

	cache := catalog.NewCache(catalog.CacheOptions{
		TTL:        cfg.Catalog.CacheTTL,
		MaxEntries: cfg.Catalog.CacheMaxEntries,
		Disabled:   cfg.Catalog.CacheDisabled,
		Logger:     logger.Named("catalog.cache"),
	})
	catalogService := catalog.NewService(catalog.NewEngine(collectionRepo), cache, logger.Named("catalog"))

	var invalidator catalog.Invalidator = catalogService
	if infraNATS.Enabled(cfg.NATS) {
		natsConn, err := infraNATS.Connect(cfg.NATS, logger.Named("nats"))
		if err != nil {
			log.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsConn.Drain()

		origin := uuid.NewString()
		subject := cfg.NATS.InvalidationSubject
		invalidator = appservice.NewCatalogBroadcaster(catalogService, natsConn, subject, origin, logger.Named("catalog.broadcast"))

		consumer := appservice.NewCatalogInvalidationConsumer(natsConn, subject, origin, catalogService, logger.Named("catalog.consumer"))
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to subscribe to catalog invalidations", zap.Error(err))
		}
		defer consumer.Stop()
		log.Info("Connected to NATS successfully", zap.String("subject", subject), zap.String("origin", origin))
	} else {
		log.Info("NATS not configured, catalog invalidation stays local to this replica")
	}

	if cache.Enabled() {
		janitor := appservice.NewCatalogCacheJanitor(logger.Named("catalog.janitor"), cache, cfg.Catalog.SweepInterval)
		janitor.Start()
		defer janitor.Stop()
	}

	if !isDev {
		if err := infraPrometheus.RegisterBuildInfo(); err != nil {
			log.Warn("Failed to register build info collector", zap.Error(err))
		}
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	server := appserver.New(appserver.Dependencies{
		Logger:      logger.Named("http"),
		Config:      *cfg,
		Postgres:    pool,
		Redis:       redisClient,
		Collections: appservice.NewCollectionService(collectionRepo, invalidator),
		Links:       appservice.NewLinkService(collectionRepo, linkRepo, invalidator),
		Catalog:     catalogService,
	})

	go func() {
		<-ctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Info("Starting HTTP server", zap.String("addr", addr))
	if err := server.Listen(addr); err != nil {
		log.Error("Fiber server exited", zap.Error(err))
	}
}

// openStorage selects the repository backend. The pgx pool is returned only
// for the postgres driver and backs the readiness probe.
func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (apprepository.CollectionRepository, apprepository.LinkRepository, *pgxpool.Pool, func()) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("Using in-memory storage, data is lost on restart")
		store := apprepository.NewMemoryStore(nil)
		return store.Collections(), store.Links(), nil, func() {}
	}

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.Collection{}, &appmodel.Link{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	log.Info("Connected to Postgres successfully")

	return apprepository.NewCollectionRepository(gormDB), apprepository.NewLinkRepository(gormDB), pool, func() {
		pool.Close()
		_ = sqlDB.Close()
	}
}
