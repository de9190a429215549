package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aevon-lab/storefront-signals/internal/catalog"
	corecfg "github.com/aevon-lab/storefront-signals/internal/core/config"
	"github.com/aevon-lab/storefront-signals/internal/core/storage"
	"github.com/aevon-lab/storefront-signals/internal/core/storage/memory"
	"github.com/aevon-lab/storefront-signals/internal/core/storage/postgres"
	"github.com/aevon-lab/storefront-signals/internal/ingestion"
	"github.com/aevon-lab/storefront-signals/internal/migrations"
	"github.com/aevon-lab/storefront-signals/internal/projection"
	"github.com/aevon-lab/storefront-signals/internal/recommendation"
	"github.com/aevon-lab/storefront-signals/internal/server"
)

func main() {
	configPath := flag.String("config", "signals.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	if _, err := os.Stat(*configPath); err != nil {
		slog.Warn("Config file not found, using defaults and env", "path", *configPath)
		*configPath = ""
	}
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"addr", cfg.Server.Addr(),
		"database_type", cfg.Database.Type,
		"catalog_source", cfg.Catalog.SourceType,
		"redis_enabled", cfg.Redis.Enabled)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Storage
	var (
		store      storage.RecordStore
		health     server.HealthChecker
		dbAdapter  *postgres.Adapter
		productSrc catalog.Source
	)

	switch cfg.Database.Type {
	case "postgres":
		dbAdapter, err = postgres.NewAdapter(cfg.Database.DSN, postgres.Options{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			QueryTimeout: cfg.Database.QueryTimeout,
		})
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer dbAdapter.Close()

		// 2.1. Run Database Migrations
		if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		if err := dbAdapter.Prepare(); err != nil {
			slog.Error("Failed to prepare database adapter", "error", err)
			os.Exit(1)
		}

		store = dbAdapter
		health = dbAdapter
	default:
		slog.Warn("Using in-memory interaction store - records are lost on restart")
		store = memory.NewRecordStore()
	}

	// 3. Initialize Product Catalog
	switch cfg.Catalog.SourceType {
	case "filesystem":
		fsSource, err := catalog.NewFileSystemSource(cfg.Catalog.Path)
		if err != nil {
			slog.Error("Failed to load product catalog", "error", err)
			os.Exit(1)
		}
		productSrc = fsSource
	default:
		productSrc = postgres.NewProductAdapter(dbAdapter.DB(), cfg.Database.QueryTimeout)
	}
	resolver := catalog.NewResolver(productSrc, cfg.Catalog.CacheCapacity)

	refresherDone := make(chan error, 1)
	if cfg.Catalog.RefreshInterval > 0 {
		refresher := catalog.NewRefresher(cfg.Catalog.RefreshInterval, productSrc, resolver)
		go func() { refresherDone <- refresher.Start(ctx) }()
	} else {
		refresherDone <- nil
	}

	// 4. Initialize Ingestion
	ingestionSvc := ingestion.NewService(store, resolver, ingestion.Options{
		MaxBodySizeMB:     cfg.Server.MaxBodySizeMB,
		MaxUpsertAttempts: cfg.Ingestion.MaxUpsertAttempts,
		BatchConcurrency:  cfg.Ingestion.BatchConcurrency,
		MaxBatchLines:     cfg.Ingestion.MaxBatchLines,
	})

	// 5. Initialize Projection (read API)
	projectionSvc := projection.NewService(store)

	// 6. Initialize Recommendations proxy
	var recCache recommendation.Cache
	if cfg.Redis.Enabled {
		redisClient, err := recommendation.NewRedisClient(ctx, recommendation.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		recCache = recommendation.NewRedisCache(redisClient)
	}
	recommendationSvc := recommendation.NewService(
		recommendation.NewClient(cfg.Recommendations.BaseURL, cfg.Recommendations.Timeout),
		recCache,
		cfg.Recommendations.CacheTTL,
	)

	// 7. Initialize Server
	srv := server.New(cfg.Server.Addr(), health, server.Options{
		Mode:           cfg.Server.Mode,
		MetricsEnabled: cfg.Metrics.Enabled,
	})
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)
	recommendationSvc.RegisterRoutes(srv.Engine)

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	<-refresherDone
	slog.Info("Shutdown complete")
}
