package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/platewise/mealplan-optimizer/config"
	"github.com/platewise/mealplan-optimizer/internal/api"
	"github.com/platewise/mealplan-optimizer/internal/audit"
	"github.com/platewise/mealplan-optimizer/internal/cache"
	"github.com/platewise/mealplan-optimizer/internal/database"
	"github.com/platewise/mealplan-optimizer/internal/optimizer"
	"github.com/platewise/mealplan-optimizer/internal/router"
	"github.com/platewise/mealplan-optimizer/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// Catalog source: database when configured, built-in recipes otherwise.
	var catalog optimizer.CatalogSource = optimizer.StaticCatalogSource{}
	if cfg.DatabaseDriver != "" {
		db, err := database.New(cfg)
		if err != nil {
			logger.Fatal("opening catalog database", zap.Error(err))
		}
		catalog = optimizer.NewGormCatalogSource(db)
		logger.Info("catalog database connected", zap.String("driver", cfg.DatabaseDriver))
	} else {
		logger.Warn("no database configured, serving built-in catalog")
	}

	// Result cache: shared Redis when configured, in-process otherwise.
	var store cache.Store = cache.NewMemory()
	if cfg.RedisAddr != "" || cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("connecting to Redis", zap.Error(err))
		}
		store = cache.NewRedis(client, "optimizer", logger)
		logger.Info("redis result cache connected")
	}

	sink := newAuditSink(cfg, logger)

	svc := optimizer.NewService(catalog, nil, store, sink, logger, optimizer.Config{
		SolveTimeLimit: cfg.SolveTimeLimit,
		CacheTTL:       cfg.CacheTTL,
	})

	handler := api.NewOptimizeHandler(svc, logger)
	engine := router.Setup(handler, cfg.AllowedOrigins, logger)
	srv := server.New(cfg.Addr(), engine, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Fatal("shutdown error", zap.Error(err))
	}
	logger.Info("stopped")
}

// newAuditSink prefers S3, then the local directory. A sink that cannot be
// set up degrades to the no-op sink rather than blocking startup.
func newAuditSink(cfg *config.Config, logger *zap.Logger) audit.Sink {
	if cfg.AuditS3Bucket != "" {
		sink, err := audit.NewS3Sink(context.Background(), cfg.AuditS3Bucket, cfg.AuditS3Prefix, cfg.AWSRegion)
		if err != nil {
			logger.Warn("S3 audit sink unavailable, auditing disabled", zap.Error(err))
			return audit.NopSink{}
		}
		logger.Info("auditing to S3", zap.String("bucket", cfg.AuditS3Bucket))
		return sink
	}
	if cfg.AuditDir != "" {
		sink, err := audit.NewFileSink(cfg.AuditDir)
		if err != nil {
			logger.Warn("file audit sink unavailable, auditing disabled", zap.Error(err))
			return audit.NopSink{}
		}
		return sink
	}
	return audit.NopSink{}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
