package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/TemirB/satrec-registry/internal/application/handler"
	"github.com/TemirB/satrec-registry/internal/application/service"
	"github.com/TemirB/satrec-registry/internal/cache"
	"github.com/TemirB/satrec-registry/internal/config"
	"github.com/TemirB/satrec-registry/internal/database"
	"github.com/TemirB/satrec-registry/internal/httpapi"
	"github.com/TemirB/satrec-registry/internal/kafka"
	"github.com/TemirB/satrec-registry/internal/memstore"
	"github.com/TemirB/satrec-registry/internal/observability"
	"github.com/TemirB/satrec-registry/internal/orbit"
	"github.com/TemirB/satrec-registry/internal/pkg/breaker"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("satrec-registry stopped with error", zap.Error(err))
	}
	logger.Info("satrec-registry stopped")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewPrometheus(reg)

	// Storage
	var storage service.Storage
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; records are lost on restart")
		storage = memstore.New()
	default:
		pool, err := database.Connect(ctx, cfg.DSN(), logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := database.New(pool, cfg.Tables)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		storage = repo
	}

	// Cache
	c, err := cache.New(cfg.CacheCap)
	if err != nil {
		return err
	}
	n, err := c.Warm(ctx, storage)
	if err != nil {
		logger.Warn("Cache warm-up failed, starting cold", zap.Error(err))
	} else {
		logger.Info("Cache warmed", zap.Int("satellites", n), zap.Int("capacity", cfg.CacheCap))
	}

	// Service
	deriver, err := orbit.NewDeriver(cfg.Orbit.GravityModel)
	if err != nil {
		return err
	}
	svc := service.NewService(deriver, c, storage, logger, metrics,
		service.WithBulkWorkers(cfg.Orbit.BulkWorkers),
	)

	var wg sync.WaitGroup

	// Kafka
	if cfg.Kafka.Enabled() {
		if err := kafka.EnsureTopic(ctx, cfg.Kafka, logger); err != nil {
			return err
		}
		reader := kafka.NewReader(cfg.Kafka)
		defer func() {
			if err := reader.Close(); err != nil {
				logger.Warn("kafka reader close", zap.Error(err))
			}
		}()

		h := handler.NewHandler(svc, breaker.New(cfg.Breaker), cfg.Retry, logger, metrics)
		consumer := kafka.NewConsumer(h, reader, cfg.Kafka.Workers, logger)

		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(ctx)
		}()
	} else {
		logger.Info("KAFKA_BROKERS is empty, catalog ingestion over Kafka is off")
	}

	// HTTP
	server := httpapi.New(svc, logger, metrics, observability.Handler(reg))
	err = server.ListenAndServe(ctx, cfg.HTTPAddr)

	// The consumer only stops with the context.
	cancel()
	wg.Wait()
	return err
}
