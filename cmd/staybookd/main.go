package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/engine"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	"staybook/internal/infra/audit"
	"staybook/internal/infra/broker/kafka"
	rediscache "staybook/internal/infra/cache/redis"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	"staybook/internal/infra/fixtures"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	outboxrelay "staybook/internal/infra/outbox"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		slog.Warn("dotenv load failed", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if cfg.FixturesPath != "" {
		if err := app.seed(ctx, cfg, logger); err != nil {
			logger.Error("fixtures load failed", "error", err, "path", cfg.FixturesPath)
			os.Exit(1)
		}
	}

	for _, run := range app.background {
		go func(run func(context.Context) error) {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("background worker stopped", "error", err)
			}
		}(run)
	}

	obsMW := obs.Middleware{Logger: logger}
	server := ginserver.NewServer(cfg, obsMW, obs.HealthHandlers{Checks: app.checks}, ginserver.NewHandlers(app.engine, obsMW))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode, "idempotency", cfg.IdempotencyBackend)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	engine     *engine.Engine
	factory    uow.UoWFactory
	checks     map[string]obs.Check
	background []func(context.Context) error
	closers    []func(context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]obs.Check{}}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, kafka.NewConfig("staybook"))
		if err != nil {
			return nil, err
		}
		producer = p
		app.closers = append(app.closers, func(context.Context) error { return p.Close() })
	}
	relay := outboxrelay.Relay{TopicPrefix: cfg.KafkaTopicPrefix, Source: "app://staybook"}
	if producer != nil {
		relay.Producer = producer
	}

	var (
		box   appoutbox.Outbox
		idemp middleware.IdempotencyStore
	)
	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			app.close(logger)
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		app.checks["mongo"] = client.Ping
		factory, err := mongodb.NewFactory(ctx, client.DB)
		if err != nil {
			app.close(logger)
			return nil, err
		}
		app.factory = factory
		store := outboxrelay.NewStore(client.DB)
		box = store
		if producer != nil {
			worker := &outboxrelay.Worker{
				Store:    store,
				Relay:    relay,
				Interval: cfg.OutboxPollInterval,
				Backoff:  cfg.RetryBackoff,
				Logger:   logger,
			}
			app.background = append(app.background, worker.Run)
		} else {
			logger.Warn("KAFKA_BROKERS empty, outbox records stay in Mongo until a relay runs")
		}
		if cfg.IdempotencyBackend == config.IdempotencyMongo {
			idemp = mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		}
	default:
		store := memory.NewStore()
		app.factory = memory.Factory{Store: store}
		var publisher memory.Publisher
		if producer != nil {
			publisher = relay
		}
		box = memory.NewOutbox(store, publisher, logger)
	}

	switch cfg.IdempotencyBackend {
	case config.IdempotencyRedis:
		rdb, err := rediscache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			app.close(logger)
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
		app.checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		idemp = rediscache.NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
	case config.IdempotencyMemory:
		idemp = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	}

	sinks := audit.Fanout{audit.LogSink{Logger: logger}}
	if producer != nil && cfg.AuditTopic != "" {
		sinks = append(sinks, audit.KafkaSink{Producer: producer, Topic: cfg.AuditTopic})
	}

	app.engine = engine.New(engine.Deps{
		UoWFactory:    app.factory,
		Outbox:        box,
		Encoder:       appoutbox.JSONEventEncoder{},
		Idempotency:   idemp,
		Validator:     validation.New(),
		Audit:         sinks,
		Logger:        logger,
		WriteAttempts: cfg.WriteRetries,
	})
	return app, nil
}

func (a *application) seed(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if cfg.StorageMode != config.StorageMemory {
		logger.Warn("FIXTURES_PATH ignored outside memory storage", "storage", cfg.StorageMode)
		return nil
	}
	f, err := fixtures.Load(cfg.FixturesPath)
	if err != nil {
		return err
	}
	return fixtures.Seed(ctx, a.factory, a.engine, f, cfg.DefaultCurrency, logger)
}

func (a *application) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil
}
