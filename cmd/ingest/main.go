package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/rodeoai/ingest/internal/analytics"
	"github.com/rodeoai/ingest/internal/config"
	"github.com/rodeoai/ingest/internal/dedup"
	"github.com/rodeoai/ingest/internal/dlq"
	"github.com/rodeoai/ingest/internal/handlers"
	"github.com/rodeoai/ingest/internal/logging"
	"github.com/rodeoai/ingest/internal/parser"
	"github.com/rodeoai/ingest/internal/pipeline"
	"github.com/rodeoai/ingest/internal/pushclient"
	"github.com/rodeoai/ingest/internal/reviewqueue"
	"github.com/rodeoai/ingest/internal/server"
	"github.com/rodeoai/ingest/internal/triage"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("ingest-gateway"))
	logging.SetDefault(logger)

	slog.Info("Starting ingestion gateway",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("downstream_url", cfg.Downstream.URL),
	)
	if cfg.Auth.APIKey == "" {
		slog.Warn("No API key configured; request authentication disabled")
	}

	// Initialize the fingerprint registry
	var dedupStore dedup.Store
	switch cfg.Dedup.Backend {
	case "redis":
		store, err := dedup.NewRedisStore(cfg.Dedup.RedisURL, cfg.Dedup.KeyPrefix)
		if err != nil {
			log.Fatalf("Failed to connect to Redis dedup store: %v", err)
		}
		dedupStore = store
		slog.Info("Dedup registry backed by Redis", slog.String("url", cfg.Dedup.RedisURL))
	case "memory", "":
		dedupStore = dedup.NewMemoryStore()
		slog.Info("Dedup registry in memory; fingerprints reset on restart")
	default:
		log.Fatalf("Unknown dedup backend: %s (supported: memory, redis)", cfg.Dedup.Backend)
	}
	defer dedupStore.Close()

	// Initialize the review queue
	var reviews reviewqueue.Queue
	switch cfg.ReviewQueue.Backend {
	case "postgres":
		slog.Info("Running review queue migrations")
		m, err := migrate.New("file://migrations", cfg.ReviewQueue.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		pgQueue, err := reviewqueue.NewPostgresQueue(context.Background(), cfg.ReviewQueue.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL review queue: %v", err)
		}
		reviews = pgQueue
		slog.Info("Review queue backed by PostgreSQL")
	case "memory", "":
		reviews = reviewqueue.NewMemoryQueue()
		slog.Info("Review queue in memory; entries reset on restart")
	default:
		log.Fatalf("Unknown review queue backend: %s (supported: memory, postgres)", cfg.ReviewQueue.Backend)
	}
	defer reviews.Close()

	// Initialize the dead letter queue for failed pushes
	var dlqWriter dlq.Writer = dlq.NopWriter{}
	if cfg.DLQ.Enabled {
		jsQueue, err := dlq.NewJetStreamQueue(context.Background(), cfg.DLQ.NatsURL)
		if err != nil {
			log.Fatalf("Failed to initialize JetStream DLQ: %v", err)
		}
		defer jsQueue.Close()
		dlqWriter = jsQueue
		slog.Info("Push DLQ enabled", slog.String("nats_url", cfg.DLQ.NatsURL))
	} else {
		slog.Info("Push DLQ disabled")
	}

	// Wire the pipeline collaborators
	parsers := parser.NewDefaultRegistry(parser.StubExtractor{})
	dedupEngine := dedup.NewEngine(dedupStore)
	triageEngine := triage.NewEngine(triage.Thresholds{
		Process: cfg.Triage.ProcessThreshold,
		Review:  cfg.Triage.ReviewThreshold,
	})
	pusher := pushclient.New(cfg.Downstream.URL, cfg.Downstream.APIKey, cfg.Downstream.Timeout)

	orchestrator := pipeline.New(
		parsers,
		dedupEngine,
		triageEngine,
		reviews,
		pusher,
		dlqWriter,
		pipeline.WithPushTimeout(cfg.Downstream.Timeout),
		pipeline.WithWorkerCount(cfg.Ingestion.BatchWorkers),
	)

	tracker := analytics.NewTracker()
	handler := handlers.NewIngestHandler(orchestrator, reviews, tracker, logger, cfg.Ingestion.MaxFileSize)
	router := server.NewRouter(handler, cfg.Auth.APIKey)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Ingestion gateway listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	slog.Info("Server stopped")
}
