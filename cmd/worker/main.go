// Package main is the entry point for the SME ERP background worker.
// It relays approval activity from sys_outbox to the log sink.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"smeerp/internal/config"
	"smeerp/internal/infrastructure/metrics"
	"smeerp/internal/infrastructure/storage/postgres"
	"smeerp/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Service:     "smeerp-worker",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting smeerp worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.ApplicationName = "smeerp-worker"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	m := metrics.New()
	m.Registry().MustRegister(pool.Collector())
	worker := NewWorker(postgres.NewTxManager(pool), cfg.Worker, m, log)

	var metricsServer *http.Server
	if cfg.Worker.MetricsAddr != "" {
		metricsServer = &http.Server{Addr: cfg.Worker.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("metrics server failed", "error", err)
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	if metricsServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		stop()
	}
	log.Info("worker stopped")
}

// Worker drives the outbox relay on a poll interval and prunes delivered
// messages on a cleanup interval.
type Worker struct {
	txManager *postgres.TxManager
	relay     *postgres.OutboxRelay
	cfg       config.WorkerConfig
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func NewWorker(txManager *postgres.TxManager, cfg config.WorkerConfig, m *metrics.Metrics, log *logger.Logger) *Worker {
	log = log.WithComponent("worker")
	return &Worker{
		txManager: txManager,
		relay:     postgres.NewOutboxRelay(txManager, cfg.BatchSize, cfg.MaxRetries, &logSink{log: log}),
		cfg:       cfg,
		metrics:   m,
		log:       log,
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ctx = postgres.WithTxManager(ctx, w.txManager)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(w.cfg.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	n, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox batch failed", "error", err)
		w.metrics.OutboxMessages.WithLabelValues("error").Inc()
		return
	}
	if n > 0 {
		w.metrics.OutboxMessages.WithLabelValues("published").Add(float64(n))
		w.log.Debugw("processed outbox batch", "count", n)
	}

	moved, err := w.relay.MoveToDLQ(ctx)
	if err != nil {
		w.log.Errorw("move to DLQ failed", "error", err)
		return
	}
	if moved > 0 {
		w.metrics.OutboxMessages.WithLabelValues("dead_lettered").Add(float64(moved))
		w.log.Warnw("outbox messages moved to DLQ", "count", moved)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	deleted, err := w.relay.Cleanup(ctx, time.Now().UTC().Add(-w.cfg.Retention))
	if err != nil {
		w.log.Errorw("outbox cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		w.log.Infow("cleaned up outbox", "count", deleted)
	}
}

// logSink delivers approval activity by logging it; mail and chat
// delivery are out of scope.
type logSink struct {
	log *logger.Logger
}

func (s *logSink) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	s.log.WithContext(ctx).Infow("approval activity",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID,
		"payload", string(msg.Payload),
	)
	return nil
}
