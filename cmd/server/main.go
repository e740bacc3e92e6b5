// Package main is the entry point for the SME ERP API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smeerp/internal/config"
	"smeerp/internal/core/apperror"
	"smeerp/internal/domain/auth"
	"smeerp/internal/domain/catalogs/currency"
	v1 "smeerp/internal/infrastructure/http/v1"
	"smeerp/internal/infrastructure/metrics"
	"smeerp/internal/infrastructure/numerator"
	"smeerp/internal/infrastructure/storage/postgres"
	"smeerp/internal/infrastructure/storage/postgres/catalog_repo"
	"smeerp/pkg/logger"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Service:     "smeerp-api",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting smeerp server", "version", version)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	m := metrics.New()
	m.Registry().MustRegister(pool.Collector())

	home, err := loadHomeCurrency(postgres.WithTxManager(ctx, txManager), cfg.Currency)
	if err != nil {
		log.Fatalw("failed to load home currency", "error", err)
	}

	auditService, err := postgres.NewAuditService()
	if err != nil {
		log.Fatalw("failed to initialize audit", "error", err)
	}

	// --- JWT Service ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		TxManager:      txManager,
		Logger:         log,
		JWTValidator:   jwtService,
		Numerator:      numerator.NewFromContext(),
		Audit:          auditService,
		Metrics:        m,
		HomeCurrency:   home,
		ReportPageSize: cfg.Report.PageSize,
		ReleaseMode:    !cfg.Log.Development,
		Version:        version,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	pool.LogStats(ctx)

	log.Info("server stopped")
}

// loadHomeCurrency reads the configured currency from the catalog and
// falls back to the configured rounding when the row is missing.
func loadHomeCurrency(ctx context.Context, cfg config.CurrencyConfig) (*currency.Currency, error) {
	cur, err := catalog_repo.NewCurrencyRepo().FindByCode(ctx, cfg.Code)
	if err == nil {
		return cur, nil
	}
	if appErr, ok := apperror.AsAppError(err); ok && appErr.Code == apperror.CodeNotFound {
		logger.Warn(ctx, "currency not in catalog, using configured rounding",
			"code", cfg.Code, "decimal_places", cfg.DecimalPlaces)
		cur = currency.New(cfg.Code, cfg.DecimalPlaces)
		return cur, cur.Validate()
	}
	return nil, err
}
