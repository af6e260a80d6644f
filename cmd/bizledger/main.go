package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/bizledger/bizledger/internal/app"
	"github.com/bizledger/bizledger/internal/billing/documents"
	"github.com/bizledger/bizledger/internal/cashflow"
	"github.com/bizledger/bizledger/internal/ledger"
	"github.com/bizledger/bizledger/internal/masterdata"
	"github.com/bizledger/bizledger/internal/money"
	"github.com/bizledger/bizledger/internal/observability"
	"github.com/bizledger/bizledger/internal/platform/cache"
	"github.com/bizledger/bizledger/internal/platform/db"
	"github.com/bizledger/bizledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, cashflow cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	registry := masterdata.NewRepository(pool)
	masterdataService := masterdata.NewService(registry)
	masterdataHandler := masterdata.NewHandler(logger, masterdataService)

	var queue ledger.RecomputeQueue
	var queueClient *jobs.Client
	var jobsHandler *jobs.Handler
	if redisClient != nil {
		queueClient, err = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		if err != nil {
			logger.Error("init queue client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := queueClient.Close(); err != nil {
				logger.Warn("queue close", slog.Any("error", err))
			}
		}()
		queue = queueClient

		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobsHandler = jobs.NewHandler(inspector, logger)
	}

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, registry, queue, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	cashRepo := cashflow.NewRepository(pool)
	cashService := cashflow.NewService(cashRepo, redisClient, money.FromFloat(cfg.OpeningCash), logger)
	cashHandler := cashflow.NewHandler(logger, cashService)

	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, ledgerService, cashService, logger)
	documentsHandler := documents.NewHandler(logger, documentsService)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		DocumentsHandler:  documentsHandler,
		LedgerHandler:     ledgerHandler,
		CashflowHandler:   cashHandler,
		MasterDataHandler: masterdataHandler,
		JobsHandler:       jobsHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppRequestTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
