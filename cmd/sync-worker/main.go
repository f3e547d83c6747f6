package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/cli"
	applog "spendlog/internal/log"
	"spendlog/internal/sheets"
	gsheet "spendlog/internal/sheets/google"
	"spendlog/internal/sheets/memory"
	"spendlog/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentWorker)
	logger.Info("Starting sync-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// Without a spreadsheet configured the worker still drains the queue,
	// appending into an in-memory store. Useful for local development.
	// Sheets export is append-only, so only the memory store gets a deleter.
	var appender sheets.ExpenseAppender
	var deleter sheets.ExpenseDeleter
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		store := memory.New()
		appender = store
		deleter = store
		logger.Warn("Google Sheets disabled - exporting to in-memory store")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(sqliteRepo, appender, deleter, cfg.SyncBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch anything queued while the worker was down.
	logger.Info("Performing startup sync check")
	if err := syncWorker.ProcessPendingExpenses(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeMessages(gctx, syncWorker.HandleSyncMessage, syncWorker.HandleDeleteMessage)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPendingExpenses(gctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		<-done
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
