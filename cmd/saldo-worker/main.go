// saldo-worker consumes month-export jobs from AMQP and appends the
// requested month's summary and category breakdown to the configured
// spreadsheet.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/config"
	"saldo/internal/core"
	"saldo/internal/export"
	"saldo/internal/ledger"
	applog "saldo/internal/log"
	"saldo/internal/report"
	"saldo/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "worker"})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if !cfg.SheetsConfigured() {
		logger.Error("Sheets export is not configured")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPMetricsQueue, cfg.AMQPExportQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	exporter, err := export.NewSheetsExporter(ctx, cfg.SpreadsheetID, cfg.SheetName, cfg.CredentialsFile)
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeExportRequests(gctx, func(msg *amqp.ExportRequestMessage) error {
			return handleExport(gctx, repo, exporter, cfg.BaseCurrency, msg)
		})
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	logger.Info("Worker started", "export_queue", cfg.AMQPExportQueue)
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func handleExport(ctx context.Context, repo *storage.Repository, exporter *export.SheetsExporter, baseCurrency string, msg *amqp.ExportRequestMessage) error {
	if msg.Month < 1 || msg.Month > 12 {
		return fmt.Errorf("invalid month %d", msg.Month)
	}

	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	period := report.MonthOf(time.Date(msg.Year, time.Month(msg.Month), 1, 0, 0, 0, 0, time.UTC))
	summary := report.Summarize(txs, accounts, period, msg.AccountID, baseCurrency)

	inPeriod := txs[:0:0]
	for _, t := range ledger.FilterByAccount(txs, msg.AccountID) {
		if period.Contains(t.Date) {
			inPeriod = append(inPeriod, t)
		}
	}
	entries := report.TopN(report.ByCategory(inPeriod, core.Expense), 3)

	return exporter.AppendMonth(ctx, msg.Year, msg.Month, summary, entries)
}
