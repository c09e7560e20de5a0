// scan-receipt runs the import pipeline once for a receipt image:
// extraction, category matching and duplicate detection, printing the
// candidates for review. With -commit and -account the batch is saved.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"saldo/internal/amqp"
	"saldo/internal/config"
	"saldo/internal/core"
	applog "saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/storage"
	"saldo/internal/vision"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: "scan"})
	applog.SetDefault(logger)

	var (
		commitFlag  = flag.Bool("commit", false, "save the reviewed batch instead of just printing it")
		accountFlag = flag.String("account", "", "account to commit the transactions to")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: scan-receipt [-commit -account ID] <image-file>")
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read image: %v\n", err)
		os.Exit(1)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(imagePath))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open storage: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	extractor, err := vision.NewGeminiExtractor(ctx, cfg.GeminiModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init extractor: %v\n", err)
		os.Exit(1)
	}

	var client *amqp.Client
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPMetricsQueue, cfg.AMQPExportQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, metrics publishing disabled", "error", err)
		} else {
			defer client.Close()
		}
	}

	svc := services.NewImportService(extractor, repo, client, cfg.LookbackDays, cfg.BaseCurrency)

	batch, err := svc.Scan(ctx, image, mimeType)
	switch {
	case errors.Is(err, services.ErrNothingDetected):
		fmt.Println("No transactions were detected in the image.")
		os.Exit(0)
	case errors.Is(err, services.ErrExtractionFailed):
		fmt.Fprintf(os.Stderr, "The extraction service could not process the image: %v\n", err)
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	printBatch(batch)

	if !*commitFlag {
		return
	}
	if *accountFlag == "" {
		fmt.Fprintln(os.Stderr, "-commit requires -account")
		os.Exit(2)
	}

	txs := make([]core.Transaction, 0, len(batch.Items))
	for _, item := range batch.Items {
		if item.Duplicate != nil {
			continue // review decided these stay out
		}
		txs = append(txs, item.ToTransaction(*accountFlag))
	}

	result, err := svc.Commit(ctx, txs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "commit incomplete: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %d of %d transactions.\n", result.Saved, result.Total)
}

func printBatch(batch *services.ReviewBatch) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Type", "Amount", "Category", "Note", "Confidence", "Duplicate?"})
	for _, item := range batch.Items {
		dup := ""
		if item.Duplicate != nil {
			dup = fmt.Sprintf("%.0f%% (%s)", item.Duplicate.Confidence*100, item.Duplicate.Reasons[0])
		}
		table.Append([]string{
			item.Extracted.Date.Format("2006-01-02"),
			string(item.Extracted.Kind),
			item.Extracted.Amount.String(),
			item.Category,
			item.Extracted.Note,
			fmt.Sprintf("%.2f", item.Extracted.Confidence),
			dup,
		})
	}
	table.Render()

	if batch.HasDuplicates {
		fmt.Println("\nSome candidates look like duplicates of existing transactions; they are skipped on commit.")
	}
}
