// saldo prints the monthly report for the local ledger: balance
// summary, category breakdown, budget progress and trend against the
// previous month. With -export the reported month is also enqueued as
// a spreadsheet-export job for saldo-worker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"saldo/internal/amqp"
	"saldo/internal/budget"
	"saldo/internal/config"
	"saldo/internal/core"
	"saldo/internal/ledger"
	applog "saldo/internal/log"
	"saldo/internal/report"
	"saldo/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelWarn, Component: "cli"})
	applog.SetDefault(logger)

	var (
		monthFlag   = flag.String("month", "", "month to report, YYYY-MM (default: current month)")
		accountFlag = flag.String("account", "", "viewpoint account ID (default: all accounts)")
		topFlag     = flag.Int("top", 3, "categories to list before collapsing into Others")
		exportFlag  = flag.Bool("export", false, "also enqueue a spreadsheet-export job for the reported month")
	)
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	now := time.Now()
	if *monthFlag != "" {
		parsed, err := time.Parse("2006-01", *monthFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -month %q: expected YYYY-MM\n", *monthFlag)
			os.Exit(1)
		}
		now = parsed
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open storage: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := run(ctx, repo, cfg, now, *accountFlag, *topFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *exportFlag {
		if err := enqueueExport(ctx, cfg, now, *accountFlag); err != nil {
			fmt.Fprintf(os.Stderr, "enqueue export: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nExport job for %s enqueued.\n", now.Format("2006-01"))
	}
}

// enqueueExport hands the reported month to saldo-worker over AMQP.
func enqueueExport(ctx context.Context, cfg *config.Config, now time.Time, viewpoint string) error {
	if cfg.AMQPURL == "" {
		return fmt.Errorf("AMQP_URL must be configured to enqueue export jobs")
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPMetricsQueue, cfg.AMQPExportQueue)
	if err != nil {
		return fmt.Errorf("connect to AMQP: %w", err)
	}
	defer client.Close()

	msg := amqp.NewExportRequestMessage(now.Year(), int(now.Month()), viewpoint)
	return client.PublishExportRequest(ctx, msg)
}

func run(ctx context.Context, repo *storage.Repository, cfg *config.Config, now time.Time, viewpoint string, topN int) error {
	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	goals, err := repo.ListGoals(ctx)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}

	period := report.MonthOf(now)
	summary := report.Summarize(txs, accounts, period, viewpoint, cfg.BaseCurrency)
	previous := report.Summarize(txs, accounts, report.Previous(period, report.UnitMonth), viewpoint, cfg.BaseCurrency)
	rolling := report.RollingMonthlyExpenseAverage(txs, accounts, now, 3, viewpoint, cfg.BaseCurrency)

	fmt.Printf("Report for %s (%s)\n\n", now.Format("January 2006"), cfg.BaseCurrency)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Opening", "Income", "Expense", "Net", "Closing"})
	table.Append([]string{
		summary.Opening.String(),
		summary.Income.String(),
		summary.Expense.String(),
		summary.Net.String(),
		summary.Closing.String(),
	})
	table.Render()

	variance := report.VariancePercent(summary.Expense, previous.Expense)
	fmt.Printf("\nExpense vs previous month: %+d%%   3-month average: %s\n\n", variance, rolling)

	inPeriod := txs[:0:0]
	for _, t := range ledger.FilterByAccount(txs, viewpoint) {
		if period.Contains(t.Date) {
			inPeriod = append(inPeriod, t)
		}
	}
	entries := report.TopN(report.ByCategory(inPeriod, core.Expense), topN)
	if len(entries) > 0 {
		catTable := tablewriter.NewWriter(os.Stdout)
		catTable.SetHeader([]string{"Category", "Amount", "Share"})
		for _, e := range entries {
			catTable.Append([]string{e.Name, e.Amount.String(), fmt.Sprintf("%d%%", e.Percent)})
		}
		catTable.Render()
		fmt.Println()
	}

	if len(goals) > 0 {
		eval := budget.Evaluator{Now: func() time.Time { return now }}
		goalTable := tablewriter.NewWriter(os.Stdout)
		goalTable.SetHeader([]string{"Goal", "Period", "Current", "Target", "Progress"})
		for _, g := range goals {
			p := eval.Evaluate(g, txs, viewpoint)
			goalTable.Append([]string{
				g.Name,
				string(g.Period),
				p.Current.String(),
				p.Target.String(),
				fmt.Sprintf("%d%%", p.Percent),
			})
		}
		goalTable.Render()
	}
	return nil
}
