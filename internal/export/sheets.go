// Package export appends monthly report rows to a Google Sheets
// spreadsheet. Export is one-way: the sheet is a mirror, never a source.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"saldo/internal/report"
)

type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsExporter builds an exporter authenticated with a service
// account credentials file.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*SheetsExporter, error) {
	if spreadsheetID == "" || sheetName == "" {
		return nil, errors.New("spreadsheet id and sheet name are required")
	}

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// AppendMonth writes one summary row followed by a row per category
// entry. Amounts go out in major units so the sheet stays readable.
func (e *SheetsExporter) AppendMonth(ctx context.Context, year, month int, s report.Summary, entries []report.CategoryEntry) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	values := [][]any{
		{year, month, "summary", s.Income.Units(), s.Expense.Units(), s.Net.Units(), s.Closing.Units()},
	}
	for _, entry := range entries {
		values = append(values, []any{year, month, entry.Name, entry.Amount.Units(), fmt.Sprintf("%d%%", entry.Percent)})
	}

	rng := fmt.Sprintf("%s!A:G", e.sheetName)
	vr := &gsheet.ValueRange{Values: values}
	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append month rows to sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Month exported to spreadsheet",
		"year", year,
		"month", month,
		"rows", len(values))
	return nil
}
