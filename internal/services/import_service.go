// Package services orchestrates the import pipeline: vision extraction,
// category matching, duplicate detection, and the best-effort commit of
// a reviewed batch.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/dedup"
	"saldo/internal/gamify"
	"saldo/internal/match"
	"saldo/internal/report"
	"saldo/internal/vision"
)

var (
	// ErrExtractionFailed means the extraction backend is unreachable,
	// unauthorized or returned garbage. Retry from the start.
	ErrExtractionFailed = errors.New("receipt extraction failed")
	// ErrNothingDetected means the call succeeded but no transactions
	// were found in the image. Needs a different user-facing message.
	ErrNothingDetected = errors.New("no transactions detected")
)

// Repository is the slice of the persistence collaborator the pipeline
// needs. Saves happen one transaction at a time; partial failures leave
// already-saved rows intact.
type Repository interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetProfile(ctx context.Context) (gamify.Profile, error)
	SaveProfile(ctx context.Context, p gamify.Profile) error
}

// ReviewItem is one extracted candidate prepared for user review: the
// resolved category and, when found, its most likely existing duplicate.
type ReviewItem struct {
	Extracted core.ExtractedTransaction
	Category  string
	Duplicate *core.DuplicateMatch
}

// ReviewBatch is the result of one scan, consumed by the review step
// and discarded once committed or cancelled.
type ReviewBatch struct {
	Items         []ReviewItem
	HasDuplicates bool
}

// CommitResult reports a best-effort commit: how many transactions were
// saved before the first failure, if any.
type CommitResult struct {
	Saved int
	Total int
}

// ImportService runs the scan-review-commit pipeline. The extractor is
// an injected strategy; the AMQP client may be nil, in which case
// metrics publishing is skipped.
type ImportService struct {
	extractor    vision.Extractor
	repo         Repository
	amqpClient   *amqp.Client
	lookbackDays int
	now          func() time.Time
	baseCurrency string
}

func NewImportService(extractor vision.Extractor, repo Repository, amqpClient *amqp.Client, lookbackDays int, baseCurrency string) *ImportService {
	return &ImportService{
		extractor:    extractor,
		repo:         repo,
		amqpClient:   amqpClient,
		lookbackDays: lookbackDays,
		now:          time.Now,
		baseCurrency: baseCurrency,
	}
}

// Scan runs extraction, category matching and duplicate detection for
// one image. The whole batch fails together; there is no partial
// extraction and no cancellation mid-pipeline.
func (s *ImportService) Scan(ctx context.Context, image []byte, mimeType string) (*ReviewBatch, error) {
	result, err := s.extractor.Extract(ctx, image, mimeType)
	if err != nil || !result.Success {
		msg := result.Message
		if msg == "" && err != nil {
			msg = err.Error()
		}
		slog.ErrorContext(ctx, "Extraction failed", "error", err, "message", msg)
		return nil, fmt.Errorf("%w: %s", ErrExtractionFailed, msg)
	}
	if len(result.Transactions) == 0 {
		return nil, ErrNothingDetected
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	existing, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	check := dedup.Check(result.Transactions, existing, dedup.Options{
		LookbackDays: s.lookbackDays,
		Now:          s.now,
	})
	matchByID := make(map[string]core.DuplicateMatch, len(check.Matches))
	for _, m := range check.Matches {
		matchByID[m.ExtractedID] = m
	}

	batch := &ReviewBatch{HasDuplicates: check.HasDuplicates}
	for _, e := range result.Transactions {
		item := ReviewItem{
			Extracted: e,
			Category:  match.Match(e.SuggestedCategory, categories, e.Kind),
		}
		if m, ok := matchByID[e.ID]; ok {
			dup := m
			item.Duplicate = &dup
		}
		batch.Items = append(batch.Items, item)
	}

	slog.InfoContext(ctx, "Scan complete",
		"candidates", len(batch.Items),
		"duplicates", len(check.Matches))
	return batch, nil
}

// Commit saves a reviewed batch one transaction at a time. On failure
// it stops and reports how many were saved; already-saved transactions
// are neither retried nor rolled back. A successful commit awards
// points and updates the daily streak, then publishes leaderboard
// metrics on a best-effort basis.
func (s *ImportService) Commit(ctx context.Context, txs []core.Transaction) (CommitResult, error) {
	result := CommitResult{Total: len(txs)}
	for _, t := range txs {
		if _, err := s.repo.SaveTransaction(ctx, t); err != nil {
			return result, fmt.Errorf("saved %d of %d: %w", result.Saved, result.Total, err)
		}
		result.Saved++
	}

	if result.Saved > 0 {
		if err := s.updateGamification(ctx, result.Saved); err != nil {
			// The ledger is already committed; gamification is cosmetic.
			slog.ErrorContext(ctx, "Failed to update gamification state", "error", err)
		}
	}
	return result, nil
}

func (s *ImportService) updateGamification(ctx context.Context, saved int) error {
	profile, err := s.repo.GetProfile(ctx)
	if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}

	profile = gamify.Award(profile, int64(saved*gamify.PointsPerTransaction+gamify.PointsPerScan))
	profile, bonus := gamify.UpdateStreak(profile, s.now())
	if bonus > 0 {
		slog.InfoContext(ctx, "Streak bonus awarded", "bonus", bonus, "streak", profile.Streak)
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	s.publishMetrics(ctx, profile)
	return nil
}

// publishMetrics pushes anonymized aggregates only. Failures are logged
// and swallowed; the leaderboard must never block a commit.
func (s *ImportService) publishMetrics(ctx context.Context, profile gamify.Profile) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping metrics publish")
		return
	}

	monthExpense := int64(0)
	if txs, err := s.repo.ListTransactions(ctx); err == nil {
		if accounts, err := s.repo.ListAccounts(ctx); err == nil {
			p := report.MonthOf(s.now())
			monthExpense = report.Summarize(txs, accounts, p, "", s.baseCurrency).Expense.Cents
		}
	}

	msg := &amqp.MetricsMessage{
		Points:            profile.Points,
		Level:             gamify.Level(profile.Points),
		Streak:            profile.Streak,
		MonthExpenseCents: monthExpense,
		Timestamp:         s.now(),
	}
	if err := s.amqpClient.PublishMetrics(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish leaderboard metrics", "error", err)
	}
}

// ToTransaction converts a reviewed item into a committable expense or
// income on the given account.
func (i ReviewItem) ToTransaction(accountID string) core.Transaction {
	t := core.Transaction{
		Kind:      i.Extracted.Kind,
		AccountID: accountID,
		Category:  i.Category,
		Amount:    i.Extracted.Amount,
		Date:      i.Extracted.Date,
		Note:      i.Extracted.Note,
	}
	return t
}
