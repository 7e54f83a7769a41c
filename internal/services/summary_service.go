// Package services holds the pipelines behind each binary: summary runs,
// mail ingestion, and price refresh. Services depend on small interfaces so
// tests can swap the store, mailbox, and quote source.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finsum/internal/core"
	"finsum/internal/log"
	"finsum/internal/report"
)

// ErrRetrieval marks a summary run that failed while reading the store.
// Retrieval errors are fatal; a partial report would be misleading.
var ErrRetrieval = errors.New("retrieval failed")

// upcomingWindowDays is how far ahead the summary looks for due payments.
const upcomingWindowDays = 2

// SummaryStore is the read side of the store a summary run needs.
type SummaryStore interface {
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	TransactionsOn(ctx context.Context, userID int64, day time.Time) ([]core.Transaction, error)
	TransactionsBetween(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error)
	ActiveBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
	CategoryExpenseTotal(ctx context.Context, userID int64, category string, from, to time.Time) (decimal.Decimal, error)
	DueRecurringPayments(ctx context.Context, userID int64, from, to time.Time) ([]core.RecurringPayment, error)
	StockHoldings(ctx context.Context, userID int64) ([]core.StockHolding, error)
	FundHoldings(ctx context.Context, userID int64) ([]core.FundHolding, error)
	CashBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	Invoices(ctx context.Context, userID int64) ([]core.Invoice, error)
}

// EmbedSender delivers a rendered embed to the webhook.
type EmbedSender interface {
	SendEmbed(ctx context.Context, embed report.Embed) error
}

// SummaryService runs the retrieve, derive, render, deliver pipeline for one
// user. A nil sender means no webhook is configured: the run prints the text
// report and writes it to reportDir instead.
type SummaryService struct {
	store     SummaryStore
	sender    EmbedSender
	reportDir string
	out       io.Writer
	logger    *log.Logger
	now       func() time.Time
}

func NewSummaryService(store SummaryStore, sender EmbedSender, reportDir string, logger *log.Logger) *SummaryService {
	return &SummaryService{
		store:     store,
		sender:    sender,
		reportDir: reportDir,
		out:       os.Stdout,
		logger:    logger.WithComponent(log.ComponentSummary),
		now:       time.Now,
	}
}

// BuildSummary retrieves one user's records and derives the summary for the
// given run date. All dates are resolved against runDate, never the clock, so
// a run is reproducible for its date.
func (s *SummaryService) BuildSummary(ctx context.Context, email string, runDate time.Time) (report.Summary, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return report.Summary{}, err
	}

	today := core.DateOnly(runDate)
	monthStart := core.MonthStart(today)

	todayTxs, err := s.store.TransactionsOn(ctx, user.ID, today)
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: today's transactions: %w", ErrRetrieval, err)
	}

	monthTxs, err := s.store.TransactionsBetween(ctx, user.ID, monthStart, today)
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: month transactions: %w", ErrRetrieval, err)
	}

	budgets, err := s.store.ActiveBudgets(ctx, user.ID)
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: budgets: %w", ErrRetrieval, err)
	}

	spend := make(map[string]decimal.Decimal, len(budgets))
	for _, b := range budgets {
		total, err := s.store.CategoryExpenseTotal(ctx, user.ID, b.Category, monthStart, today)
		if err != nil {
			return report.Summary{}, fmt.Errorf("%w: spend for %s: %w", ErrRetrieval, b.Category, err)
		}
		spend[b.Category] = total
	}

	due, err := s.store.DueRecurringPayments(ctx, user.ID, today, today.AddDate(0, 0, upcomingWindowDays))
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: recurring payments: %w", ErrRetrieval, err)
	}

	stocks, err := s.store.StockHoldings(ctx, user.ID)
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: stocks: %w", ErrRetrieval, err)
	}

	funds, err := s.store.FundHoldings(ctx, user.ID)
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: mutual funds: %w", ErrRetrieval, err)
	}

	cash, err := s.store.CashBalance(ctx, user.ID)
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: cash balance: %w", ErrRetrieval, err)
	}

	invoices, err := s.store.Invoices(ctx, user.ID)
	if err != nil {
		return report.Summary{}, fmt.Errorf("%w: invoices: %w", ErrRetrieval, err)
	}

	return report.Summary{
		User:      user,
		Date:      today,
		Today:     report.ComputeTotals(todayTxs),
		Month:     report.ComputeTotals(monthTxs),
		Budgets:   report.BudgetStatuses(budgets, spend),
		Upcoming:  report.DueSoon(due, today),
		Portfolio: report.ComputePortfolio(stocks, funds, cash),
		Invoices:  report.ComputeInvoiceSummary(invoices),
	}, nil
}

// Run builds and delivers the summary for one user. An unknown user or a
// store failure is returned as a fatal error. A delivery failure is not: the
// run falls back to the text report on stdout and reports success.
func (s *SummaryService) Run(ctx context.Context, email string) error {
	now := s.now()
	start := time.Now()
	s.logger.InfoContext(ctx, "Starting summary run",
		log.FieldUserEmail, email,
		log.FieldRunDate, core.DateOnly(now).Format("2006-01-02"))

	summary, err := s.BuildSummary(ctx, email, now)
	if err != nil {
		fields := log.NewFields().WithOperation(log.OpRetrieve).WithError(err)
		fields[log.FieldUserEmail] = email
		s.logger.ErrorContext(ctx, "Summary run failed", fields.ToSlice()...)
		return err
	}

	if s.sender == nil {
		return s.deliverText(ctx, summary, now)
	}

	embed := report.BuildEmbed(summary, now)
	if err := s.sender.SendEmbed(ctx, embed); err != nil {
		s.logger.WarnContext(ctx, "Webhook delivery failed, falling back to text",
			log.FieldUserEmail, email,
			log.FieldError, err)
		fmt.Fprintln(s.out, report.RenderText(summary, now))
		return nil
	}

	fields := log.NewFields().
		WithUser(summary.User.ID, summary.User.Email).
		WithOperation(log.OpDeliver)
	fields[log.FieldDuration] = time.Since(start).Milliseconds()
	fields[log.FieldSuccess] = true
	s.logger.InfoContext(ctx, "Summary delivered", fields.ToSlice()...)
	return nil
}

// deliverText prints the report and saves a copy under reportDir.
func (s *SummaryService) deliverText(ctx context.Context, summary report.Summary, now time.Time) error {
	text := report.RenderText(summary, now)
	fmt.Fprintln(s.out, text)

	if s.reportDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.reportDir, 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("financial_summary_%s.txt", summary.Date.Format("2006-01-02"))
	path := filepath.Join(s.reportDir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	s.logger.InfoContext(ctx, "Report saved", "path", path)
	return nil
}
