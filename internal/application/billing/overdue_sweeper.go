package billing

import (
	"context"
	"errors"
	"time"

	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SweepResult summarises one overdue sweep run
type SweepResult struct {
	Scanned int `json:"scanned"`
	Marked  int `json:"marked"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// OverdueSweeper flips SENT invoices past their due date to OVERDUE.
// It works in bounded batches across all owners and is safe to run
// repeatedly: an invoice already flipped, paid or archived between
// batches is simply skipped.
type OverdueSweeper struct {
	invoiceRepo  billing.InvoiceRepository
	snapshotRepo billing.MetricSnapshotRepository
	clientRepo   billing.ClientRepository
	notifier     NotificationSender
	batchSize    int
	logger       *zap.Logger
}

// NewOverdueSweeper creates a new OverdueSweeper. notifier may be nil
// when reminder delivery is disabled.
func NewOverdueSweeper(
	invoiceRepo billing.InvoiceRepository,
	snapshotRepo billing.MetricSnapshotRepository,
	clientRepo billing.ClientRepository,
	notifier NotificationSender,
	batchSize int,
	logger *zap.Logger,
) *OverdueSweeper {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &OverdueSweeper{
		invoiceRepo:  invoiceRepo,
		snapshotRepo: snapshotRepo,
		clientRepo:   clientRepo,
		notifier:     notifier,
		batchSize:    batchSize,
		logger:       logger,
	}
}

// Run executes one sweep as of the given reference time. Due dates are
// compared at day granularity: an invoice due today is not overdue.
func (s *OverdueSweeper) Run(ctx context.Context, now time.Time) (SweepResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OverdueSweeper", "Run",
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, s.batchSize))
	defer span.End()

	var result SweepResult
	today := startOfDay(now)

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.invoiceRepo.FindSweepBatch(ctx, today, s.batchSize)
		if err != nil {
			telemetry.RecordError(span, err)
			return result, err
		}
		if len(batch) == 0 {
			break
		}

		progressed := false
		for i := range batch {
			result.Scanned++
			switch s.sweepOne(ctx, &batch[i], now) {
			case sweepMarked:
				result.Marked++
				progressed = true
			case sweepSkipped:
				result.Skipped++
				progressed = true
			case sweepFailed:
				result.Failed++
			}
		}

		// Every marked or skipped invoice leaves the batch query's
		// result set, so a batch that only failed cannot make progress
		if !progressed {
			break
		}
		if len(batch) < s.batchSize {
			break
		}
	}

	s.logger.Info("overdue sweep completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("marked", result.Marked),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	telemetry.SetAttributes(span,
		"scanned", result.Scanned,
		"marked", result.Marked,
		"failed", result.Failed)

	return result, nil
}

type sweepOutcome int

const (
	sweepMarked sweepOutcome = iota
	sweepSkipped
	sweepFailed
)

// sweepOne transitions a single invoice, tolerating races with owners
// who pay, archive or edit concurrently
func (s *OverdueSweeper) sweepOne(ctx context.Context, invoice *billing.Invoice, now time.Time) sweepOutcome {
	if err := invoice.MarkOverdue(now); err != nil {
		// Domain rejections mean the invoice moved on since the batch
		// query: paid, edited or no longer past due
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return sweepSkipped
		}
		s.logger.Warn("failed to mark invoice overdue",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
		return sweepFailed
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			// Another writer got there first; the next run settles it
			return sweepSkipped
		}
		s.logger.Warn("failed to persist overdue transition",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
		return sweepFailed
	}

	s.captureSnapshot(ctx, invoice)
	s.sendReminder(ctx, invoice)
	return sweepMarked
}

// captureSnapshot stores a metrics snapshot for the owner, best-effort
func (s *OverdueSweeper) captureSnapshot(ctx context.Context, invoice *billing.Invoice) {
	stats, err := loadDashboardStats(ctx, s.invoiceRepo, invoice.OwnerID, billing.DateRange{})
	if err != nil {
		s.logger.Warn("failed to compute metrics for overdue snapshot",
			zap.String("owner_id", invoice.OwnerID.String()),
			zap.Error(err))
		return
	}
	snapshot := billing.NewMetricSnapshot(invoice, billing.MetricTriggerOverdue, stats)
	if err := s.snapshotRepo.Save(ctx, snapshot); err != nil {
		s.logger.Warn("failed to store overdue snapshot",
			zap.String("owner_id", invoice.OwnerID.String()),
			zap.Error(err))
	}
}

// sendReminder emails the client about the overdue invoice, best-effort
func (s *OverdueSweeper) sendReminder(ctx context.Context, invoice *billing.Invoice) {
	if s.notifier == nil {
		return
	}
	client, err := s.clientRepo.FindByID(ctx, invoice.ClientID)
	if err != nil {
		s.logger.Warn("cannot send overdue reminder, client lookup failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
		return
	}
	notice := InvoiceNotice{Invoice: invoice, Client: client}
	if err := s.notifier.SendOverdueReminder(ctx, notice); err != nil {
		s.logger.Warn("failed to send overdue reminder",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
	}
}

// startOfDay truncates a timestamp to midnight in its own location
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
