package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DashboardService assembles an owner's aggregate billing figures
type DashboardService struct {
	invoiceRepo  billing.InvoiceRepository
	snapshotRepo billing.MetricSnapshotRepository
	statsCache   billing.StatsCache
	logger       *zap.Logger
}

// DashboardServiceOption is a functional option for configuring the service
type DashboardServiceOption func(*DashboardService)

// WithStatsCache sets a cache consulted before running the aggregate queries
func WithStatsCache(cache billing.StatsCache) DashboardServiceOption {
	return func(s *DashboardService) {
		s.statsCache = cache
	}
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	invoiceRepo billing.InvoiceRepository,
	snapshotRepo billing.MetricSnapshotRepository,
	logger *zap.Logger,
	opts ...DashboardServiceOption,
) *DashboardService {
	svc := &DashboardService{
		invoiceRepo:  invoiceRepo,
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Stats returns the owner's live dashboard figures for invoices issued
// within the range. Every status and currency key is present even when
// zero. Only the unbounded all-time view is cached; ranged queries are
// ad hoc and always hit the store.
func (s *DashboardService) Stats(ctx context.Context, ownerID uuid.UUID, rng billing.DateRange) (billing.DashboardStats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DashboardService", "Stats",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()))
	defer span.End()

	cacheable := s.statsCache != nil && rng.IsZero()
	if cacheable {
		if cached, err := s.statsCache.Get(ctx, ownerID); err != nil {
			s.logger.Warn("Stats cache read failed", zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	stats, err := loadDashboardStats(ctx, s.invoiceRepo, ownerID, rng)
	if err != nil {
		telemetry.RecordError(span, err)
		return billing.DashboardStats{}, err
	}

	if cacheable {
		if err := s.statsCache.Set(ctx, ownerID, stats, 0); err != nil {
			s.logger.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// History returns the owner's stored metric snapshots
func (s *DashboardService) History(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]MetricSnapshotDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "DashboardService", "History",
		telemetry.WithAttribute(telemetry.SpanAttrOwnerID, ownerID.String()))
	defer span.End()

	snapshots, err := s.snapshotRepo.FindAllForOwner(ctx, ownerID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	dtos := make([]MetricSnapshotDTO, 0, len(snapshots))
	for i := range snapshots {
		dtos = append(dtos, NewMetricSnapshotDTO(&snapshots[i]))
	}
	return dtos, nil
}

// loadDashboardStats runs the count and sum aggregations and folds
// them into zero-defaulted stats. Shared with snapshot capture so
// dashboards and snapshots can never disagree on the arithmetic.
func loadDashboardStats(ctx context.Context, repo billing.InvoiceRepository, ownerID uuid.UUID, rng billing.DateRange) (billing.DashboardStats, error) {
	stats := billing.NewDashboardStats()

	counts, err := repo.CountByStatus(ctx, ownerID, rng)
	if err != nil {
		return stats, err
	}
	for _, row := range counts {
		stats.SetStatusCount(row.Status, row.Count)
	}

	revenue, err := repo.SumTotalsByCurrency(ctx, ownerID, []billing.InvoiceStatus{billing.InvoiceStatusPaid}, rng)
	if err != nil {
		return stats, err
	}
	for _, row := range revenue {
		stats.AddRevenue(row.Currency, row.Total)
	}

	outstanding, err := repo.SumTotalsByCurrency(ctx, ownerID, []billing.InvoiceStatus{
		billing.InvoiceStatusSent, billing.InvoiceStatusOverdue,
	}, rng)
	if err != nil {
		return stats, err
	}
	for _, row := range outstanding {
		stats.AddOutstanding(row.Currency, row.Total)
	}

	return stats, nil
}
