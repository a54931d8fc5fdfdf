package billing

import (
	"github.com/invoiceapp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultStatsCurrency keys the headline revenue and outstanding
// figures in dashboard output
const DefaultStatsCurrency = valueobject.DefaultCurrency

// DashboardStats holds an owner's aggregate billing figures. Every
// status and every supported currency is present in the maps even when
// no invoice contributes to it, so consumers never see missing keys.
// TotalRevenue and TotalOutstanding add the per-currency sums into a
// single headline figure.
type DashboardStats struct {
	TotalInvoices    int64                                    `json:"total_invoices"`
	StatusCounts     map[InvoiceStatus]int64                  `json:"status_counts"`
	Revenue          map[valueobject.Currency]decimal.Decimal `json:"revenue"`     // Sum of PAID totals per currency
	Outstanding      map[valueobject.Currency]decimal.Decimal `json:"outstanding"` // Sum of SENT + OVERDUE totals per currency
	TotalRevenue     decimal.Decimal                          `json:"total_revenue"`
	TotalOutstanding decimal.Decimal                          `json:"total_outstanding"`
}

// NewDashboardStats returns stats with every status count and currency
// sum initialised to zero
func NewDashboardStats() DashboardStats {
	stats := DashboardStats{
		StatusCounts:     make(map[InvoiceStatus]int64, 4),
		Revenue:          make(map[valueobject.Currency]decimal.Decimal, 4),
		Outstanding:      make(map[valueobject.Currency]decimal.Decimal, 4),
		TotalRevenue:     decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for _, s := range AllInvoiceStatuses() {
		stats.StatusCounts[s] = 0
	}
	for _, c := range valueobject.AllCurrencies() {
		stats.Revenue[c] = decimal.Zero
		stats.Outstanding[c] = decimal.Zero
	}
	return stats
}

// SetStatusCount records a per-status count and keeps the overall
// invoice count in step
func (s *DashboardStats) SetStatusCount(status InvoiceStatus, count int64) {
	s.TotalInvoices += count - s.StatusCounts[status]
	s.StatusCounts[status] = count
}

// AddRevenue accumulates a paid total into the revenue map and the
// headline revenue figure
func (s *DashboardStats) AddRevenue(currency valueobject.Currency, amount decimal.Decimal) {
	s.Revenue[currency] = s.Revenue[currency].Add(amount)
	s.TotalRevenue = s.TotalRevenue.Add(amount)
}

// AddOutstanding accumulates an unpaid total into the outstanding map
// and the headline outstanding figure
func (s *DashboardStats) AddOutstanding(currency valueobject.Currency, amount decimal.Decimal) {
	s.Outstanding[currency] = s.Outstanding[currency].Add(amount)
	s.TotalOutstanding = s.TotalOutstanding.Add(amount)
}
