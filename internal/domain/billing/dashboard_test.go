package billing

import (
	"testing"

	"github.com/invoiceapp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewDashboardStats(t *testing.T) {
	stats := NewDashboardStats()

	for _, s := range AllInvoiceStatuses() {
		count, ok := stats.StatusCounts[s]
		assert.True(t, ok)
		assert.Zero(t, count)
	}
	for _, c := range valueobject.AllCurrencies() {
		revenue, ok := stats.Revenue[c]
		assert.True(t, ok)
		assert.True(t, revenue.IsZero())

		outstanding, ok := stats.Outstanding[c]
		assert.True(t, ok)
		assert.True(t, outstanding.IsZero())
	}
	assert.Zero(t, stats.TotalInvoices)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.True(t, stats.TotalOutstanding.IsZero())
}

func TestDashboardStatsAccumulation(t *testing.T) {
	stats := NewDashboardStats()
	stats.AddRevenue(valueobject.USD, decimal.NewFromInt(100))
	stats.AddRevenue(valueobject.EUR, decimal.NewFromInt(50))
	stats.AddRevenue(valueobject.USD, decimal.NewFromFloat(50.50))
	stats.AddOutstanding(valueobject.EUR, decimal.NewFromInt(75))

	assert.True(t, stats.Revenue[valueobject.USD].Equal(decimal.NewFromFloat(150.50)))
	assert.True(t, stats.Outstanding[valueobject.EUR].Equal(decimal.NewFromInt(75)))
	assert.True(t, stats.Outstanding[valueobject.USD].IsZero())

	// Headline figures add across currencies
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromFloat(200.50)))
	assert.True(t, stats.TotalOutstanding.Equal(decimal.NewFromInt(75)))
}

func TestDashboardStatsTotalInvoices(t *testing.T) {
	stats := NewDashboardStats()
	stats.SetStatusCount(InvoiceStatusDraft, 2)
	stats.SetStatusCount(InvoiceStatusPaid, 3)
	assert.Equal(t, int64(5), stats.TotalInvoices)

	// Re-setting a status replaces its contribution
	stats.SetStatusCount(InvoiceStatusDraft, 1)
	assert.Equal(t, int64(4), stats.TotalInvoices)
}
