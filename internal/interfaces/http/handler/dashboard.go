package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/invoiceapp/backend/internal/application/billing"
	"github.com/invoiceapp/backend/internal/domain/billing"
	"github.com/invoiceapp/backend/internal/domain/shared"
)

// DashboardHandler handles dashboard metrics API endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *billingapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *billingapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// HistoryQuery holds query parameters for the snapshot history listing
type HistoryQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// StatsQuery holds query parameters for the stats endpoint. Dates are
// calendar days in 2006-01-02 form, both bounds inclusive.
type StatsQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

func (q StatsQuery) dateRange() (billing.DateRange, error) {
	var rng billing.DateRange
	if q.From != "" {
		from, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return rng, fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", q.From)
		}
		rng.From = &from
	}
	if q.To != "" {
		to, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return rng, fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", q.To)
		}
		rng.To = &to
	}
	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return rng, fmt.Errorf("to date precedes from date")
	}
	return rng, nil
}

// Stats godoc
// @ID           getDashboardStats
// @Summary      Get dashboard statistics
// @Description  Return live aggregate figures, optionally bounded to an inclusive issue-date range.
// @Description  status_counts is keyed by DRAFT/SENT/OVERDUE/PAID; revenue and outstanding are keyed
// @Description  by currency code (USD/EUR/GBP/GEL), every key always present. total_invoices,
// @Description  total_revenue and total_outstanding add the per-key figures together.
// @Tags         dashboard
// @Produce      json
// @Param        from query string false "Issue date lower bound (YYYY-MM-DD)"
// @Param        to query string false "Issue date upper bound (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=billing.DashboardStats}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query StatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	rng, err := query.dateRange()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	stats, err := h.dashboardService.Stats(c.Request.Context(), ownerID, rng)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// History godoc
// @ID           getDashboardHistory
// @Summary      Get metrics history
// @Description  Return the owner's stored metric snapshots, newest first
// @Tags         dashboard
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]billingapp.MetricSnapshotDTO}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/history [get]
func (h *DashboardHandler) History(c *gin.Context) {
	ownerID, err := getOwnerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var query HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	filter.OrderBy = "captured_at"
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}

	snapshots, err := h.dashboardService.History(c.Request.Context(), ownerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshots)
}
