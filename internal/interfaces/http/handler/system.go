package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/invoiceapp/backend/internal/application/billing"
	"github.com/invoiceapp/backend/internal/interfaces/http/dto"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	sweeper   *billingapp.OverdueSweeper
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. sweeper may be nil
// when the manual sweep trigger is disabled.
func NewSystemHandler(sweeper *billingapp.OverdueSweeper) *SystemHandler {
	return &SystemHandler{
		sweeper:   sweeper,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Invoice Backend API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Liveness endpoint
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}))
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Invoice Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// TriggerOverdueSweep godoc
// @ID           triggerOverdueSweep
// @Summary      Run the overdue sweep now
// @Description  Manually flip SENT invoices past their due date to OVERDUE without waiting for the daily schedule
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=billingapp.SweepResult}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /system/sweep-overdue [post]
func (h *SystemHandler) TriggerOverdueSweep(c *gin.Context) {
	if _, err := getOwnerID(c); err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if h.sweeper == nil {
		h.InternalError(c, "Overdue sweep is not configured")
		return
	}

	result, err := h.sweeper.Run(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
