package handler

import (
	"github.com/gin-gonic/gin"
	billingapp "github.com/invoiceapp/backend/internal/application/billing"
)

// PublicPaymentHandler serves the unauthenticated payment page API.
// Lookups go through the opaque payment token only; invoice IDs are
// never exposed here.
type PublicPaymentHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewPublicPaymentHandler creates a new PublicPaymentHandler
func NewPublicPaymentHandler(invoiceService *billingapp.InvoiceService) *PublicPaymentHandler {
	return &PublicPaymentHandler{
		invoiceService: invoiceService,
	}
}

// GetByToken godoc
// @ID           getPublicInvoice
// @Summary      View an invoice by payment token
// @Description  Public payment page lookup; archived invoices return 404
// @Tags         public
// @Produce      json
// @Param        token path string true "Payment token"
// @Success      200 {object} dto.Response{data=billingapp.PublicInvoiceDTO}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pay/{token} [get]
func (h *PublicPaymentHandler) GetByToken(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.NotFound(c, "Invoice not found")
		return
	}

	invoice, err := h.invoiceService.GetByToken(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// ConfirmIntent godoc
// @ID           confirmPublicPaymentIntent
// @Summary      Confirm payment intent
// @Description  Record the client's "I have paid" confirmation; repeat confirmations are acknowledged without effect
// @Tags         public
// @Produce      json
// @Param        token path string true "Payment token"
// @Success      200 {object} dto.Response{data=billingapp.PublicInvoiceDTO}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pay/{token}/confirm [post]
func (h *PublicPaymentHandler) ConfirmIntent(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.NotFound(c, "Invoice not found")
		return
	}

	invoice, err := h.invoiceService.ConfirmPaymentIntent(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}
