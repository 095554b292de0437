package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/app/models/dto"
	"github.com/nazrin/tadikahub/internal/app/services"
	"github.com/nazrin/tadikahub/internal/middleware"
)

// InvoiceController handles external invoice bridge operations
type InvoiceController struct {
	invoiceService services.InvoiceService
	logger         zerolog.Logger
}

// NewInvoiceController creates a new InvoiceController
func NewInvoiceController(invoiceService services.InvoiceService, logger zerolog.Logger) *InvoiceController {
	return &InvoiceController{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// GetAmounts resolves amounts for a batch of invoice numbers
// @Summary Get invoice amounts
// @Description Resolves amounts for a comma-separated list of invoice numbers. Falls back to local data if the external source is unreachable.
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param numbers query string true "Comma-separated invoice numbers"
// @Success 200 {object} dto.APIResponse{data=dto.InvoiceAmountsResponse} "Amounts resolved"
// @Failure 400 {object} dto.ErrorResponse "No invoice numbers given"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /invoices/amounts [get]
func (c *InvoiceController) GetAmounts(ctx *gin.Context) {
	var numbers []string
	for _, raw := range strings.Split(ctx.Query("numbers"), ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			numbers = append(numbers, trimmed)
		}
	}
	if len(numbers) == 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "At least one invoice number is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      c.invoiceService.GetAmounts(ctx, numbers),
		Timestamp: time.Now(),
	})
}

// GetAmount resolves amounts for a single invoice
// @Summary Get one invoice's amounts
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param number path string true "Invoice number"
// @Success 200 {object} dto.APIResponse{data=dto.InvoiceAmountsResponse} "Amounts resolved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /invoices/{number}/amount [get]
func (c *InvoiceController) GetAmount(ctx *gin.Context) {
	number := ctx.Param("number")

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      c.invoiceService.GetAmount(ctx, number),
		Timestamp: time.Now(),
	})
}

// PostPayment applies a payment against an external invoice
// @Summary Post an invoice payment
// @Description Records a payment in the external invoice database. Unlike reads, failures here are reported to the caller.
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param number path string true "Invoice number"
// @Param request body dto.PostPaymentRequest true "Payment details"
// @Success 200 {object} dto.APIResponse{data=models.PaymentResult} "Payment committed"
// @Failure 400 {object} dto.ErrorResponse "Invalid payment"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 503 {object} dto.ErrorResponse "External database unavailable"
// @Router /invoices/{number}/payments [post]
func (c *InvoiceController) PostPayment(ctx *gin.Context) {
	number := ctx.Param("number")

	req, ok := middleware.BodyFromContext[dto.PostPaymentRequest](ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid payment data")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.invoiceService.PostPayment(ctx, models.InvoicePayment{
		InvoiceNumber: number,
		Amount:        req.Amount,
		ReceiptNumber: req.ReceiptNumber,
		PaidBy:        req.PaidBy,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("invoice", number).Msg("Payment posting failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      result,
		Timestamp: time.Now(),
	})
}
