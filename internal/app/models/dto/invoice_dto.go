package dto

import (
	"github.com/nazrin/tadikahub/internal/app/models"
)

// InvoiceAmountsResponse carries invoice amount snapshots with their
// provenance tag so callers can tell external data from local fallback.
type InvoiceAmountsResponse struct {
	AmountSource models.AmountSource          `json:"amountSource"`
	Records      []models.InvoiceAmountRecord `json:"records"`
}

// PostPaymentRequest is the JSON body of an external payment update
type PostPaymentRequest struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	ReceiptNumber string  `json:"receiptNumber" binding:"required"`
	PaidBy        string  `json:"paidBy"`
}
