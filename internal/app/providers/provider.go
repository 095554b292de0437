// Package providers implements the external invoice bridge: interchangeable
// sources of invoice amount data and the non-fallback payment write path.
package providers

import (
	"context"

	"github.com/nazrin/tadikahub/internal/app/models"
)

// AmountProvider fetches invoice financial snapshots from some backing
// system. Implementations are stateless per call; nothing is cached or
// pooled between requests.
type AmountProvider interface {
	GetAmountByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.InvoiceAmountRecord, error)
	GetBatchAmounts(ctx context.Context, invoiceNumbers []string) ([]models.InvoiceAmountRecord, error)
}

// PaymentWriter applies a payment against the external system of record.
// Unlike reads, failures must propagate: a payment never silently falls
// back to local data.
type PaymentWriter interface {
	ApplyPayment(ctx context.Context, payment models.InvoicePayment) (*models.PaymentResult, error)
}
