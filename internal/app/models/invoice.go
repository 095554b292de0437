package models

import "time"

// AmountSource tags the provenance of invoice amount data so callers can
// tell an external read from local fallback data.
type AmountSource string

const (
	AmountSourceExternal AmountSource = "external"
	AmountSourceFallback AmountSource = "local_fallback"
)

// InvoiceAmountRecord is a point-in-time snapshot of one invoice's financial
// figures. It is a read-through projection of the external system of record,
// refreshed per request and never cached beyond one call.
type InvoiceAmountRecord struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	Amount        float64   `json:"amount"`
	SubsidyAmount float64   `json:"subsidyAmount"`
	PenaltyAmount float64   `json:"penaltyAmount"`
	NetAmount     float64   `json:"netAmount"`
	UpdatedAt     time.Time `json:"updatedAt"`
	CustomerID    string    `json:"customerId,omitempty"`
	CustomerName  string    `json:"customerName,omitempty"`
}

// InvoicePayment describes one payment to apply against an external invoice
type InvoicePayment struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	Amount        float64 `json:"amount"`
	ReceiptNumber string  `json:"receiptNumber"`
	PaidBy        string  `json:"paidBy,omitempty"`
}

// PaymentResult reports a committed external payment update
type PaymentResult struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	ReceiptNumber string    `json:"receiptNumber"`
	Amount        float64   `json:"amount"`
	RowsAffected  int64     `json:"rowsAffected"`
	CommittedAt   time.Time `json:"committedAt"`
}
