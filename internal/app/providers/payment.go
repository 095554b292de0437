package providers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/config"
	"github.com/nazrin/tadikahub/internal/db"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/dberrors"
	"github.com/nazrin/tadikahub/internal/pkg/helpers"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
)

// MySQLPaymentWriter applies payments against the legacy database through
// the same tunnel lifecycle as the read provider. Payment failures always
// propagate: there is no fallback on the write path.
type MySQLPaymentWriter struct {
	cfg config.InvoiceConfig
}

// NewMySQLPaymentWriter creates a writer for the given bridge configuration.
func NewMySQLPaymentWriter(cfg config.InvoiceConfig) *MySQLPaymentWriter {
	return &MySQLPaymentWriter{cfg: cfg}
}

// validatePayment fails fast before any connection is opened.
func validatePayment(payment models.InvoicePayment) error {
	if strings.TrimSpace(payment.InvoiceNumber) == "" {
		return fmt.Errorf("%w: invoice number is required", apperrors.ErrInvalidPayment)
	}
	if payment.Amount <= 0 {
		return fmt.Errorf("%w: payment amount must be positive", apperrors.ErrInvalidPayment)
	}
	if strings.TrimSpace(payment.ReceiptNumber) == "" {
		return fmt.Errorf("%w: receipt number is required", apperrors.ErrInvalidPayment)
	}
	return nil
}

// ApplyPayment runs the payment transaction: one joined UPDATE adjusting
// outstanding/paid amounts and appending the receipt reference, then the
// stored-function recompute of the student's cached outstanding total.
// Both commit together or neither does.
func (w *MySQLPaymentWriter) ApplyPayment(ctx context.Context, payment models.InvoicePayment) (*models.PaymentResult, error) {
	if err := validatePayment(payment); err != nil {
		return nil, err
	}

	conn, tunnel, err := openTunneledConn(ctx, w.cfg)
	if err != nil {
		return nil, err
	}
	defer tunnel.Close()
	defer conn.Close()

	return w.applyPaymentTx(ctx, conn, payment)
}

// applyPaymentTx runs both statements in one transaction against an already
// open connection.
func (w *MySQLPaymentWriter) applyPaymentTx(ctx context.Context, conn *sql.DB, payment models.InvoicePayment) (*models.PaymentResult, error) {
	var rowsAffected int64
	err := db.WithTransaction(ctx, conn, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, w.paymentUpdateSQL(),
			payment.Amount, payment.Amount, payment.ReceiptNumber, payment.InvoiceNumber)
		if err != nil {
			if dberrors.IsSchemaMismatchError(err) {
				return fmt.Errorf("%w: legacy schema does not match configured identifiers: %v", apperrors.ErrExternalUnavailable, err)
			}
			return fmt.Errorf("payment update failed: %w", err)
		}

		rowsAffected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrInvoiceNotFound, payment.InvoiceNumber)
		}

		studentID, err := w.resolveStudentID(ctx, tx, payment.InvoiceNumber)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, w.outstandingUpdateSQL(), studentID); err != nil {
			if dberrors.IsSchemaMismatchError(err) {
				return fmt.Errorf("%w: stored function %s not available: %v", apperrors.ErrExternalUnavailable, w.cfg.Schema.OutstandingFunction, err)
			}
			return fmt.Errorf("outstanding recompute failed: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).Str("invoice", payment.InvoiceNumber).Msg("Payment transaction rolled back")
		return nil, err
	}

	logger.Info().
		Str("invoice", payment.InvoiceNumber).
		Str("receipt", payment.ReceiptNumber).
		Float64("amount", payment.Amount).
		Msg("Payment committed to legacy database")

	return &models.PaymentResult{
		InvoiceNumber: payment.InvoiceNumber,
		ReceiptNumber: payment.ReceiptNumber,
		Amount:        payment.Amount,
		RowsAffected:  rowsAffected,
		CommittedAt:   time.Now(),
	}, nil
}

// paymentUpdateSQL builds the single joined UPDATE: decrement outstanding,
// increment paid, append the receipt ref into the JSON extended-fields
// column (skipping empty or null existing refs), all in one statement so the
// joined rows change together.
func (w *MySQLPaymentWriter) paymentUpdateSQL() string {
	s := w.cfg.Schema
	outstanding := helpers.QuoteQualified("inv", s.OutstandingColumn)
	paid := helpers.QuoteQualified("inv", s.PaidColumn)
	ext := helpers.QuoteQualified("det", s.ExtendedFieldsColumn)

	existingRefs := fmt.Sprintf(
		"NULLIF(NULLIF(JSON_UNQUOTE(JSON_EXTRACT(COALESCE(%s, JSON_OBJECT()), '$.receiptRefs')), 'null'), '')",
		ext)

	return fmt.Sprintf(
		"UPDATE %s inv INNER JOIN %s det ON %s = %s "+
			"SET %s = %s - ?, %s = %s + ?, "+
			"%s = JSON_SET(COALESCE(%s, JSON_OBJECT()), '$.receiptRefs', CONCAT_WS(',', %s, ?)) "+
			"WHERE %s = ?",
		helpers.QuoteIdentifier(s.InvoiceTable), helpers.QuoteIdentifier(s.DetailTable),
		helpers.QuoteQualified("det", s.DetailJoinColumn), helpers.QuoteQualified("inv", s.InvoiceIDColumn),
		outstanding, outstanding, paid, paid,
		ext, ext, existingRefs,
		helpers.QuoteQualified("inv", s.NumberColumn),
	)
}

// outstandingUpdateSQL recomputes the student's cached outstanding total via
// the configured stored function.
func (w *MySQLPaymentWriter) outstandingUpdateSQL() string {
	s := w.cfg.Schema
	return fmt.Sprintf(
		"UPDATE %s SET %s = %s(%s) WHERE %s = ?",
		helpers.QuoteIdentifier(s.StudentTable),
		helpers.QuoteIdentifier(s.StudentOutstandingCol),
		helpers.QuoteIdentifier(s.OutstandingFunction),
		helpers.QuoteIdentifier(s.StudentIDColumn),
		helpers.QuoteIdentifier(s.StudentIDColumn),
	)
}

// resolveStudentID uses the configured customer scope when present,
// otherwise looks up the owning student from the invoice row.
func (w *MySQLPaymentWriter) resolveStudentID(ctx context.Context, tx *sql.Tx, invoiceNumber string) (string, error) {
	if w.cfg.CustomerID != "" {
		return w.cfg.CustomerID, nil
	}

	s := w.cfg.Schema
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1",
		helpers.QuoteIdentifier(s.InvoiceStudentIDColumn),
		helpers.QuoteIdentifier(s.InvoiceTable),
		helpers.QuoteIdentifier(s.NumberColumn))

	var studentID string
	if err := tx.QueryRowContext(ctx, query, invoiceNumber).Scan(&studentID); err != nil {
		return "", fmt.Errorf("failed to resolve owning student for %s: %w", invoiceNumber, err)
	}
	return studentID, nil
}
