package providers

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/config"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
)

func TestValidatePaymentFailsFast(t *testing.T) {
	cases := []struct {
		name    string
		payment models.InvoicePayment
	}{
		{"missing invoice number", models.InvoicePayment{Amount: 100, ReceiptNumber: "RCP-1"}},
		{"blank invoice number", models.InvoicePayment{InvoiceNumber: "  ", Amount: 100, ReceiptNumber: "RCP-1"}},
		{"zero amount", models.InvoicePayment{InvoiceNumber: "INV-1", ReceiptNumber: "RCP-1"}},
		{"negative amount", models.InvoicePayment{InvoiceNumber: "INV-1", Amount: -5, ReceiptNumber: "RCP-1"}},
		{"missing receipt", models.InvoicePayment{InvoiceNumber: "INV-1", Amount: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePayment(tc.payment)
			require.ErrorIs(t, err, apperrors.ErrInvalidPayment)
		})
	}

	assert.NoError(t, validatePayment(models.InvoicePayment{
		InvoiceNumber: "INV-2025-0101",
		Amount:        120.50,
		ReceiptNumber: "RCP-2025-010",
	}))
}

// defaultSchemaConfig loads the stock schema identifiers the writer builds
// its SQL from.
func defaultSchemaConfig(t *testing.T) config.InvoiceConfig {
	t.Helper()
	t.Setenv("AUTH_JWT_SECRET", "test-secret")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	return cfg.Invoice
}

func TestPaymentUpdateSQLShape(t *testing.T) {
	w := NewMySQLPaymentWriter(defaultSchemaConfig(t))
	query := w.paymentUpdateSQL()

	// One statement updates the joined pair: balance columns on the
	// invoice side, receipt refs on the detail side.
	assert.Contains(t, query, "UPDATE `invoices` inv INNER JOIN `invoice_details` det")
	assert.Contains(t, query, "`inv`.`outstanding_amount` = `inv`.`outstanding_amount` - ?")
	assert.Contains(t, query, "`inv`.`paid_amount` = `inv`.`paid_amount` + ?")
	assert.Contains(t, query, "JSON_SET")
	assert.Contains(t, query, "'$.receiptRefs'")
	assert.Contains(t, query, "CONCAT_WS")
	assert.Contains(t, query, "WHERE `inv`.`invoice_number` = ?")
}

func TestOutstandingUpdateSQLUsesStoredFunction(t *testing.T) {
	w := NewMySQLPaymentWriter(defaultSchemaConfig(t))
	query := w.outstandingUpdateSQL()

	assert.Contains(t, query, "UPDATE `students`")
	assert.Contains(t, query, "`fn_student_outstanding`(`id`)")
	assert.Contains(t, query, "WHERE `id` = ?")
}

// recordingConn is a database/sql/driver connection that records the
// transaction lifecycle and scripts each statement's outcome, standing in
// for the legacy database.
type recordingConn struct {
	ops       []string
	execErrs  []error
	execRows  []int64
	execCount int
}

func (c *recordingConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("prepared statements not scripted")
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *recordingConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	c.ops = append(c.ops, "begin")
	return &recordingTx{conn: c}, nil
}

func (c *recordingConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	idx := c.execCount
	c.execCount++
	c.ops = append(c.ops, "exec")

	if idx < len(c.execErrs) && c.execErrs[idx] != nil {
		return nil, c.execErrs[idx]
	}
	rows := int64(1)
	if idx < len(c.execRows) {
		rows = c.execRows[idx]
	}
	return recordingResult{rows: rows}, nil
}

type recordingTx struct{ conn *recordingConn }

func (tx *recordingTx) Commit() error {
	tx.conn.ops = append(tx.conn.ops, "commit")
	return nil
}

func (tx *recordingTx) Rollback() error {
	tx.conn.ops = append(tx.conn.ops, "rollback")
	return nil
}

type recordingResult struct{ rows int64 }

func (r recordingResult) LastInsertId() (int64, error) { return 0, nil }
func (r recordingResult) RowsAffected() (int64, error) { return r.rows, nil }

type recordingConnector struct{ conn *recordingConn }

func (c recordingConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c recordingConnector) Driver() driver.Driver                        { return recordingDriver{} }

type recordingDriver struct{}

func (recordingDriver) Open(string) (driver.Conn, error) {
	return nil, errors.New("open via connector")
}

func paymentWriterWithConn(t *testing.T, conn *recordingConn) (*MySQLPaymentWriter, *sql.DB) {
	t.Helper()
	cfg := defaultSchemaConfig(t)
	cfg.CustomerID = "STU-001" // skip the owning-student lookup
	dbConn := sql.OpenDB(recordingConnector{conn: conn})
	t.Cleanup(func() { dbConn.Close() })
	return NewMySQLPaymentWriter(cfg), dbConn
}

func testPayment() models.InvoicePayment {
	return models.InvoicePayment{
		InvoiceNumber: "INV-2025-0101",
		Amount:        120.50,
		ReceiptNumber: "RCP-2025-010",
	}
}

func TestApplyPaymentCommitsWhenBothStatementsSucceed(t *testing.T) {
	conn := &recordingConn{}
	w, dbConn := paymentWriterWithConn(t, conn)

	result, err := w.applyPaymentTx(context.Background(), dbConn, testPayment())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.RowsAffected)
	assert.Equal(t, "INV-2025-0101", result.InvoiceNumber)
	assert.Equal(t, []string{"begin", "exec", "exec", "commit"}, conn.ops)
}

func TestApplyPaymentRollsBackWhenRecomputeFails(t *testing.T) {
	conn := &recordingConn{
		execErrs: []error{nil, errors.New("FUNCTION fn_student_outstanding does not exist")},
	}
	w, dbConn := paymentWriterWithConn(t, conn)

	_, err := w.applyPaymentTx(context.Background(), dbConn, testPayment())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outstanding recompute failed")

	// The invoice update must not survive the failed recompute.
	assert.Equal(t, []string{"begin", "exec", "exec", "rollback"}, conn.ops)
	assert.NotContains(t, conn.ops, "commit")
}

func TestApplyPaymentRollsBackUnknownInvoice(t *testing.T) {
	conn := &recordingConn{execRows: []int64{0}}
	w, dbConn := paymentWriterWithConn(t, conn)

	_, err := w.applyPaymentTx(context.Background(), dbConn, testPayment())
	require.ErrorIs(t, err, apperrors.ErrInvoiceNotFound)

	assert.Equal(t, []string{"begin", "exec", "rollback"}, conn.ops)
}
