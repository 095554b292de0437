package providers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/nazrin/tadikahub/internal/app/models"
	"github.com/nazrin/tadikahub/internal/config"
	"github.com/nazrin/tadikahub/internal/db"
	"github.com/nazrin/tadikahub/internal/pkg/apperrors"
	"github.com/nazrin/tadikahub/internal/pkg/helpers"
	"github.com/nazrin/tadikahub/internal/pkg/logger"
	"github.com/nazrin/tadikahub/internal/pkg/sshtunnel"
)

// MySQLSSHProvider reads invoice amounts from the legacy MySQL database
// through an SSH local forward. Each call builds and tears down its own
// tunnel and connection; nothing is reused between calls.
type MySQLSSHProvider struct {
	cfg config.InvoiceConfig
}

// NewMySQLSSHProvider creates a provider for the given bridge configuration.
func NewMySQLSSHProvider(cfg config.InvoiceConfig) *MySQLSSHProvider {
	return &MySQLSSHProvider{cfg: cfg}
}

// GetAmountByInvoiceNumber fetches a single invoice snapshot.
func (p *MySQLSSHProvider) GetAmountByInvoiceNumber(ctx context.Context, invoiceNumber string) (*models.InvoiceAmountRecord, error) {
	records, err := p.GetBatchAmounts(ctx, []string{invoiceNumber})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, apperrors.ErrInvoiceNotFound
	}
	return &records[0], nil
}

// GetBatchAmounts opens the tunnel, queries the legacy schema and maps the
// rows. Tunnel and connection are closed on every path.
func (p *MySQLSSHProvider) GetBatchAmounts(ctx context.Context, invoiceNumbers []string) ([]models.InvoiceAmountRecord, error) {
	conn, tunnel, err := openTunneledConn(ctx, p.cfg)
	if err != nil {
		return nil, err
	}
	defer tunnel.Close()
	defer conn.Close()

	query, args, err := p.buildQuery(invoiceNumbers)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("amount query failed: %w", err)
	}
	defer rows.Close()

	records, err := scanToRecords(rows)
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("requested", len(invoiceNumbers)).Int("returned", len(records)).Msg("Fetched invoice amounts from legacy database")
	return records, nil
}

// buildQuery produces either the configured custom query (with the
// customer-id placeholder substituted, escaped) or a generated SELECT over
// the configured table and columns.
func (p *MySQLSSHProvider) buildQuery(invoiceNumbers []string) (string, []interface{}, error) {
	if p.cfg.CustomQuery != "" {
		query := strings.ReplaceAll(p.cfg.CustomQuery, "{customerId}",
			helpers.EscapeStringLiteral(p.cfg.CustomerID))
		return query, nil, nil
	}

	s := p.cfg.Schema
	numbers := make([]interface{}, len(invoiceNumbers))
	for i, n := range invoiceNumbers {
		numbers[i] = n
	}

	builder := sq.Select(
		helpers.QuoteIdentifier(s.NumberColumn),
		helpers.QuoteIdentifier(s.AmountColumn),
		helpers.QuoteIdentifier(s.SubsidyColumn),
		helpers.QuoteIdentifier(s.PenaltyColumn),
		helpers.QuoteIdentifier(s.NetColumn),
		helpers.QuoteIdentifier(s.UpdatedAtColumn),
		helpers.QuoteIdentifier(s.CustomerIDColumn),
		helpers.QuoteIdentifier(s.CustomerNameColumn),
	).
		From(helpers.QuoteIdentifier(s.InvoiceTable)).
		Where(sq.Eq{helpers.QuoteIdentifier(s.NumberColumn): numbers})

	if p.cfg.CustomerID != "" {
		builder = builder.Where(sq.Eq{helpers.QuoteIdentifier(s.CustomerIDColumn): p.cfg.CustomerID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build amount query: %w", err)
	}
	return query, args, nil
}

// scanToRecords reads every row into a column-name map and converts it to
// the canonical record shape, tolerating both legacy column schemes.
func scanToRecords(rows *sql.Rows) ([]models.InvoiceAmountRecord, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var records []models.InvoiceAmountRecord
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan amount row: %w", err)
		}

		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		records = append(records, mapRowToRecord(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("amount rows iteration failed: %w", err)
	}

	return records, nil
}

// openTunneledConn establishes tunnel then connection. On connection failure
// the tunnel is closed before returning; on success the caller owns both.
func openTunneledConn(ctx context.Context, cfg config.InvoiceConfig) (*sql.DB, *sshtunnel.Tunnel, error) {
	tunnel, err := sshtunnel.Open(sshtunnel.Config{
		SSHHost:    cfg.SSH.Host,
		SSHPort:    cfg.SSH.Port,
		SSHUser:    cfg.SSH.User,
		KeyPath:    cfg.SSH.KeyPath,
		Passphrase: cfg.SSH.Passphrase,
		TargetHost: cfg.MySQL.Host,
		TargetPort: cfg.MySQL.Port,
	})
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.OpenMySQL(ctx, db.MySQLParams{
		Addr:     tunnel.LocalAddr(),
		User:     cfg.MySQL.User,
		Password: cfg.MySQL.Password,
		DBName:   cfg.MySQL.DBName,
	})
	if err != nil {
		tunnel.Close()
		return nil, nil, err
	}

	return conn, tunnel, nil
}
