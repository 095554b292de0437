// Package db opens short-lived connections to the legacy finance MySQL
// database. The bridge never pools: one connection per call, closed with the
// tunnel that carries it.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/nazrin/tadikahub/internal/pkg/logger"
)

const mysqlConnectTimeout = 15 * time.Second

// MySQLParams describe the legacy database credentials. Addr is the address
// to dial, which for tunneled access is the local forward, not the real host.
type MySQLParams struct {
	Addr     string
	User     string
	Password string
	DBName   string
}

// OpenMySQL opens and pings a single-use MySQL connection.
func OpenMySQL(ctx context.Context, params MySQLParams) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = params.Addr
	cfg.User = params.User
	cfg.Passwd = params.Password
	cfg.DBName = params.DBName
	cfg.Timeout = mysqlConnectTimeout
	cfg.ParseTime = true

	conn, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}

	// Single-use: no idle connections kept around after the call.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(0)

	pingCtx, cancel := context.WithTimeout(ctx, mysqlConnectTimeout)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish mysql connection: %w", err)
	}

	return conn, nil
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx *sql.Tx) error

// WithTransaction runs fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func WithTransaction(ctx context.Context, conn *sql.DB, fn TransactionFn) error {
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
