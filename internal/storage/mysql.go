package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers that mean the value does not fit.
const (
	mysqlErrRecordFileFull    = 1114
	mysqlErrNetPacketTooLarge = 1153
	mysqlErrDataTooLong       = 1406
)

// MySQLBackend stores keys as rows of the kv_store table.
type MySQLBackend struct {
	db    *sql.DB
	quota int64
}

// OpenMySQL connects to dsn, pings the server and creates the table if needed.
// quota <= 0 means DefaultQuota.
func OpenMySQL(ctx context.Context, dsn string, quota int64) (*MySQLBackend, error) {
	if dsn == "" {
		return nil, errors.New("mysql dsn is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	b := NewMySQLBackend(db, quota)
	if err := b.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// NewMySQLBackend wraps an existing connection pool.
func NewMySQLBackend(db *sql.DB, quota int64) *MySQLBackend {
	if quota <= 0 {
		quota = DefaultQuota
	}
	return &MySQLBackend{db: db, quota: quota}
}

// Close closes the connection pool.
func (b *MySQLBackend) Close() error { return b.db.Close() }

// Quota implements Quotaer.
func (b *MySQLBackend) Quota() int64 { return b.quota }

func (b *MySQLBackend) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS kv_store (
    k VARCHAR(191) PRIMARY KEY,
    v LONGBLOB NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`
	_, err := b.db.ExecContext(ctx, ddl)
	return err
}

// Get implements Backend.
func (b *MySQLBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := b.db.QueryRowContext(ctx, `SELECT v FROM kv_store WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Set implements Backend.
func (b *MySQLBackend) Set(ctx context.Context, key string, value []byte) error {
	var used int64
	err := b.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(LENGTH(v)), 0) FROM kv_store WHERE k <> ?`, key).Scan(&used)
	if err != nil {
		return err
	}
	if used+int64(len(value)) > b.quota {
		return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrQuotaExceeded, len(value), used, b.quota)
	}

	_, err = b.db.ExecContext(ctx,
		`INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`,
		key, value)
	return classifyMySQLError(err)
}

// Remove implements Backend.
func (b *MySQLBackend) Remove(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM kv_store WHERE k = ?`, key)
	return err
}

func classifyMySQLError(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrRecordFileFull, mysqlErrNetPacketTooLarge, mysqlErrDataTooLong:
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
	}
	return err
}
