package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE PostgreSQL reports for duplicate keys
const uniqueViolation = "23505"

// PostgresDialect talks to PostgreSQL through lib/pq
type PostgresDialect struct{}

func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) Name() string       { return "postgres" }
func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) DSN(cfg DialectConfig) string { return cfg.URL }

func (d *PostgresDialect) Bind(query string) string { return bindNumbered(query) }
func (d *PostgresDialect) ReturningID() bool        { return true }

func (d *PostgresDialect) Tune(db *sql.DB) error {
	defaultPool.apply(db)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string { return "postgres" }

func (d *PostgresDialect) MigrationsTable() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id BIGSERIAL PRIMARY KEY,
		filename TEXT UNIQUE NOT NULL,
		executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`
}

func (d *PostgresDialect) UpsertInventory() string {
	return `INSERT INTO inventory_items (student_id, item_key, quantity) VALUES (?, ?, ?)
		ON CONFLICT (student_id, item_key) DO UPDATE
		SET quantity = inventory_items.quantity + EXCLUDED.quantity, updated_at = CURRENT_TIMESTAMP`
}

func (d *PostgresDialect) UniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
