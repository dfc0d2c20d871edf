package database

import (
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDialect is the default backend for local installs and tests
type SQLiteDialect struct{}

func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string       { return "sqlite" }
func (d *SQLiteDialect) DriverName() string { return "sqlite3" }

// DSN sets a busy timeout so concurrent drill answers wait instead of failing with SQLITE_BUSY
func (d *SQLiteDialect) DSN(cfg DialectConfig) string {
	return "file:" + cfg.Path + "?_busy_timeout=5000&_foreign_keys=on"
}

func (d *SQLiteDialect) Bind(query string) string { return query }
func (d *SQLiteDialect) ReturningID() bool        { return false }

func (d *SQLiteDialect) Tune(db *sql.DB) error {
	defaultPool.apply(db)
	return execAll(db, "PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON")
}

func (d *SQLiteDialect) MigrationsSubdir() string { return "sqlite" }

func (d *SQLiteDialect) MigrationsTable() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT UNIQUE NOT NULL,
		executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
}

func (d *SQLiteDialect) UpsertInventory() string {
	return `INSERT INTO inventory_items (student_id, item_key, quantity) VALUES (?, ?, ?)
		ON CONFLICT(student_id, item_key) DO UPDATE
		SET quantity = inventory_items.quantity + excluded.quantity, updated_at = CURRENT_TIMESTAMP`
}

func (d *SQLiteDialect) UniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
