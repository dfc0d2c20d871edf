package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"spellingbee/internal/config"
)

// DB is a connection pool that binds ? placeholders for its dialect
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Initialize opens a SQLite database at dbPath. Used by tests and the local fallback.
func Initialize(dbPath string) (*DB, error) {
	return open(NewSQLiteDialect(), DialectConfig{Path: dbPath})
}

// InitializeWithConfig connects to the backend named by cfg.DatabaseType
func InitializeWithConfig(cfg *config.Config) (*DB, error) {
	dialect, err := DialectFor(cfg.DatabaseType)
	if err != nil {
		return nil, err
	}
	return open(dialect, DialectConfig{URL: cfg.DatabaseURL, Path: cfg.DatabasePath})
}

func open(dialect Dialect, cfg DialectConfig) (*DB, error) {
	sqlDB, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name(), err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", dialect.Name(), err)
	}

	if err := dialect.Tune(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to configure %s connection: %w", dialect.Name(), err)
	}

	log.Printf("Connected to %s database", dialect.Name())
	return &DB{DB: sqlDB, Dialect: dialect}, nil
}

func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(db.Dialect.Bind(query), args...)
}

func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(db.Dialect.Bind(query), args...)
}

func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(db.Dialect.Bind(query), args...)
}

// ExecReturningID runs an INSERT and returns the new row's id
func (db *DB) ExecReturningID(query string, args ...interface{}) (int64, error) {
	return insertID(context.Background(), db.DB, db.Dialect, query, args...)
}

// Backend returns the pool's dialect
func (db *DB) Backend() Dialect {
	return db.Dialect
}

// runner is the part of *sql.DB and *sql.Tx that insertID needs
type runner interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertID(ctx context.Context, r runner, dialect Dialect, query string, args ...interface{}) (int64, error) {
	bound := dialect.Bind(query)

	if !dialect.ReturningID() {
		result, err := r.ExecContext(ctx, bound, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	bound = strings.TrimSuffix(strings.TrimSpace(bound), ";") + " RETURNING id"

	var id int64
	if err := r.QueryRowContext(ctx, bound, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
