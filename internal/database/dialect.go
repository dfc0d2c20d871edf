package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dialect covers the places where the supported SQL backends disagree:
// driver wiring, placeholder syntax, id retrieval, upserts and error codes.
// Repositories write portable SQL with ? placeholders and let the dialect bind it.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(cfg DialectConfig) string

	// Bind rewrites ? placeholders into the backend's native form
	Bind(query string) string

	// ReturningID is true when inserts need a RETURNING id clause because
	// the driver has no LastInsertId
	ReturningID() bool

	// Tune applies pool limits and session settings right after connecting
	Tune(db *sql.DB) error

	MigrationsSubdir() string
	MigrationsTable() string

	// UpsertInventory adds quantity to the (student_id, item_key) row, creating it if missing
	UpsertInventory() string

	UniqueViolation(err error) bool
}

// DialectConfig holds connection settings. SQLite reads Path, the servers read URL.
type DialectConfig struct {
	Path string
	URL  string
}

// pool limits shared by every backend
type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

var defaultPool = pool{
	maxOpen:     25,
	maxIdle:     5,
	maxLifetime: 5 * time.Minute,
	maxIdleTime: time.Minute,
}

func (p pool) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.maxLifetime)
	db.SetConnMaxIdleTime(p.maxIdleTime)
}

// execAll runs session statements in order, stopping at the first failure
func execAll(db *sql.DB, statements ...string) error {
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// bindNumbered turns ? into $1, $2, ... skipping anything inside single quotes
func bindNumbered(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// dialects maps every accepted DATABASE_TYPE value to a constructor
var dialects = map[string]func() Dialect{
	"":           func() Dialect { return NewSQLiteDialect() },
	"sqlite":     func() Dialect { return NewSQLiteDialect() },
	"sqlite3":    func() Dialect { return NewSQLiteDialect() },
	"postgres":   func() Dialect { return NewPostgresDialect() },
	"postgresql": func() Dialect { return NewPostgresDialect() },
	"pgx":        func() Dialect { return NewPgxDialect() },
	"mysql":      func() Dialect { return NewMySQLDialect() },
}

// DialectFor resolves a configured database type to its dialect
func DialectFor(databaseType string) (Dialect, error) {
	newDialect, ok := dialects[strings.ToLower(strings.TrimSpace(databaseType))]
	if !ok {
		return nil, fmt.Errorf("unsupported database type %q (want one of %s)", databaseType, strings.Join(dialectNames(), ", "))
	}
	return newDialect(), nil
}

func dialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsUniqueViolation reports whether err is a unique-constraint failure from any
// supported driver. Services use it without knowing which backend is configured.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	for _, d := range []Dialect{NewSQLiteDialect(), NewPostgresDialect(), NewPgxDialect(), NewMySQLDialect()} {
		if d.UniqueViolation(err) {
			return true
		}
	}
	return false
}
