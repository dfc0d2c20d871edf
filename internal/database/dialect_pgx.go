package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PgxDialect talks to PostgreSQL through the pgx stdlib driver.
// SQL and migrations are shared with PostgresDialect.
type PgxDialect struct {
	PostgresDialect
}

func NewPgxDialect() *PgxDialect {
	return &PgxDialect{}
}

func (d *PgxDialect) Name() string       { return "pgx" }
func (d *PgxDialect) DriverName() string { return "pgx" }

func (d *PgxDialect) UniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
