package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// erDupEntry is MySQL's duplicate key error number
const erDupEntry = 1062

// MySQLDialect talks to MySQL or MariaDB
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) Name() string       { return "mysql" }
func (d *MySQLDialect) DriverName() string { return "mysql" }

// DSN adds parseTime so DATETIME columns scan into time.Time
func (d *MySQLDialect) DSN(cfg DialectConfig) string {
	dsn := cfg.URL
	if strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "parseTime=true&multiStatements=true"
}

func (d *MySQLDialect) Bind(query string) string { return query }
func (d *MySQLDialect) ReturningID() bool        { return false }

func (d *MySQLDialect) Tune(db *sql.DB) error {
	defaultPool.apply(db)
	return execAll(db, "SET FOREIGN_KEY_CHECKS = 1")
}

func (d *MySQLDialect) MigrationsSubdir() string { return "mysql" }

func (d *MySQLDialect) MigrationsTable() string {
	return `CREATE TABLE IF NOT EXISTS migrations (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		filename VARCHAR(255) UNIQUE NOT NULL,
		executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
	)`
}

func (d *MySQLDialect) UpsertInventory() string {
	return "INSERT INTO inventory_items (student_id, item_key, quantity) VALUES (?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = CURRENT_TIMESTAMP"
}

func (d *MySQLDialect) UniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == erDupEntry
}
