package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is what repositories are built on so they run the same way
// inside or outside a transaction. *DB and *Tx both satisfy it.
type DBTX interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	ExecReturningID(query string, args ...interface{}) (int64, error)
	Backend() Dialect
	WithTx(ctx context.Context, fn func(tx *Tx) error) error
}

// Tx is a transaction that binds placeholders like DB does.
// Obtain one through WithTx, which owns commit and rollback.
type Tx struct {
	ctx     context.Context
	tx      *sql.Tx
	dialect Dialect
}

// WithTx runs fn inside a transaction. The transaction commits when fn returns
// nil and rolls back on error or panic.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	tx := &Tx{ctx: ctx, tx: sqlTx, dialect: db.Dialect}

	defer func() {
		if p := recover(); p != nil {
			sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithTx joins the enclosing transaction. The outermost WithTx decides
// whether everything commits.
func (tx *Tx) WithTx(_ context.Context, fn func(tx *Tx) error) error {
	return fn(tx)
}

func (tx *Tx) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return tx.tx.QueryContext(tx.ctx, tx.dialect.Bind(query), args...)
}

func (tx *Tx) QueryRow(query string, args ...interface{}) *sql.Row {
	return tx.tx.QueryRowContext(tx.ctx, tx.dialect.Bind(query), args...)
}

func (tx *Tx) Exec(query string, args ...interface{}) (sql.Result, error) {
	return tx.tx.ExecContext(tx.ctx, tx.dialect.Bind(query), args...)
}

func (tx *Tx) ExecReturningID(query string, args ...interface{}) (int64, error) {
	return insertID(tx.ctx, tx.tx, tx.dialect, query, args...)
}

func (tx *Tx) Backend() Dialect {
	return tx.dialect
}

// execScript runs DDL exactly as written
func (tx *Tx) execScript(stmt string) error {
	_, err := tx.tx.ExecContext(tx.ctx, stmt)
	return err
}
