package repository

import (
	"database/sql"
	"fmt"
	"time"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// PaymentRepository handles database operations for school payments
type PaymentRepository struct {
	db database.DBTX
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db database.DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = "id, school_id, amount_cents, currency, reference, status, paid_at, created_at"

func scanPayment(row rowScanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(
		&p.ID,
		&p.SchoolID,
		&p.AmountCents,
		&p.Currency,
		&p.Reference,
		&p.Status,
		&p.PaidAt,
		&p.CreatedAt,
	)
	return p, err
}

// CreatePayment inserts a payment
func (r *PaymentRepository) CreatePayment(p *models.Payment) error {
	query := `
		INSERT INTO payments (school_id, amount_cents, currency, reference, status, paid_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, p.SchoolID, p.AmountCents, p.Currency, p.Reference, p.Status, p.PaidAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	p.ID = id
	p.CreatedAt = time.Now()
	return nil
}

// GetPayment retrieves a payment by ID
func (r *PaymentRepository) GetPayment(id int64) (*models.Payment, error) {
	p, err := scanPayment(r.db.QueryRow("SELECT "+paymentColumns+" FROM payments WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListPayments returns payments newest first. Zero schoolID lists all.
func (r *PaymentRepository) ListPayments(schoolID int64) ([]models.Payment, error) {
	query := "SELECT " + paymentColumns + " FROM payments"
	var args []interface{}
	if schoolID != 0 {
		query += " WHERE school_id = ?"
		args = append(args, schoolID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// UpdatePayment saves amount, reference and status changes
func (r *PaymentRepository) UpdatePayment(p *models.Payment) error {
	query := `
		UPDATE payments
		SET amount_cents = ?, currency = ?, reference = ?, status = ?, paid_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, p.AmountCents, p.Currency, p.Reference, p.Status, p.PaidAt, p.ID); err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return nil
}

// DeletePayment removes a payment
func (r *PaymentRepository) DeletePayment(id int64) error {
	if _, err := r.db.Exec("DELETE FROM payments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}
