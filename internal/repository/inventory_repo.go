package repository

import (
	"context"
	"errors"
	"fmt"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// ErrInsufficientCoins is returned when a purchase costs more than the balance
var ErrInsufficientCoins = errors.New("insufficient coins")

// InventoryRepository handles shop purchases and owned items
type InventoryRepository struct {
	db database.DBTX
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db database.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Purchase deducts price from the student's coins and adds one item, atomically.
// The deduction only applies while the balance covers the price.
func (r *InventoryRepository) Purchase(studentID int64, itemKey string, price int) error {
	return r.db.WithTx(context.Background(), func(tx *database.Tx) error {
		return spend(tx, studentID, itemKey, price)
	})
}

func spend(tx database.DBTX, studentID int64, itemKey string, price int) error {
	result, err := tx.Exec(
		"UPDATE students SET coins = coins - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND coins >= ?",
		price, studentID, price,
	)
	if err != nil {
		return fmt.Errorf("failed to spend coins: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read spend result: %w", err)
	}
	if rows == 0 {
		return ErrInsufficientCoins
	}

	if _, err := tx.Exec(tx.Backend().UpsertInventory(), studentID, itemKey, 1); err != nil {
		return fmt.Errorf("failed to add inventory item: %w", err)
	}
	return nil
}

// ListInventory returns everything a student owns
func (r *InventoryRepository) ListInventory(studentID int64) ([]models.InventoryItem, error) {
	query := `
		SELECT student_id, item_key, quantity, updated_at
		FROM inventory_items
		WHERE student_id = ? AND quantity > 0
		ORDER BY item_key ASC
	`
	rows, err := r.db.Query(query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.StudentID, &item.ItemKey, &item.Quantity, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
