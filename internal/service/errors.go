package service

import (
	"errors"
	"fmt"

	"spellingbee/internal/database"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrSessionExpired     = fmt.Errorf("%w: session expired", ErrUnauthorized)
	ErrEmailTaken         = fmt.Errorf("%w: email already taken", ErrConflict)
	ErrInsufficientCoins  = fmt.Errorf("%w: not enough coins", ErrConflict)
	ErrWordNotIssued      = fmt.Errorf("%w: word was not issued or was already answered", ErrConflict)

	// ErrSaveFailed means a finished contest could not be persisted. The summary stays queued for retry.
	ErrSaveFailed = errors.New("failed to save contest session")
)

// storeError wraps a repository error, mapping unique-constraint violations to ErrConflict
func storeError(action string, err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("failed to %s: %w", action, ErrConflict)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// notFound builds a not-found error naming the missing entity
func notFound(entity string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}
