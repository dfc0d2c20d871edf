package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// ErrAlreadyLinked is returned when an account is already tied to an OAuth identity
var ErrAlreadyLinked = errors.New("oauth provider already linked")

// UserRepository stores admin and moderator accounts plus their cookie sessions
type UserRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const selectUser = `SELECT id, email, password_hash, name, oauth_provider, oauth_subject, is_admin, created_at FROM users`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name,
		&u.OAuthProvider, &u.OAuthSubject, &u.IsAdmin, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// findUser returns the single user matching where, or nil when none does
func (r *UserRepository) findUser(where string, args ...interface{}) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(selectUser+" WHERE "+where, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// CreateUser inserts a password account. The first account ever created becomes an admin.
func (r *UserRepository) CreateUser(email, passwordHash, name string) (*models.User, error) {
	return r.insertUser(&models.User{Email: email, PasswordHash: passwordHash, Name: name})
}

// CreateOAuthUser inserts an account that signs in through an OAuth provider
func (r *UserRepository) CreateOAuthUser(email, name, provider, subject string) (*models.User, error) {
	return r.insertUser(&models.User{Email: email, Name: name, OAuthProvider: provider, OAuthSubject: subject})
}

// insertUser counts and inserts in one transaction so two concurrent
// first sign-ups cannot both become admin
func (r *UserRepository) insertUser(u *models.User) (*models.User, error) {
	err := r.db.WithTx(context.Background(), func(tx *database.Tx) error {
		var existing int
		if err := tx.QueryRow("SELECT COUNT(*) FROM users").Scan(&existing); err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		u.IsAdmin = existing == 0

		id, err := tx.ExecReturningID(
			"INSERT INTO users (email, password_hash, name, oauth_provider, oauth_subject, is_admin) VALUES (?, ?, ?, ?, ?, ?)",
			u.Email, u.PasswordHash, u.Name, u.OAuthProvider, u.OAuthSubject, u.IsAdmin)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		u.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.CreatedAt = time.Now()
	return u, nil
}

func (r *UserRepository) CountUsers() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	return r.findUser("email = ?", email)
}

func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	return r.findUser("id = ?", id)
}

func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	return r.findUser("oauth_provider = ? AND oauth_subject = ?", provider, subject)
}

// LinkOAuthProvider attaches an OAuth identity to an account that has none yet
func (r *UserRepository) LinkOAuthProvider(userID int64, provider, subject string) error {
	result, err := r.db.Exec(
		"UPDATE users SET oauth_provider = ?, oauth_subject = ? WHERE id = ? AND oauth_provider = ''",
		provider, subject, userID)
	if err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to link oauth provider: %w", err)
	} else if n == 0 {
		return ErrAlreadyLinked
	}
	return nil
}

func (r *UserRepository) SetAdmin(id int64, isAdmin bool) error {
	if _, err := r.db.Exec("UPDATE users SET is_admin = ? WHERE id = ?", isAdmin, id); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// GetAllUsers lists accounts, newest first
func (r *UserRepository) GetAllUsers() ([]models.User, error) {
	rows, err := r.db.Query(selectUser + " ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CreateSession stores a cookie session for userID
func (r *UserRepository) CreateSession(sessionID string, userID int64, expiresAt time.Time) (*models.AuthSession, error) {
	if _, err := r.db.Exec("INSERT INTO auth_sessions (id, user_id, expires_at) VALUES (?, ?, ?)",
		sessionID, userID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &models.AuthSession{ID: sessionID, UserID: userID, ExpiresAt: expiresAt, CreatedAt: time.Now()}, nil
}

// GetSession returns nil when the session does not exist
func (r *UserRepository) GetSession(sessionID string) (*models.AuthSession, error) {
	var s models.AuthSession
	err := r.db.QueryRow("SELECT id, user_id, expires_at, created_at FROM auth_sessions WHERE id = ?", sessionID).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *UserRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec("DELETE FROM auth_sessions WHERE id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *UserRepository) DeleteExpiredSessions() error {
	if _, err := r.db.Exec("DELETE FROM auth_sessions WHERE expires_at < ?", time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
