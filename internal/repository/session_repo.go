package repository

import (
	"context"
	"database/sql"
	"fmt"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// SessionRepository stores finished contests and their attempts
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession saves a finished contest and its attempts in one transaction
func (r *SessionRepository) CreateSession(session *models.Session) (int64, error) {
	var id int64
	err := r.db.WithTx(context.Background(), func(tx *database.Tx) error {
		var err error
		id, err = insertSession(tx, session)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// insertSession writes the session row followed by its attempts in turn order
func insertSession(tx database.DBTX, session *models.Session) (int64, error) {
	query := `
		INSERT INTO contest_sessions (held_at, grade, moderator, stage, contest_type, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := tx.ExecReturningID(query,
		session.Date, session.Grade, session.Moderator, session.Stage, session.ContestType, session.DurationSeconds)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}

	attemptQuery := `
		INSERT INTO contest_attempts (session_id, seq, attempted_at, student_id, student_name, word_id, word_text,
			typed_spelling, protocol_opened, protocol_closed, word_number, result, round, is_extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, a := range session.Attempts {
		_, err := tx.Exec(attemptQuery,
			id, i, a.Timestamp, a.StudentID, a.StudentName, a.WordID, a.WordText,
			a.TypedSpelling, a.ProtocolOpened, a.ProtocolClosed, a.WordNumber, a.Result, a.Round, a.IsExtra,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save attempt %d: %w", i, err)
		}
	}
	return id, nil
}

// GetSession retrieves a session with its attempts in turn order
func (r *SessionRepository) GetSession(id int64) (*models.Session, error) {
	query := `
		SELECT id, held_at, grade, moderator, stage, contest_type, duration_seconds
		FROM contest_sessions
		WHERE id = ?
	`
	session := &models.Session{}
	err := r.db.QueryRow(query, id).Scan(
		&session.ID,
		&session.Date,
		&session.Grade,
		&session.Moderator,
		&session.Stage,
		&session.ContestType,
		&session.DurationSeconds,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	attempts, err := r.getAttempts(id)
	if err != nil {
		return nil, err
	}
	session.Attempts = attempts
	return session, nil
}

func (r *SessionRepository) getAttempts(sessionID int64) ([]models.Attempt, error) {
	query := `
		SELECT attempted_at, student_id, student_name, word_id, word_text, typed_spelling,
			protocol_opened, protocol_closed, word_number, result, round, is_extra
		FROM contest_attempts
		WHERE session_id = ?
		ORDER BY seq ASC
	`
	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.Attempt{}
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(
			&a.Timestamp,
			&a.StudentID,
			&a.StudentName,
			&a.WordID,
			&a.WordText,
			&a.TypedSpelling,
			&a.ProtocolOpened,
			&a.ProtocolClosed,
			&a.WordNumber,
			&a.Result,
			&a.Round,
			&a.IsExtra,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ListSessions returns session summaries, newest first. Zero grade lists all.
func (r *SessionRepository) ListSessions(grade models.Grade) ([]models.SessionSummary, error) {
	query := `
		SELECT s.id, s.held_at, s.grade, s.moderator, s.stage, s.contest_type, s.duration_seconds,
			(SELECT COUNT(*) FROM contest_attempts a WHERE a.session_id = s.id)
		FROM contest_sessions s
	`
	var args []interface{}
	if grade != 0 {
		query += " WHERE s.grade = ?"
		args = append(args, grade)
	}
	query += " ORDER BY s.held_at DESC, s.id DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	summaries := []models.SessionSummary{}
	for rows.Next() {
		var s models.SessionSummary
		if err := rows.Scan(
			&s.ID,
			&s.Date,
			&s.Grade,
			&s.Moderator,
			&s.Stage,
			&s.ContestType,
			&s.DurationSeconds,
			&s.AttemptCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteSession removes a whole session. It reports whether a row existed.
func (r *SessionRepository) DeleteSession(id int64) (bool, error) {
	var deleted bool
	err := r.db.WithTx(context.Background(), func(tx *database.Tx) error {
		// Attempts are removed here rather than through ON DELETE CASCADE
		if _, err := tx.Exec("DELETE FROM contest_attempts WHERE session_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete attempts: %w", err)
		}

		result, err := tx.Exec("DELETE FROM contest_sessions WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read delete result: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	return deleted, err
}
