package repository

import (
	"database/sql"
	"fmt"
	"time"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// SchoolRepository handles database operations for invited schools
type SchoolRepository struct {
	db database.DBTX
}

// NewSchoolRepository creates a new school repository
func NewSchoolRepository(db database.DBTX) *SchoolRepository {
	return &SchoolRepository{db: db}
}

const schoolColumns = "id, name, slug, contact_name, contact_email, invitation_code, invited_at, joined_at, created_at"

func scanSchool(row rowScanner) (*models.School, error) {
	s := &models.School{}
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Slug,
		&s.ContactName,
		&s.ContactEmail,
		&s.InvitationCode,
		&s.InvitedAt,
		&s.JoinedAt,
		&s.CreatedAt,
	)
	return s, err
}

// CreateSchool inserts a school. Slug and invitation code must already be set.
func (r *SchoolRepository) CreateSchool(s *models.School) error {
	query := `
		INSERT INTO schools (name, slug, contact_name, contact_email, invitation_code)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, s.Name, s.Slug, s.ContactName, s.ContactEmail, s.InvitationCode)
	if err != nil {
		return fmt.Errorf("failed to create school: %w", err)
	}
	s.ID = id
	s.CreatedAt = time.Now()
	return nil
}

// GetSchoolByID retrieves a school by ID
func (r *SchoolRepository) GetSchoolByID(id int64) (*models.School, error) {
	return r.getSchool("id = ?", id)
}

// GetSchoolByInvitationCode retrieves a school by its portal code
func (r *SchoolRepository) GetSchoolByInvitationCode(code string) (*models.School, error) {
	return r.getSchool("invitation_code = ?", code)
}

// SlugExists checks whether a slug is taken
func (r *SchoolRepository) SlugExists(slug string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM schools WHERE slug = ?", slug).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

func (r *SchoolRepository) getSchool(where string, arg interface{}) (*models.School, error) {
	s, err := scanSchool(r.db.QueryRow("SELECT "+schoolColumns+" FROM schools WHERE "+where, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	return s, nil
}

// ListSchools returns all schools by name
func (r *SchoolRepository) ListSchools() ([]models.School, error) {
	rows, err := r.db.Query("SELECT " + schoolColumns + " FROM schools ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query schools: %w", err)
	}
	defer rows.Close()

	schools := []models.School{}
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		schools = append(schools, *s)
	}
	return schools, rows.Err()
}

// MarkInvited records when the invitation email was sent
func (r *SchoolRepository) MarkInvited(id int64, at time.Time) error {
	if _, err := r.db.Exec("UPDATE schools SET invited_at = ? WHERE id = ?", at, id); err != nil {
		return fmt.Errorf("failed to mark school invited: %w", err)
	}
	return nil
}

// MarkJoined records the first portal login. Later logins keep the original time.
func (r *SchoolRepository) MarkJoined(id int64, at time.Time) error {
	if _, err := r.db.Exec("UPDATE schools SET joined_at = ? WHERE id = ? AND joined_at IS NULL", at, id); err != nil {
		return fmt.Errorf("failed to mark school joined: %w", err)
	}
	return nil
}

// DeleteSchool removes a school and its payments
func (r *SchoolRepository) DeleteSchool(id int64) error {
	if _, err := r.db.Exec("DELETE FROM schools WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete school: %w", err)
	}
	return nil
}
