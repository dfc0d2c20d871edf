package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// StudentRepository handles database operations for student profiles
type StudentRepository struct {
	db database.DBTX
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db database.DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

// StudentFilter narrows student listings. Zero values match everything.
type StudentFilter struct {
	Grade    models.Grade
	SchoolID int64
	Limit    int
}

func (f StudentFilter) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if f.Grade != 0 {
		clauses = append(clauses, "grade = ?")
		args = append(args, f.Grade)
	}
	if f.SchoolID != 0 {
		clauses = append(clauses, "school_id = ?")
		args = append(args, f.SchoolID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

const studentColumns = `id, first_name, last_name, school, school_id, grade, photo, username, password,
	total_xp, coins, current_streak, last_practice_date, created_at, updated_at`

func scanStudent(row rowScanner) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(
		&s.ID,
		&s.FirstName,
		&s.LastName,
		&s.School,
		&s.SchoolID,
		&s.Grade,
		&s.Photo,
		&s.Username,
		&s.Password,
		&s.TotalXP,
		&s.Coins,
		&s.CurrentStreak,
		&s.LastPracticeDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// CreateStudent inserts a student. Username and password must already be set.
func (r *StudentRepository) CreateStudent(s *models.Student) error {
	query := `
		INSERT INTO students (first_name, last_name, school, school_id, grade, photo, username, password,
			total_xp, coins, current_streak, last_practice_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		s.FirstName, s.LastName, s.School, s.SchoolID, s.Grade, s.Photo, s.Username, s.Password,
		s.TotalXP, s.Coins, s.CurrentStreak, s.LastPracticeDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	now := time.Now()
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// GetStudentByID retrieves a student by ID
func (r *StudentRepository) GetStudentByID(id int64) (*models.Student, error) {
	s, err := scanStudent(r.db.QueryRow("SELECT "+studentColumns+" FROM students WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return s, nil
}

// GetStudentByUsername retrieves a student by drill username
func (r *StudentRepository) GetStudentByUsername(username string) (*models.Student, error) {
	s, err := scanStudent(r.db.QueryRow("SELECT "+studentColumns+" FROM students WHERE username = ?", username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return s, nil
}

// UsernameExists checks whether a drill username is taken
func (r *StudentRepository) UsernameExists(username string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM students WHERE username = ?", username).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// ListStudents returns students ordered by last and first name
func (r *StudentRepository) ListStudents(filter StudentFilter) ([]models.Student, error) {
	where, args := filter.where()
	query := "SELECT " + studentColumns + " FROM students" + where + " ORDER BY last_name ASC, first_name ASC, id ASC"
	return r.queryStudents(query, args...)
}

// Leaderboard returns students by total XP, highest first
func (r *StudentRepository) Leaderboard(filter StudentFilter) ([]models.Student, error) {
	where, args := filter.where()
	query := "SELECT " + studentColumns + " FROM students" + where + " ORDER BY total_xp DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	return r.queryStudents(query, args...)
}

func (r *StudentRepository) queryStudents(query string, args ...interface{}) ([]models.Student, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// UpdateStudent saves profile edits. Gamification counters are not touched.
func (r *StudentRepository) UpdateStudent(s *models.Student) error {
	query := `
		UPDATE students
		SET first_name = ?, last_name = ?, school = ?, school_id = ?, grade = ?, photo = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, s.FirstName, s.LastName, s.School, s.SchoolID, s.Grade, s.Photo, s.ID); err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	return nil
}

// UpdatePassword replaces a student's practice password
func (r *StudentRepository) UpdatePassword(id int64, password string) error {
	query := "UPDATE students SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, password, id); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// DeleteStudent removes a student and their drill data
func (r *StudentRepository) DeleteStudent(id int64) error {
	if _, err := r.db.Exec("DELETE FROM students WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return nil
}

// AddRewards atomically increments XP and coins
func (r *StudentRepository) AddRewards(id int64, xp, coins int) error {
	query := `
		UPDATE students
		SET total_xp = total_xp + ?, coins = coins + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, xp, coins, id); err != nil {
		return fmt.Errorf("failed to add rewards: %w", err)
	}
	return nil
}

// UpdateStreak sets the streak only if last_practice_date still equals expectedDate.
// It reports whether the row was updated.
func (r *StudentRepository) UpdateStreak(id int64, expectedDate, newDate string, streak int) (bool, error) {
	query := `
		UPDATE students
		SET current_streak = ?, last_practice_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND last_practice_date = ?
	`
	result, err := r.db.Exec(query, streak, newDate, id, expectedDate)
	if err != nil {
		return false, fmt.Errorf("failed to update streak: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read streak result: %w", err)
	}
	return rows > 0, nil
}

// CountStudents returns the number of students, optionally per school
func (r *StudentRepository) CountStudents(filter StudentFilter) (int, error) {
	where, args := filter.where()
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM students"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return count, nil
}
