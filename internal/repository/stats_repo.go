package repository

import (
	"fmt"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// StatsRepository stores drill answers
type StatsRepository struct {
	db database.DBTX
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db database.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// RecordStat appends one drill answer
func (r *StatsRepository) RecordStat(stat *models.WordStat) error {
	query := `
		INSERT INTO word_stats (student_id, word_id, word, correct, elapsed_ms, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		stat.StudentID, stat.WordID, stat.Word, stat.Correct, stat.ElapsedMs, stat.Points, stat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record stat: %w", err)
	}
	stat.ID = id
	return nil
}

// RecentForStudent returns a student's latest answers, newest first
func (r *StatsRepository) RecentForStudent(studentID int64, limit int) ([]models.WordStat, error) {
	query := `
		SELECT id, student_id, word_id, word, correct, elapsed_ms, points, created_at
		FROM word_stats
		WHERE student_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := []models.WordStat{}
	for rows.Next() {
		var s models.WordStat
		if err := rows.Scan(
			&s.ID,
			&s.StudentID,
			&s.WordID,
			&s.Word,
			&s.Correct,
			&s.ElapsedMs,
			&s.Points,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stat: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// StudentAccuracy summarises all of a student's answers
type StudentAccuracy struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// AccuracyForStudent counts total and correct answers
func (r *StatsRepository) AccuracyForStudent(studentID int64) (*StudentAccuracy, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0)
		FROM word_stats
		WHERE student_id = ?
	`
	acc := &StudentAccuracy{}
	if err := r.db.QueryRow(query, studentID).Scan(&acc.Total, &acc.Correct); err != nil {
		return nil, fmt.Errorf("failed to get accuracy: %w", err)
	}
	if acc.Total > 0 {
		acc.Accuracy = float64(acc.Correct) / float64(acc.Total) * 100
	}
	return acc, nil
}
