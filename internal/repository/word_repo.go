package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

// WordRepository handles database operations for contest words
type WordRepository struct {
	db database.DBTX
}

// NewWordRepository creates a new word repository
func NewWordRepository(db database.DBTX) *WordRepository {
	return &WordRepository{db: db}
}

const wordColumns = "id, word, definition, example, grade, difficulty, image, audio_url, sort_order, created_at"

func scanWord(row rowScanner) (*models.WordEntry, error) {
	w := &models.WordEntry{}
	err := row.Scan(
		&w.ID,
		&w.Word,
		&w.Definition,
		&w.Example,
		&w.Grade,
		&w.Difficulty,
		&w.Image,
		&w.AudioURL,
		&w.Position,
		&w.CreatedAt,
	)
	return w, err
}

// nextPosition returns the sort position after the last word of a grade
func nextPosition(q database.DBTX, grade models.Grade) (int, error) {
	var maxPosition sql.NullInt64
	if err := q.QueryRow("SELECT MAX(sort_order) FROM words WHERE grade = ?", grade).Scan(&maxPosition); err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}
	if !maxPosition.Valid {
		return 1, nil
	}
	return int(maxPosition.Int64) + 1, nil
}

func insertWord(q database.DBTX, w *models.WordEntry) error {
	position, err := nextPosition(q, w.Grade)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO words (word, definition, example, grade, difficulty, image, audio_url, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := q.ExecReturningID(query, w.Word, w.Definition, w.Example, w.Grade, w.Difficulty, w.Image, w.AudioURL, position)
	if err != nil {
		return fmt.Errorf("failed to add word: %w", err)
	}

	w.ID = id
	w.Position = position
	w.CreatedAt = time.Now()
	return nil
}

// AddWord appends a word to the end of its grade's list
func (r *WordRepository) AddWord(w *models.WordEntry) error {
	return insertWord(r.db, w)
}

// AddWords appends several words in one transaction
func (r *WordRepository) AddWords(words []models.WordEntry) ([]models.WordEntry, error) {
	added := make([]models.WordEntry, 0, len(words))
	err := r.db.WithTx(context.Background(), func(tx *database.Tx) error {
		for _, w := range words {
			if err := insertWord(tx, &w); err != nil {
				return err
			}
			added = append(added, w)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// GetWord retrieves a word by ID
func (r *WordRepository) GetWord(id int64) (*models.WordEntry, error) {
	w, err := scanWord(r.db.QueryRow("SELECT "+wordColumns+" FROM words WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return w, nil
}

// ListByGrade returns a grade's words in list order
func (r *WordRepository) ListByGrade(grade models.Grade) ([]models.WordEntry, error) {
	query := "SELECT " + wordColumns + " FROM words WHERE grade = ? ORDER BY sort_order ASC, id ASC"
	return r.queryWords(query, grade)
}

// ListAll returns every word ordered by grade and position
func (r *WordRepository) ListAll() ([]models.WordEntry, error) {
	return r.queryWords("SELECT " + wordColumns + " FROM words ORDER BY grade ASC, sort_order ASC, id ASC")
}

// ListMissingAudio returns words without a generated audio file
func (r *WordRepository) ListMissingAudio() ([]models.WordEntry, error) {
	return r.queryWords("SELECT " + wordColumns + " FROM words WHERE audio_url = '' ORDER BY id ASC")
}

func (r *WordRepository) queryWords(query string, args ...interface{}) ([]models.WordEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	words := []models.WordEntry{}
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, *w)
	}
	return words, rows.Err()
}

// UpdateWord saves an explicit edit of a word
func (r *WordRepository) UpdateWord(w *models.WordEntry) error {
	query := `
		UPDATE words
		SET word = ?, definition = ?, example = ?, grade = ?, difficulty = ?, image = ?, audio_url = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, w.Word, w.Definition, w.Example, w.Grade, w.Difficulty, w.Image, w.AudioURL, w.ID); err != nil {
		return fmt.Errorf("failed to update word: %w", err)
	}
	return nil
}

// SetAudioURL records the generated audio file for a word
func (r *WordRepository) SetAudioURL(id int64, audioURL string) error {
	if _, err := r.db.Exec("UPDATE words SET audio_url = ? WHERE id = ?", audioURL, id); err != nil {
		return fmt.Errorf("failed to update audio url: %w", err)
	}
	return nil
}

// DeleteWord removes a word
func (r *WordRepository) DeleteWord(id int64) error {
	if _, err := r.db.Exec("DELETE FROM words WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// CountByGrade returns the number of words per grade
func (r *WordRepository) CountByGrade() (map[models.Grade]int, error) {
	rows, err := r.db.Query("SELECT grade, COUNT(*) FROM words GROUP BY grade")
	if err != nil {
		return nil, fmt.Errorf("failed to count words: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Grade]int)
	for rows.Next() {
		var grade models.Grade
		var count int
		if err := rows.Scan(&grade, &count); err != nil {
			return nil, fmt.Errorf("failed to scan word count: %w", err)
		}
		counts[grade] = count
	}
	return counts, rows.Err()
}
