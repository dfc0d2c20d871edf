package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"spellingbee/internal/audio"
	"spellingbee/internal/models"
	"spellingbee/internal/reporting"
	"spellingbee/internal/repository"
	"spellingbee/internal/validation"
)

// WordRequest creates or replaces a word
type WordRequest struct {
	Word       string            `json:"word" validate:"notblank,max=100"`
	Definition string            `json:"definition" validate:"max=2000"`
	Example    string            `json:"example" validate:"max=2000"`
	Grade      models.Grade      `json:"grade" validate:"grade"`
	Difficulty models.Difficulty `json:"difficulty" validate:"difficulty"`
	Image      string            `json:"image" validate:"omitempty,url"`
	AudioURL   string            `json:"audioUrl"`
}

func (r WordRequest) entry() models.WordEntry {
	return models.WordEntry{
		Word:       strings.TrimSpace(r.Word),
		Definition: strings.TrimSpace(r.Definition),
		Example:    strings.TrimSpace(r.Example),
		Grade:      r.Grade,
		Difficulty: r.Difficulty,
		Image:      strings.TrimSpace(r.Image),
		AudioURL:   strings.TrimSpace(r.AudioURL),
	}
}

// WordService manages the per-grade word lists
type WordService struct {
	wordRepo *repository.WordRepository
	audio    audio.Generator
}

// NewWordService creates a word service. A nil generator disables audio.
func NewWordService(wordRepo *repository.WordRepository, generator audio.Generator) *WordService {
	return &WordService{wordRepo: wordRepo, audio: generator}
}

// List returns a grade's words in list order. Grade 0 lists every grade.
func (s *WordService) List(grade models.Grade) ([]models.WordEntry, error) {
	var (
		words []models.WordEntry
		err   error
	)
	if grade == 0 {
		words, err = s.wordRepo.ListAll()
	} else {
		if err := validation.Field("grade", grade, "grade"); err != nil {
			return nil, err
		}
		words, err = s.wordRepo.ListByGrade(grade)
	}
	if err != nil {
		return nil, storeError("list words", err)
	}
	return words, nil
}

// Get returns one word
func (s *WordService) Get(id int64) (*models.WordEntry, error) {
	word, err := s.wordRepo.GetWord(id)
	if err != nil {
		return nil, storeError("get word", err)
	}
	if word == nil {
		return nil, notFound("word", id)
	}
	return word, nil
}

// Add appends a word to the end of its grade's list
func (s *WordService) Add(ctx context.Context, req WordRequest) (*models.WordEntry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	word := req.entry()
	if err := s.wordRepo.AddWord(&word); err != nil {
		return nil, storeError("add word", err)
	}

	s.attachAudio(ctx, &word)
	return &word, nil
}

// AddBulk adds many words in one transaction. Validation failures are keyed by row.
func (s *WordService) AddBulk(ctx context.Context, reqs []WordRequest) ([]models.WordEntry, error) {
	if len(reqs) == 0 {
		return nil, validation.Errors{"words": "at least one word is required"}
	}

	entries := make([]models.WordEntry, 0, len(reqs))
	for i, req := range reqs {
		if err := validation.Struct(req); err != nil {
			return nil, validation.Errors{fmt.Sprintf("words[%d]", i): err.Error()}
		}
		entries = append(entries, req.entry())
	}

	added, err := s.wordRepo.AddWords(entries)
	if err != nil {
		return nil, storeError("add words", err)
	}

	for i := range added {
		s.attachAudio(ctx, &added[i])
	}
	log.Printf("Added %d words", len(added))
	return added, nil
}

// attachAudio generates a clip for a word without one. Failures are logged and swallowed.
func (s *WordService) attachAudio(ctx context.Context, word *models.WordEntry) {
	if s.audio == nil || word.AudioURL != "" {
		return
	}

	url, err := s.audio.Generate(ctx, word.Word)
	if err != nil {
		reporting.Error(fmt.Sprintf("Warning: failed to generate audio for word %q", word.Word), err, map[string]interface{}{
			"word_id": word.ID,
		})
		return
	}

	if err := s.wordRepo.SetAudioURL(word.ID, url); err != nil {
		log.Printf("Warning: failed to save audio URL for word %d: %v", word.ID, err)
		return
	}
	word.AudioURL = url
}

// GenerateMissingAudio fills in clips for every word without one and returns how many were added
func (s *WordService) GenerateMissingAudio(ctx context.Context) (int, error) {
	if s.audio == nil {
		return 0, nil
	}

	words, err := s.wordRepo.ListMissingAudio()
	if err != nil {
		return 0, storeError("list words", err)
	}

	generated := 0
	for i := range words {
		if ctx.Err() != nil {
			return generated, ctx.Err()
		}
		s.attachAudio(ctx, &words[i])
		if words[i].AudioURL != "" {
			generated++
		}
	}
	return generated, nil
}

// Update replaces a word's fields and keeps its list position
func (s *WordService) Update(ctx context.Context, id int64, req WordRequest) (*models.WordEntry, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updated := req.entry()
	updated.ID = existing.ID
	updated.Position = existing.Position
	updated.CreatedAt = existing.CreatedAt
	if updated.AudioURL == "" && strings.EqualFold(updated.Word, existing.Word) {
		updated.AudioURL = existing.AudioURL
	}

	if err := s.wordRepo.UpdateWord(&updated); err != nil {
		return nil, storeError("update word", err)
	}

	s.attachAudio(ctx, &updated)
	return &updated, nil
}

// Delete removes a word. Saved sessions keep their copy of the word text.
func (s *WordService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.wordRepo.DeleteWord(id); err != nil {
		return storeError("delete word", err)
	}
	return nil
}

// Counts returns the number of words per grade
func (s *WordService) Counts() (map[models.Grade]int, error) {
	counts, err := s.wordRepo.CountByGrade()
	if err != nil {
		return nil, storeError("count words", err)
	}
	return counts, nil
}
