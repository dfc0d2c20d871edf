package handlers

import (
	"net/http"

	"spellingbee/internal/models"
	"spellingbee/internal/service"
)

// WordHandler serves the per-grade word lists
type WordHandler struct {
	wordService *service.WordService
}

// NewWordHandler creates a new word handler
func NewWordHandler(wordService *service.WordService) *WordHandler {
	return &WordHandler{wordService: wordService}
}

type bulkWordsRequest struct {
	Words []service.WordRequest `json:"words"`
}

// ListWords returns the words of ?grade=, or every grade when absent
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	grade, ok := queryInt(w, r, "grade")
	if !ok {
		return
	}

	words, err := h.wordService.List(models.Grade(grade))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, words)
}

// CreateWord appends one word
func (h *WordHandler) CreateWord(w http.ResponseWriter, r *http.Request) {
	var req service.WordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	word, err := h.wordService.Add(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, word)
}

// BulkCreateWords adds a batch of words atomically
func (h *WordHandler) BulkCreateWords(w http.ResponseWriter, r *http.Request) {
	var req bulkWordsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	words, err := h.wordService.AddBulk(r.Context(), req.Words)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, words)
}

// UpdateWord replaces a word's fields
func (h *WordHandler) UpdateWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.WordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	word, err := h.wordService.Update(r.Context(), id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, word)
}

// DeleteWord removes a word
func (h *WordHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.wordService.Delete(id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WordCounts returns the number of words per grade
func (h *WordHandler) WordCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.wordService.Counts()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// GenerateMissingAudio fills in pronunciation clips for words without one
func (h *WordHandler) GenerateMissingAudio(w http.ResponseWriter, r *http.Request) {
	generated, err := h.wordService.GenerateMissingAudio(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"generated": generated})
}
