package handlers

import (
	"errors"
	"io"
	"net/http"

	"spellingbee/internal/contest"
	"spellingbee/internal/models"
	"spellingbee/internal/service"
)

// ContestHandler drives live contests and serves the saved history
type ContestHandler struct {
	contestService *service.ContestService
}

// NewContestHandler creates a new contest handler
func NewContestHandler(contestService *service.ContestService) *ContestHandler {
	return &ContestHandler{contestService: contestService}
}

// saveFailedResponse is returned with 502 when a finished contest could not be stored.
// The state is in the summary phase and accepts a retry-save event.
type saveFailedResponse struct {
	Error string         `json:"error"`
	State *contest.State `json:"state"`
}

// CreateContest opens a new contest in setup
func (h *ContestHandler) CreateContest(w http.ResponseWriter, r *http.Request) {
	state, err := h.contestService.Create(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, state)
}

// GetContest returns a contest's live state
func (h *ContestHandler) GetContest(w http.ResponseWriter, r *http.Request) {
	state, err := h.contestService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// ApplyEvent runs one operator event and returns the new state
func (h *ContestHandler) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return
	}
	event, err := contest.DecodeEvent(body)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	state, err := h.contestService.Apply(r.Context(), r.PathValue("id"), event)
	if errors.Is(err, service.ErrSaveFailed) && state != nil {
		respondJSON(w, http.StatusBadGateway, saveFailedResponse{Error: state.SaveError, State: state})
		return
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// Scoreboard returns the contest recap table
func (h *ContestHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.contestService.Scoreboard(r.Context(), r.PathValue("id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// DiscardContest drops a live contest without saving
func (h *ContestHandler) DiscardContest(w http.ResponseWriter, r *http.Request) {
	if err := h.contestService.Discard(r.Context(), r.PathValue("id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions returns saved contests, newest first
func (h *ContestHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	grade, ok := queryInt(w, r, "grade")
	if !ok {
		return
	}

	sessions, err := h.contestService.ListSessions(models.Grade(grade))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessions)
}

// GetSession returns a saved contest with its attempts
func (h *ContestHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := h.contestService.GetSession(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session)
}

// DeleteSession removes a saved contest
func (h *ContestHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.contestService.DeleteSession(id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
