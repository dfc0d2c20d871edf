package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"spellingbee/internal/contest"
	"spellingbee/internal/reporting"
	"spellingbee/internal/service"
	"spellingbee/internal/validation"
)

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondJSON(w, status, errorResponse{Error: userMsg})
}

// handleServiceError maps a service error to its HTTP status. Unknown errors are reported.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fields validation.Errors
	switch {
	case errors.As(err, &fields):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: ErrValidationFailed, Fields: fields})
	case contest.IsValidation(err):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrConflict):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: ErrForbidden})
	default:
		reporting.RequestError(r, "Error handling request", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: ErrInternalServerError})
	}
}

// decodeJSON reads a bounded JSON body into v, answering 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return false
	}
	return true
}

// pathID parses a numeric path value, answering 400 when it is not a positive integer
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", nil)
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter. Missing values yield 0.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:  ErrInvalidQuery,
			Fields: map[string]string{name: name + " must be a number"},
		})
		return 0, false
	}
	return n, true
}
