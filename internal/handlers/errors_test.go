package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spellingbee/internal/contest"
	"spellingbee/internal/service"
	"spellingbee/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	var body errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Error != "Teapot" {
		t.Fatalf("expected error 'Teapot', got %q", body.Error)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestHandleServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", validation.Errors{"word": "word is required"}, http.StatusBadRequest},
		{"contest rule", &contest.ValidationError{Message: "no word in play"}, http.StatusBadRequest},
		{"not found", fmt.Errorf("word 7: %w", service.ErrNotFound), http.StatusNotFound},
		{"conflict", service.ErrEmailTaken, http.StatusConflict},
		{"unauthorized", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/words", nil)

			handleServiceError(recorder, req, tt.err)

			if recorder.Code != tt.status {
				t.Errorf("status = %d, want %d", recorder.Code, tt.status)
			}
		})
	}
}

func TestHandleServiceErrorIncludesFields(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/words", nil)

	handleServiceError(recorder, req, validation.Errors{"grade": "grade must be between 1 and 12"})

	var body errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Fields["grade"] == "" {
		t.Errorf("expected grade field error, got %+v", body)
	}
}

func TestInternalErrorsHideDetails(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/words", nil)

	handleServiceError(recorder, req, errors.New("pq: password authentication failed"))

	if strings.Contains(recorder.Body.String(), "pq:") {
		t.Errorf("internal error leaked: %s", recorder.Body.String())
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/words/"+tt.value, nil)
			req.SetPathValue("id", tt.value)

			got, ok := pathID(recorder, req, "id")
			if got != tt.want || ok != tt.ok {
				t.Errorf("pathID(%q) = %d, %v; want %d, %v", tt.value, got, ok, tt.want, tt.ok)
			}
			if !ok && recorder.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", recorder.Code)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?grade=5", nil)
	if n, ok := queryInt(recorder, req, "grade"); !ok || n != 5 {
		t.Errorf("queryInt(grade) = %d, %v", n, ok)
	}
	if n, ok := queryInt(recorder, req, "limit"); !ok || n != 0 {
		t.Errorf("missing limit = %d, %v", n, ok)
	}

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/leaderboard?grade=five", nil)
	if _, ok := queryInt(recorder, req, "grade"); ok {
		t.Error("expected failure for non-numeric grade")
	}
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", recorder.Code)
	}
}
