package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"spellingbee/internal/contest"
	"spellingbee/internal/models"
	"spellingbee/internal/reporting"
	"spellingbee/internal/repository"
	"spellingbee/internal/validation"

	"github.com/google/uuid"
)

// sessionStore persists finished contests
type sessionStore interface {
	CreateSession(session *models.Session) (int64, error)
	GetSession(id int64) (*models.Session, error)
	ListSessions(grade models.Grade) ([]models.SessionSummary, error)
	DeleteSession(id int64) (bool, error)
}

// ContestService runs live contests and their saved history
type ContestService struct {
	store       contest.Store
	studentRepo *repository.StudentRepository
	wordRepo    *repository.WordRepository
	sessions    sessionStore
	locks       *keyedMutex
	now         func() time.Time
	intn        func(n int) int
}

// NewContestService creates a contest service
func NewContestService(store contest.Store, studentRepo *repository.StudentRepository, wordRepo *repository.WordRepository, sessionRepo *repository.SessionRepository) *ContestService {
	return &ContestService{
		store:       store,
		studentRepo: studentRepo,
		wordRepo:    wordRepo,
		sessions:    sessionRepo,
		locks:       newKeyedMutex(),
		now:         time.Now,
		intn:        rand.IntN,
	}
}

func (s *ContestService) env() contest.Env {
	return contest.Env{
		Now:        s.now,
		Intn:       s.intn,
		Candidates: s.candidates,
		Words:      s.wordRepo.ListByGrade,
	}
}

func (s *ContestService) candidates(grade models.Grade) ([]contest.Candidate, error) {
	students, err := s.studentRepo.ListStudents(repository.StudentFilter{Grade: grade})
	if err != nil {
		return nil, err
	}
	candidates := make([]contest.Candidate, 0, len(students))
	for _, st := range students {
		candidates = append(candidates, contest.Candidate{StudentID: st.ID, Name: st.FullName()})
	}
	return candidates, nil
}

// Create opens a new contest in setup
func (s *ContestService) Create(ctx context.Context) (*contest.State, error) {
	state := contest.New(uuid.NewString(), s.now())
	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store contest: %w", err)
	}
	log.Printf("Contest %s created", state.ID)
	return state, nil
}

// Get returns the live state of a contest
func (s *ContestService) Get(ctx context.Context, id string) (*contest.State, error) {
	state, err := s.store.Get(ctx, id)
	if errors.Is(err, contest.ErrNotFound) {
		return nil, notFound("contest", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contest: %w", err)
	}
	return state, nil
}

// Apply runs one event against a contest. When the event finishes the contest
// the session is persisted. A failed save returns the summary state together
// with ErrSaveFailed so the caller can show it and offer a retry.
func (s *ContestService) Apply(ctx context.Context, id string, event contest.Event) (*contest.State, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := contest.Apply(state, event, s.env())
	if err != nil {
		return nil, err
	}

	var saveErr error
	persisted := false
	if next.PendingSave() && (event.Type == contest.EventEnd || event.Type == contest.EventRetrySave) {
		saveErr = s.persist(next)
		persisted = saveErr == nil
	}

	if err := s.store.Save(ctx, next); err != nil {
		// The stored state still expects a save, so drop the row to keep a
		// retry from inserting the session twice.
		if persisted {
			s.unpersist(next)
		}
		return nil, fmt.Errorf("failed to store contest: %w", err)
	}

	if saveErr != nil {
		return next, fmt.Errorf("%w: %v", ErrSaveFailed, saveErr)
	}
	return next, nil
}

func (s *ContestService) persist(state *contest.State) error {
	id, err := s.sessions.CreateSession(state.Session)
	if err != nil {
		reporting.Error(fmt.Sprintf("Error saving contest %s", state.ID), err, map[string]interface{}{
			"contest_id": state.ID,
			"attempts":   len(state.Session.Attempts),
		})
		state.MarkSaveFailed(err)
		return err
	}
	state.MarkSaved(id)
	log.Printf("Contest %s saved as session %d with %d attempts", state.ID, id, len(state.Session.Attempts))
	return nil
}

func (s *ContestService) unpersist(state *contest.State) {
	id := state.Session.ID
	if _, err := s.sessions.DeleteSession(id); err != nil {
		reporting.Error(fmt.Sprintf("Error removing session %d of contest %s", id, state.ID), err, map[string]interface{}{
			"contest_id": state.ID,
			"session_id": id,
		})
		return
	}
	log.Printf("Contest %s could not be stored, removed session %d", state.ID, id)
}

// Scoreboard returns the recap table of a contest
func (s *ContestService) Scoreboard(ctx context.Context, id string) ([]contest.ScoreRow, error) {
	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return contest.Scoreboard(state), nil
}

// Discard drops a live contest without saving it
func (s *ContestService) Discard(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.store.Delete(ctx, id)
	if errors.Is(err, contest.ErrNotFound) {
		return notFound("contest", id)
	}
	if err != nil {
		return fmt.Errorf("failed to discard contest: %w", err)
	}
	return nil
}

// ListSessions returns saved contests, newest first. Grade 0 lists all grades.
func (s *ContestService) ListSessions(grade models.Grade) ([]models.SessionSummary, error) {
	if grade != 0 && !grade.Valid() {
		return nil, validation.Field("grade", grade, "grade")
	}
	sessions, err := s.sessions.ListSessions(grade)
	if err != nil {
		return nil, storeError("list sessions", err)
	}
	return sessions, nil
}

// GetSession returns one saved contest with its attempts
func (s *ContestService) GetSession(id int64) (*models.Session, error) {
	session, err := s.sessions.GetSession(id)
	if err != nil {
		return nil, storeError("get session", err)
	}
	if session == nil {
		return nil, notFound("session", id)
	}
	return session, nil
}

// DeleteSession removes a saved contest and all of its attempts
func (s *ContestService) DeleteSession(id int64) error {
	deleted, err := s.sessions.DeleteSession(id)
	if err != nil {
		return storeError("delete session", err)
	}
	if !deleted {
		return notFound("session", id)
	}
	log.Printf("Session %d deleted", id)
	return nil
}
