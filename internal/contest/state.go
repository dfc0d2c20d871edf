// Package contest implements the live contest state machine.
//
// A contest moves setup -> active -> summary. Every transition is computed by
// Apply, which never mutates its input and has no side effects beyond the
// collaborators passed in Env.
package contest

import (
	"time"

	"spellingbee/internal/models"
)

// Phase of a contest
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhaseActive  Phase = "active"
	PhaseSummary Phase = "summary"
)

// StudentStatus of a contestant on the roster
type StudentStatus string

const (
	StatusActive     StudentStatus = "active"
	StatusEliminated StudentStatus = "eliminated"
)

// Settings chosen during setup
type Settings struct {
	Grade           models.Grade `json:"grade"`
	Stage           string       `json:"stage,omitempty"`
	ContestType     string       `json:"contestType,omitempty"`
	Moderator       string       `json:"moderator"`
	RangeMin        int          `json:"rangeMin,omitempty"`
	RangeMax        int          `json:"rangeMax,omitempty"`
	AvoidRepetition bool         `json:"avoidRepetition"`
}

// Candidate is a student offered during setup
type Candidate struct {
	StudentID int64  `json:"studentId"`
	Name      string `json:"name"`
	Selected  bool   `json:"selected"`
}

// Contestant is a student on the active roster
type Contestant struct {
	StudentID int64         `json:"studentId"`
	Name      string        `json:"name"`
	Status    StudentStatus `json:"status"`
}

// Turn holds the word in play for the current student
type Turn struct {
	WordID         int64  `json:"wordId,omitempty"`
	Word           string `json:"word,omitempty"`
	Definition     string `json:"definition,omitempty"`
	Example        string `json:"example,omitempty"`
	AudioURL       string `json:"audioUrl,omitempty"`
	IsExtra        bool   `json:"isExtra,omitempty"`
	ProtocolOpened bool   `json:"protocolOpened"`
	ProtocolClosed bool   `json:"protocolClosed"`
}

// HasWord reports whether a word has been drawn or entered
func (t Turn) HasWord() bool {
	return t.Word != ""
}

// State is the full live state of one contest
type State struct {
	ID         string           `json:"id"`
	Phase      Phase            `json:"phase"`
	Settings   Settings         `json:"settings"`
	Candidates []Candidate      `json:"candidates"`
	Roster     []Contestant     `json:"roster"`
	Cursor     int              `json:"cursor"`
	Turn       Turn             `json:"turn"`
	Attempts   []models.Attempt `json:"attempts"`
	StartedAt  *time.Time       `json:"startedAt,omitempty"`
	EndedAt    *time.Time       `json:"endedAt,omitempty"`

	// Session is the packaged record once the contest has ended.
	// Saved and SaveError track its persistence.
	Session   *models.Session `json:"session,omitempty"`
	Saved     bool            `json:"saved"`
	SaveError string          `json:"saveError,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// New returns a fresh contest in setup
func New(id string, now time.Time) *State {
	return &State{
		ID:         id,
		Phase:      PhaseSetup,
		Candidates: []Candidate{},
		Roster:     []Contestant{},
		Attempts:   []models.Attempt{},
		UpdatedAt:  now,
	}
}

// Current returns the contestant under the cursor, or nil outside the active phase
func (s *State) Current() *Contestant {
	if len(s.Roster) == 0 || s.Cursor < 0 || s.Cursor >= len(s.Roster) {
		return nil
	}
	return &s.Roster[s.Cursor]
}

// SelectedCount returns how many candidates are selected
func (s *State) SelectedCount() int {
	count := 0
	for _, c := range s.Candidates {
		if c.Selected {
			count++
		}
	}
	return count
}

// PendingSave reports whether an ended contest still has to be persisted
func (s *State) PendingSave() bool {
	return s.Phase == PhaseSummary && s.Session != nil && !s.Saved
}

// MarkSaved records a successful save of the packaged session
func (s *State) MarkSaved(sessionID int64) {
	if s.Session != nil {
		s.Session.ID = sessionID
	}
	s.Saved = true
	s.SaveError = ""
}

// MarkSaveFailed keeps the session queued and records the failure
func (s *State) MarkSaveFailed(err error) {
	s.Saved = false
	s.SaveError = err.Error()
}

// clone returns a deep copy so transitions never alias the caller's slices
func (s *State) clone() *State {
	c := *s
	c.Candidates = append([]Candidate{}, s.Candidates...)
	c.Roster = append([]Contestant{}, s.Roster...)
	c.Attempts = append([]models.Attempt{}, s.Attempts...)
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	if s.Session != nil {
		session := *s.Session
		session.Attempts = append([]models.Attempt{}, s.Session.Attempts...)
		c.Session = &session
	}
	return &c
}
