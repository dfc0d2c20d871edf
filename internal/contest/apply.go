package contest

import (
	"fmt"
	"strings"
	"time"

	"spellingbee/internal/models"
)

// Env supplies the collaborators a transition may need
type Env struct {
	Now func() time.Time

	// Intn returns a uniform integer in [0, n)
	Intn func(n int) int

	// Candidates lists the students of a grade
	Candidates func(grade models.Grade) ([]Candidate, error)

	// Words lists a grade's words in list order
	Words func(grade models.Grade) ([]models.WordEntry, error)
}

func (env Env) now() time.Time {
	if env.Now == nil {
		return time.Now()
	}
	return env.Now()
}

var allowedPhases = map[EventType][]Phase{
	EventSelectGrade:    {PhaseSetup},
	EventConfigure:      {PhaseSetup},
	EventToggleStudent:  {PhaseSetup},
	EventStart:          {PhaseSetup},
	EventSetRange:       {PhaseSetup, PhaseActive},
	EventDraw:           {PhaseActive},
	EventCustomWord:     {PhaseActive},
	EventToggleProtocol: {PhaseActive},
	EventSubmit:         {PhaseActive},
	EventSkip:           {PhaseActive},
	EventNext:           {PhaseActive},
	EventPrevious:       {PhaseActive},
	EventFocus:          {PhaseActive},
	EventEliminate:      {PhaseActive},
	EventRestore:        {PhaseActive},
	EventEnd:            {PhaseActive},
	EventRestart:        {PhaseSetup, PhaseSummary},
	EventRetrySave:      {PhaseSummary},
}

// Apply computes the state that follows e. On error the returned state is nil
// and the caller keeps the previous one.
func Apply(s *State, e Event, env Env) (*State, error) {
	phases, ok := allowedPhases[e.Type]
	if !ok {
		return nil, invalid("unknown event type %q", e.Type)
	}
	if !phaseIn(s.Phase, phases) {
		return nil, invalid("%s is not allowed during %s", e.Type, s.Phase)
	}

	next := s.clone()
	var err error

	switch e.Type {
	case EventSelectGrade:
		err = next.selectGrade(e.Grade, env)
	case EventConfigure:
		next.Settings.Stage = strings.TrimSpace(e.Stage)
		next.Settings.ContestType = strings.TrimSpace(e.ContestType)
		next.Settings.Moderator = e.Moderator
	case EventToggleStudent:
		err = next.toggleStudent(e.StudentID, e.Selected)
	case EventStart:
		err = next.start(env.now())
	case EventSetRange:
		err = next.setRange(e.RangeMin, e.RangeMax, e.AvoidRepetition)
	case EventDraw:
		err = next.draw(env)
	case EventCustomWord:
		err = next.customWord(e.Word)
	case EventToggleProtocol:
		err = next.toggleProtocol(e.Protocol)
	case EventSubmit:
		err = next.submit(e.Typed, env.now())
	case EventSkip:
		err = next.skip(env.now())
	case EventNext:
		next.Cursor = (next.Cursor + 1) % len(next.Roster)
		next.Turn = Turn{}
	case EventPrevious:
		next.Cursor = (next.Cursor - 1 + len(next.Roster)) % len(next.Roster)
		next.Turn = Turn{}
	case EventFocus:
		err = next.focus(e.StudentID)
	case EventEliminate:
		err = next.setStatus(e.StudentID, StatusEliminated)
	case EventRestore:
		err = next.setStatus(e.StudentID, StatusActive)
	case EventEnd:
		next.end(env.now())
	case EventRestart:
		next = New(s.ID, env.now())
	case EventRetrySave:
		if s.Saved {
			err = invalid("session has already been saved")
		}
	}

	if err != nil {
		return nil, err
	}

	next.UpdatedAt = env.now()
	return next, nil
}

func phaseIn(p Phase, phases []Phase) bool {
	for _, candidate := range phases {
		if p == candidate {
			return true
		}
	}
	return false
}

func (s *State) selectGrade(grade models.Grade, env Env) error {
	if !grade.Valid() {
		return invalid("grade must be between %d and %d", models.MinGrade, models.MaxGrade)
	}
	if env.Candidates == nil {
		return fmt.Errorf("no candidate source configured")
	}

	candidates, err := env.Candidates(grade)
	if err != nil {
		return fmt.Errorf("failed to load students: %w", err)
	}

	s.Settings.Grade = grade
	s.Candidates = make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.Selected = true
		s.Candidates = append(s.Candidates, c)
	}
	return nil
}

func (s *State) toggleStudent(studentID int64, selected *bool) error {
	for i := range s.Candidates {
		if s.Candidates[i].StudentID != studentID {
			continue
		}
		if selected != nil {
			s.Candidates[i].Selected = *selected
		} else {
			s.Candidates[i].Selected = !s.Candidates[i].Selected
		}
		return nil
	}
	return invalid("student %d is not a candidate for this contest", studentID)
}

func (s *State) start(now time.Time) error {
	if s.SelectedCount() == 0 {
		return invalid("select at least one student")
	}
	moderator := strings.TrimSpace(s.Settings.Moderator)
	if moderator == "" {
		return invalid("moderator name is required")
	}

	s.Settings.Moderator = moderator
	s.Roster = make([]Contestant, 0, s.SelectedCount())
	for _, c := range s.Candidates {
		if c.Selected {
			s.Roster = append(s.Roster, Contestant{StudentID: c.StudentID, Name: c.Name, Status: StatusActive})
		}
	}

	s.Phase = PhaseActive
	s.Cursor = 0
	s.Turn = Turn{}
	s.Attempts = []models.Attempt{}
	s.StartedAt = &now
	return nil
}

func (s *State) setRange(min, max int, avoidRepetition bool) error {
	if min < 0 || max < 0 {
		return invalid("word range bounds must be positive")
	}
	if min > 0 && max > 0 && min > max {
		return invalid("word range start %d is after its end %d", min, max)
	}
	s.Settings.RangeMin = min
	s.Settings.RangeMax = max
	s.Settings.AvoidRepetition = avoidRepetition
	return nil
}

func (s *State) draw(env Env) error {
	if env.Words == nil || env.Intn == nil {
		return fmt.Errorf("no word source configured")
	}

	words, err := env.Words(s.Settings.Grade)
	if err != nil {
		return fmt.Errorf("failed to load words: %w", err)
	}

	pool, err := buildPool(words, s.Settings.RangeMin, s.Settings.RangeMax)
	if err != nil {
		return err
	}
	if s.Settings.AvoidRepetition {
		pool = excludeAttempted(pool, s.Attempts)
	}

	w := pool[env.Intn(len(pool))]
	s.Turn = Turn{
		WordID:     w.ID,
		Word:       w.Word,
		Definition: w.Definition,
		Example:    w.Example,
		AudioURL:   w.AudioURL,
	}
	return nil
}

func (s *State) customWord(word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return invalid("custom word cannot be empty")
	}
	s.Turn = Turn{Word: word, IsExtra: true}
	return nil
}

func (s *State) toggleProtocol(flag string) error {
	switch flag {
	case ProtocolOpened:
		s.Turn.ProtocolOpened = !s.Turn.ProtocolOpened
	case ProtocolClosed:
		s.Turn.ProtocolClosed = !s.Turn.ProtocolClosed
	default:
		return invalid("protocol must be %q or %q", ProtocolOpened, ProtocolClosed)
	}
	return nil
}

func (s *State) submit(typed string, now time.Time) error {
	if !s.Turn.HasWord() {
		return invalid("draw or enter a word first")
	}
	current := s.Current()
	if current.Status == StatusEliminated {
		return invalid("%s has been eliminated", current.Name)
	}

	result := models.ResultIncorrect
	if IsCorrect(typed, s.Turn.Word, s.Turn.ProtocolOpened, s.Turn.ProtocolClosed) {
		result = models.ResultCorrect
	}

	n := s.attemptCount(current.StudentID) + 1
	s.Attempts = append(s.Attempts, models.Attempt{
		Timestamp:      now,
		StudentID:      current.StudentID,
		StudentName:    current.Name,
		WordID:         s.Turn.WordID,
		WordText:       s.Turn.Word,
		TypedSpelling:  typed,
		ProtocolOpened: s.Turn.ProtocolOpened,
		ProtocolClosed: s.Turn.ProtocolClosed,
		WordNumber:     n,
		Result:         result,
		Round:          n,
		IsExtra:        s.Turn.IsExtra,
	})
	s.Turn = Turn{}
	return nil
}

func (s *State) skip(now time.Time) error {
	current := s.Current()
	if current.Status == StatusEliminated {
		return invalid("%s has been eliminated", current.Name)
	}
	n := s.attemptCount(current.StudentID) + 1
	s.Attempts = append(s.Attempts, models.Attempt{
		Timestamp:   now,
		StudentID:   current.StudentID,
		StudentName: current.Name,
		WordText:    models.SkippedWordText,
		WordNumber:  n,
		Result:      models.ResultSkipped,
		Round:       n,
	})
	s.Turn = Turn{}
	return nil
}

func (s *State) attemptCount(studentID int64) int {
	count := 0
	for _, a := range s.Attempts {
		if a.StudentID == studentID {
			count++
		}
	}
	return count
}

func (s *State) focus(studentID int64) error {
	i := s.rosterIndex(studentID)
	if i < 0 {
		return invalid("student %d is not in this contest", studentID)
	}
	s.Cursor = i
	s.Turn = Turn{}
	return nil
}

// setStatus changes a contestant's status. Zero studentID targets the current student.
func (s *State) setStatus(studentID int64, status StudentStatus) error {
	i := s.Cursor
	if studentID != 0 {
		i = s.rosterIndex(studentID)
	}
	if i < 0 {
		return invalid("student %d is not in this contest", studentID)
	}
	s.Roster[i].Status = status
	return nil
}

func (s *State) rosterIndex(studentID int64) int {
	for i, c := range s.Roster {
		if c.StudentID == studentID {
			return i
		}
	}
	return -1
}

func (s *State) end(now time.Time) {
	startedAt := now
	if s.StartedAt != nil {
		startedAt = *s.StartedAt
	}

	s.Phase = PhaseSummary
	s.EndedAt = &now
	s.Turn = Turn{}
	s.Session = &models.Session{
		Date:            startedAt,
		Grade:           s.Settings.Grade,
		Moderator:       s.Settings.Moderator,
		Stage:           s.Settings.Stage,
		ContestType:     s.Settings.ContestType,
		Attempts:        append([]models.Attempt{}, s.Attempts...),
		DurationSeconds: int(now.Sub(startedAt).Seconds()),
	}
	s.Saved = false
	s.SaveError = ""
}
