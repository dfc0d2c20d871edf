package models

import "time"

// AttemptResult is the outcome of one contest turn
type AttemptResult string

const (
	ResultCorrect   AttemptResult = "correct"
	ResultIncorrect AttemptResult = "incorrect"
	ResultSkipped   AttemptResult = "skipped"
)

// SkippedWordText is recorded as the word of a skipped turn
const SkippedWordText = "SKIPPED"

// Attempt is one recorded contest turn
type Attempt struct {
	Timestamp      time.Time     `json:"timestamp"`
	StudentID      int64         `json:"studentId"`
	StudentName    string        `json:"studentName"`
	WordID         int64         `json:"wordId,omitempty"`
	WordText       string        `json:"wordText"`
	TypedSpelling  string        `json:"typedSpelling"`
	ProtocolOpened bool          `json:"protocolOpened"`
	ProtocolClosed bool          `json:"protocolClosed"`
	WordNumber     int           `json:"wordNumber"`
	Result         AttemptResult `json:"result"`
	Round          int           `json:"round"`
	IsExtra        bool          `json:"isExtra,omitempty"`
}

// Session is a finalized contest. Immutable once saved.
type Session struct {
	ID              int64     `json:"id"`
	Date            time.Time `json:"date"`
	Grade           Grade     `json:"grade"`
	Moderator       string    `json:"moderator"`
	Stage           string    `json:"stage,omitempty"`
	ContestType     string    `json:"contestType,omitempty"`
	Attempts        []Attempt `json:"attempts"`
	DurationSeconds int       `json:"durationSeconds"`
}

// SessionSummary is a session row without its attempts
type SessionSummary struct {
	ID              int64     `json:"id"`
	Date            time.Time `json:"date"`
	Grade           Grade     `json:"grade"`
	Moderator       string    `json:"moderator"`
	Stage           string    `json:"stage,omitempty"`
	ContestType     string    `json:"contestType,omitempty"`
	DurationSeconds int       `json:"durationSeconds"`
	AttemptCount    int       `json:"attemptCount"`
}
