package contest

import (
	"encoding/json"
	"fmt"

	"spellingbee/internal/models"
)

// EventType names a contest transition
type EventType string

const (
	EventSelectGrade    EventType = "select-grade"
	EventConfigure      EventType = "configure"
	EventToggleStudent  EventType = "toggle-student"
	EventStart          EventType = "start"
	EventSetRange       EventType = "set-range"
	EventDraw           EventType = "draw"
	EventCustomWord     EventType = "custom-word"
	EventToggleProtocol EventType = "toggle-protocol"
	EventSubmit         EventType = "submit"
	EventSkip           EventType = "skip"
	EventNext           EventType = "next"
	EventPrevious       EventType = "previous"
	EventFocus          EventType = "focus"
	EventEliminate      EventType = "eliminate"
	EventRestore        EventType = "restore"
	EventEnd            EventType = "end"
	EventRestart        EventType = "restart"
	EventRetrySave      EventType = "retry-save"
)

// Protocol flags toggled by EventToggleProtocol
const (
	ProtocolOpened = "opened"
	ProtocolClosed = "closed"
)

// Event is one operator action. Only the fields relevant to Type are read.
type Event struct {
	Type EventType `json:"type"`

	Grade       models.Grade `json:"grade,omitempty"`
	Stage       string       `json:"stage,omitempty"`
	ContestType string       `json:"contestType,omitempty"`
	Moderator   string       `json:"moderator,omitempty"`

	RangeMin        int  `json:"rangeMin,omitempty"`
	RangeMax        int  `json:"rangeMax,omitempty"`
	AvoidRepetition bool `json:"avoidRepetition,omitempty"`

	StudentID int64 `json:"studentId,omitempty"`
	Selected  *bool `json:"selected,omitempty"`

	Word     string `json:"word,omitempty"`
	Protocol string `json:"protocol,omitempty"`
	Typed    string `json:"typed,omitempty"`
}

var knownEvents = map[EventType]bool{
	EventSelectGrade: true, EventConfigure: true, EventToggleStudent: true, EventStart: true,
	EventSetRange: true, EventDraw: true, EventCustomWord: true, EventToggleProtocol: true,
	EventSubmit: true, EventSkip: true, EventNext: true, EventPrevious: true, EventFocus: true,
	EventEliminate: true, EventRestore: true, EventEnd: true, EventRestart: true, EventRetrySave: true,
}

// DecodeEvent parses a JSON event and checks its type
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, &ValidationError{Message: fmt.Sprintf("invalid event: %v", err)}
	}
	if !knownEvents[e.Type] {
		return Event{}, &ValidationError{Message: fmt.Sprintf("unknown event type %q", e.Type)}
	}
	return e, nil
}
