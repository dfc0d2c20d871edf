package models

import (
	"strconv"
	"time"
)

// Grade is a school grade from 1 to 12. Grade 12 is the "Group 3" bracket.
type Grade int

const (
	MinGrade Grade = 1
	MaxGrade Grade = 12
	Group3   Grade = 12
)

// Valid reports whether g is within the supported range
func (g Grade) Valid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Label returns the display name of the grade
func (g Grade) Label() string {
	if g == Group3 {
		return "Group 3"
	}
	return "Grade " + strconv.Itoa(int(g))
}

// Difficulty of a word. The zero value means unset.
type Difficulty string

const (
	DifficultyUnset  Difficulty = ""
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulties or unset
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyUnset, DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// WordEntry is a word in a grade's contest list
type WordEntry struct {
	ID         int64      `json:"id"`
	Word       string     `json:"word"`
	Definition string     `json:"definition"`
	Example    string     `json:"example"`
	Grade      Grade      `json:"grade"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Image      string     `json:"image,omitempty"`
	AudioURL   string     `json:"audioUrl,omitempty"`
	Position   int        `json:"position"`
	CreatedAt  time.Time  `json:"createdAt"`
}
