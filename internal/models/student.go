package models

import "time"

// Student is a contestant profile, also used for drill logins
type Student struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	School           string    `json:"school"`
	SchoolID         *int64    `json:"schoolId,omitempty"`
	Grade            Grade     `json:"grade"`
	Photo            string    `json:"photo,omitempty"`
	Username         string    `json:"username"`
	Password         string    `json:"password,omitempty"`
	TotalXP          int       `json:"totalXp"`
	Coins            int       `json:"coins"`
	CurrentStreak    int       `json:"currentStreak"`
	LastPracticeDate string    `json:"lastPracticeDate,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FullName joins first and last name
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// Public returns a copy without the practice password
func (s Student) Public() Student {
	s.Password = ""
	return s
}
