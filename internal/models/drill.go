package models

import "time"

// WordStat is one drill answer
type WordStat struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	WordID    int64     `json:"wordId"`
	Word      string    `json:"word"`
	Correct   bool      `json:"correct"`
	ElapsedMs int       `json:"elapsedMs"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

// InventoryItem is a quantity of a shop item owned by a student
type InventoryItem struct {
	StudentID int64     `json:"studentId"`
	ItemKey   string    `json:"itemKey"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LeaderboardEntry is one ranked student
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	StudentID int64  `json:"studentId"`
	Name      string `json:"name"`
	School    string `json:"school"`
	Grade     Grade  `json:"grade"`
	TotalXP   int    `json:"totalXp"`
	League    string `json:"league"`
}
