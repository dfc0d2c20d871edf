package contest

import (
	"sort"

	"spellingbee/internal/models"
)

// ScoreRow is one student's line in the recap table
type ScoreRow struct {
	Rank      int           `json:"rank"`
	StudentID int64         `json:"studentId"`
	Name      string        `json:"name"`
	Status    StudentStatus `json:"status"`
	Correct   int           `json:"correct"`
	Incorrect int           `json:"incorrect"`
	Skipped   int           `json:"skipped"`
	Rounds    int           `json:"rounds"`
}

// Scoreboard ranks the roster: active before eliminated, then most correct,
// then fewest incorrect. Remaining ties keep roster order.
func Scoreboard(s *State) []ScoreRow {
	rows := make([]ScoreRow, len(s.Roster))
	index := make(map[int64]int, len(s.Roster))
	for i, c := range s.Roster {
		rows[i] = ScoreRow{StudentID: c.StudentID, Name: c.Name, Status: c.Status}
		index[c.StudentID] = i
	}

	for _, a := range s.Attempts {
		i, ok := index[a.StudentID]
		if !ok {
			continue
		}
		rows[i].Rounds++
		switch a.Result {
		case models.ResultCorrect:
			rows[i].Correct++
		case models.ResultIncorrect:
			rows[i].Incorrect++
		case models.ResultSkipped:
			rows[i].Skipped++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Status != b.Status {
			return a.Status == StatusActive
		}
		if a.Correct != b.Correct {
			return a.Correct > b.Correct
		}
		return a.Incorrect < b.Incorrect
	})

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}
