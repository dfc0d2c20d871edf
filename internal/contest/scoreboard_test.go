package contest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellingbee/internal/models"
)

func TestScoreboardRanking(t *testing.T) {
	s := &State{
		Phase: PhaseActive,
		Roster: []Contestant{
			{StudentID: 1, Name: "Ada", Status: StatusActive},
			{StudentID: 2, Name: "Alan", Status: StatusEliminated},
			{StudentID: 3, Name: "Grace", Status: StatusActive},
			{StudentID: 4, Name: "Linus", Status: StatusActive},
		},
		Attempts: []models.Attempt{
			{StudentID: 1, Result: models.ResultCorrect},
			{StudentID: 2, Result: models.ResultCorrect},
			{StudentID: 3, Result: models.ResultCorrect},
			{StudentID: 4, Result: models.ResultCorrect},
			{StudentID: 1, Result: models.ResultIncorrect},
			{StudentID: 2, Result: models.ResultCorrect},
			{StudentID: 3, Result: models.ResultSkipped},
			{StudentID: 4, Result: models.ResultCorrect},
			{StudentID: 99, Result: models.ResultCorrect},
		},
	}

	rows := Scoreboard(s)
	require.Len(t, rows, 4)

	var order []int64
	for i, row := range rows {
		order = append(order, row.StudentID)
		assert.Equal(t, i+1, row.Rank)
	}
	// Linus has the most correct; Grace and Ada tie on correct, Grace has fewer misses;
	// Alan is eliminated and ranks last despite two correct.
	assert.Equal(t, []int64{4, 3, 1, 2}, order)

	assert.Equal(t, 1, rows[1].Correct)
	assert.Equal(t, 1, rows[1].Skipped)
	assert.Equal(t, 2, rows[1].Rounds)
	assert.Equal(t, 1, rows[2].Incorrect)
}

func TestScoreboardEmptyRoster(t *testing.T) {
	assert.Empty(t, Scoreboard(New("c1", baseTime)))
}
