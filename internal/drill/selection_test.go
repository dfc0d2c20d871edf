package drill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellingbee/internal/models"
)

func stat(wordID int64, correct bool) models.WordStat {
	return models.WordStat{WordID: wordID, Correct: correct}
}

func TestWeight(t *testing.T) {
	word := models.WordEntry{ID: 7, Word: "necessary"}

	tests := []struct {
		name    string
		history []models.WordStat
		want    int
	}{
		{"no history", nil, WeightNew},
		{"only other words", []models.WordStat{stat(1, false), stat(2, true)}, WeightNew},
		{"latest incorrect", []models.WordStat{stat(7, false), stat(7, true), stat(7, true), stat(7, true)}, WeightMissed},
		{"one correct", []models.WordStat{stat(7, true)}, WeightReview},
		{"two correct", []models.WordStat{stat(7, true), stat(7, true)}, WeightReview},
		{"three correct", []models.WordStat{stat(7, true), stat(7, true), stat(7, true)}, WeightMastered},
		{"streak broken by older miss", []models.WordStat{stat(7, true), stat(7, true), stat(7, false), stat(7, true)}, WeightReview},
		{"other words interleaved", []models.WordStat{stat(7, true), stat(1, false), stat(7, true), stat(2, false), stat(7, true)}, WeightMastered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Weight(word, tt.history))
		})
	}
}

func TestWeightMatchesTextWithoutID(t *testing.T) {
	word := models.WordEntry{ID: 7, Word: "Rhythm"}
	history := []models.WordStat{{Word: "rhythm", Correct: false}}
	assert.Equal(t, WeightMissed, Weight(word, history))
}

func TestPickUniformWithoutHistory(t *testing.T) {
	words := []models.WordEntry{{ID: 1, Word: "a"}, {ID: 2, Word: "b"}, {ID: 3, Word: "c"}}

	var gotN int
	w, ok := Pick(words, nil, func(n int) int {
		gotN = n
		return 2
	})

	require.True(t, ok)
	assert.Equal(t, 3, gotN)
	assert.Equal(t, int64(3), w.ID)
}

func TestPickWeighted(t *testing.T) {
	words := []models.WordEntry{{ID: 1, Word: "new"}, {ID: 2, Word: "missed"}, {ID: 3, Word: "mastered"}}
	history := []models.WordStat{
		stat(2, false),
		stat(3, true), stat(3, true), stat(3, true),
	}
	// weights 20, 50, 1 -> cumulative 20, 70, 71

	tests := []struct {
		r    int
		want int64
	}{
		{0, 1},
		{19, 1},
		{20, 2},
		{69, 2},
		{70, 3},
	}

	for _, tt := range tests {
		var gotTotal int
		w, ok := Pick(words, history, func(n int) int {
			gotTotal = n
			return tt.r
		})
		require.True(t, ok)
		assert.Equal(t, 71, gotTotal)
		assert.Equal(t, tt.want, w.ID, "r=%d", tt.r)
	}
}

func TestPickEmpty(t *testing.T) {
	_, ok := Pick(nil, nil, func(int) int { return 0 })
	assert.False(t, ok)
}
