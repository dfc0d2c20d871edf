// Package drill picks practice words and computes drill rewards.
package drill

import (
	"sort"
	"strings"

	"spellingbee/internal/models"
)

// HistoryLimit bounds the per-student history used for weighting
const HistoryLimit = 500

// Selection weights
const (
	WeightNew      = 20
	WeightMissed   = 50
	WeightReview   = 5
	WeightMastered = 1

	// masteryStreak is the consecutive-correct count above which a word counts as mastered
	masteryStreak = 2
)

// Intn returns a uniform integer in [0, n)
type Intn func(n int) int

// Weight scores one word against a newest-first history
func Weight(word models.WordEntry, history []models.WordStat) int {
	seen := false
	streak := 0

	for _, stat := range history {
		if !sameWord(word, stat) {
			continue
		}
		if !seen {
			seen = true
			if !stat.Correct {
				return WeightMissed
			}
		}
		if !stat.Correct {
			break
		}
		streak++
	}

	switch {
	case !seen:
		return WeightNew
	case streak > masteryStreak:
		return WeightMastered
	default:
		return WeightReview
	}
}

// Weights scores every word in order
func Weights(words []models.WordEntry, history []models.WordStat) []int {
	weights := make([]int, len(words))
	for i, w := range words {
		weights[i] = Weight(w, history)
	}
	return weights
}

// Pick draws one word. With no history the draw is uniform; otherwise each word is
// chosen with probability proportional to its weight. ok is false for an empty list.
func Pick(words []models.WordEntry, history []models.WordStat, intn Intn) (models.WordEntry, bool) {
	if len(words) == 0 {
		return models.WordEntry{}, false
	}
	if len(history) == 0 {
		return words[intn(len(words))], true
	}

	cumulative := make([]int, len(words))
	total := 0
	for i, w := range Weights(words, history) {
		total += w
		cumulative[i] = total
	}

	r := intn(total)
	i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > r })
	return words[i], true
}

// sameWord matches by id, falling back to case-insensitive text for stats without one
func sameWord(word models.WordEntry, stat models.WordStat) bool {
	if stat.WordID != 0 && word.ID != 0 {
		return stat.WordID == word.ID
	}
	return strings.EqualFold(stat.Word, word.Word)
}
