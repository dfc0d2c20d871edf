package drill

import (
	"time"

	"spellingbee/internal/models"
)

// DateLayout is the calendar-day format stored in last_practice_date
const DateLayout = "2006-01-02"

// CoinsPerCorrect is granted for every correct drill answer
const CoinsPerCorrect = 1

var basePoints = map[models.Difficulty]int{
	models.DifficultyEasy:   10,
	models.DifficultyMedium: 20,
	models.DifficultyHard:   30,
}

const unsetDifficultyPoints = 15

// Points returns the XP earned by an answer: the difficulty base plus a speed
// bonus that shrinks by one point per half second. Wrong answers earn nothing.
func Points(difficulty models.Difficulty, elapsedMs int, correct bool) int {
	if !correct {
		return 0
	}

	base, ok := basePoints[difficulty]
	if !ok {
		base = unsetDifficultyPoints
	}

	if elapsedMs < 0 {
		elapsedMs = 0
	}
	bonus := 20 - elapsedMs/500
	if bonus < 0 {
		bonus = 0
	}
	return base + bonus
}

// NextStreak computes the daily streak after practising on today.
// changed is false when the student already practised today.
func NextStreak(current int, lastPracticeDate string, today time.Time) (streak int, changed bool) {
	todayStr := today.Format(DateLayout)
	if lastPracticeDate == todayStr {
		return current, false
	}

	yesterday := today.AddDate(0, 0, -1).Format(DateLayout)
	if lastPracticeDate == yesterday {
		return current + 1, true
	}
	return 1, true
}
