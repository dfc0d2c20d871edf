package drill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"spellingbee/internal/models"
)

func TestPoints(t *testing.T) {
	tests := []struct {
		name       string
		difficulty models.Difficulty
		elapsedMs  int
		correct    bool
		want       int
	}{
		{"incorrect", models.DifficultyHard, 0, false, 0},
		{"easy instant", models.DifficultyEasy, 0, true, 30},
		{"medium 2.5s", models.DifficultyMedium, 2500, true, 35},
		{"hard slow", models.DifficultyHard, 60000, true, 30},
		{"unset 1s", models.DifficultyUnset, 1000, true, 33},
		{"unknown difficulty", models.Difficulty("Weird"), 9999, true, 16},
		{"negative elapsed", models.DifficultyEasy, -5, true, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Points(tt.difficulty, tt.elapsedMs, tt.correct))
		})
	}
}

func TestNextStreak(t *testing.T) {
	today := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		current     int
		last        string
		wantStreak  int
		wantChanged bool
	}{
		{"first practice ever", 0, "", 1, true},
		{"same day", 4, "2026-03-01", 4, false},
		{"yesterday across month", 4, "2026-02-28", 5, true},
		{"gap resets", 9, "2026-02-20", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, changed := NextStreak(tt.current, tt.last, today)
			assert.Equal(t, tt.wantStreak, streak)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestLeagueFor(t *testing.T) {
	tests := []struct {
		xp   int
		want League
	}{
		{0, LeaguePaper},
		{499, LeaguePaper},
		{500, LeagueIron},
		{1499, LeagueIron},
		{1500, LeagueBronze},
		{3000, LeagueGold},
		{5999, LeagueGold},
		{6000, LeaguePlatinum},
		{10000, LeagueDiamond},
		{250000, LeagueDiamond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LeagueFor(tt.xp), "xp=%d", tt.xp)
	}
}

func TestCatalog(t *testing.T) {
	item, ok := LookupItem("streak_freeze")
	assert.True(t, ok)
	assert.Equal(t, 20, item.Price)

	_, ok = LookupItem("rocket")
	assert.False(t, ok)

	items := Catalog()
	if assert.Len(t, items, 3) {
		assert.Equal(t, "hint", items[0].Key)
		assert.Equal(t, "bee_badge", items[2].Key)
	}
}
