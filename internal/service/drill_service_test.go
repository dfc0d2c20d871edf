package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellingbee/internal/drill"
	"spellingbee/internal/models"
	"spellingbee/internal/repository"
)

func TestDrillLogin(t *testing.T) {
	app := newTestApp(t)
	student := app.addStudent(t, "Ada", "Lovelace", 5)

	token, public, err := app.drill.Login(" ADA.Lovelace ", student.Password)
	require.NoError(t, err)
	assert.Empty(t, public.Password, "login response must not echo the code")

	id, err := app.drill.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, student.ID, id)

	_, _, err = app.drill.Login("ada.lovelace", "wrong-code-00")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = app.drill.Login("nobody", "x")
	assert.ErrorIs(t, err, ErrUnauthorized)

	schoolToken, _, err := app.tokens.Issue("school", student.ID)
	require.NoError(t, err)
	_, err = app.drill.Authenticate(schoolToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "school tokens are not drill tokens")
}

func TestDrillAnswerGrantsRewardsAndStreak(t *testing.T) {
	app := newTestApp(t)
	student := app.addStudent(t, "Ada", "Lovelace", 5)
	words := app.addWords(t, 5, "rhythm")

	day := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)
	app.drill.now = func() time.Time { return day }

	next, err := app.drill.Next(student.ID)
	require.NoError(t, err)
	assert.Equal(t, words[0].ID, next.WordID)
	assert.Equal(t, 6, next.Length)

	nextWord := func() {
		t.Helper()
		_, err := app.drill.Next(student.ID)
		require.NoError(t, err)
	}

	result, err := app.drill.Answer(student.ID, AnswerRequest{WordID: words[0].ID, Typed: "RHYTHM ", ElapsedMs: 1000})
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, 15+18, result.Points)
	assert.Equal(t, 33, result.TotalXP)
	assert.Equal(t, drill.CoinsPerCorrect, result.Coins)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Equal(t, drill.LeaguePaper, result.League)

	nextWord()
	result, err = app.drill.Answer(student.ID, AnswerRequest{WordID: words[0].ID, Typed: "rythm", ElapsedMs: 1000})
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Zero(t, result.Points)
	assert.Equal(t, "rhythm", result.Word)
	assert.Equal(t, 33, result.TotalXP)
	assert.Equal(t, 1, result.CurrentStreak, "same-day answers keep the streak")

	app.drill.now = func() time.Time { return day.AddDate(0, 0, 1) }
	nextWord()
	result, err = app.drill.Answer(student.ID, AnswerRequest{WordID: words[0].ID, Typed: "rhythm", ElapsedMs: 20000})
	require.NoError(t, err)
	assert.Equal(t, 15, result.Points, "slow answers get no speed bonus")
	assert.Equal(t, 2, result.CurrentStreak)

	app.drill.now = func() time.Time { return day.AddDate(0, 0, 5) }
	nextWord()
	result, err = app.drill.Answer(student.ID, AnswerRequest{WordID: words[0].ID, Typed: "rhythm"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak, "a missed day resets the streak")

	history, err := app.drill.History(student.ID, 10)
	require.NoError(t, err)
	require.Len(t, history.Stats, 4)
	assert.True(t, history.Stats[0].Correct)
	assert.False(t, history.Stats[2].Correct)
	assert.Equal(t, 4, history.Accuracy.Total)
	assert.Equal(t, 3, history.Accuracy.Correct)
}

func TestDrillNextPrefersMissedWords(t *testing.T) {
	app := newTestApp(t)
	student := app.addStudent(t, "Ada", "Lovelace", 5)
	words := app.addWords(t, 5, "rhythm", "necessary")

	app.drill.issued.issue(student.ID, words[0].ID)
	_, err := app.drill.Answer(student.ID, AnswerRequest{WordID: words[0].ID, Typed: "rhythm"})
	require.NoError(t, err)
	app.drill.issued.issue(student.ID, words[1].ID)
	_, err = app.drill.Answer(student.ID, AnswerRequest{WordID: words[1].ID, Typed: "neccessary"})
	require.NoError(t, err)

	// Weights are 5 (rhythm, one correct) and 50 (necessary, missed)
	app.drill.intn = func(n int) int {
		assert.Equal(t, 55, n)
		return 5
	}
	next, err := app.drill.Next(student.ID)
	require.NoError(t, err)
	assert.Equal(t, words[1].ID, next.WordID)
}

func TestDrillAnswerValidation(t *testing.T) {
	app := newTestApp(t)
	student := app.addStudent(t, "Ada", "Lovelace", 5)

	_, err := app.drill.Answer(student.ID, AnswerRequest{})
	assert.Error(t, err)
	_, err = app.drill.Answer(student.ID, AnswerRequest{WordID: 999, Typed: "x"})
	assert.ErrorIs(t, err, ErrWordNotIssued)
	_, err = app.drill.Next(student.ID)
	assert.ErrorIs(t, err, ErrNotFound, "no words for the grade")
}

func TestDrillAnswerOnlyForIssuedWord(t *testing.T) {
	app := newTestApp(t)
	student := app.addStudent(t, "Ada", "Lovelace", 5)
	classmate := app.addStudent(t, "Grace", "Hopper", 5)
	words := app.addWords(t, 5, "rhythm")
	other := app.addWords(t, 8, "onomatopoeia")

	_, err := app.drill.Answer(student.ID, AnswerRequest{WordID: words[0].ID, Typed: "rhythm"})
	assert.ErrorIs(t, err, ErrWordNotIssued, "nothing issued yet")

	next, err := app.drill.Next(student.ID)
	require.NoError(t, err)

	_, err = app.drill.Answer(student.ID, AnswerRequest{WordID: other[0].ID, Typed: "onomatopoeia"})
	assert.ErrorIs(t, err, ErrWordNotIssued, "words from another grade are rejected")
	_, err = app.drill.Answer(classmate.ID, AnswerRequest{WordID: next.WordID, Typed: "rhythm"})
	assert.ErrorIs(t, err, ErrWordNotIssued, "issued words are per student")

	result, err := app.drill.Answer(student.ID, AnswerRequest{WordID: next.WordID, Typed: "rythm"})
	require.NoError(t, err)
	assert.False(t, result.Correct)
	assert.Equal(t, "rhythm", result.Word)

	_, err = app.drill.Answer(student.ID, AnswerRequest{WordID: next.WordID, Typed: "rhythm"})
	assert.ErrorIs(t, err, ErrWordNotIssued, "the revealed word cannot be replayed")
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := repository.NewStudentRepository(app.db).GetStudentByID(student.ID)
	require.NoError(t, err)
	assert.Zero(t, updated.TotalXP)
	assert.Zero(t, updated.Coins)
}

func TestDrillShop(t *testing.T) {
	app := newTestApp(t)
	student := app.addStudent(t, "Ada", "Lovelace", 5)
	studentRepo := repository.NewStudentRepository(app.db)
	require.NoError(t, studentRepo.AddRewards(student.ID, 100, 7))

	result, err := app.drill.Purchase(student.ID, "hint")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Coins)
	require.Len(t, result.Inventory, 1)
	assert.Equal(t, models.InventoryItem{StudentID: student.ID, ItemKey: "hint", Quantity: 1, UpdatedAt: result.Inventory[0].UpdatedAt}, result.Inventory[0])

	_, err = app.drill.Purchase(student.ID, "hint")
	assert.ErrorIs(t, err, ErrInsufficientCoins)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = app.drill.Purchase(student.ID, "rocket")
	assert.ErrorIs(t, err, ErrNotFound)

	profile, err := app.drill.Profile(student.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.Student.Coins)
	assert.Empty(t, profile.Student.Password)
	assert.Len(t, profile.Inventory, 1)
	assert.Len(t, profile.Shop, 3)
}
