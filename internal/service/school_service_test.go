package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellingbee/internal/mailer"
	"spellingbee/internal/repository"
	"spellingbee/internal/validation"
)

type failingMailer struct{}

func (failingMailer) Send(context.Context, mailer.Message) error {
	return errors.New("smtp unavailable")
}

func TestSchoolCreateUniqueSlug(t *testing.T) {
	app := newTestApp(t)

	first, err := app.schools.Create(SchoolRequest{Name: "Hillside Primary", ContactEmail: "head@hillside.example"})
	require.NoError(t, err)
	second, err := app.schools.Create(SchoolRequest{Name: "Hillside  Primary!", ContactEmail: "office@hillside.example"})
	require.NoError(t, err)

	assert.Equal(t, "hillside-primary", first.Slug)
	assert.Equal(t, "hillside-primary-2", second.Slug)
	assert.Regexp(t, `^HILL-[A-Z2-9]{6}$`, first.InvitationCode)
	assert.NotEqual(t, first.InvitationCode, second.InvitationCode)

	_, err = app.schools.Create(SchoolRequest{Name: " ", ContactEmail: "not-an-email"})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "name")
	assert.Contains(t, verrs, "contactEmail")
}

func TestSchoolInvite(t *testing.T) {
	app := newTestApp(t)
	school, err := app.schools.Create(SchoolRequest{Name: "Hillside", ContactName: "Ms Frizzle", ContactEmail: "head@hillside.example"})
	require.NoError(t, err)

	result, err := app.schools.Invite(t.Context(), school.ID)
	require.NoError(t, err)
	assert.True(t, result.Sent)
	require.NotNil(t, result.School.InvitedAt)

	sent := app.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "head@hillside.example", sent[0].To.Address)
	assert.Contains(t, sent[0].Text, school.InvitationCode)
	assert.Contains(t, sent[0].Text, "https://bee.example.com/portal")
	assert.Contains(t, sent[0].HTML, "Hello Ms Frizzle")

	_, err = app.schools.Invite(t.Context(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSchoolInviteFailureIsReported(t *testing.T) {
	app := newTestApp(t)
	school, err := app.schools.Create(SchoolRequest{Name: "Hillside", ContactEmail: "head@hillside.example"})
	require.NoError(t, err)

	app.schools.mailer = failingMailer{}
	result, err := app.schools.Invite(t.Context(), school.ID)
	require.NoError(t, err)
	assert.False(t, result.Sent)
	assert.NotEmpty(t, result.Error)

	stored, err := app.schools.Get(school.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.InvitedAt, "a failed send must not mark the school invited")
}

func TestSchoolPortalLogin(t *testing.T) {
	app := newTestApp(t)
	school, err := app.schools.Create(SchoolRequest{Name: "Hillside", ContactEmail: "head@hillside.example"})
	require.NoError(t, err)

	token, joined, err := app.schools.PortalLogin(" " + strings.ToLower(school.InvitationCode) + " ")
	require.NoError(t, err)
	require.NotNil(t, joined.JoinedAt)

	id, err := app.schools.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, school.ID, id)

	_, err = app.drill.Authenticate(token)
	assert.ErrorIs(t, err, ErrUnauthorized, "school tokens are not student tokens")

	_, _, err = app.schools.PortalLogin("NOPE-000000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = app.schools.PortalLogin("")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSchoolDeleteKeepsStudentSchoolName(t *testing.T) {
	app := newTestApp(t)
	school, err := app.schools.Create(SchoolRequest{Name: "Hillside", ContactEmail: "head@hillside.example"})
	require.NoError(t, err)

	student, err := app.students.Register(StudentRequest{FirstName: "Ada", SchoolID: &school.ID, Grade: 5})
	require.NoError(t, err)
	assert.Equal(t, "Hillside", student.School)

	require.NoError(t, app.schools.Delete(school.ID))
	assert.ErrorIs(t, app.schools.Delete(school.ID), ErrNotFound)

	stored, err := app.students.Get(student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hillside", stored.School)

	schools, err := app.schools.List()
	require.NoError(t, err)
	assert.Empty(t, schools)
}

func TestStudentRegister(t *testing.T) {
	app := newTestApp(t)

	first := app.addStudent(t, "Ada", "Lovelace", 5)
	second := app.addStudent(t, "Ada", "Lovelace", 6)
	assert.Equal(t, "ada.lovelace", first.Username)
	assert.Equal(t, "ada.lovelace2", second.Username)
	assert.Regexp(t, `^[a-z]+-[a-z]+-[1-9][0-9]$`, first.Password)

	_, err := app.students.Register(StudentRequest{FirstName: "", Grade: 13})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "firstName")
	assert.Contains(t, verrs, "grade")

	missing := int64(42)
	_, err = app.students.Register(StudentRequest{FirstName: "Alan", Grade: 5, SchoolID: &missing})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "schoolId")

	fifth, err := app.students.List(repository.StudentFilter{Grade: 5})
	require.NoError(t, err)
	require.Len(t, fifth, 1)
	assert.Equal(t, first.ID, fifth[0].ID)
}

func TestStudentUpdateAndRegenerate(t *testing.T) {
	app := newTestApp(t)
	student := app.addStudent(t, "Ada", "Lovelace", 5)
	require.NoError(t, repository.NewStudentRepository(app.db).AddRewards(student.ID, 40, 2))

	updated, err := app.students.Update(student.ID, StudentRequest{FirstName: "Augusta", LastName: "King", Grade: 6})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "ada.lovelace", updated.Username, "username is stable across edits")
	assert.Equal(t, 40, updated.TotalXP)

	regenerated, err := app.students.RegeneratePassword(student.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, regenerated.Password)

	_, _, err = app.drill.Login("ada.lovelace", regenerated.Password)
	require.NoError(t, err)

	require.NoError(t, app.students.Delete(student.ID))
	_, err = app.students.Get(student.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaderboard(t *testing.T) {
	app := newTestApp(t)
	repo := repository.NewStudentRepository(app.db)

	ada := app.addStudent(t, "Ada", "Lovelace", 5)
	alan := app.addStudent(t, "Alan", "Turing", 5)
	grace := app.addStudent(t, "Grace", "Hopper", 6)
	require.NoError(t, repo.AddRewards(ada.ID, 600, 0))
	require.NoError(t, repo.AddRewards(alan.ID, 1600, 0))
	require.NoError(t, repo.AddRewards(grace.ID, 20, 0))

	entries, err := app.board.Top(repository.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "Alan Turing", entries[0].Name)
	assert.Equal(t, "Bronze", entries[0].League)
	assert.Equal(t, "Iron", entries[1].League)
	assert.Equal(t, "Paper", entries[2].League)

	entries, err = app.board.Top(repository.StudentFilter{Grade: 5, Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, alan.ID, entries[0].StudentID)

	_, err = app.board.Top(repository.StudentFilter{Grade: 99})
	assert.Error(t, err)
}
