package service

import (
	"net/mail"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"spellingbee/internal/contest"
	"spellingbee/internal/database"
	"spellingbee/internal/mailer"
	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/security"
)

// testApp wires every service over a fresh SQLite database
type testApp struct {
	db       *database.DB
	mailer   *mailer.ConsoleMailer
	tokens   *security.TokenIssuer
	auth     *AuthService
	words    *WordService
	students *StudentService
	schools  *SchoolService
	contests *ContestService
	drill    *DrillService
	board    *LeaderboardService
	content  *ContentService
	backup   *BackupService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(database.Migrations))

	userRepo := repository.NewUserRepository(db)
	wordRepo := repository.NewWordRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	contentRepo := repository.NewContentRepository(db)

	m := mailer.NewConsoleMailer(mail.Address{Address: "bee@example.com"})
	tokens := security.NewTokenIssuer("test-secret", time.Hour)

	return &testApp{
		db:       db,
		mailer:   m,
		tokens:   tokens,
		auth:     NewAuthService(userRepo, time.Hour),
		words:    NewWordService(wordRepo, nil),
		students: NewStudentService(studentRepo, schoolRepo),
		schools:  NewSchoolService(schoolRepo, m, tokens, "https://bee.example.com/"),
		contests: NewContestService(contest.NewMemoryStore(time.Hour), studentRepo, wordRepo, sessionRepo),
		drill:    NewDrillService(studentRepo, wordRepo, statsRepo, inventoryRepo, tokens),
		board:    NewLeaderboardService(studentRepo),
		content:  NewContentService(paymentRepo, contentRepo, schoolRepo),
		backup:   NewBackupService(db),
	}
}

func (a *testApp) addWords(t *testing.T, grade models.Grade, words ...string) []models.WordEntry {
	t.Helper()
	reqs := make([]WordRequest, 0, len(words))
	for _, w := range words {
		reqs = append(reqs, WordRequest{Word: w, Definition: "a word of " + strconv.Itoa(len(w)) + " letters", Grade: grade})
	}
	added, err := a.words.AddBulk(t.Context(), reqs)
	require.NoError(t, err)
	return added
}

func (a *testApp) addStudent(t *testing.T, first, last string, grade models.Grade) *models.Student {
	t.Helper()
	student, err := a.students.Register(StudentRequest{FirstName: first, LastName: last, Grade: grade})
	require.NoError(t, err)
	return student
}
