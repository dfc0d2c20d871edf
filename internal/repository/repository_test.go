package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(database.Migrations); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createTestStudent(t *testing.T, repo *StudentRepository, username string, grade models.Grade) *models.Student {
	t.Helper()
	s := &models.Student{
		FirstName: "Test",
		LastName:  username,
		Grade:     grade,
		Username:  username,
		Password:  "bee-1234",
	}
	if err := repo.CreateStudent(s); err != nil {
		t.Fatalf("CreateStudent() error = %v", err)
	}
	return s
}

func TestUserRepositoryFirstUserIsAdmin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	first, err := repo.CreateUser("first@example.com", "hash", "First")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	second, err := repo.CreateUser("second@example.com", "hash", "Second")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if !first.IsAdmin {
		t.Error("first user should be admin")
	}
	if second.IsAdmin {
		t.Error("second user should not be admin")
	}

	got, err := repo.GetUserByEmail("second@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetUserByEmail() = %v, %v", got, err)
	}
	if got.Name != "Second" {
		t.Errorf("Name = %q, want Second", got.Name)
	}

	missing, err := repo.GetUserByEmail("nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("GetUserByEmail(missing) = %v, %v; want nil, nil", missing, err)
	}

	_, err = repo.CreateUser("first@example.com", "hash", "Dup")
	if !database.IsUniqueViolation(err) {
		t.Errorf("duplicate email error = %v, want unique violation", err)
	}
}

func TestUserRepositorySessions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.CreateUser("mod@example.com", "hash", "Mod")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if _, err := repo.CreateSession("live", user.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := repo.CreateSession("old", user.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if err := repo.DeleteExpiredSessions(); err != nil {
		t.Fatalf("DeleteExpiredSessions() error = %v", err)
	}

	if s, _ := repo.GetSession("old"); s != nil {
		t.Error("expired session should be deleted")
	}
	s, err := repo.GetSession("live")
	if err != nil || s == nil {
		t.Fatalf("GetSession(live) = %v, %v", s, err)
	}
	if s.UserID != user.ID {
		t.Errorf("UserID = %d, want %d", s.UserID, user.ID)
	}
}

func TestWordRepositoryPositions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWordRepository(db)

	added, err := repo.AddWords([]models.WordEntry{
		{Word: "apple", Grade: 3},
		{Word: "banana", Grade: 3},
		{Word: "cherry", Grade: 4},
	})
	if err != nil {
		t.Fatalf("AddWords() error = %v", err)
	}
	if len(added) != 3 {
		t.Fatalf("AddWords() returned %d words", len(added))
	}

	extra := &models.WordEntry{Word: "date", Grade: 3, Difficulty: models.DifficultyHard}
	if err := repo.AddWord(extra); err != nil {
		t.Fatalf("AddWord() error = %v", err)
	}
	if extra.Position != 3 {
		t.Errorf("Position = %d, want 3", extra.Position)
	}

	words, err := repo.ListByGrade(3)
	if err != nil {
		t.Fatalf("ListByGrade() error = %v", err)
	}
	var texts []string
	for _, w := range words {
		texts = append(texts, w.Word)
	}
	if len(texts) != 3 || texts[0] != "apple" || texts[2] != "date" {
		t.Errorf("ListByGrade(3) = %v", texts)
	}
	if words[2].Difficulty != models.DifficultyHard {
		t.Errorf("Difficulty = %q", words[2].Difficulty)
	}

	counts, err := repo.CountByGrade()
	if err != nil {
		t.Fatalf("CountByGrade() error = %v", err)
	}
	if counts[3] != 3 || counts[4] != 1 {
		t.Errorf("CountByGrade() = %v", counts)
	}
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)

	held := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	session := &models.Session{
		Date:      held,
		Grade:     5,
		Moderator: "Ms. Frizzle",
		Stage:     "Final",
		Attempts: []models.Attempt{
			{Timestamp: held, StudentID: 1, StudentName: "Ada", WordID: 9, WordText: "rhythm", TypedSpelling: "rhythm",
				ProtocolOpened: true, ProtocolClosed: true, WordNumber: 1, Result: models.ResultCorrect, Round: 1},
			{Timestamp: held.Add(time.Minute), StudentID: 2, StudentName: "Alan", WordText: models.SkippedWordText,
				WordNumber: 1, Result: models.ResultSkipped, Round: 1},
		},
		DurationSeconds: 600,
	}

	id, err := repo.CreateSession(session)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	empty := &models.Session{Date: held.Add(time.Hour), Grade: 6, Moderator: "Mr. Rogers", Attempts: []models.Attempt{}}
	if _, err := repo.CreateSession(empty); err != nil {
		t.Fatalf("CreateSession(empty) error = %v", err)
	}

	got, err := repo.GetSession(id)
	if err != nil || got == nil {
		t.Fatalf("GetSession() = %v, %v", got, err)
	}
	if len(got.Attempts) != 2 {
		t.Fatalf("Attempts = %d, want 2", len(got.Attempts))
	}
	if got.Attempts[0].WordText != "rhythm" || !got.Attempts[0].ProtocolOpened {
		t.Errorf("first attempt = %+v", got.Attempts[0])
	}
	if got.Attempts[1].Result != models.ResultSkipped {
		t.Errorf("second attempt result = %q", got.Attempts[1].Result)
	}

	all, err := repo.ListSessions(0)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(all) != 2 || all[0].Grade != 6 || all[1].AttemptCount != 2 {
		t.Errorf("ListSessions() = %+v", all)
	}

	grade5, err := repo.ListSessions(5)
	if err != nil || len(grade5) != 1 {
		t.Errorf("ListSessions(5) = %+v, %v", grade5, err)
	}

	deleted, err := repo.DeleteSession(id)
	if err != nil || !deleted {
		t.Fatalf("DeleteSession() = %v, %v", deleted, err)
	}
	var attempts int
	if err := db.QueryRow("SELECT COUNT(*) FROM contest_attempts").Scan(&attempts); err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if attempts != 0 {
		t.Errorf("attempts after delete = %d, want 0", attempts)
	}

	deleted, err = repo.DeleteSession(id)
	if err != nil || deleted {
		t.Errorf("second DeleteSession() = %v, %v", deleted, err)
	}
}

func TestStudentRepositoryRewardsAndStreak(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)
	s := createTestStudent(t, repo, "ada", 5)

	if err := repo.AddRewards(s.ID, 25, 1); err != nil {
		t.Fatalf("AddRewards() error = %v", err)
	}
	if err := repo.AddRewards(s.ID, 10, 1); err != nil {
		t.Fatalf("AddRewards() error = %v", err)
	}

	updated, err := repo.UpdateStreak(s.ID, "", "2026-05-01", 1)
	if err != nil || !updated {
		t.Fatalf("UpdateStreak() = %v, %v", updated, err)
	}
	updated, err = repo.UpdateStreak(s.ID, "", "2026-05-01", 7)
	if err != nil || updated {
		t.Errorf("stale UpdateStreak() = %v, %v; want false", updated, err)
	}

	got, err := repo.GetStudentByID(s.ID)
	if err != nil || got == nil {
		t.Fatalf("GetStudentByID() = %v, %v", got, err)
	}
	if got.TotalXP != 35 || got.Coins != 2 {
		t.Errorf("xp/coins = %d/%d, want 35/2", got.TotalXP, got.Coins)
	}
	if got.CurrentStreak != 1 || got.LastPracticeDate != "2026-05-01" {
		t.Errorf("streak = %d on %q", got.CurrentStreak, got.LastPracticeDate)
	}
}

func TestStudentRepositoryFiltersAndLeaderboard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStudentRepository(db)

	a := createTestStudent(t, repo, "a", 5)
	b := createTestStudent(t, repo, "b", 5)
	c := createTestStudent(t, repo, "c", 6)

	repo.AddRewards(a.ID, 100, 0)
	repo.AddRewards(b.ID, 300, 0)
	repo.AddRewards(c.ID, 200, 0)

	grade5, err := repo.ListStudents(StudentFilter{Grade: 5})
	if err != nil || len(grade5) != 2 {
		t.Fatalf("ListStudents(grade 5) = %d, %v", len(grade5), err)
	}

	board, err := repo.Leaderboard(StudentFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(board) != 2 || board[0].ID != b.ID || board[1].ID != c.ID {
		t.Errorf("Leaderboard() order wrong: %+v", board)
	}

	exists, err := repo.UsernameExists("a")
	if err != nil || !exists {
		t.Errorf("UsernameExists(a) = %v, %v", exists, err)
	}
}

func TestInventoryPurchase(t *testing.T) {
	db := setupTestDB(t)
	students := NewStudentRepository(db)
	repo := NewInventoryRepository(db)
	s := createTestStudent(t, students, "buyer", 5)

	if err := repo.Purchase(s.ID, "hint", 5); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("Purchase() with no coins = %v, want ErrInsufficientCoins", err)
	}

	students.AddRewards(s.ID, 0, 12)

	for i := 0; i < 2; i++ {
		if err := repo.Purchase(s.ID, "hint", 5); err != nil {
			t.Fatalf("Purchase() error = %v", err)
		}
	}
	if err := repo.Purchase(s.ID, "hint", 5); !errors.Is(err, ErrInsufficientCoins) {
		t.Errorf("third Purchase() = %v, want ErrInsufficientCoins", err)
	}

	items, err := repo.ListInventory(s.ID)
	if err != nil {
		t.Fatalf("ListInventory() error = %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("ListInventory() = %+v", items)
	}

	got, _ := students.GetStudentByID(s.ID)
	if got.Coins != 2 {
		t.Errorf("Coins = %d, want 2", got.Coins)
	}
}

func TestStatsRepositoryRecent(t *testing.T) {
	db := setupTestDB(t)
	students := NewStudentRepository(db)
	repo := NewStatsRepository(db)
	s := createTestStudent(t, students, "drill", 5)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		stat := &models.WordStat{
			StudentID: s.ID,
			WordID:    int64(i + 1),
			Word:      "w",
			Correct:   i%2 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.RecordStat(stat); err != nil {
			t.Fatalf("RecordStat() error = %v", err)
		}
	}

	recent, err := repo.RecentForStudent(s.ID, 3)
	if err != nil {
		t.Fatalf("RecentForStudent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("RecentForStudent() returned %d", len(recent))
	}
	if recent[0].WordID != 5 || recent[2].WordID != 3 {
		t.Errorf("RecentForStudent() not newest first: %+v", recent)
	}

	acc, err := repo.AccuracyForStudent(s.ID)
	if err != nil {
		t.Fatalf("AccuracyForStudent() error = %v", err)
	}
	if acc.Total != 5 || acc.Correct != 3 {
		t.Errorf("accuracy = %+v", acc)
	}
}

func TestSchoolRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSchoolRepository(db)

	school := &models.School{Name: "Hillside Primary", Slug: "hillside-primary", InvitationCode: "HILL-1234"}
	if err := repo.CreateSchool(school); err != nil {
		t.Fatalf("CreateSchool() error = %v", err)
	}

	joined := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	if err := repo.MarkJoined(school.ID, joined); err != nil {
		t.Fatalf("MarkJoined() error = %v", err)
	}
	if err := repo.MarkJoined(school.ID, joined.Add(time.Hour)); err != nil {
		t.Fatalf("MarkJoined() error = %v", err)
	}

	got, err := repo.GetSchoolByInvitationCode("HILL-1234")
	if err != nil || got == nil {
		t.Fatalf("GetSchoolByInvitationCode() = %v, %v", got, err)
	}
	if got.JoinedAt == nil || !got.JoinedAt.Equal(joined) {
		t.Errorf("JoinedAt = %v, want %v", got.JoinedAt, joined)
	}
	if got.InvitedAt != nil {
		t.Errorf("InvitedAt = %v, want nil", got.InvitedAt)
	}
}
