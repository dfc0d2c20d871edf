package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"spellingbee/internal/database"
	"spellingbee/internal/models"
	"spellingbee/internal/repository"
)

const backupVersion = "1"

// BackupData is a portable snapshot of everything except drill statistics
type BackupData struct {
	Version    string             `json:"version"`
	ExportedAt time.Time          `json:"exportedAt"`
	Users      []UserBackup       `json:"users"`
	Schools    []models.School    `json:"schools"`
	Students   []models.Student   `json:"students"`
	Words      []models.WordEntry `json:"words"`
	Sessions   []models.Session   `json:"sessions"`
	Payments   []models.Payment   `json:"payments"`
	Sponsors   []models.Sponsor   `json:"sponsors"`
	Vendors    []models.Vendor    `json:"vendors"`
	Resources  []models.Resource  `json:"resources"`
}

// UserBackup carries the fields hidden from the API
type UserBackup struct {
	Email         string `json:"email"`
	PasswordHash  string `json:"passwordHash"`
	Name          string `json:"name"`
	OAuthProvider string `json:"oauthProvider"`
	OAuthSubject  string `json:"oauthSubject"`
	IsAdmin       bool   `json:"isAdmin"`
}

// ImportSummary counts imported records
type ImportSummary struct {
	Users     int `json:"users"`
	Schools   int `json:"schools"`
	Students  int `json:"students"`
	Words     int `json:"words"`
	Sessions  int `json:"sessions"`
	Payments  int `json:"payments"`
	Sponsors  int `json:"sponsors"`
	Vendors   int `json:"vendors"`
	Resources int `json:"resources"`
}

// backupRepos are the repositories a backup reads from or restores into,
// all bound to the same connection or transaction
type backupRepos struct {
	users    *repository.UserRepository
	schools  *repository.SchoolRepository
	students *repository.StudentRepository
	words    *repository.WordRepository
	sessions *repository.SessionRepository
	payments *repository.PaymentRepository
	content  *repository.ContentRepository
}

func newBackupRepos(q database.DBTX) backupRepos {
	return backupRepos{
		users:    repository.NewUserRepository(q),
		schools:  repository.NewSchoolRepository(q),
		students: repository.NewStudentRepository(q),
		words:    repository.NewWordRepository(q),
		sessions: repository.NewSessionRepository(q),
		payments: repository.NewPaymentRepository(q),
		content:  repository.NewContentRepository(q),
	}
}

// BackupService exports and restores the database as JSON
type BackupService struct {
	db *database.DB
	backupRepos
}

// NewBackupService creates a backup service over db
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db, backupRepos: newBackupRepos(db)}
}

// Snapshot collects every exportable record
func (s *BackupService) Snapshot() (*BackupData, error) {
	return s.backupRepos.snapshot()
}

func (s backupRepos) snapshot() (*BackupData, error) {
	backup := &BackupData{Version: backupVersion, ExportedAt: time.Now().UTC()}
	var err error

	users, err := s.users.GetAllUsers()
	if err != nil {
		return nil, storeError("export users", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			Email:         u.Email,
			PasswordHash:  u.PasswordHash,
			Name:          u.Name,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
			IsAdmin:       u.IsAdmin,
		})
	}

	if backup.Schools, err = s.schools.ListSchools(); err != nil {
		return nil, storeError("export schools", err)
	}
	if backup.Students, err = s.students.ListStudents(repository.StudentFilter{}); err != nil {
		return nil, storeError("export students", err)
	}
	if backup.Words, err = s.words.ListAll(); err != nil {
		return nil, storeError("export words", err)
	}

	summaries, err := s.sessions.ListSessions(0)
	if err != nil {
		return nil, storeError("export sessions", err)
	}
	for _, summary := range summaries {
		session, err := s.sessions.GetSession(summary.ID)
		if err != nil {
			return nil, storeError("export session", err)
		}
		if session != nil {
			backup.Sessions = append(backup.Sessions, *session)
		}
	}

	if backup.Payments, err = s.payments.ListPayments(0); err != nil {
		return nil, storeError("export payments", err)
	}
	if backup.Sponsors, err = s.content.ListSponsors(); err != nil {
		return nil, storeError("export sponsors", err)
	}
	if backup.Vendors, err = s.content.ListVendors(); err != nil {
		return nil, storeError("export vendors", err)
	}
	if backup.Resources, err = s.content.ListResources(0); err != nil {
		return nil, storeError("export resources", err)
	}
	return backup, nil
}

// Export writes the snapshot as indented JSON
func (s *BackupService) Export(w io.Writer) error {
	log.Println("Starting database export...")

	backup, err := s.Snapshot()
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d users, %d schools, %d students, %d words, %d sessions",
		len(backup.Users), len(backup.Schools), len(backup.Students), len(backup.Words), len(backup.Sessions))
	return nil
}

// Import restores a backup into a database without schools, students or words.
// IDs are reassigned and references between records are remapped.
func (s *BackupService) Import(r io.Reader) (*ImportSummary, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != backupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	var summary ImportSummary
	err := s.db.WithTx(context.Background(), func(tx *database.Tx) error {
		summary = ImportSummary{}
		return newBackupRepos(tx).restore(&backup, &summary)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Database import completed: %+v", summary)
	return &summary, nil
}

// restore writes backup into an empty database. On error the caller's
// transaction rolls everything back.
func (s backupRepos) restore(backup *BackupData, summary *ImportSummary) error {
	if err := s.ensureEmpty(); err != nil {
		return err
	}

	if err := s.importUsers(backup.Users, summary); err != nil {
		return err
	}

	schoolIDs := make(map[int64]int64, len(backup.Schools))
	for _, school := range backup.Schools {
		oldID := school.ID
		if err := s.schools.CreateSchool(&school); err != nil {
			return storeError("import school", err)
		}
		if school.InvitedAt != nil {
			if err := s.schools.MarkInvited(school.ID, *school.InvitedAt); err != nil {
				return storeError("import school", err)
			}
		}
		if school.JoinedAt != nil {
			if err := s.schools.MarkJoined(school.ID, *school.JoinedAt); err != nil {
				return storeError("import school", err)
			}
		}
		schoolIDs[oldID] = school.ID
		summary.Schools++
	}

	studentIDs := make(map[int64]int64, len(backup.Students))
	for _, student := range backup.Students {
		oldID := student.ID
		if student.SchoolID != nil {
			if newID, ok := schoolIDs[*student.SchoolID]; ok {
				student.SchoolID = &newID
			} else {
				student.SchoolID = nil
			}
		}
		if err := s.students.CreateStudent(&student); err != nil {
			return storeError("import student", err)
		}
		studentIDs[oldID] = student.ID
		summary.Students++
	}

	wordIDs := make(map[int64]int64, len(backup.Words))
	if len(backup.Words) > 0 {
		added, err := s.words.AddWords(backup.Words)
		if err != nil {
			return storeError("import words", err)
		}
		for i, w := range added {
			wordIDs[backup.Words[i].ID] = w.ID
		}
		summary.Words = len(added)
	}

	for _, session := range backup.Sessions {
		for i := range session.Attempts {
			a := &session.Attempts[i]
			a.StudentID = studentIDs[a.StudentID]
			a.WordID = wordIDs[a.WordID]
		}
		if _, err := s.sessions.CreateSession(&session); err != nil {
			return storeError("import session", err)
		}
		summary.Sessions++
	}

	for _, payment := range backup.Payments {
		newID, ok := schoolIDs[payment.SchoolID]
		if !ok {
			log.Printf("Warning: skipping payment %d for unknown school %d", payment.ID, payment.SchoolID)
			continue
		}
		payment.SchoolID = newID
		if err := s.payments.CreatePayment(&payment); err != nil {
			return storeError("import payment", err)
		}
		summary.Payments++
	}

	for _, sponsor := range backup.Sponsors {
		if err := s.content.CreateSponsor(&sponsor); err != nil {
			return storeError("import sponsor", err)
		}
		summary.Sponsors++
	}
	for _, vendor := range backup.Vendors {
		if err := s.content.CreateVendor(&vendor); err != nil {
			return storeError("import vendor", err)
		}
		summary.Vendors++
	}
	for _, resource := range backup.Resources {
		if err := s.content.CreateResource(&resource); err != nil {
			return storeError("import resource", err)
		}
		summary.Resources++
	}

	return nil
}

func (s backupRepos) ensureEmpty() error {
	students, err := s.students.CountStudents(repository.StudentFilter{})
	if err != nil {
		return storeError("count students", err)
	}
	counts, err := s.words.CountByGrade()
	if err != nil {
		return storeError("count words", err)
	}
	schools, err := s.schools.ListSchools()
	if err != nil {
		return storeError("list schools", err)
	}
	if students > 0 || len(counts) > 0 || len(schools) > 0 {
		return fmt.Errorf("import needs an empty database: %w", ErrConflict)
	}
	return nil
}

// importUsers adds accounts whose email is not taken yet
func (s backupRepos) importUsers(users []UserBackup, summary *ImportSummary) error {
	for _, u := range users {
		existing, err := s.users.GetUserByEmail(u.Email)
		if err != nil {
			return storeError("import user", err)
		}
		if existing != nil {
			log.Printf("Skipping user %s: already exists", u.Email)
			continue
		}

		var created *models.User
		if u.OAuthProvider != "" && u.PasswordHash == "" {
			created, err = s.users.CreateOAuthUser(u.Email, u.Name, u.OAuthProvider, u.OAuthSubject)
		} else {
			created, err = s.users.CreateUser(u.Email, u.PasswordHash, u.Name)
			if err == nil && u.OAuthProvider != "" {
				err = s.users.LinkOAuthProvider(created.ID, u.OAuthProvider, u.OAuthSubject)
			}
		}
		if err != nil {
			return storeError("import user", err)
		}
		if created.IsAdmin != u.IsAdmin {
			if err := s.users.SetAdmin(created.ID, u.IsAdmin); err != nil {
				return storeError("import user", err)
			}
		}
		summary.Users++
	}
	return nil
}
