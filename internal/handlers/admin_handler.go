package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/service"
)

// AdminHandler serves account listing, dashboard counts and database backups
type AdminHandler struct {
	authService    *service.AuthService
	backupService  *service.BackupService
	wordService    *service.WordService
	studentService *service.StudentService
	schoolService  *service.SchoolService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(authService *service.AuthService, backupService *service.BackupService, wordService *service.WordService, studentService *service.StudentService, schoolService *service.SchoolService) *AdminHandler {
	return &AdminHandler{
		authService:    authService,
		backupService:  backupService,
		wordService:    wordService,
		studentService: studentService,
		schoolService:  schoolService,
	}
}

// DatabaseStats holds the admin dashboard counts
type DatabaseStats struct {
	Users        int                  `json:"users"`
	Schools      int                  `json:"schools"`
	Students     int                  `json:"students"`
	WordsByGrade map[models.Grade]int `json:"wordsByGrade"`
}

// ListUsers returns every admin and moderator account
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Stats returns record counts for the dashboard
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.getDatabaseStats()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) getDatabaseStats() (*DatabaseStats, error) {
	users, err := h.authService.ListUsers()
	if err != nil {
		return nil, err
	}
	schools, err := h.schoolService.List()
	if err != nil {
		return nil, err
	}
	students, err := h.studentService.List(repository.StudentFilter{})
	if err != nil {
		return nil, err
	}
	words, err := h.wordService.Counts()
	if err != nil {
		return nil, err
	}
	return &DatabaseStats{
		Users:        len(users),
		Schools:      len(schools),
		Students:     len(students),
		WordsByGrade: words,
	}, nil
}

// ExportDatabase streams a JSON backup as a file download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("spellingbee_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := h.backupService.Export(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}

	log.Printf("Database exported by admin user %s", user.Email)
}

// ImportDatabase restores a backup from a multipart "backup_file" upload or a raw JSON body
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var src io.Reader = r.Body
	if err := r.ParseMultipartForm(10 << 20); err == nil {
		file, _, err := r.FormFile("backup_file")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Please select a backup file", "", nil)
			return
		}
		defer file.Close()
		src = file
	}

	summary, err := h.backupService.Import(src)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	log.Printf("Database imported successfully by admin user %s", user.Email)
	respondJSON(w, http.StatusOK, summary)
}
