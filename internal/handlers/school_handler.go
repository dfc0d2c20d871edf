package handlers

import (
	"net/http"

	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/service"
)

// SchoolHandler manages invited schools and serves the school portal
type SchoolHandler struct {
	schoolService  *service.SchoolService
	studentService *service.StudentService
	contentService *service.ContentService
}

// NewSchoolHandler creates a new school handler
func NewSchoolHandler(schoolService *service.SchoolService, studentService *service.StudentService, contentService *service.ContentService) *SchoolHandler {
	return &SchoolHandler{
		schoolService:  schoolService,
		studentService: studentService,
		contentService: contentService,
	}
}

type portalLoginRequest struct {
	Code string `json:"code"`
}

type portalLoginResponse struct {
	Token  string         `json:"token"`
	School *models.School `json:"school"`
}

// ListSchools returns every school
func (h *SchoolHandler) ListSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.schoolService.List()
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, schools)
}

// CreateSchool registers a school and generates its invitation code
func (h *SchoolHandler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	var req service.SchoolRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	school, err := h.schoolService.Create(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, school)
}

// DeleteSchool removes a school and its payments
func (h *SchoolHandler) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.schoolService.Delete(id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InviteSchool emails the portal invitation. A failed send still answers 200 with sent=false.
func (h *SchoolHandler) InviteSchool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.schoolService.Invite(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PortalLogin exchanges an invitation code for a portal token
func (h *SchoolHandler) PortalLogin(w http.ResponseWriter, r *http.Request) {
	var req portalLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, school, err := h.schoolService.PortalLogin(req.Code)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, portalLoginResponse{Token: token, School: school})
}

// PortalSchool returns the signed-in school
func (h *SchoolHandler) PortalSchool(w http.ResponseWriter, r *http.Request) {
	school, err := h.schoolService.Get(schoolFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, school)
}

// PortalStudents lists the signed-in school's students
func (h *SchoolHandler) PortalStudents(w http.ResponseWriter, r *http.Request) {
	grade, ok := queryInt(w, r, "grade")
	if !ok {
		return
	}

	filter := repository.StudentFilter{Grade: models.Grade(grade), SchoolID: schoolFromContext(r.Context())}
	students, err := h.studentService.List(filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, students)
}

// PortalRegisterStudent registers a student for the signed-in school
func (h *SchoolHandler) PortalRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var req service.StudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	schoolID := schoolFromContext(r.Context())
	req.SchoolID = &schoolID

	student, err := h.studentService.Register(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, student)
}

// PortalPayments lists the signed-in school's payments
func (h *SchoolHandler) PortalPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.contentService.ListPayments(schoolFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}
