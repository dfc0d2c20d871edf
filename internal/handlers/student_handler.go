package handlers

import (
	"net/http"

	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/service"
)

// StudentHandler manages student profiles and their drill credentials
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// studentFilter reads ?grade= and ?schoolId=
func studentFilter(w http.ResponseWriter, r *http.Request) (repository.StudentFilter, bool) {
	grade, ok := queryInt(w, r, "grade")
	if !ok {
		return repository.StudentFilter{}, false
	}
	schoolID, ok := queryInt(w, r, "schoolId")
	if !ok {
		return repository.StudentFilter{}, false
	}
	return repository.StudentFilter{Grade: models.Grade(grade), SchoolID: int64(schoolID)}, true
}

// ListStudents returns students, optionally filtered by grade and school
func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	filter, ok := studentFilter(w, r)
	if !ok {
		return
	}

	students, err := h.studentService.List(filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, students)
}

// CreateStudent registers a student. The response carries the generated practice code.
func (h *StudentHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req service.StudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	student, err := h.studentService.Register(req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, student)
}

// GetStudent returns one student
func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	student, err := h.studentService.Get(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, student)
}

// UpdateStudent edits a student's profile
func (h *StudentHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req service.StudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	student, err := h.studentService.Update(id, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, student)
}

// RegeneratePassword issues a new practice code
func (h *StudentHandler) RegeneratePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	student, err := h.studentService.RegeneratePassword(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, student)
}

// DeleteStudent removes a student
func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.studentService.Delete(id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
