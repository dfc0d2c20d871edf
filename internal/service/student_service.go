package service

import (
	"fmt"
	"log"
	"strings"

	"spellingbee/internal/credentials"
	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/validation"
)

// StudentRequest registers or edits a student
type StudentRequest struct {
	FirstName string       `json:"firstName" validate:"notblank,max=100"`
	LastName  string       `json:"lastName" validate:"max=100"`
	School    string       `json:"school" validate:"max=200"`
	SchoolID  *int64       `json:"schoolId" validate:"omitempty,gt=0"`
	Grade     models.Grade `json:"grade" validate:"grade"`
	Photo     string       `json:"photo" validate:"omitempty,url"`
}

// StudentService registers students and manages their drill credentials
type StudentService struct {
	studentRepo *repository.StudentRepository
	schoolRepo  *repository.SchoolRepository
}

// NewStudentService creates a student service
func NewStudentService(studentRepo *repository.StudentRepository, schoolRepo *repository.SchoolRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo, schoolRepo: schoolRepo}
}

// apply copies the request onto s, resolving the school name when a school ID is given
func (s *StudentService) apply(student *models.Student, req StudentRequest) error {
	student.FirstName = strings.TrimSpace(req.FirstName)
	student.LastName = strings.TrimSpace(req.LastName)
	student.School = strings.TrimSpace(req.School)
	student.SchoolID = req.SchoolID
	student.Grade = req.Grade
	student.Photo = strings.TrimSpace(req.Photo)

	if req.SchoolID == nil {
		return nil
	}
	school, err := s.schoolRepo.GetSchoolByID(*req.SchoolID)
	if err != nil {
		return storeError("get school", err)
	}
	if school == nil {
		return validation.Errors{"schoolId": "schoolId does not match a school"}
	}
	student.School = school.Name
	return nil
}

// Register creates a student with a generated username and practice code.
// The returned student includes the code so it can be handed to the teacher.
func (s *StudentService) Register(req StudentRequest) (*models.Student, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	student := &models.Student{}
	if err := s.apply(student, req); err != nil {
		return nil, err
	}

	username, err := credentials.GenerateUsername(student.FirstName, student.LastName, s.studentRepo.UsernameExists)
	if err != nil {
		return nil, fmt.Errorf("failed to generate username: %w", err)
	}
	password, err := credentials.GeneratePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	student.Username = username
	student.Password = password

	if err := s.studentRepo.CreateStudent(student); err != nil {
		return nil, storeError("create student", err)
	}

	log.Printf("Student %d registered as %s (%s)", student.ID, student.Username, student.Grade.Label())
	return student, nil
}

// Get returns a student including the practice code
func (s *StudentService) Get(id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetStudentByID(id)
	if err != nil {
		return nil, storeError("get student", err)
	}
	if student == nil {
		return nil, notFound("student", id)
	}
	return student, nil
}

// List returns students matching filter
func (s *StudentService) List(filter repository.StudentFilter) ([]models.Student, error) {
	if filter.Grade != 0 {
		if err := validation.Field("grade", filter.Grade, "grade"); err != nil {
			return nil, err
		}
	}
	students, err := s.studentRepo.ListStudents(filter)
	if err != nil {
		return nil, storeError("list students", err)
	}
	return students, nil
}

// Update edits a student's profile. XP, coins and streak are left alone.
func (s *StudentService) Update(id int64, req StudentRequest) (*models.Student, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	student, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(student, req); err != nil {
		return nil, err
	}

	if err := s.studentRepo.UpdateStudent(student); err != nil {
		return nil, storeError("update student", err)
	}
	return student, nil
}

// RegeneratePassword issues a new practice code
func (s *StudentService) RegeneratePassword(id int64) (*models.Student, error) {
	student, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	password, err := credentials.GeneratePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	if err := s.studentRepo.UpdatePassword(id, password); err != nil {
		return nil, storeError("update password", err)
	}

	student.Password = password
	return student, nil
}

// Delete removes a student and their drill history. Saved contest attempts keep the name.
func (s *StudentService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.studentRepo.DeleteStudent(id); err != nil {
		return storeError("delete student", err)
	}
	return nil
}
