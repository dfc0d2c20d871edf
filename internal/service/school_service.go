package service

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"spellingbee/internal/credentials"
	"spellingbee/internal/mailer"
	"spellingbee/internal/models"
	"spellingbee/internal/reporting"
	"spellingbee/internal/repository"
	"spellingbee/internal/security"
	"spellingbee/internal/validation"

	"github.com/gosimple/slug"
)

const maxSlugAttempts = 100

// SchoolRequest registers a school
type SchoolRequest struct {
	Name         string `json:"name" validate:"notblank,max=200"`
	ContactName  string `json:"contactName" validate:"max=200"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
}

// InviteResult reports whether the invitation email went out
type InviteResult struct {
	School *models.School `json:"school"`
	Sent   bool           `json:"sent"`
	Error  string         `json:"error,omitempty"`
}

// SchoolService manages invited schools and their portal access
type SchoolService struct {
	schoolRepo *repository.SchoolRepository
	mailer     mailer.Mailer
	tokens     *security.TokenIssuer
	portalURL  string
	now        func() time.Time
}

// NewSchoolService creates a school service
func NewSchoolService(schoolRepo *repository.SchoolRepository, m mailer.Mailer, tokens *security.TokenIssuer, portalURL string) *SchoolService {
	return &SchoolService{
		schoolRepo: schoolRepo,
		mailer:     m,
		tokens:     tokens,
		portalURL:  strings.TrimRight(portalURL, "/"),
		now:        time.Now,
	}
}

// Create registers a school with a unique slug and a fresh invitation code
func (s *SchoolService) Create(req SchoolRequest) (*models.School, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	schoolSlug, err := s.uniqueSlug(req.Name)
	if err != nil {
		return nil, err
	}
	code, err := credentials.GenerateInvitationCode(schoolSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation code: %w", err)
	}

	school := &models.School{
		Name:           strings.TrimSpace(req.Name),
		Slug:           schoolSlug,
		ContactName:    strings.TrimSpace(req.ContactName),
		ContactEmail:   strings.TrimSpace(req.ContactEmail),
		InvitationCode: code,
	}
	if err := s.schoolRepo.CreateSchool(school); err != nil {
		return nil, storeError("create school", err)
	}

	log.Printf("School %d created: %s", school.ID, school.Slug)
	return school, nil
}

func (s *SchoolService) uniqueSlug(name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "school"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts; i++ {
		exists, err := s.schoolRepo.SlugExists(candidate)
		if err != nil {
			return "", storeError("check slug", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("slug %s: %w", base, ErrConflict)
}

// Get returns a school
func (s *SchoolService) Get(id int64) (*models.School, error) {
	school, err := s.schoolRepo.GetSchoolByID(id)
	if err != nil {
		return nil, storeError("get school", err)
	}
	if school == nil {
		return nil, notFound("school", id)
	}
	return school, nil
}

// List returns all schools by name
func (s *SchoolService) List() ([]models.School, error) {
	schools, err := s.schoolRepo.ListSchools()
	if err != nil {
		return nil, storeError("list schools", err)
	}
	return schools, nil
}

// Delete removes a school and its payments. Students keep the school name.
func (s *SchoolService) Delete(id int64) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.schoolRepo.DeleteSchool(id); err != nil {
		return storeError("delete school", err)
	}
	return nil
}

// Invite emails the portal invitation. A failed send is reported in the result, not as an error.
func (s *SchoolService) Invite(ctx context.Context, id int64) (*InviteResult, error) {
	school, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	msg := s.invitationMessage(school)
	if err := s.mailer.Send(ctx, msg); err != nil {
		reporting.Error(fmt.Sprintf("Warning: failed to send invitation to school %d", school.ID), err, map[string]interface{}{
			"school_id": school.ID,
		})
		return &InviteResult{School: school, Sent: false, Error: "invitation email could not be sent"}, nil
	}

	now := s.now()
	if err := s.schoolRepo.MarkInvited(school.ID, now); err != nil {
		return nil, storeError("mark school invited", err)
	}
	school.InvitedAt = &now

	log.Printf("Invitation sent to school %d (%s)", school.ID, school.ContactEmail)
	return &InviteResult{School: school, Sent: true}, nil
}

func (s *SchoolService) invitationMessage(school *models.School) mailer.Message {
	greeting := "Hello"
	if school.ContactName != "" {
		greeting = "Hello " + school.ContactName
	}
	loginURL := s.portalURL + "/portal"

	text := fmt.Sprintf(`%s,

%s has been invited to this year's spelling bee.

Sign in to the school portal at %s with this invitation code:

    %s

From the portal you can register your students and follow your payments.
`, greeting, school.Name, loginURL, school.InvitationCode)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>%s,</p>
	<p><strong>%s</strong> has been invited to this year's spelling bee.</p>
	<p>Sign in to the <a href="%s">school portal</a> with this invitation code:</p>
	<p style="font-size: 20px; font-family: monospace; letter-spacing: 2px;">%s</p>
	<p>From the portal you can register your students and follow your payments.</p>
</body>
</html>
`, greeting, school.Name, loginURL, school.InvitationCode)

	return mailer.Message{
		To:      mail.Address{Name: school.ContactName, Address: school.ContactEmail},
		Subject: "Spelling bee invitation for " + school.Name,
		Text:    text,
		HTML:    html,
	}
}

// PortalLogin exchanges an invitation code for a school bearer token
func (s *SchoolService) PortalLogin(code string) (string, *models.School, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", nil, ErrInvalidCredentials
	}

	school, err := s.schoolRepo.GetSchoolByInvitationCode(code)
	if err != nil {
		return "", nil, storeError("get school", err)
	}
	if school == nil {
		return "", nil, ErrInvalidCredentials
	}

	if school.JoinedAt == nil {
		now := s.now()
		if err := s.schoolRepo.MarkJoined(school.ID, now); err != nil {
			log.Printf("Warning: failed to mark school %d joined: %v", school.ID, err)
		} else {
			school.JoinedAt = &now
		}
	}

	token, _, err := s.tokens.Issue(security.KindSchool, school.ID)
	if err != nil {
		return "", nil, err
	}
	return token, school, nil
}

// Authenticate resolves a school bearer token
func (s *SchoolService) Authenticate(token string) (int64, error) {
	claims, err := s.tokens.Parse(token, security.KindSchool)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	id, err := claims.SubjectID()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return id, nil
}
