package service

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"spellingbee/internal/models"
	"spellingbee/internal/repository"
	"spellingbee/internal/security"
	"spellingbee/internal/validation"
)

// AuthService manages admin and moderator accounts and their cookie sessions
type AuthService struct {
	users           *repository.UserRepository
	sessionDuration time.Duration
}

func NewAuthService(users *repository.UserRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{users: users, sessionDuration: sessionDuration}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// decoyHash is compared against when the email is unknown so that failed
// logins take the same time whether or not the account exists
var decoyHash = sync.OnceValue(func() string {
	hash, err := security.HashPassword("spellingbee-decoy-password")
	if err != nil {
		log.Printf("Warning: failed to build decoy hash: %v", err)
	}
	return hash
})

// Register creates a password account. The first account becomes an admin.
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	if err := validation.Account(email, password, name); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	taken, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, storeError("check existing user", err)
	}
	if taken != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(email, hash, strings.TrimSpace(name))
	if err != nil {
		return nil, emailConflict("create user", err)
	}

	log.Printf("User %d registered (admin=%t)", user.ID, user.IsAdmin)
	return user, nil
}

// emailConflict reports a unique violation on users.email as ErrEmailTaken
func emailConflict(action string, err error) error {
	if err = storeError(action, err); errors.Is(err, ErrConflict) {
		return ErrEmailTaken
	}
	return err
}

// Login checks a password and opens a session
func (s *AuthService) Login(email, password string) (*models.AuthSession, *models.User, error) {
	user, err := s.users.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		return nil, nil, storeError("get user", err)
	}

	hash := decoyHash()
	if user != nil {
		hash = user.PasswordHash
	}
	ok, err := security.CheckPassword(hash, password)
	if err != nil && user != nil {
		log.Printf("Warning: password check failed for user %d: %v", user.ID, err)
	}
	if user == nil || !ok {
		return nil, nil, ErrInvalidCredentials
	}

	return s.openSession(user)
}

func (s *AuthService) openSession(user *models.User) (*models.AuthSession, *models.User, error) {
	session, err := s.users.CreateSession(security.GenerateSessionID(), user.ID, time.Now().Add(s.sessionDuration))
	if err != nil {
		return nil, nil, storeError("create session", err)
	}
	return session, user, nil
}

// ValidateSession resolves a session cookie to its account. Expired sessions are deleted.
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, ErrUnauthorized
	}

	session, err := s.users.GetSession(sessionID)
	switch {
	case err != nil:
		return nil, storeError("get session", err)
	case session == nil:
		return nil, ErrUnauthorized
	case session.IsExpired():
		if err := s.users.DeleteSession(sessionID); err != nil {
			log.Printf("Warning: failed to delete expired session: %v", err)
		}
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetUserByID(session.UserID)
	if err != nil {
		return nil, storeError("get user", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *AuthService) Logout(sessionID string) error {
	if err := s.users.DeleteSession(sessionID); err != nil {
		return storeError("logout", err)
	}
	return nil
}

// CleanupExpiredSessions is run periodically by the server
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.users.DeleteExpiredSessions(); err != nil {
		return storeError("cleanup sessions", err)
	}
	return nil
}

// OAuthLogin signs in with a provider identity. An unknown identity is linked
// to the account with the same email, or gets a new account when there is none.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.AuthSession, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, validation.Errors{"provider": "missing oauth provider information"}
	}
	if err := validation.Email(email); err != nil {
		return nil, nil, err
	}

	user, err := s.oauthUser(provider, subject, normalizeEmail(email), strings.TrimSpace(name))
	if err != nil {
		return nil, nil, err
	}
	return s.openSession(user)
}

func (s *AuthService) oauthUser(provider, subject, email, name string) (*models.User, error) {
	user, err := s.users.GetUserByOAuth(provider, subject)
	if err != nil || user != nil {
		if err != nil {
			return nil, storeError("lookup oauth user", err)
		}
		return user, nil
	}

	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, storeError("check existing user", err)
	}

	if existing != nil {
		err := s.users.LinkOAuthProvider(existing.ID, provider, subject)
		if errors.Is(err, repository.ErrAlreadyLinked) {
			return nil, ErrEmailTaken
		}
		if err != nil {
			return nil, storeError("link oauth provider", err)
		}
		existing.OAuthProvider, existing.OAuthSubject = provider, subject
		return existing, nil
	}

	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user, err = s.users.CreateOAuthUser(email, name, provider, subject)
	if err != nil {
		return nil, emailConflict("create oauth user", err)
	}
	log.Printf("User %d registered via %s (admin=%t)", user.ID, provider, user.IsAdmin)
	return user, nil
}

// CreateAdmin registers an admin account or promotes an existing one. Used by beectl.
func (s *AuthService) CreateAdmin(email, password, name string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		return nil, storeError("check existing user", err)
	}
	if user == nil {
		if user, err = s.Register(email, password, name); err != nil {
			return nil, err
		}
	}

	if !user.IsAdmin {
		if err := s.users.SetAdmin(user.ID, true); err != nil {
			return nil, storeError("grant admin", err)
		}
		user.IsAdmin = true
	}
	return user, nil
}

// ListUsers returns every account, newest first
func (s *AuthService) ListUsers() ([]models.User, error) {
	users, err := s.users.GetAllUsers()
	if err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}
