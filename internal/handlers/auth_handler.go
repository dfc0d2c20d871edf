package handlers

import (
	"net/http"
	"time"

	"spellingbee/internal/models"
	"spellingbee/internal/security"
	"spellingbee/internal/service"
)

// AuthHandler handles administrator and moderator authentication
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 *security.CSRF
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRF, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse describes the signed-in account. The CSRF token must be sent
// in the X-CSRF-Token header on every state-changing request.
type sessionResponse struct {
	User      *models.User `json:"user"`
	CSRFToken string       `json:"csrfToken"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.authService.Register(req.Email, req.Password, req.Name); err != nil {
		handleServiceError(w, r, err)
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusCreated, session, user)
}

// Login checks credentials and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	h.startSession(w, r, http.StatusOK, session, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, session *models.AuthSession, user *models.User) {
	security.SetCookie(w, r, security.SessionCookieName, session.ID, session.ExpiresAt)
	respondJSON(w, status, sessionResponse{User: user, CSRFToken: h.csrf.Token(session.ID), ExpiresAt: &session.ExpiresAt})
}

// Logout deletes the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(security.SessionCookieName); err == nil {
		_ = h.authService.Logout(cookie.Value)
	}

	security.ClearCookie(w, r, security.SessionCookieName)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in account and a fresh CSRF token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := r.Context().Value(SessionContextKey).(string)
	respondJSON(w, http.StatusOK, sessionResponse{User: GetUserFromContext(r.Context()), CSRFToken: h.csrf.Token(sessionID)})
}
