package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spellingbee/internal/models"
	"spellingbee/internal/security"
	"spellingbee/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey    ContextKey = "user"
	SessionContextKey ContextKey = "session"
	StudentContextKey ContextKey = "student"
	SchoolContextKey  ContextKey = "school"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService   *service.AuthService
	drillService  *service.DrillService
	schoolService *service.SchoolService
	csrf          *security.CSRF
	limiter       *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, drillService *service.DrillService, schoolService *service.SchoolService, csrf *security.CSRF, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService:   authService,
		drillService:  drillService,
		schoolService: schoolService,
		csrf:          csrf,
		limiter:       limiter,
	}
}

// RequireAuth is middleware that requires a valid admin or moderator session cookie
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		user, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			security.ClearCookie(w, r, security.SessionCookieName)
			handleServiceError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, SessionContextKey, cookie.Value)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin is RequireAuth restricted to administrators
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			respondWithError(w, http.StatusForbidden, ErrForbidden, "", nil)
			return
		}
		next(w, r)
	})
}

// CSRFProtect checks the CSRF header against the session. It must run inside RequireAuth.
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, _ := r.Context().Value(SessionContextKey).(string)
		if !m.csrf.Valid(sessionID, r.Header.Get(security.CSRFHeader)) {
			respondWithError(w, http.StatusForbidden, ErrInvalidCSRF, "", nil)
			return
		}
		next(w, r)
	}
}

// RequireStudent is middleware that requires a student bearer token
func (m *Middleware) RequireStudent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, err := m.drillService.Authenticate(bearerToken(r))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		ctx := context.WithValue(r.Context(), StudentContextKey, studentID)
		next(w, r.WithContext(ctx))
	}
}

// RequireSchool is middleware that requires a school portal bearer token
func (m *Middleware) RequireSchool(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schoolID, err := m.schoolService.Authenticate(bearerToken(r))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}
		ctx := context.WithValue(r.Context(), SchoolContextKey, schoolID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit limits login attempts per client IP
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			log.Printf("Rate limit exceeded for %s on %s", ip, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(m.limiter.Window().Seconds())))
			respondWithError(w, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

func studentFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(StudentContextKey).(int64)
	return id
}

func schoolFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(SchoolContextKey).(int64)
	return id
}
