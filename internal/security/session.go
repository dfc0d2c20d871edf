package security

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName identifies the admin session cookie
const SessionCookieName = "bee_session"

// GenerateSessionID returns a random UUID for a new admin session
func GenerateSessionID() string {
	return uuid.New().String()
}

// IsSecureRequest reports whether the client reached us over HTTPS,
// directly or through a TLS-terminating proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil || r.URL.Scheme == "https" {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}

	// RFC 7239: Forwarded: for=1.2.3.4;proto=https
	for _, part := range strings.FieldsFunc(r.Header.Get("Forwarded"), func(c rune) bool { return c == ';' || c == ',' }) {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && strings.EqualFold(key, "proto") && strings.EqualFold(strings.Trim(value, `"`), "https") {
			return true
		}
	}
	return false
}

// SetCookie writes an HttpOnly, SameSite=Lax cookie that expires at expires.
// It is marked Secure when the request arrived over HTTPS.
func SetCookie(w http.ResponseWriter, r *http.Request, name, value string, expires time.Time) {
	c := baseCookie(r, name)
	c.Value = value
	c.Expires = expires
	if ttl := time.Until(expires); ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}

// ClearCookie tells the browser to drop name
func ClearCookie(w http.ResponseWriter, r *http.Request, name string) {
	c := baseCookie(r, name)
	c.MaxAge = -1
	http.SetCookie(w, c)
}

func baseCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Path:     "/",
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}
