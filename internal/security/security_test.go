package security

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCSRF(t *testing.T) {
	c := NewCSRF("secret")

	token := c.Token("session-1")
	if token == "" {
		t.Fatal("Token() returned empty token")
	}
	if token != c.Token("session-1") {
		t.Error("tokens should be stable for a session")
	}

	tests := []struct {
		name      string
		csrf      *CSRF
		sessionID string
		token     string
		want      bool
	}{
		{"own session", c, "session-1", token, true},
		{"other session", c, "session-2", token, false},
		{"other secret", NewCSRF("other"), "session-1", token, false},
		{"empty token", c, "session-1", "", false},
		{"no session", c, "", token, false},
		{"not base64", c, "session-1", "!!!", false},
		{"truncated", c, "session-1", token[:10], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.csrf.Valid(tt.sessionID, tt.token); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}

	if c.Token("") != "" {
		t.Error("Token(\"\") should be empty")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3, time.Minute, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request should be blocked")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other clients have their own budget")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("budget should refill after the window")
	}

	now = now.Add(5 * time.Minute)
	rl.cleanup()
	if len(rl.buckets) != 0 {
		t.Errorf("cleanup left %d buckets", len(rl.buckets))
	}

	if !newRateLimiter(0, time.Minute, time.Now).Allow("x") {
		t.Error("a zero rate disables limiting")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", "203.0.113.7, 10.0.0.1", "", "10.0.0.2:5555", "203.0.113.7"},
		{"real ip", "", "198.51.100.4", "10.0.0.2:5555", "198.51.100.4"},
		{"remote addr", "", "", "192.0.2.9:41234", "192.0.2.9"},
		{"remote addr without port", "", "", "192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsSecureRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		tls    bool
		want   bool
	}{
		{"plain", "", "", false, false},
		{"tls", "", "", true, true},
		{"x-forwarded-proto", "X-Forwarded-Proto", "HTTPS", false, true},
		{"x-forwarded-proto http", "X-Forwarded-Proto", "http", false, false},
		{"forwarded", "Forwarded", `for=192.0.2.60;proto=https;by=203.0.113.43`, false, true},
		{"forwarded quoted", "Forwarded", `for="[2001:db8::1]";proto="https"`, false, true},
		{"forwarded http", "Forwarded", `for=192.0.2.60;proto=http`, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}
			if got := IsSecureRequest(r); got != tt.want {
				t.Errorf("IsSecureRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionCookies(t *testing.T) {
	plain := httptest.NewRequest("GET", "http://example.com/", nil)
	w := httptest.NewRecorder()
	SetCookie(w, plain, SessionCookieName, "abc", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Secure || !cookie.HttpOnly || cookie.Path != "/" || cookie.Value != "abc" {
		t.Errorf("unexpected cookie flags: %+v", cookie)
	}
	if cookie.MaxAge <= 0 || cookie.MaxAge > 3600 {
		t.Errorf("MaxAge = %d, want within an hour", cookie.MaxAge)
	}

	direct := httptest.NewRequest("GET", "/", nil)
	direct.TLS = &tls.ConnectionState{}
	w = httptest.NewRecorder()
	ClearCookie(w, direct, SessionCookieName)

	cleared := w.Result().Cookies()[0]
	if !cleared.Secure {
		t.Error("cleared cookie over TLS should be Secure")
	}
	if cleared.MaxAge >= 0 {
		t.Errorf("cleared cookie MaxAge = %d, want negative", cleared.MaxAge)
	}

	if a, b := GenerateSessionID(), GenerateSessionID(); a == b || len(a) != 36 {
		t.Errorf("GenerateSessionID() returned %q and %q", a, b)
	}
}
