package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// CSRFHeader carries the token on state-changing admin requests
const CSRFHeader = "X-CSRF-Token"

// CSRF issues stateless tokens tied to an admin session. A token is the
// HMAC of the session ID, so any replica sharing the secret can check it.
type CSRF struct {
	key []byte
}

// NewCSRF derives a CSRF key from secret. The derived key differs from
// the one the token issuer signs with even when both share SESSION_SECRET.
func NewCSRF(secret string) *CSRF {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("spellingbee csrf v1"))
	return &CSRF{key: mac.Sum(nil)}
}

// Token returns the token for sessionID, or "" when there is no session
func (c *CSRF) Token(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(c.sum(sessionID))
}

// Valid reports whether token belongs to sessionID
func (c *CSRF) Valid(sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	got, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return false
	}
	return hmac.Equal(got, c.sum(sessionID))
}

func (c *CSRF) sum(sessionID string) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(sessionID))
	return mac.Sum(nil)
}
