package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"spellingbee/internal/database"
	"spellingbee/internal/repository"
	"spellingbee/internal/security"
	"spellingbee/internal/service"
)

// fakeProvider answers the token and user info endpoints of an OAuth provider
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" || r.PostForm.Get("code_verifier") == "" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(oauthUserInfo{ID: "sub-42", Email: "Coach@Example.com", Name: "Coach Carter"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthTestHandler(t *testing.T, providerURL string) (*AuthHandler, *service.AuthService) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "oauth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(database.Migrations))

	authService := service.NewAuthService(repository.NewUserRepository(db), time.Hour)
	providers := map[string]OAuthProvider{
		"fake": {
			Label: "Fake",
			Config: &oauth2.Config{
				ClientID:     "client",
				ClientSecret: "secret",
				Endpoint: oauth2.Endpoint{
					AuthURL:   providerURL + "/authorize",
					TokenURL:  providerURL + "/token",
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
			UserInfoURL: providerURL + "/userinfo",
		},
		"unset": {Label: "Unset", Config: &oauth2.Config{}},
	}
	return NewAuthHandler(authService, security.NewCSRF("csrf"), providers, "http://localhost:8080/"), authService
}

func oauthMux(h *AuthHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/providers", h.ListProviders)
	mux.HandleFunc("GET /auth/{provider}/start", h.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", h.OAuthCallback)
	return mux
}

func cookieNamed(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", name)
	return nil
}

func TestOAuthFlow(t *testing.T) {
	provider := fakeProvider(t)
	h, authService := newOAuthTestHandler(t, provider.URL)
	mux := oauthMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/api/auth/providers", nil))
	var views []OAuthProviderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Equal(t, []OAuthProviderView{{Name: "fake", Label: "Fake", URL: "/auth/fake/start"}}, views)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/auth/fake/start", nil))
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	params := location.Query()
	assert.Equal(t, "S256", params.Get("code_challenge_method"))
	assert.NotEmpty(t, params.Get("code_challenge"))
	assert.Equal(t, "http://localhost:8080/auth/fake/callback", params.Get("redirect_uri"))
	state := params.Get("state")
	flowCookie := cookieNamed(t, rec, oauthFlowCookie)

	t.Run("state mismatch", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/fake/callback?code=good-code&state=forged", nil)
		req.AddCookie(flowCookie)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad code", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/fake/callback?code=bad-code&state="+url.QueryEscape(state), nil)
		req.AddCookie(flowCookie)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/auth/fake/callback?code=good-code&state="+url.QueryEscape(state), nil)
		req.AddCookie(flowCookie)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
		assert.Equal(t, "/", rec.Header().Get("Location"))

		user, err := authService.ValidateSession(cookieNamed(t, rec, security.SessionCookieName).Value)
		require.NoError(t, err)
		assert.Equal(t, "coach@example.com", user.Email)
		assert.Equal(t, "Coach Carter", user.Name)
		assert.Equal(t, "fake", user.OAuthProvider)
	})
}

func TestOAuthUnconfiguredProvider(t *testing.T) {
	h, _ := newOAuthTestHandler(t, "http://127.0.0.1:0")
	mux := oauthMux(h)

	for _, path := range []string{"/auth/unset/start", "/auth/missing/start", "/auth/missing/callback?code=x"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestDecodeOAuthFlow(t *testing.T) {
	flow := oauthFlow{provider: "google", state: "3f2b-11", verifier: "abc_DEF-123"}
	got, ok := decodeOAuthFlow(flow.encode())
	require.True(t, ok)
	assert.Equal(t, flow, got)

	for _, bad := range []string{"", "google", "google.state", "google..verifier", ".state.verifier"} {
		_, ok := decodeOAuthFlow(bad)
		assert.False(t, ok, bad)
	}
}
