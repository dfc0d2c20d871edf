package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"spellingbee/internal/security"
)

const (
	oauthFlowCookie = "bee_oauth"
	oauthFlowTTL    = 10 * time.Minute
)

// OAuthProvider is one sign-in option, keyed by its URL name in the provider map
type OAuthProvider struct {
	Label       string
	Config      *oauth2.Config
	UserInfoURL string
}

func (p OAuthProvider) configured() bool {
	return p.Config != nil && p.Config.ClientID != "" && p.Config.ClientSecret != ""
}

// OAuthProviderView is a sign-in option shown to the client
type OAuthProviderView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// oauthFlow is what survives the round trip to the provider, in one cookie
type oauthFlow struct {
	provider string
	state    string
	verifier string
}

func (f oauthFlow) encode() string {
	return f.provider + "." + f.state + "." + f.verifier
}

func decodeOAuthFlow(value string) (oauthFlow, bool) {
	parts := strings.SplitN(value, ".", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return oauthFlow{}, false
	}
	return oauthFlow{provider: parts[0], state: parts[1], verifier: parts[2]}, true
}

// ListProviders returns the configured OAuth sign-in options
func (h *AuthHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	views := []OAuthProviderView{}
	for name, p := range h.oauthProviders {
		if p.configured() {
			views = append(views, OAuthProviderView{Name: name, Label: p.Label, URL: "/auth/" + name + "/start"})
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	respondJSON(w, http.StatusOK, views)
}

// oauthConfig returns the named provider's config with the callback URL filled in
func (h *AuthHandler) oauthConfig(r *http.Request) (string, OAuthProvider, *oauth2.Config, bool) {
	name := r.PathValue("provider")
	p, ok := h.oauthProviders[name]
	if !ok || !p.configured() {
		return name, p, nil, false
	}
	cfg := *p.Config
	cfg.RedirectURL = h.oauthRedirectURL(r, name)
	return name, p, &cfg, true
}

// StartOAuth redirects to the provider with a fresh state and PKCE challenge
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	name, _, cfg, ok := h.oauthConfig(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "OAuth provider not configured", "", nil)
		return
	}

	flow := oauthFlow{provider: name, state: security.GenerateSessionID(), verifier: oauth2.GenerateVerifier()}
	security.SetCookie(w, r, oauthFlowCookie, flow.encode(), time.Now().Add(oauthFlowTTL))

	http.Redirect(w, r, cfg.AuthCodeURL(flow.state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(flow.verifier)), http.StatusFound)
}

// OAuthCallback finishes the flow, signs the account in and redirects home
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	name, provider, cfg, ok := h.oauthConfig(r)
	if !ok {
		respondWithError(w, http.StatusNotFound, "OAuth provider not configured", "", nil)
		return
	}

	query := r.URL.Query()
	if denied := query.Get("error"); denied != "" {
		respondWithError(w, http.StatusBadRequest, "Sign-in was cancelled", "", nil)
		return
	}
	code := query.Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	var flow oauthFlow
	if c, err := r.Cookie(oauthFlowCookie); err == nil {
		flow, ok = decodeOAuthFlow(c.Value)
	} else {
		ok = false
	}
	security.ClearCookie(w, r, oauthFlowCookie)
	if !ok || flow.provider != name || flow.state != query.Get("state") {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(flow.verifier))
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to exchange OAuth code", "OAuth exchange with "+name+" failed", err)
		return
	}

	info, err := fetchOAuthUserInfo(ctx, cfg.Client(ctx, token), provider)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, err.Error(), "", nil)
		return
	}

	session, _, err := h.authService.OAuthLogin(name, info.ID, info.Email, info.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	security.SetCookie(w, r, security.SessionCookieName, session.ID, session.ExpiresAt)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// oauthUserInfo is the subset of the user info document Google and Facebook share
type oauthUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func fetchOAuthUserInfo(ctx context.Context, client *http.Client, p OAuthProvider) (oauthUserInfo, error) {
	var info oauthUserInfo
	if p.UserInfoURL == "" {
		return info, errors.New("unsupported OAuth provider")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return info, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return info, fmt.Errorf("failed to fetch %s user info", p.Label)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return info, fmt.Errorf("failed to fetch %s user info", p.Label)
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("failed to parse %s user info", p.Label)
	}
	if info.Email == "" {
		return info, fmt.Errorf("%s did not share an email address", p.Label)
	}
	return info, nil
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request, name string) string {
	base := strings.TrimSpace(h.oauthRedirectBaseURL)
	if base == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		base = scheme + "://" + r.Host
	}
	return strings.TrimRight(base, "/") + "/auth/" + name + "/callback"
}
