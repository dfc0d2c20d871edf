package handlers

import (
	"net/http"

	"spellingbee/internal/reporting"
)

// Router bundles the handlers served by the API
type Router struct {
	Middleware  *Middleware
	Auth        *AuthHandler
	Words       *WordHandler
	Students    *StudentHandler
	Contests    *ContestHandler
	Schools     *SchoolHandler
	Leaderboard *LeaderboardHandler
	Content     *ContentHandler
	Drill       *DrillHandler
	Admin       *AdminHandler
	DB          Pinger

	// StaticFilesPath holds the generated audio clips; empty disables /static/
	StaticFilesPath string
}

// Handler builds the routed, wrapped http.Handler
func (rt *Router) Handler() http.Handler {
	m := rt.Middleware
	mux := http.NewServeMux()

	// user wraps moderator routes, admin wraps administrator routes. Both check CSRF.
	user := func(h http.HandlerFunc) http.HandlerFunc { return m.RequireAuth(m.CSRFProtect(h)) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return m.RequireAdmin(m.CSRFProtect(h)) }

	if rt.StaticFilesPath != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(rt.StaticFilesPath))))
	}
	mux.HandleFunc("GET /healthz", Healthz(rt.DB))

	// Admin and moderator accounts
	mux.HandleFunc("POST /api/auth/register", m.RateLimit(rt.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", m.RequireAuth(rt.Auth.Logout))
	mux.HandleFunc("GET /api/auth/me", m.RequireAuth(rt.Auth.Me))
	mux.HandleFunc("GET /api/auth/providers", rt.Auth.ListProviders)
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)

	// Word bank
	mux.HandleFunc("GET /api/words", m.RequireAuth(rt.Words.ListWords))
	mux.HandleFunc("GET /api/words/counts", m.RequireAuth(rt.Words.WordCounts))
	mux.HandleFunc("POST /api/words", admin(rt.Words.CreateWord))
	mux.HandleFunc("POST /api/words/bulk", admin(rt.Words.BulkCreateWords))
	mux.HandleFunc("POST /api/words/audio", admin(rt.Words.GenerateMissingAudio))
	mux.HandleFunc("PUT /api/words/{id}", admin(rt.Words.UpdateWord))
	mux.HandleFunc("DELETE /api/words/{id}", admin(rt.Words.DeleteWord))

	// Students
	mux.HandleFunc("GET /api/students", m.RequireAuth(rt.Students.ListStudents))
	mux.HandleFunc("POST /api/students", admin(rt.Students.CreateStudent))
	mux.HandleFunc("GET /api/students/{id}", m.RequireAuth(rt.Students.GetStudent))
	mux.HandleFunc("PUT /api/students/{id}", admin(rt.Students.UpdateStudent))
	mux.HandleFunc("DELETE /api/students/{id}", admin(rt.Students.DeleteStudent))
	mux.HandleFunc("POST /api/students/{id}/regenerate-password", admin(rt.Students.RegeneratePassword))

	// Live contests and their saved history
	mux.HandleFunc("POST /api/contests", user(rt.Contests.CreateContest))
	mux.HandleFunc("GET /api/contests/{id}", m.RequireAuth(rt.Contests.GetContest))
	mux.HandleFunc("POST /api/contests/{id}/events", user(rt.Contests.ApplyEvent))
	mux.HandleFunc("GET /api/contests/{id}/scoreboard", m.RequireAuth(rt.Contests.Scoreboard))
	mux.HandleFunc("DELETE /api/contests/{id}", user(rt.Contests.DiscardContest))
	mux.HandleFunc("GET /api/sessions", m.RequireAuth(rt.Contests.ListSessions))
	mux.HandleFunc("GET /api/sessions/{id}", m.RequireAuth(rt.Contests.GetSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", admin(rt.Contests.DeleteSession))

	mux.HandleFunc("GET /api/leaderboard", rt.Leaderboard.Leaderboard)

	// Schools
	mux.HandleFunc("GET /api/schools", m.RequireAdmin(rt.Schools.ListSchools))
	mux.HandleFunc("POST /api/schools", admin(rt.Schools.CreateSchool))
	mux.HandleFunc("DELETE /api/schools/{id}", admin(rt.Schools.DeleteSchool))
	mux.HandleFunc("POST /api/schools/{id}/invite", admin(rt.Schools.InviteSchool))

	// Payments, sponsors, vendors, resources
	mux.HandleFunc("GET /api/payments", m.RequireAdmin(rt.Content.ListPayments))
	mux.HandleFunc("POST /api/payments", admin(rt.Content.CreatePayment))
	mux.HandleFunc("PUT /api/payments/{id}", admin(rt.Content.UpdatePayment))
	mux.HandleFunc("DELETE /api/payments/{id}", admin(rt.Content.DeletePayment))
	mux.HandleFunc("GET /api/sponsors", rt.Content.ListSponsors)
	mux.HandleFunc("POST /api/sponsors", admin(rt.Content.CreateSponsor))
	mux.HandleFunc("PUT /api/sponsors/{id}", admin(rt.Content.UpdateSponsor))
	mux.HandleFunc("DELETE /api/sponsors/{id}", admin(rt.Content.DeleteSponsor))
	mux.HandleFunc("GET /api/vendors", m.RequireAdmin(rt.Content.ListVendors))
	mux.HandleFunc("POST /api/vendors", admin(rt.Content.CreateVendor))
	mux.HandleFunc("PUT /api/vendors/{id}", admin(rt.Content.UpdateVendor))
	mux.HandleFunc("DELETE /api/vendors/{id}", admin(rt.Content.DeleteVendor))
	mux.HandleFunc("GET /api/resources", rt.Content.ListResources)
	mux.HandleFunc("GET /api/resources/{id}", rt.Content.GetResource)
	mux.HandleFunc("POST /api/resources", admin(rt.Content.CreateResource))
	mux.HandleFunc("PUT /api/resources/{id}", admin(rt.Content.UpdateResource))
	mux.HandleFunc("DELETE /api/resources/{id}", admin(rt.Content.DeleteResource))

	// School portal
	mux.HandleFunc("POST /api/portal/login", m.RateLimit(rt.Schools.PortalLogin))
	mux.HandleFunc("GET /api/portal/school", m.RequireSchool(rt.Schools.PortalSchool))
	mux.HandleFunc("GET /api/portal/students", m.RequireSchool(rt.Schools.PortalStudents))
	mux.HandleFunc("POST /api/portal/students", m.RequireSchool(rt.Schools.PortalRegisterStudent))
	mux.HandleFunc("GET /api/portal/payments", m.RequireSchool(rt.Schools.PortalPayments))

	// Student drill
	mux.HandleFunc("POST /api/drill/login", m.RateLimit(rt.Drill.Login))
	mux.HandleFunc("GET /api/drill/next", m.RequireStudent(rt.Drill.Next))
	mux.HandleFunc("POST /api/drill/answer", m.RequireStudent(rt.Drill.Answer))
	mux.HandleFunc("GET /api/drill/profile", m.RequireStudent(rt.Drill.Profile))
	mux.HandleFunc("GET /api/drill/history", m.RequireStudent(rt.Drill.History))
	mux.HandleFunc("POST /api/drill/shop/{item}", m.RequireStudent(rt.Drill.Purchase))

	// Administration
	mux.HandleFunc("GET /api/admin/users", m.RequireAdmin(rt.Admin.ListUsers))
	mux.HandleFunc("GET /api/admin/stats", m.RequireAdmin(rt.Admin.Stats))
	mux.HandleFunc("GET /api/admin/export", m.RequireAdmin(rt.Admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/import", admin(rt.Admin.ImportDatabase))

	return reporting.Recover(Logging(StartupGate(mux)))
}
