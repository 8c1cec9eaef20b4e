// Package web serves the expense tracker's HTML interface.
package web

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"gitlab.com/yelinaung/expense-web/internal/service"
	appweb "gitlab.com/yelinaung/expense-web/web"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wires the server to its services.
type Config struct {
	Auth      *service.AuthService
	Expenses  *service.ExpenseService
	Dashboard *service.DashboardService
	Profiles  *service.ProfileService
	DB        Pinger
	// SecureCookie marks cookies Secure; enable behind HTTPS.
	SecureCookie bool
	Location     *time.Location
	ServiceName  string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server holds the HTTP handlers.
type Server struct {
	auth      *service.AuthService
	expenses  *service.ExpenseService
	dashboard *service.DashboardService
	profiles  *service.ProfileService
	db        Pinger

	secureCookie bool
	loc          *time.Location
	now          func() time.Time
	templates    map[string]*template.Template
	handler      http.Handler
}

// NewServer parses templates and builds the route table.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "expense-web"
	}

	templates, err := parseTemplates(cfg.Location)
	if err != nil {
		return nil, err
	}

	s := &Server{
		auth:         cfg.Auth,
		expenses:     cfg.Expenses,
		dashboard:    cfg.Dashboard,
		profiles:     cfg.Profiles,
		db:           cfg.DB,
		secureCookie: cfg.SecureCookie,
		loc:          cfg.Location,
		now:          cfg.Now,
		templates:    templates,
	}

	mux := http.NewServeMux()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to mount static assets: %w", err)
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(static)))
	mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	}))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.handleWelcome)
	mux.HandleFunc("GET /signup/{$}", s.anonymousOnly(s.handleSignupForm))
	mux.HandleFunc("POST /signup/{$}", s.anonymousOnly(s.handleSignup))
	mux.HandleFunc("GET /login/{$}", s.anonymousOnly(s.handleLoginForm))
	mux.HandleFunc("POST /login/{$}", s.anonymousOnly(s.handleLogin))
	mux.HandleFunc("POST /logout/{$}", s.handleLogout)

	mux.HandleFunc("GET /dashboard/{$}", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("GET /dashboard/chart.png", s.requireAuth(s.handleChart))
	mux.HandleFunc("GET /reports/{$}", s.requireAuth(s.handleReports))
	mux.HandleFunc("GET /reports/export.csv", s.requireAuth(s.handleExport))
	mux.HandleFunc("GET /profile/{$}", s.requireAuth(s.handleProfileForm))
	mux.HandleFunc("POST /profile/{$}", s.requireAuth(s.handleProfile))
	mux.HandleFunc("GET /change-password/{$}", s.requireAuth(s.handleChangePasswordForm))
	mux.HandleFunc("POST /change-password/{$}", s.requireAuth(s.handleChangePassword))
	mux.HandleFunc("GET /add_expense/{$}", s.requireAuth(s.handleAddExpenseForm))
	mux.HandleFunc("POST /add_expense/{$}", s.requireAuth(s.handleAddExpense))
	mux.HandleFunc("GET /category/{$}", s.requireAuth(s.handleCategories))
	mux.HandleFunc("POST /category/{$}", s.requireAuth(s.handleCreateCategory))
	mux.HandleFunc("POST /category/delete/{id}/{$}", s.requireAuth(s.handleDeleteCategory))

	mux.HandleFunc("/", s.notFound)

	// Browsers report cross-site form posts through Sec-Fetch-Site or
	// Origin; those are refused with 403 before reaching a handler.
	csrf := http.NewCrossOriginProtection()

	s.handler = otelhttp.NewHandler(logRequests(securityHeaders(csrf.Handler(mux))), cfg.ServiceName)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
