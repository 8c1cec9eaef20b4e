package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-web/internal/logger"
	"gitlab.com/yelinaung/expense-web/internal/models"
	appweb "gitlab.com/yelinaung/expense-web/web"
)

var pageNames = []string{
	"welcome.html",
	"signup.html",
	"login.html",
	"dashboard.html",
	"reports.html",
	"profile.html",
	"change_password.html",
	"add_expense.html",
	"category.html",
	"error.html",
}

// page is the data every template receives.
type page struct {
	Title string
	User  *models.User
	Flash *flashMessage
	// Error and ErrorField describe a rejected form submission.
	Error      string
	ErrorField string
	Form       url.Values
	Data       any
}

func parseTemplates(loc *time.Location) (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"money": models.FormatAmount,
		"optMoney": func(d *decimal.Decimal) string {
			if d == nil {
				return "not set"
			}
			return models.FormatAmount(*d)
		},
		"date": func(t time.Time) string {
			return t.In(loc).Format("2006-01-02 15:04")
		},
	}

	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(appweb.TemplatesFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// render executes a page into a buffer first so a template failure never
// produces a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := s.templates[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown template %s", name))
		return
	}

	if p.User == nil {
		p.User = userFromContext(r.Context())
	}
	if p.Flash == nil {
		p.Flash = s.popFlash(w, r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", p); err != nil {
		s.serverError(w, r, fmt.Errorf("failed to render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.Error().
		Err(err).
		Str("request_id", requestIDFromContext(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error.html", page{
		Title: "Not found",
		Error: "The page you requested does not exist.",
	})
}
