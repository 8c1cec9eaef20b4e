package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/expense-web/internal/logger"
	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/service"
	"go.opentelemetry.io/otel/trace"
)

const (
	sessionCookieName = "session"
	maxFormBytes      = 1 << 20
)

type contextKey int

const (
	userKey contextKey = iota
	sessionKey
	requestInfoKey
)

// requestInfo is shared between the access log and the handlers below it.
type requestInfo struct {
	id     string
	userID int64
}

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func sessionFromContext(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(sessionKey).(*models.Session)
	return sess
}

func requestIDFromContext(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		return info.id
	}
	return ""
}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// logRequests assigns a request id and writes one access log line per request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestInfo{id: uuid.NewString()}
		w.Header().Set("X-Request-ID", info.id)

		ctx := context.WithValue(r.Context(), requestInfoKey, info)
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r.WithContext(ctx))

		event := logger.Log.Info()
		if rw.status >= http.StatusInternalServerError {
			event = logger.Log.Warn()
		}
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			event = event.Str("trace_id", sc.TraceID().String())
		}
		if info.userID != 0 {
			event = event.Str("user_hash", logger.HashUserID(info.userID))
		}
		event.
			Str("request_id", info.id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	})
}

// securityHeaders sets browser hardening headers and caps form bodies.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		if r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// currentSession resolves the session cookie. A stale cookie is cleared and
// reported as no session.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) (*models.User, *models.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil, nil
	}

	user, sess, err := s.auth.Authenticate(r.Context(), cookie.Value)
	if errors.Is(err, service.ErrNotFound) {
		s.clearSessionCookie(w)
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok {
		info.userID = user.ID
	}
	// The expiry may have been pushed forward.
	s.setSessionCookie(w, sess)
	return user, sess, nil
}

// requireAuth sends anonymous visitors to the login page and stores the
// user and session in the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, sess, err := s.currentSession(w, r)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if user == nil {
			http.Redirect(w, r, "/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, sessionKey, sess)
		next(w, r.WithContext(ctx))
	}
}

// anonymousOnly redirects logged-in users away from pages meant for visitors.
func (s *Server) anonymousOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _, err := s.currentSession(w, r)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		if user != nil {
			http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/dashboard/"
	}
	return next
}
