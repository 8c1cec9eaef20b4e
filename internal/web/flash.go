package web

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookieName = "flash"

// Flash levels.
const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashError   = "error"
)

// flashMessage is a one-shot notice shown on the page after a redirect.
type flashMessage struct {
	Level   string
	Message string
}

// setFlash stores a message for the next page the browser loads.
func (s *Server) setFlash(w http.ResponseWriter, level, message string) {
	value := base64.RawURLEncoding.EncodeToString([]byte(level + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads the pending message, if any, and clears it.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *flashMessage {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(string(raw), "|")
	if !ok || message == "" {
		return nil
	}
	switch level {
	case flashSuccess, flashWarning, flashError:
	default:
		return nil
	}
	return &flashMessage{Level: level, Message: message}
}
