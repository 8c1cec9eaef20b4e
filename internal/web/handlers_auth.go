package web

import (
	"errors"
	"net/http"
	"net/url"

	"gitlab.com/yelinaung/expense-web/internal/service"
)

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	user, _, err := s.currentSession(w, r)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if user != nil {
		http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "welcome.html", page{Title: "Welcome"})
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", page{Title: "Sign up"})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := url.Values{
		"username": {r.PostForm.Get("username")},
		"email":    {r.PostForm.Get("email")},
	}

	sess, _, err := s.auth.SignUp(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("email"), r.PostForm.Get("password"))
	if v, ok := service.IsValidation(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "signup.html", page{
			Title: "Sign up", Error: v.Message, ErrorField: v.Field, Form: form,
		})
		return
	}
	if d, ok := service.IsDuplicate(err); ok {
		s.render(w, r, http.StatusConflict, "signup.html", page{
			Title: "Sign up", Error: d.Message, ErrorField: "username", Form: form,
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.setSessionCookie(w, sess)
	s.setFlash(w, flashSuccess, "Signup successful!")
	http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", page{
		Title: "Log in",
		Form:  url.Values{"next": {r.URL.Query().Get("next")}},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	next := r.PostForm.Get("next")

	sess, _, err := s.auth.Login(r.Context(), username, r.PostForm.Get("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		s.render(w, r, http.StatusUnauthorized, "login.html", page{
			Title: "Log in",
			Error: "Invalid username or password.",
			Form:  url.Values{"username": {username}, "next": {next}},
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.setSessionCookie(w, sess)
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.auth.Logout(r.Context(), cookie.Value); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	s.clearSessionCookie(w)
	s.setFlash(w, flashSuccess, "Logged out successfully")
	http.Redirect(w, r, "/login/", http.StatusSeeOther)
}

func (s *Server) handleChangePasswordForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "change_password.html", page{Title: "Change password"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	user := userFromContext(r.Context())
	sess := sessionFromContext(r.Context())

	err := s.auth.ChangePassword(r.Context(), user.ID, sess.Token,
		r.PostForm.Get("old_password"), r.PostForm.Get("new_password1"), r.PostForm.Get("new_password2"))
	if v, ok := service.IsValidation(err); ok {
		s.render(w, r, http.StatusUnprocessableEntity, "change_password.html", page{
			Title:      "Change password",
			Flash:      &flashMessage{Level: flashError, Message: "Error changing password."},
			Error:      v.Message,
			ErrorField: v.Field,
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.setFlash(w, flashSuccess, "Password changed successfully!")
	http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)
}
