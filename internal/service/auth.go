package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"gitlab.com/yelinaung/expense-web/internal/auth"
	"gitlab.com/yelinaung/expense-web/internal/logger"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes and x/crypto rejects it outright.
	maxPasswordBytes = 72
	// SessionSweepTimeout bounds a single expired-session cleanup.
	SessionSweepTimeout = time.Minute
)

var checkPassword = auth.CheckPassword

// AuthService manages accounts, credentials and login sessions.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	ttl      time.Duration
	opts     Options
	metrics  *counters
}

// NewAuthService creates a new AuthService. Sessions live for ttl and are
// renewed once less than half of it remains.
func NewAuthService(users UserStore, sessions SessionStore, ttl time.Duration, opts Options) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		opts:     opts.withDefaults(),
		metrics:  newCounters(),
	}
}

// SignUp creates an account with an empty profile and logs it in.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (*models.Session, *models.User, error) {
	username, err := validateUsername(username)
	if err != nil {
		return nil, nil, err
	}

	email = strings.TrimSpace(email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return nil, nil, validation("email", "Enter a valid email address.")
		}
	}

	if err := validatePassword("password", password); err != nil {
		return nil, nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, nil, &DuplicateError{Message: "Username already exists."}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.CreateWithProfile(ctx, user); err != nil {
		if _, ok := IsDuplicate(err); ok {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}
	s.metrics.signups.Add(ctx, 1)

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(user.ID)).Msg("User signed up")
	return session, user, nil
}

// Login verifies credentials and opens a session. Every failure is
// ErrInvalidCredentials so callers cannot probe for usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Session, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("load user: %w", err)
		}
		_ = checkPassword(password, auth.DummyHash())
		s.rejectLogin(ctx, username)
		return nil, nil, ErrInvalidCredentials
	}

	if !checkPassword(password, user.PasswordHash) {
		s.rejectLogin(ctx, username)
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(user.ID)).Msg("User logged in")
	return session, user, nil
}

func (s *AuthService) rejectLogin(ctx context.Context, username string) {
	s.metrics.loginFailures.Add(ctx, 1)
	logger.Log.Info().Str("username_hash", logger.HashUsername(username)).Msg("Login rejected")
}

// Logout ends a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user. Expired or unknown
// tokens yield ErrNotFound. A session past half its lifetime is extended.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, ErrNotFound
	}

	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("load session: %w", err)
	}

	now := s.opts.Now()
	if !now.Before(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to delete expired session")
		}
		return nil, nil, ErrNotFound
	}

	if session.ExpiresAt.Sub(now) < s.ttl/2 {
		expires := now.Add(s.ttl)
		if err := s.sessions.Touch(ctx, token, expires, now); err != nil {
			return nil, nil, fmt.Errorf("renew session: %w", err)
		}
		session.ExpiresAt = expires
		session.LastActivity = now
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("load session user: %w", err)
	}
	return user, session, nil
}

// ChangePassword rotates the user's password. The session identified by
// currentToken stays valid; every other session of the user is revoked.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentToken, oldPassword, newPassword1, newPassword2 string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if !checkPassword(oldPassword, user.PasswordHash) {
		return validation("old_password", "Your old password was entered incorrectly. Please enter it again.")
	}
	if newPassword1 != newPassword2 {
		return validation("new_password2", "The two password fields didn't match.")
	}
	if err := validatePassword("new_password1", newPassword1); err != nil {
		return err
	}
	if newPassword1 == oldPassword {
		return validation("new_password1", "The new password must differ from the old one.")
	}

	hash, err := auth.HashPassword(newPassword1)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	revoked, err := s.sessions.DeleteOthers(ctx, userID, currentToken)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Int64("revoked_sessions", revoked).
		Msg("Password changed")
	return nil
}

// SweepExpiredSessions deletes sessions that have expired.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.opts.Now())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return n, nil
}

// RunSessionSweeper deletes expired sessions every interval until ctx is
// cancelled.
func (s *AuthService) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	logger.Log.Info().Dur("interval", interval).Msg("Session sweeper started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Session sweeper stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *AuthService) sweepOnce(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, SessionSweepTimeout)
	defer cancel()

	n, err := s.SweepExpiredSessions(sweepCtx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to sweep expired sessions")
		return
	}
	if n > 0 {
		logger.Log.Debug().Int64("deleted", n).Msg("Expired sessions swept")
	}
}

func (s *AuthService) openSession(ctx context.Context, userID int64) (*models.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.opts.Now()
	session := &models.Session{
		Token:        token,
		UserID:       userID,
		ExpiresAt:    now.Add(s.ttl),
		LastActivity: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// validateUsername accepts letters, digits and @.+-_ up to the stored limit.
func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", validation("username", "Username is required.")
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLength {
		return "", validation("username", "Username is too long.")
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return "", validation("username", "Username may contain only letters, digits and @/./+/-/_ characters.")
	}
	return username, nil
}

func validatePassword(field, password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return validation(field, fmt.Sprintf("Password must contain at least %d characters.", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return validation(field, "Password is too long.")
	}
	return nil
}
