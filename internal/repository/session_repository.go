package repository

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/yelinaung/expense-web/internal/database"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

// SessionRepository handles login session database operations.
type SessionRepository struct {
	db database.PGXDB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db database.PGXDB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, s *models.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, last_activity)
		VALUES ($1, $2, $3, $4)
	`, s.Token, s.UserID, s.ExpiresAt, s.LastActivity)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a session by token, expired or not.
func (r *SessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRow(ctx, `
		SELECT token, user_id, expires_at, last_activity FROM sessions WHERE token = $1
	`, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.LastActivity)
	if err != nil {
		return nil, wrapErr("get session", err)
	}
	return &s, nil
}

// Touch extends a session.
func (r *SessionRepository) Touch(ctx context.Context, token string, expiresAt, lastActivity time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET expires_at = $2, last_activity = $3 WHERE token = $1
	`, token, expiresAt, lastActivity)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteOthers removes every session of the user except keepToken.
func (r *SessionRepository) DeleteOthers(ctx context.Context, userID int64, keepToken string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE user_id = $1 AND token <> $2
	`, userID, keepToken)
	if err != nil {
		return 0, fmt.Errorf("failed to delete other sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes sessions that expired before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
