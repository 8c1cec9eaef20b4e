package repository

import (
	"context"

	"gitlab.com/yelinaung/expense-web/internal/database"
	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/service"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateWithProfile inserts a user and an empty profile in one transaction.
// The user's ID and CreatedAt are filled in on success.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User) error {
	return database.WithTx(ctx, r.db, func(tx database.PGXDB) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return &service.DuplicateError{Message: "Username already exists."}
			}
			return wrapErr("create user", err)
		}

		if _, err := tx.Exec(ctx, `INSERT INTO user_profiles (user_id) VALUES ($1)`, user.ID); err != nil {
			return wrapErr("create profile", err)
		}
		return nil
	})
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, wrapErr("get user", err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, wrapErr("get user by username", err)
	}
	return &user, nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return wrapErr("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapErr("update password", service.ErrNotFound)
	}
	return nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, wrapErr("count users", err)
	}
	return n, nil
}
