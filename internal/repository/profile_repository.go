package repository

import (
	"context"

	"gitlab.com/yelinaung/expense-web/internal/database"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

// ProfileRepository handles user profile database operations.
type ProfileRepository struct {
	db database.PGXDB
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(db database.PGXDB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, phone, address, image, total_amount, savings, monthly_limit, created_at, updated_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (*models.UserProfile, error) {
	var p models.UserProfile
	err := row.Scan(&p.UserID, &p.Phone, &p.Address, &p.Image,
		&p.TotalAmount, &p.Savings, &p.MonthlyLimit, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Ensure returns the user's profile, creating an empty one first if needed.
// Concurrent callers for the same user all observe the single stored row.
func (r *ProfileRepository) Ensure(ctx context.Context, userID int64) (*models.UserProfile, error) {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO user_profiles (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return nil, wrapErr("ensure profile", err)
	}
	return r.Get(ctx, userID)
}

// Get retrieves the profile of a user.
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*models.UserProfile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID))
	if err != nil {
		return nil, wrapErr("get profile", err)
	}
	return p, nil
}

// Update stores every editable field of the profile and returns the saved row.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx, `
		UPDATE user_profiles SET
			phone = $2,
			address = $3,
			image = $4,
			total_amount = $5,
			savings = $6,
			monthly_limit = $7,
			updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+profileColumns,
		profile.UserID, profile.Phone, profile.Address, profile.Image,
		profile.TotalAmount, profile.Savings, profile.MonthlyLimit))
	if err != nil {
		return nil, wrapErr("update profile", err)
	}
	return p, nil
}
