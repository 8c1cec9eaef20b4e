// Package service implements the expense tracker's business logic. Every
// operation takes the acting user explicitly; nothing here reads a session.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

// UserStore persists accounts.
type UserStore interface {
	CreateWithProfile(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Count(ctx context.Context) (int64, error)
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	Ensure(ctx context.Context, userID int64) (*models.UserProfile, error)
	Update(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)
}

// CategoryStore persists user-owned categories.
type CategoryStore interface {
	Create(ctx context.Context, userID int64, name string) (*models.Category, error)
	GetByID(ctx context.Context, userID int64, id int) (*models.Category, error)
	GetByName(ctx context.Context, userID int64, name string) (*models.Category, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Category, error)
	Delete(ctx context.Context, userID int64, id int) (int64, error)
}

// ExpenseStore persists expenses and answers aggregate queries over them.
type ExpenseStore interface {
	Create(ctx context.Context, expense *models.Expense) error
	ListByUser(ctx context.Context, userID int64) ([]models.Expense, error)
	SumBetween(ctx context.Context, userID int64, start, end time.Time) (decimal.Decimal, error)
	SumSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error)
	SumAll(ctx context.Context, userID int64) (decimal.Decimal, error)
	CountCategoriesUsed(ctx context.Context, userID int64) (int, error)
	TotalsByCategory(ctx context.Context, userID int64) ([]models.CategoryTotal, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Touch(ctx context.Context, token string, expiresAt, lastActivity time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteOthers(ctx context.Context, userID int64, keepToken string) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time
