// Package models defines the domain entities for the expense tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxUsernameLength is the maximum allowed length for usernames.
const MaxUsernameLength = 150

// MaxCategoryNameLength is the maximum allowed length for category names.
const MaxCategoryNameLength = 50

// MaxExpenseTitleLength is the maximum allowed length for expense titles.
const MaxExpenseTitleLength = 100

// MaxPhoneLength is the maximum allowed length for profile phone numbers.
const MaxPhoneLength = 15

// MaxImageRefLength is the maximum allowed length for avatar references.
const MaxImageRefLength = 255

// Precision of stored money columns.
const (
	ExpenseAmountDigits = 10
	ProfileAmountDigits = 12
	MoneyPlaces         = 2
)

// User represents a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserProfile holds optional contact details and budget fields for a user.
type UserProfile struct {
	UserID       int64
	Phone        string
	Address      string
	Image        string
	TotalAmount  *decimal.Decimal
	Savings      *decimal.Decimal
	MonthlyLimit *decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Category represents a user-owned expense category.
type Category struct {
	ID        int
	UserID    int64
	Name      string
	CreatedAt time.Time
}

// Expense represents a single expense entry. CreatedAt is assigned by the
// store and is the canonical date of the expense.
type Expense struct {
	ID         int
	UserID     int64
	Title      string
	Amount     decimal.Decimal
	CategoryID int
	Category   *Category
	CreatedAt  time.Time
}

// Session represents a logged-in browser session.
type Session struct {
	Token        string
	UserID       int64
	ExpiresAt    time.Time
	LastActivity time.Time
}

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	CategoryID int
	Name       string
	Total      decimal.Decimal
	Count      int
}
