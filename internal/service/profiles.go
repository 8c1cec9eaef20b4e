package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-web/internal/logger"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

// ProfileService manages user profiles and budget fields.
type ProfileService struct {
	profiles ProfileStore
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// ProfileInput is the raw form input for a profile update. Empty money
// fields clear the stored value.
type ProfileInput struct {
	Phone        string
	Address      string
	Image        string
	TotalAmount  string
	Savings      string
	MonthlyLimit string
}

// EnsureProfile returns the user's profile, creating an empty one if needed.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	p, err := s.profiles.Ensure(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return p, nil
}

// UpdateProfile validates and stores the profile fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*models.UserProfile, error) {
	p, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.Phone = strings.TrimSpace(in.Phone)
	if utf8.RuneCountInString(p.Phone) > models.MaxPhoneLength {
		return nil, validation("phone", "Phone number is too long.")
	}
	p.Address = strings.TrimSpace(in.Address)
	p.Image = strings.TrimSpace(in.Image)
	if utf8.RuneCountInString(p.Image) > models.MaxImageRefLength {
		return nil, validation("image", "Image reference is too long.")
	}

	if p.TotalAmount, err = parseBudgetField("total_amount", in.TotalAmount); err != nil {
		return nil, err
	}
	if p.Savings, err = parseBudgetField("savings", in.Savings); err != nil {
		return nil, err
	}
	if p.MonthlyLimit, err = parseBudgetField("monthly_limit", in.MonthlyLimit); err != nil {
		return nil, err
	}

	saved, err := s.profiles.Update(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Bool("monthly_limit_set", saved.MonthlyLimit != nil).
		Msg("Profile updated")
	return saved, nil
}

func parseBudgetField(field, s string) (*decimal.Decimal, error) {
	d, err := models.ParseOptionalAmount(s, models.ProfileAmountDigits, models.MoneyPlaces)
	if err != nil {
		return nil, validation(field, amountMessage(err))
	}
	if d != nil && d.IsNegative() {
		return nil, validation(field, "Amount cannot be negative.")
	}
	return d, nil
}
