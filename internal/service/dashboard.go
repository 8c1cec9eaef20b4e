package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

// Dashboard holds the aggregated figures for one user.
type Dashboard struct {
	Today          decimal.Decimal
	Yesterday      decimal.Decimal
	Last7Days      decimal.Decimal
	Last30Days     decimal.Decimal
	CurrentYear    decimal.Decimal
	Total          decimal.Decimal
	CategoriesUsed int
	UsersCount     int64
	Profile        *models.UserProfile
}

// DashboardService computes spending summaries.
type DashboardService struct {
	users    UserStore
	expenses ExpenseStore
	profiles ProfileStore
	opts     Options
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(users UserStore, expenses ExpenseStore, profiles ProfileStore, opts Options) *DashboardService {
	return &DashboardService{
		users:    users,
		expenses: expenses,
		profiles: profiles,
		opts:     opts.withDefaults(),
	}
}

// Dashboard computes the user's totals over the fixed calendar windows.
// Windows are anchored at local midnight of the current day.
func (s *DashboardService) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	today := startOfDay(s.opts.now())
	tomorrow := today.AddDate(0, 0, 1)
	yearStart := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())

	var (
		d   Dashboard
		err error
	)

	if d.Today, err = s.expenses.SumBetween(ctx, userID, today, tomorrow); err != nil {
		return nil, fmt.Errorf("sum today: %w", err)
	}
	if d.Yesterday, err = s.expenses.SumBetween(ctx, userID, today.AddDate(0, 0, -1), today); err != nil {
		return nil, fmt.Errorf("sum yesterday: %w", err)
	}
	if d.Last7Days, err = s.expenses.SumSince(ctx, userID, today.AddDate(0, 0, -7)); err != nil {
		return nil, fmt.Errorf("sum last 7 days: %w", err)
	}
	if d.Last30Days, err = s.expenses.SumSince(ctx, userID, today.AddDate(0, 0, -30)); err != nil {
		return nil, fmt.Errorf("sum last 30 days: %w", err)
	}
	if d.CurrentYear, err = s.expenses.SumBetween(ctx, userID, yearStart, yearStart.AddDate(1, 0, 0)); err != nil {
		return nil, fmt.Errorf("sum current year: %w", err)
	}
	if d.Total, err = s.expenses.SumAll(ctx, userID); err != nil {
		return nil, fmt.Errorf("sum total: %w", err)
	}
	if d.CategoriesUsed, err = s.expenses.CountCategoriesUsed(ctx, userID); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	if d.UsersCount, err = s.users.Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if d.Profile, err = s.profiles.Ensure(ctx, userID); err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	return &d, nil
}

// CategoryBreakdown returns the user's all-time spending per category.
func (s *DashboardService) CategoryBreakdown(ctx context.Context, userID int64) ([]models.CategoryTotal, error) {
	totals, err := s.expenses.TotalsByCategory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	return totals, nil
}
