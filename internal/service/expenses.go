package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-web/internal/logger"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

// ExpenseService manages a user's categories and expenses.
type ExpenseService struct {
	categories CategoryStore
	expenses   ExpenseStore
	profiles   ProfileStore
	opts       Options
	metrics    *counters
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(categories CategoryStore, expenses ExpenseStore, profiles ProfileStore, opts Options) *ExpenseService {
	return &ExpenseService{
		categories: categories,
		expenses:   expenses,
		profiles:   profiles,
		opts:       opts.withDefaults(),
		metrics:    newCounters(),
	}
}

// ExpenseInput is the raw form input for a new expense.
type ExpenseInput struct {
	Title      string
	Amount     string
	CategoryID string
}

// ExpenseResult describes a recorded expense and the budget check that
// followed it.
type ExpenseResult struct {
	Expense *models.Expense
	Outcome Outcome
	Total   decimal.Decimal
	Limit   *decimal.Decimal
}

// CreateCategory adds a category for the user. Names are unique per user.
func (s *ExpenseService) CreateCategory(ctx context.Context, userID int64, name string) (*models.Category, error) {
	name, err := cleanText("name", "Category name", name, models.MaxCategoryNameLength)
	if err != nil {
		return nil, err
	}

	if _, err := s.categories.GetByName(ctx, userID, name); err == nil {
		return nil, &DuplicateError{Message: "This category already exists."}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check category: %w", err)
	}

	cat, err := s.categories.Create(ctx, userID, name)
	if err != nil {
		if _, ok := IsDuplicate(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Int("category_id", cat.ID).
		Msg("Category created")
	return cat, nil
}

// ListCategories returns the user's categories ordered by name.
func (s *ExpenseService) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	cats, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// DeleteCategory removes one of the user's categories and every expense in
// it. It returns ErrNotFound when the category is absent or not the user's.
func (s *ExpenseService) DeleteCategory(ctx context.Context, userID int64, categoryID int) (int64, error) {
	removed, err := s.categories.Delete(ctx, userID, categoryID)
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}

	s.metrics.categoriesDeleted.Add(ctx, 1)
	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Int("category_id", categoryID).
		Int64("affected_expenses", removed).
		Msg("Category deleted")
	return removed, nil
}

// CreateExpense validates and records an expense, then checks the user's
// recomputed total against their monthly limit. Once the expense is stored
// a failing budget check is logged and reported as OutcomeSuccess.
func (s *ExpenseService) CreateExpense(ctx context.Context, userID int64, in ExpenseInput) (*ExpenseResult, error) {
	fields := []struct{ name, value string }{
		{"title", in.Title},
		{"amount", in.Amount},
		{"category", in.CategoryID},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return nil, validation(f.name, "Please fill all fields!")
		}
	}

	title, err := cleanText("title", "Title", in.Title, models.MaxExpenseTitleLength)
	if err != nil {
		return nil, err
	}

	amount, err := models.ParseAmount(in.Amount, models.ExpenseAmountDigits, models.MoneyPlaces)
	if err != nil {
		return nil, validation("amount", amountMessage(err))
	}
	if !amount.IsPositive() {
		return nil, validation("amount", "Amount must be greater than zero.")
	}

	categoryID, err := strconv.Atoi(strings.TrimSpace(in.CategoryID))
	if err != nil {
		return nil, validation("category", "Select a valid category.")
	}

	cat, err := s.categories.GetByID(ctx, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	expense := &models.Expense{
		UserID:     userID,
		Title:      title,
		Amount:     amount,
		CategoryID: cat.ID,
		Category:   cat,
	}
	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	s.metrics.expensesCreated.Add(ctx, 1)

	result, err := s.checkBudget(ctx, expense)
	if err != nil {
		// The expense is already committed; a failed budget read must not
		// report the save as failed.
		logger.Log.Warn().Err(err).
			Str("user_hash", logger.HashUserID(userID)).
			Int("expense_id", expense.ID).
			Msg("Budget check skipped")
		result = &ExpenseResult{Expense: expense, Outcome: OutcomeSuccess}
	}

	logger.Log.Debug().
		Str("user_hash", logger.HashUserID(userID)).
		Int("expense_id", expense.ID).
		Str("title", logger.SanitizeText(expense.Title)).
		Str("amount", expense.Amount.String()).
		Str("outcome", result.Outcome.String()).
		Msg("Expense created")
	return result, nil
}

// ListExpenses returns all of the user's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64) ([]models.Expense, error) {
	expenses, err := s.expenses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// checkBudget compares the user's recomputed total against their limit.
func (s *ExpenseService) checkBudget(ctx context.Context, expense *models.Expense) (*ExpenseResult, error) {
	total, err := s.budgetTotal(ctx, expense.UserID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Ensure(ctx, expense.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	result := &ExpenseResult{
		Expense: expense,
		Outcome: EvaluateBudget(total, profile.MonthlyLimit),
		Total:   total,
		Limit:   profile.MonthlyLimit,
	}
	if result.Outcome == OutcomeWarning {
		s.metrics.budgetWarnings.Add(ctx, 1)
	}
	return result, nil
}

// budgetTotal recomputes the spending total compared against the limit.
func (s *ExpenseService) budgetTotal(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var (
		total decimal.Decimal
		err   error
	)
	if s.opts.BudgetWindow == BudgetMonth {
		now := s.opts.now()
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		total, err = s.expenses.SumSince(ctx, userID, monthStart)
	} else {
		total, err = s.expenses.SumAll(ctx, userID)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("compute budget total: %w", err)
	}
	return total, nil
}

func amountMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrTooManyDecimalPlaces):
		return "Amount can have at most 2 decimal places."
	case errors.Is(err, models.ErrTooManyDigits):
		return "Amount is too large."
	default:
		return "Enter a valid amount."
	}
}
