package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/expense-web/internal/database"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense. The category must belong to the expense's user;
// otherwise nothing is inserted and service.ErrNotFound is returned.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (user_id, title, amount, category_id)
		SELECT $1, $2, $3, c.id FROM categories c
		WHERE c.id = $4 AND c.user_id = $1
		RETURNING id, created_at
	`, expense.UserID, expense.Title, expense.Amount, expense.CategoryID,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return wrapErr("create expense", err)
	}
	return nil
}

// ListByUser retrieves all of a user's expenses, newest first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT e.id, e.user_id, e.title, e.amount, e.category_id, e.created_at,
		       c.id, c.user_id, c.name, c.created_at
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC, e.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// SumBetween totals a user's expenses created in [start, end).
func (r *ExpenseRepository) SumBetween(ctx context.Context, userID int64, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM expenses
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
	`, userID, start, end).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get total: %w", err)
	}
	return total, nil
}

// SumSince totals a user's expenses created at or after since.
func (r *ExpenseRepository) SumSince(ctx context.Context, userID int64, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM expenses
		WHERE user_id = $1 AND created_at >= $2
	`, userID, since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get total since: %w", err)
	}
	return total, nil
}

// SumAll totals every expense of a user.
func (r *ExpenseRepository) SumAll(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1
	`, userID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get total: %w", err)
	}
	return total, nil
}

// CountCategoriesUsed returns how many distinct categories the user has
// recorded expenses against.
func (r *ExpenseRepository) CountCategoriesUsed(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT category_id) FROM expenses WHERE user_id = $1
	`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count categories used: %w", err)
	}
	return n, nil
}

// TotalsByCategory returns the user's spending per category, largest first.
func (r *ExpenseRepository) TotalsByCategory(ctx context.Context, userID int64) ([]models.CategoryTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.name, SUM(e.amount), COUNT(*)
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE e.user_id = $1
		GROUP BY c.id, c.name
		ORDER BY SUM(e.amount) DESC, c.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}

// scanExpenses is a helper to scan expense rows with category joins.
func scanExpenses(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.Expense, error) {
	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		var cat models.Category

		if err := rows.Scan(
			&exp.ID, &exp.UserID, &exp.Title, &exp.Amount, &exp.CategoryID, &exp.CreatedAt,
			&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		exp.Category = &cat
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
