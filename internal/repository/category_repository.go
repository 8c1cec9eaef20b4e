// Package repository provides database access for domain entities.
package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/expense-web/internal/database"
	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/service"
)

// CategoryRepository handles category database operations.
// Every query is scoped to the owning user.
type CategoryRepository struct {
	db database.PGXDB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db database.PGXDB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListByUser retrieves a user's categories ordered by name.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID int64) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, name, created_at FROM categories
		WHERE user_id = $1
		ORDER BY name, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves one of the user's categories.
func (r *CategoryRepository) GetByID(ctx context.Context, userID int64, id int) (*models.Category, error) {
	var cat models.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, created_at FROM categories WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		return nil, wrapErr("get category", err)
	}
	return &cat, nil
}

// GetByName retrieves one of the user's categories by exact name.
func (r *CategoryRepository) GetByName(ctx context.Context, userID int64, name string) (*models.Category, error) {
	var cat models.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, name, created_at FROM categories WHERE user_id = $1 AND name = $2
	`, userID, name).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		return nil, wrapErr("get category by name", err)
	}
	return &cat, nil
}

// Create adds a new category for the user.
func (r *CategoryRepository) Create(ctx context.Context, userID int64, name string) (*models.Category, error) {
	var cat models.Category
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (user_id, name) VALUES ($1, $2)
		RETURNING id, user_id, name, created_at
	`, userID, name).Scan(&cat.ID, &cat.UserID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &service.DuplicateError{Message: "This category already exists."}
		}
		return nil, wrapErr("create category", err)
	}
	return &cat, nil
}

// Delete removes one of the user's categories together with its expenses,
// returning how many expenses were removed.
func (r *CategoryRepository) Delete(ctx context.Context, userID int64, id int) (int64, error) {
	var removed int64
	err := database.WithTx(ctx, r.db, func(tx database.PGXDB) error {
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM expenses WHERE category_id = $1 AND user_id = $2
		`, id, userID).Scan(&removed)
		if err != nil {
			return wrapErr("count category expenses", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return wrapErr("delete category", err)
		}
		if tag.RowsAffected() == 0 {
			return wrapErr("delete category", service.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
