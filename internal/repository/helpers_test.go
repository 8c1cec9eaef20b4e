package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-web/internal/database"
	"gitlab.com/yelinaung/expense-web/internal/models"
)

func createTestUser(t *testing.T, db database.PGXDB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "hash"}
	err := NewUserRepository(db).CreateWithProfile(context.Background(), user)
	require.NoError(t, err)
	return user
}

func createTestCategory(t *testing.T, db database.PGXDB, userID int64, name string) *models.Category {
	t.Helper()

	cat, err := NewCategoryRepository(db).Create(context.Background(), userID, name)
	require.NoError(t, err)
	return cat
}

// insertExpenseAt bypasses the server-assigned timestamp so tests can place
// expenses inside specific windows.
func insertExpenseAt(t *testing.T, db database.PGXDB, userID int64, categoryID int, amount string, at time.Time) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO expenses (user_id, title, amount, category_id, created_at)
		VALUES ($1, 'seeded', $2::numeric, $3, $4)
	`, userID, amount, categoryID, at)
	require.NoError(t, err)
}
