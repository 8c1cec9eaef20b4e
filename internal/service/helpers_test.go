package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/expense-web/internal/models"
	"gitlab.com/yelinaung/expense-web/internal/service/mocks"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func createUser(t *testing.T, db *mocks.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, PasswordHash: "unused"}
	require.NoError(t, db.Users().CreateWithProfile(context.Background(), user))
	return user
}

func createCategory(t *testing.T, db *mocks.DB, userID int64, name string) *models.Category {
	t.Helper()

	cat, err := db.Categories().Create(context.Background(), userID, name)
	require.NoError(t, err)
	return cat
}
