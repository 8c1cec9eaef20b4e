package database

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// testDatabaseURL returns TEST_DATABASE_URL or skips the test.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	return url
}

// TestDB opens a private pool for a single test and closes it on cleanup.
// The schema is not migrated; use TestPool or TestTx for that.
func TestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := Connect(context.Background(), testDatabaseURL(t))
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

var shared struct {
	once sync.Once
	pool *pgxpool.Pool
	err  error
}

// TestPool returns a migrated pool shared by every test in the binary.
func TestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := testDatabaseURL(t)

	shared.once.Do(func() {
		ctx := context.Background()
		shared.pool, shared.err = Connect(ctx, url)
		if shared.err == nil {
			shared.err = RunMigrations(ctx, shared.pool)
		}
	})
	if shared.err != nil {
		t.Fatalf("failed to set up test database: %v", shared.err)
	}
	return shared.pool
}

// TestTx returns a transaction on the shared pool that is rolled back when
// the test ends, so tests never see each other's rows:
//
//	db := database.TestTx(t)
//	categories := repository.NewCategoryRepository(db)
//
// WithTx on the returned handle opens a savepoint.
func TestTx(t *testing.T) PGXDB {
	t.Helper()

	tx, err := TestPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}
