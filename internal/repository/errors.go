package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gitlab.com/yelinaung/expense-web/internal/service"
)

const uniqueViolation = "23505"

// wrapErr wraps a driver error, translating a missing row to
// service.ErrNotFound.
func wrapErr(action string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", action, service.ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
