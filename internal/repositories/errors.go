package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a conditional stock decrement matches no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidStock is returned when a write would break the stock >= 0 constraint.
	ErrInvalidStock = errors.New("stock must not be negative")
	// ErrDuplicate is returned when a write collides with a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

const pgCheckViolation = "23514"

// isCheckViolation matches CHECK constraint failures from both Postgres and sqlite.
func isCheckViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCheckViolation
	}
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}

// NormalizePage clamps list pagination: limit to 1..100 (default 20), offset to >= 0.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
