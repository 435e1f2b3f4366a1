package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// postgres error code for unique_violation
const uniqueViolation = "23505"

// translate maps driver errors onto the repository sentinels, keeping the
// original error in the chain for logging.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pgErr.ConstraintName)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Pagination is a 1-based page request.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) apply(db *gorm.DB) *gorm.DB {
	if p.PageSize <= 0 {
		return db
	}
	return db.Limit(p.PageSize).Offset(p.offset())
}
