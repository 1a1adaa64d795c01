package classroom

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation recognises duplicate-key failures from postgres and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	if IsUniqueViolation(err) {
		return apierr.Conflict("duplicate_row", op+": row already exists")
	}
	return apierr.Persistence(op, err)
}
