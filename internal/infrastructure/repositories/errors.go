package repositories

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const pqUniqueViolation = "23505"

// isUniqueViolation recognises duplicate key errors from postgres (lib/pq) and from translated gorm dialects.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
