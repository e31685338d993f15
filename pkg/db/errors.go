package db

import (
	"strings"

	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

const sqlStateUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// When constraintName is set the violation must reference that constraint.
// SQLite errors carry no SQLSTATE, so the message text is checked as well.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if pkgerrors.SQLState(err) == sqlStateUniqueViolation {
		return constraintName == "" || strings.Contains(msg, constraintName)
	}
	if constraintName != "" && !strings.Contains(msg, constraintName) {
		return false
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
