package sqlite

import (
	"errors"
	"strings"

	"github.com/ncruces/go-sqlite3"
)

// sqliteError extracts the driver error, if any.
func sqliteError(err error) (*sqlite3.Error, bool) {
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}

// isBusy reports whether the error is a lock contention abort that a
// bounded retry may resolve.
func isBusy(err error) bool {
	if serr, ok := sqliteError(err); ok {
		switch serr.Code() {
		case sqlite3.BUSY, sqlite3.LOCKED:
			return true
		}
	}
	message := strings.ToLower(errString(err))
	return strings.Contains(message, "database is locked") ||
		strings.Contains(message, "database table is locked")
}

// isUniqueViolation reports whether the error is a unique constraint
// failure on the named column.
func isUniqueViolation(err error, column string) bool {
	if serr, ok := sqliteError(err); ok {
		if serr.ExtendedCode() == sqlite3.CONSTRAINT_UNIQUE ||
			serr.ExtendedCode() == sqlite3.CONSTRAINT_PRIMARYKEY {
			return strings.Contains(strings.ToLower(errString(err)), strings.ToLower(column))
		}
	}
	message := strings.ToLower(errString(err))
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, strings.ToLower(column))
}

// isForeignKeyViolation reports whether the error is a referential
// integrity failure.
func isForeignKeyViolation(err error) bool {
	if serr, ok := sqliteError(err); ok {
		return serr.ExtendedCode() == sqlite3.CONSTRAINT_FOREIGNKEY
	}
	return strings.Contains(strings.ToLower(errString(err)), "foreign key constraint failed")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
