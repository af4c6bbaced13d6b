package sql

import (
	"errors"
	"strings"
)

// SQLite extended result codes for constraint violations.
const (
	sqliteConstraintCheck      = 275  // SQLITE_CONSTRAINT_CHECK
	sqliteConstraintForeignKey = 787  // SQLITE_CONSTRAINT_FOREIGNKEY
	sqliteConstraintNotNull    = 1299 // SQLITE_CONSTRAINT_NOTNULL
	sqliteConstraintPrimaryKey = 1555 // SQLITE_CONSTRAINT_PRIMARYKEY
	sqliteConstraintUnique     = 2067 // SQLITE_CONSTRAINT_UNIQUE
)

// errorCoder is an interface for database errors that provide result codes.
// Implemented by: modernc.org/sqlite.
type errorCoder interface {
	Code() int
}

// IsConstraintError returns true if the error resulted from a database
// constraint violation. Errors returned by Driver keep the engine error in
// their chain, so the error of a failed joli save can be passed as is.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) ||
		IsForeignKeyConstraintError(err) ||
		IsCheckConstraintError(err) ||
		IsNotNullConstraintError(err)
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness
// constraint violation, e.g. a duplicate identity.
func IsUniqueConstraintError(err error) bool {
	return hasCode(err, sqliteConstraintUnique, sqliteConstraintPrimaryKey) ||
		containsAny(err, "UNIQUE constraint failed")
}

// IsForeignKeyConstraintError reports if the error resulted from a database
// foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	return hasCode(err, sqliteConstraintForeignKey) ||
		containsAny(err, "FOREIGN KEY constraint failed")
}

// IsCheckConstraintError reports if the error resulted from a database check
// constraint violation.
func IsCheckConstraintError(err error) bool {
	return hasCode(err, sqliteConstraintCheck) ||
		containsAny(err, "CHECK constraint failed")
}

// IsNotNullConstraintError reports if the error resulted from a NOT NULL
// constraint violation.
func IsNotNullConstraintError(err error) bool {
	return hasCode(err, sqliteConstraintNotNull) ||
		containsAny(err, "NOT NULL constraint failed")
}

func hasCode(err error, codes ...int) bool {
	e, ok := asError[errorCoder](err)
	if !ok {
		return false
	}
	for _, c := range codes {
		if e.Code() == c {
			return true
		}
	}
	return false
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny reports whether the message of err contains any of the substrings.
func containsAny(err error, substrings ...string) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
