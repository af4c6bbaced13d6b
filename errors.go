package joli

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common operations.
var (
	// ErrStatement is matched by every malformed or incomplete statement.
	ErrStatement = errors.New("joli: invalid statement")

	// ErrHydration is returned when a result cannot be turned into rows
	// or records.
	ErrHydration = errors.New("joli: hydration failed")

	// ErrInvariant is returned when a record is used in a way its
	// lifecycle does not allow.
	ErrInvariant = errors.New("joli: record invariant violated")

	// ErrAlreadyCommitted is returned when a transaction is committed twice.
	ErrAlreadyCommitted = errors.New("joli: transaction already committed")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("joli: record not found")
)

// StatementError represents a malformed or incomplete statement.
type StatementError struct {
	msg string
}

// Error returns the error string.
func (e *StatementError) Error() string {
	return "joli: statement: " + e.msg
}

// Is reports whether the target error matches StatementError.
func (e *StatementError) Is(err error) bool {
	return err == ErrStatement
}

// NewStatementError returns a new StatementError with the given message.
func NewStatementError(format string, args ...any) *StatementError {
	return &StatementError{msg: fmt.Sprintf(format, args...)}
}

// IsStatementError returns true if the error is a StatementError or a
// HydrationError.
func IsStatementError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrStatement)
}

// HydrationError represents a select result that cannot be hydrated:
// an unknown hydration mode or a table without a registered model.
// It also matches ErrStatement, as both describe a misbuilt statement.
type HydrationError struct {
	Mode  HydrationMode
	Table string
	msg   string
}

// Error returns the error string.
func (e *HydrationError) Error() string {
	return "joli: hydration: " + e.msg
}

// Is reports whether the target error matches HydrationError.
func (e *HydrationError) Is(err error) bool {
	return err == ErrHydration || err == ErrStatement
}

// IsHydrationError returns true if the error is a HydrationError.
func IsHydrationError(err error) bool {
	if err == nil {
		return false
	}
	var e *HydrationError
	return errors.As(err, &e)
}

// InvariantError represents a record lifecycle violation, such as
// destroying a record that was never saved.
type InvariantError struct {
	Table string
	msg   string
}

// Error returns the error string.
func (e *InvariantError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("joli: %s: %s", e.Table, e.msg)
	}
	return "joli: " + e.msg
}

// Is reports whether the target error matches InvariantError.
func (e *InvariantError) Is(err error) bool {
	return err == ErrInvariant
}

// NewInvariantError returns a new InvariantError for the given table.
func NewInvariantError(table, msg string) *InvariantError {
	return &InvariantError{Table: table, msg: msg}
}

// IsInvariantError returns true if the error is an InvariantError.
func IsInvariantError(err error) bool {
	if err == nil {
		return false
	}
	var e *InvariantError
	return errors.As(err, &e) || errors.Is(err, ErrInvariant)
}

// AlreadyCommittedError is returned by Transaction.Commit on a
// transaction that was already committed.
type AlreadyCommittedError struct {
	TxID string
}

// Error returns the error string.
func (e *AlreadyCommittedError) Error() string {
	if e.TxID != "" {
		return fmt.Sprintf("joli: transaction %s already committed", e.TxID)
	}
	return "joli: transaction already committed"
}

// Is reports whether the target error matches AlreadyCommittedError.
func (e *AlreadyCommittedError) Is(err error) bool {
	return err == ErrAlreadyCommitted
}

// IsAlreadyCommitted returns true if the error is an AlreadyCommittedError.
func IsAlreadyCommitted(err error) bool {
	if err == nil {
		return false
	}
	var e *AlreadyCommittedError
	return errors.As(err, &e) || errors.Is(err, ErrAlreadyCommitted)
}

// NotFoundError represents an error when a record is not found.
type NotFoundError struct {
	table string
	field string
	value any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("joli: %s not found (%s=%v)", e.table, e.field, e.value)
	}
	return fmt.Sprintf("joli: %s not found", e.table)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Table returns the table that was searched.
func (e *NotFoundError) Table() string {
	return e.table
}

// NewNotFoundError returns a new NotFoundError for the given table and lookup.
func NewNotFoundError(table, field string, value any) *NotFoundError {
	return &NotFoundError{table: table, field: field, value: value}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}
