package sqlrepo

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by generated and executed repository methods.
var (
	// ErrNotFound is returned when a single-row method reads no row and
	// its result is not nullable.
	ErrNotFound = errors.New("sqlrepo: no rows in result")

	// ErrNotSingular is returned when a single-row method reads a second row.
	ErrNotSingular = errors.New("sqlrepo: more than one row in result")

	// ErrOptimisticLock is returned when an optimistic save or delete
	// affects a different number of rows than expected.
	ErrOptimisticLock = errors.New("sqlrepo: optimistic lock failed")
)

// NotFoundError is returned when a method that expects one row reads none.
type NotFoundError struct {
	label string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sqlrepo: %s: no rows in result", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(err, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the method label, e.g. "ItemRepository.findById".
func (e *NotFoundError) Label() string {
	return e.label
}

// NewNotFoundError returns a new NotFoundError for the given method.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// NotSingularError is returned when a method that expects one row reads more.
type NotSingularError struct {
	label string
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	return fmt.Sprintf("sqlrepo: %s: more than one row in result", e.label)
}

// Is reports whether the target error matches NotSingularError.
func (e *NotSingularError) Is(err error) bool {
	return err == ErrNotSingular
}

// Label returns the method label.
func (e *NotSingularError) Label() string {
	return e.label
}

// NewNotSingularError returns a new NotSingularError for the given method.
func NewNotSingularError(label string) *NotSingularError {
	return &NotSingularError{label: label}
}

// IsNotSingular returns true if the error is a NotSingularError.
func IsNotSingular(err error) bool {
	if err == nil {
		return false
	}
	var e *NotSingularError
	return errors.As(err, &e) || errors.Is(err, ErrNotSingular)
}

// OptimisticLockError reports a version conflict: the statement affected
// Affected rows where Expected were required.
type OptimisticLockError struct {
	Label    string
	Expected int64
	Affected int64
}

// Error returns the error string.
func (e *OptimisticLockError) Error() string {
	return fmt.Sprintf("sqlrepo: %s: optimistic lock failed: %d of %d rows affected", e.Label, e.Affected, e.Expected)
}

// Is reports whether the target error matches OptimisticLockError.
func (e *OptimisticLockError) Is(err error) bool {
	return err == ErrOptimisticLock
}

// NewOptimisticLockError returns a new OptimisticLockError.
func NewOptimisticLockError(label string, expected, affected int64) *OptimisticLockError {
	return &OptimisticLockError{Label: label, Expected: expected, Affected: affected}
}

// IsOptimisticLock returns true if the error is an OptimisticLockError.
func IsOptimisticLock(err error) bool {
	if err == nil {
		return false
	}
	var e *OptimisticLockError
	return errors.As(err, &e) || errors.Is(err, ErrOptimisticLock)
}

// CheckAffected returns an OptimisticLockError when affected differs
// from expected.
func CheckAffected(label string, expected, affected int64) error {
	if expected != affected {
		return NewOptimisticLockError(label, expected, affected)
	}
	return nil
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("sqlrepo: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("sqlrepo: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// QueryError wraps a driver error with the method that issued the query.
type QueryError struct {
	Label string // Method label, e.g. "ItemRepository.save"
	Query string
	Err   error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	return fmt.Sprintf("sqlrepo: %s: %v", e.Label, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(label, query string, err error) *QueryError {
	return &QueryError{Label: label, Query: query, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}
