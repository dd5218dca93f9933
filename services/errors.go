package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorKind classifies service failures; controllers map each kind to an HTTP status.
type ErrorKind string

const (
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindConflict        ErrorKind = "CONFLICT"
	KindInternal        ErrorKind = "INTERNAL"
)

// pgUniqueViolation is the PostgreSQL unique_violation SQLSTATE
const pgUniqueViolation = "23505"

// OrderError is returned by the order and defect services.
// Code is a stable machine-readable identifier; Message is shown to the user.
type OrderError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details []string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, code, format string, args ...interface{}) *OrderError {
	return &OrderError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(code, format string, args ...interface{}) *OrderError {
	return newError(KindInvalidArgument, code, format, args...)
}

func notFound(code, format string, args ...interface{}) *OrderError {
	return newError(KindNotFound, code, format, args...)
}

func conflict(code, format string, args ...interface{}) *OrderError {
	return newError(KindConflict, code, format, args...)
}

func internal(message string, err error) *OrderError {
	return &OrderError{Kind: KindInternal, Code: "DATABASE_ERROR", Message: message, Err: err}
}

// KindOf returns the kind of err; anything that is not an *OrderError is internal
func KindOf(err error) ErrorKind {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an *OrderError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// isDuplicateKey detects unique constraint violations from either driver
// (works with both PostgreSQL and SQLite)
func isDuplicateKey(err error) bool {
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
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique constraint")
}
