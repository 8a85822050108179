package errors

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
)

// MapSQLError classifies a low-level database driver error into the
// database family. The original message survives only in the technical
// message; nothing driver-specific reaches users.
func MapSQLError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	if errors.Is(err, sql.ErrNoRows) {
		return NewDatabaseError(KindDBRecordNotFound, err.Error()).WithCause(err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewDatabaseError(KindDBQueryFailed, err.Error()).WithCause(err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return mapPQError(pqErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewDatabaseError(KindDBConnectionFailed, err.Error()).WithCause(err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "bad connection"):
		return NewDatabaseError(KindDBConnectionFailed, err.Error()).WithCause(err)
	default:
		return NewDatabaseError(KindDBQueryFailed, err.Error()).WithCause(err)
	}
}

// mapPQError keys off the postgres SQLSTATE class rather than message text.
func mapPQError(pqErr *pq.Error) *AppError {
	code := string(pqErr.Code)
	switch {
	case code == "23505": // unique_violation
		return NewDuplicateEntryError(pqErr.Constraint).
			WithCause(pqErr).
			WithDetail("table", pqErr.Table)
	case strings.HasPrefix(code, "23"): // other integrity violations
		appErr := NewDatabaseError(KindDBQueryFailed, pqErr.Message).WithCause(pqErr)
		return appErr.WithDetail("constraint", pqErr.Constraint)
	case code == "42703", code == "42P01": // undefined column / table
		return NewDatabaseError(KindDBSchemaMismatch, pqErr.Message).WithCause(pqErr)
	case strings.HasPrefix(code, "08"): // connection exceptions
		return NewDatabaseError(KindDBConnectionFailed, pqErr.Message).WithCause(pqErr)
	case code == "57014": // query_canceled (statement timeout)
		return NewDatabaseError(KindDBQueryFailed, pqErr.Message).WithCause(pqErr)
	default:
		return NewDatabaseError(KindDBQueryFailed, pqErr.Message).WithCause(pqErr)
	}
}
