package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlState describes how one Postgres SQLSTATE surfaces to callers
type sqlState struct {
	code  ErrorCode
	retry bool
}

var sqlStates = map[string]sqlState{
	"23505": {code: ErrorCodeDuplicateKey},    // unique_violation
	"23503": {code: ErrorCodeInvalidArgument}, // foreign_key_violation, e.g. an unknown supplier
	"23502": {code: ErrorCodeValidation},      // not_null_violation
	"23514": {code: ErrorCodeValidation},      // check_violation
	"22001": {code: ErrorCodeInvalidArgument}, // string_data_right_truncation
	"22P02": {code: ErrorCodeInvalidArgument}, // invalid_text_representation
	"40001": {code: ErrorCodeDB, retry: true}, // serialization_failure
	"40P01": {code: ErrorCodeDB, retry: true}, // deadlock_detected
	"55P03": {code: ErrorCodeDB, retry: true}, // lock_not_available
	"25006": {code: ErrorCodeUnavailable},     // read_only_sql_transaction
	"57P03": {code: ErrorCodeUnavailable},     // cannot_connect_now
}

const (
	sqlUniqueViolation = "23505"
	sqlUndefinedTable  = "42P01"
)

// retryText covers commit and timeout failures pgx reports without a PgError
var retryText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"canceling statement due to statement timeout",
	"could not obtain lock on row",
	"terminating connection due to administrator command",
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	ok := stderrs.As(err, &pgErr)
	return pgErr, ok
}

func isSQLState(err error, state string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == state
}

// IsDuplicateKey reports a unique constraint violation anywhere in the chain
func IsDuplicateKey(err error) bool { return isSQLState(err, sqlUniqueViolation) }

// IsUndefinedTable reports a missing relation, which is what a supplier
// without a canonical catalog table looks like
func IsUndefinedTable(err error) bool { return isSQLState(err, sqlUndefinedTable) }

// DBErrorCode maps a Postgres error to an ErrorCode. ok is false when err
// carries no PgError
func DBErrorCode(err error) (code ErrorCode, ok bool) {
	pgErr, ok := pgError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	if s, known := sqlStates[pgErr.Code]; known {
		return s.code, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err under msg with the code its SQLSTATE maps to. nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		// already classified further down
		return Wrap(err, CodeOf(err), msg)
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// FromPostgresf is FromPostgres with a format
func FromPostgresf(err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromPostgres(err, fmt.Sprintf(format, a...))
}

// FromPostgresWithField is FromPostgres plus the offending column, taken from
// the PgError column or the last segment of its constraint name
// (supplier_schedules_at_check gives "check" and is skipped, import_runs_supplier gives "supplier")
func FromPostgresWithField(err error, msg string) error {
	out := FromPostgres(err, msg)
	pgErr, ok := pgError(err)
	if !ok {
		return out
	}
	if col := strings.TrimSpace(pgErr.ColumnName); col != "" {
		return WithField(out, col)
	}
	c := strings.TrimSpace(pgErr.ConstraintName)
	tok := c[strings.LastIndex(c, "_")+1:]
	switch tok {
	case "", "key", "fkey", "pkey", "check":
		return out
	}
	return WithField(out, tok)
}

// Retryable reports whether running the same transaction again may succeed.
// Local cancellation never is
func Retryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgErr, ok := pgError(err); ok {
		return sqlStates[pgErr.Code].retry
	}
	s := strings.ToLower(Root(err).Error())
	for _, t := range retryText {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
