package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func pg(code, col, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ColumnName: col, ConstraintName: constraint}
}

func TestDBErrorCode(t *testing.T) {
	t.Parallel()

	cases := map[string]ErrorCode{
		"23505": ErrorCodeDuplicateKey,
		"23503": ErrorCodeInvalidArgument,
		"23502": ErrorCodeValidation,
		"23514": ErrorCodeValidation,
		"22001": ErrorCodeInvalidArgument,
		"22P02": ErrorCodeInvalidArgument,
		"40001": ErrorCodeDB,
		"40P01": ErrorCodeDB,
		"25006": ErrorCodeUnavailable,
		"57P03": ErrorCodeUnavailable,
		"XX000": ErrorCodeDB,
	}
	for state, want := range cases {
		got, ok := DBErrorCode(fmt.Errorf("exec: %w", pg(state, "", "")))
		if !ok || got != want {
			t.Fatalf("DBErrorCode(%s) = %v %v, want %v", state, got, ok, want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("nope")); ok {
		t.Fatalf("ok for a non-pg error")
	}
}

func TestFromPostgres(t *testing.T) {
	t.Parallel()

	if FromPostgres(nil, "x") != nil || FromPostgresf(nil, "x %d", 1) != nil {
		t.Fatalf("nil must stay nil")
	}
	if err := FromPostgresf(pg("23505", "", ""), "stage %s", "RB-1"); !IsCode(err, ErrorCodeDuplicateKey) {
		t.Fatalf("code = %v", CodeOf(err))
	}
	if err := FromPostgres(stderrs.New("conn reset"), "load staging"); !IsCode(err, ErrorCodeDB) {
		t.Fatalf("foreign code = %v", CodeOf(err))
	}
	if err := FromPostgres(ErrNotFound, "resolve diff"); !IsCode(err, ErrorCodeNotFound) {
		t.Fatalf("classified error recoded to %v", CodeOf(err))
	}
}

func TestFromPostgresWithField(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  *pgconn.PgError
		want string
	}{
		{pg("23502", "external_id", ""), "external_id"},
		{pg("23503", "", "import_runs_supplier"), "supplier"},
		{pg("23505", "", "staging_records_pkey"), ""},
		{pg("23514", "", "supplier_schedules_at_check"), ""},
		{pg("23505", "", ""), ""},
	}
	for _, c := range cases {
		e, ok := As(FromPostgresWithField(c.err, "insert"))
		if !ok || e.Field() != c.want {
			t.Fatalf("%s/%s: field = %q, want %q", c.err.ColumnName, c.err.ConstraintName, e.Field(), c.want)
		}
	}
	if e, _ := As(FromPostgresWithField(stderrs.New("x"), "insert")); e.Field() != "" {
		t.Fatalf("field from a non-pg error: %q", e.Field())
	}
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	yes := []error{
		pg("40001", "", ""),
		fmt.Errorf("tx: %w", pg("40P01", "", "")),
		pg("55P03", "", ""),
		stderrs.New("commit unexpectedly resulted in rollback"),
	}
	no := []error{
		nil,
		pg("23505", "", ""),
		stderrs.New("nope"),
		fmt.Errorf("tx: %w", context.Canceled),
	}
	for _, err := range yes {
		if !Retryable(err) {
			t.Fatalf("%v should be retryable", err)
		}
	}
	for _, err := range no {
		if Retryable(err) {
			t.Fatalf("%v should not be retryable", err)
		}
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	if !IsUndefinedTable(Wrap(pg("42P01", "", ""), ErrorCodeDB, "select canonical")) {
		t.Fatalf("wrapped 42P01 not undefined table")
	}
	if IsUndefinedTable(pg("23505", "", "")) || IsUndefinedTable(stderrs.New("relation missing")) {
		t.Fatalf("unexpected undefined table match")
	}
	if !IsDuplicateKey(fmt.Errorf("insert: %w", pg("23505", "", ""))) || IsDuplicateKey(pg("23503", "", "")) {
		t.Fatalf("duplicate key predicate")
	}
}
