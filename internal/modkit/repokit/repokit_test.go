package repokit

import (
	"context"
	"errors"
	"testing"
	"time"

	kit "supplysync/internal/platform/testkit"

	"github.com/jackc/pgx/v5/pgconn"
)

type fakeQ struct{ Queryer }

type fakeTx struct {
	Queryer
	errs  []error
	calls int
}

func (f *fakeTx) Tx(_ context.Context, fn func(Queryer) error) error {
	f.calls++
	if err := fn(fakeQ{}); err != nil {
		return err
	}
	if len(f.errs) >= f.calls {
		return f.errs[f.calls-1]
	}
	return nil
}

func TestWithTx(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &txBackoff, time.Millisecond)

	serialization := &pgconn.PgError{Code: "40001"}
	unique := &pgconn.PgError{Code: "23505"}
	boom := errors.New("boom")
	cases := []struct {
		name      string
		errs      []error
		fnErr     error
		wantCalls int
		wantErr   error
	}{
		{"ok", nil, nil, 1, nil},
		{"fn error is final", nil, boom, 1, boom},
		{"retried until commit", []error{serialization, serialization}, nil, 3, nil},
		{"gives up", []error{serialization, serialization, serialization, nil}, nil, TxAttempts, serialization},
		{"unique violation not retried", []error{unique}, nil, 1, unique},
	}
	for _, c := range cases {
		tx := &fakeTx{errs: c.errs}
		err := WithTx(context.Background(), tx, func(Queryer) error { return c.fnErr })
		if tx.calls != c.wantCalls {
			t.Fatalf("%s: calls=%d want %d", c.name, tx.calls, c.wantCalls)
		}
		if !errors.Is(err, c.wantErr) {
			t.Fatalf("%s: err=%v want %v", c.name, err, c.wantErr)
		}
	}
}

func TestWithTx_StopsOnCancel(t *testing.T) {
	kit.Serial(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tx := &fakeTx{errs: []error{&pgconn.PgError{Code: "40P01"}}}
	if err := WithTx(ctx, tx, func(Queryer) error { return nil }); err == nil || tx.calls != 1 {
		t.Fatalf("err=%v calls=%d", err, tx.calls)
	}
}
