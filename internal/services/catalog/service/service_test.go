package service

import (
	"context"
	"errors"
	"testing"

	"supplysync/internal/services/catalog/domain"
	"supplysync/internal/services/catalog/repo"

	"github.com/jackc/pgx/v5/pgconn"
)

type failing struct{ err error }

func (f failing) List(context.Context, int64) ([]domain.Part, error) { return nil, f.err }

func TestListCanonical(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := repo.NewMemory()
	mem.Put(domain.Part{SupplierID: 1, ExternalID: "B", ContentHash: "hb"})
	mem.Put(domain.Part{SupplierID: 1, ExternalID: "A", ContentHash: "ha"})
	mem.Put(domain.Part{SupplierID: 1, ExternalID: "A", ContentHash: "ha2"})
	mem.Put(domain.Part{SupplierID: 2, ExternalID: "Z"})

	got, err := New(mem).ListCanonical(ctx, 1)
	if err != nil || len(got) != 2 || got[0].ExternalID != "A" || got[0].ContentHash != "ha2" {
		t.Fatalf("got=%+v err=%v", got, err)
	}
}

func TestListCanonical_Absent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	undefined := &pgconn.PgError{Code: "42P01", Message: `relation "canonical_parts" does not exist`}
	if _, err := New(failing{err: undefined}).ListCanonical(ctx, 1); !errors.Is(err, domain.ErrAbsent) {
		t.Fatalf("err=%v", err)
	}
	var nilMem *repo.Memory
	if _, err := New(nilMem).ListCanonical(ctx, 1); !errors.Is(err, domain.ErrAbsent) {
		t.Fatalf("err=%v", err)
	}

	boom := errors.New("conn reset")
	if _, err := New(failing{err: boom}).ListCanonical(ctx, 1); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}
