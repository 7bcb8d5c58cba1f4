//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"supplysync/internal/platform/store/pgtest"
	"supplysync/internal/services/sources/domain"

	"github.com/google/uuid"
)

func TestPG_StrategiesAndMisses(t *testing.T) {
	db := pgtest.Start(t, false)
	st := NewPG().Bind(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	r := domain.Registration{SupplierID: 9, URL: "https://shop.example.com/p/a", OriginKind: domain.OriginManual, At: now}
	res, err := st.UpsertOnConflict(ctx, r)
	if err != nil || res != domain.ResultInserted {
		t.Fatalf("first upsert=%s err=%v", res, err)
	}
	r.OriginKind, r.At = domain.OriginDiscovered, now.Add(time.Minute)
	if res, err = st.UpsertOnConflict(ctx, r); err != nil || res != domain.ResultUpdated {
		t.Fatalf("second upsert=%s err=%v", res, err)
	}
	ok, err := st.UpdateBySupplierURL(ctx, r)
	if err != nil || !ok {
		t.Fatalf("update by url ok=%v err=%v", ok, err)
	}
	if err := st.Insert(ctx, uuid.New(), r); err == nil {
		t.Fatalf("expected unique violation on plain insert")
	}

	if err := st.LinkExternalID(ctx, 9, r.URL, "A-1"); err != nil {
		t.Fatal(err)
	}
	_ = st.LinkExternalID(ctx, 9, r.URL, "B-2")

	srcs, err := st.ListActive(ctx, 9, nil)
	if err != nil || len(srcs) != 1 {
		t.Fatalf("list=%v err=%v", srcs, err)
	}
	if srcs[0].OriginKind != domain.OriginManual || *srcs[0].ExternalID != "A-1" {
		t.Fatalf("source=%+v", srcs[0])
	}

	got, err := st.IncrementMisses(ctx, 9, []string{"A-1", "GONE"})
	if err != nil || got["A-1"] != 1 || got["GONE"] != 1 {
		t.Fatalf("misses=%v err=%v", got, err)
	}
	if err := st.ResetMisses(ctx, 9, []string{"A-1", "GONE"}); err != nil {
		t.Fatal(err)
	}
	got, _ = st.IncrementMisses(ctx, 9, []string{"GONE"})
	if got["GONE"] != 1 {
		t.Fatalf("reset not applied: %v", got)
	}
}
