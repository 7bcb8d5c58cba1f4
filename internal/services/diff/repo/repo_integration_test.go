//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"supplysync/internal/platform/store/pgtest"
	"supplysync/internal/services/diff/domain"

	"github.com/google/uuid"
)

func TestPG_RunsAndDiffs(t *testing.T) {
	st := NewStore(pgtest.Start(t, false))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	mkRun := func() uuid.UUID {
		id := uuid.New()
		if err := st.CreateRun(ctx, domain.Run{ID: id, SupplierID: 5, Status: domain.StatusStarted, StartedAt: now,
			Summary: domain.Summary{Type: domain.Full, Notes: "it"}}); err != nil {
			t.Fatal(err)
		}
		return id
	}
	first, second := mkRun(), mkRun()

	add := domain.Diff{ID: uuid.New(), RunID: first, SupplierID: 5, ExternalID: "A", Type: domain.Add,
		After: domain.Snapshot{"contentHash": "hA", "priceMsrp": json.Number("10.5")}, CreatedAt: now}
	del := domain.Diff{ID: uuid.New(), RunID: first, SupplierID: 5, ExternalID: "Z", Type: domain.Delete,
		Before: domain.Snapshot{"contentHash": "hZ", domain.MissCountKey: 1}, CreatedAt: now}
	err := st.Atomic(ctx, func(s Storage) error {
		if _, err := s.DeleteUnresolved(ctx, first); err != nil {
			return err
		}
		return s.InsertDiffs(ctx, []domain.Diff{add, del})
	})
	if err != nil {
		t.Fatal(err)
	}

	open, err := st.ListDiffs(ctx, first, domain.Filter{Actionable: true, DeleteAfter: 2})
	if err != nil || len(open) != 1 || open[0].ExternalID != "A" {
		t.Fatalf("actionable=%+v err=%v", open, err)
	}
	if open[0].After["priceMsrp"] != json.Number("10.5") || open[0].Before != nil {
		t.Fatalf("snapshot=%+v", open[0])
	}

	if err := st.SetResolution(ctx, add.ID, domain.Approve, add.After, now); err != nil {
		t.Fatal(err)
	}
	hashes, err := st.ApprovedHashes(ctx, 5, []string{"A", "Z"})
	if err != nil || hashes["A"] != "hA" || len(hashes) != 1 {
		t.Fatalf("hashes=%v err=%v", hashes, err)
	}
	resolved, err := st.ResolvedIDs(ctx, first)
	if _, ok := resolved["A"]; err != nil || !ok || len(resolved) != 1 {
		t.Fatalf("resolved=%v err=%v", resolved, err)
	}

	again := domain.Diff{ID: uuid.New(), RunID: second, SupplierID: 5, ExternalID: "A", Type: domain.Change,
		Before: domain.Snapshot{"contentHash": "x"}, After: domain.Snapshot{"contentHash": "y"}, CreatedAt: now}
	if err := st.InsertDiffs(ctx, []domain.Diff{again}); err != nil {
		t.Fatal(err)
	}
	n, err := st.MarkSkipSuccessful(ctx, 5, second, now)
	if err != nil || n != 1 {
		t.Fatalf("skipped=%d err=%v", n, err)
	}

	if err := st.FinishRun(ctx, second, domain.StatusSuccess, domain.Summary{Type: domain.Full, Counts: domain.Counts{Skipped: 1}}, now); err != nil {
		t.Fatal(err)
	}
	run, err := st.GetRun(ctx, second)
	if err != nil || run.Status != domain.StatusSuccess || run.Summary.Counts.Skipped != 1 || run.FinishedAt == nil {
		t.Fatalf("run=%+v err=%v", run, err)
	}
	got, _ := st.GetDiff(ctx, again.ID)
	if got.Resolution == nil || *got.Resolution != domain.SkipSuccessful {
		t.Fatalf("diff=%+v", got)
	}
}
