//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/store/pgtest"
	"supplysync/internal/services/staging/domain"

	"github.com/shopspring/decimal"
)

func TestPG_UpsertListPrice(t *testing.T) {
	db := pgtest.Start(t, false)
	st := NewPG().Bind(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	msrp := decimal.RequireFromString("129.95")
	rec := domain.Record{
		SupplierID:  2,
		ExternalID:  "RB-1",
		Title:       "Blank",
		Images:      []string{"https://cdn.example.com/1.jpg"},
		RawSpecs:    map[string]string{"power": "M"},
		PriceMsrp:   &msrp,
		SourceURL:   "https://shop.example.com/p/rb-1",
		ContentHash: "h1",
		FetchedAt:   now,
	}
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.PriceMsrp, rec.ContentHash = nil, "h2"
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := st.Get(ctx, 2, "RB-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ContentHash != "h2" || got.PriceMsrp == nil || !got.PriceMsrp.Equal(msrp) || got.RawSpecs["power"] != "M" {
		t.Fatalf("got=%+v", got)
	}

	avail := "backorder"
	if err := st.UpdatePriceAvail(ctx, 2, "RB-1", domain.PriceAvail{Availability: &avail}, now); err != nil {
		t.Fatal(err)
	}
	if err := st.UpdatePriceAvail(ctx, 2, "nope", domain.PriceAvail{}, now); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err=%v", err)
	}
	list, _ := st.List(ctx, 2)
	if len(list) != 1 || *list[0].Availability != avail || list[0].ContentHash != "h2" {
		t.Fatalf("list=%+v", list)
	}
}
