package ch

import (
	"context"
	"testing"
)

func TestOpen_BadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestClientInfo(t *testing.T) {
	t.Parallel()

	ci := clientInfo("supplysync", "crawl")
	if len(ci.Products) < 2 || ci.Products[0].Name != "supplysync" || ci.Products[0].Version == "" {
		t.Fatalf("products=%+v", ci.Products)
	}
	if ci.Products[1] != (product{Name: "role", Version: "crawl"}) {
		t.Fatalf("role=%+v", ci.Products[1])
	}
	for _, p := range clientInfo("", "").Products {
		if p.Name == "role" {
			t.Fatalf("empty tag should not add a role")
		}
	}
	if got := clientInfo("", "api").Products[0].Name; got != "supplysync" {
		t.Fatalf("default name=%q", got)
	}
}
