package crawler

import (
	"testing"

	"supplysync/internal/adapters/fetch"
)

func TestFrontier_DedupAndDetailFirst(t *testing.T) {
	t.Parallel()

	f := newFrontier(10)
	base := "https://www.blanks.example.com"
	if _, ok := f.push("/collections/all", base, KindList); !ok {
		t.Fatalf("first push refused")
	}
	if _, ok := f.push("/collections/all/?utm_source=x#top", base, KindList); ok {
		t.Fatalf("normalized duplicate accepted")
	}
	if _, ok := f.push("javascript:void(0)", base, KindList); ok {
		t.Fatalf("non http url accepted")
	}
	f.push("/products/a", base, KindDetail)

	it, ok := f.next()
	if !ok || it.kind != KindDetail {
		t.Fatalf("detail should be served first, got %+v", it)
	}
	f.done()
	it, ok = f.next()
	if !ok || it.url != base+"/collections/all" {
		t.Fatalf("got %+v", it)
	}
	f.done()
	if _, ok := f.next(); ok {
		t.Fatalf("drained frontier should stop")
	}
	if f.size() != 2 {
		t.Fatalf("size=%d", f.size())
	}
}

func TestFrontier_LimitAndClose(t *testing.T) {
	t.Parallel()

	f := newFrontier(1)
	f.push("https://a.example.com/1", "", KindSeed)
	f.push("https://a.example.com/2", "", KindSeed)
	if _, ok := f.next(); !ok {
		t.Fatalf("first item withheld")
	}
	f.done()
	if _, ok := f.next(); ok {
		t.Fatalf("page limit ignored")
	}

	g := newFrontier(10)
	g.close()
	if _, ok := g.push("https://a.example.com/1", "", KindSeed); ok {
		t.Fatalf("closed frontier accepted a url")
	}
	if _, ok := g.next(); ok {
		t.Fatalf("closed frontier handed out an item")
	}
}

func TestCapturedProducts(t *testing.T) {
	t.Parallel()

	tpl := template(t, "https://www.blanks.example.com")
	p := &fetch.Page{
		URL: "https://www.blanks.example.com/collections/rods",
		Captured: []fetch.Captured{
			{URL: "https://www.blanks.example.com/search/a.json", ContentType: "application/json",
				Body: []byte(`{"hits":[{"u":"/products/a"},{"nested":["https://www.blanks.example.com/products/b","/about"]}]}`)},
			{URL: "https://www.blanks.example.com/search/page.html", ContentType: "text/html",
				Body: []byte(`<a href="/products/c">c</a><a href='/products/a'>dup</a><a href="https://other.example.org/products/d">x</a>`)},
			{URL: "https://www.blanks.example.com/cart.json", ContentType: "application/json",
				Body: []byte(`{"u":"/products/e"}`)},
		},
	}
	got := map[string]bool{}
	for _, u := range capturedProducts(tpl, p) {
		got[u] = true
	}
	for _, want := range []string{"/products/a", "/products/b", "/products/c"} {
		if !got["https://www.blanks.example.com"+want] {
			t.Fatalf("missing %s in %v", want, got)
		}
	}
	if len(got) != 3 {
		t.Fatalf("unexpected urls %v", got)
	}
}
