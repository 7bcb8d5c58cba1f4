package urlnorm

import "testing"

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		base string
		want string
		ok   bool
	}{
		{"forces https", "http://shop.example.com/p/rod-1", "", "https://shop.example.com/p/rod-1", true},
		{"strips fragment", "https://shop.example.com/p/rod-1#specs", "", "https://shop.example.com/p/rod-1", true},
		{"trims trailing slash", "https://shop.example.com/p/rod-1/", "", "https://shop.example.com/p/rod-1", true},
		{"root stays slash", "https://shop.example.com/", "", "https://shop.example.com/", true},
		{"empty path becomes root", "https://shop.example.com", "", "https://shop.example.com/", true},
		{"drops tracking keys", "https://shop.example.com/c?utm_source=x&UTM_Medium=y&gclid=1&fbclid=2&page=2", "", "https://shop.example.com/c?page=2", true},
		{"sorts query", "https://shop.example.com/c?b=2&a=1", "", "https://shop.example.com/c?a=1&b=2", true},
		{"lowercases host and drops port", "https://Shop.Example.com:443/X", "", "https://shop.example.com/X", true},
		{"keeps custom port", "http://127.0.0.1:8080/p/1", "", "https://127.0.0.1:8080/p/1", true},
		{"resolves relative", "../p/rod-2?utm_campaign=z", "https://shop.example.com/c/blanks/", "https://shop.example.com/c/p/rod-2", true},
		{"protocol relative", "//shop.example.com/p/3", "", "https://shop.example.com/p/3", true},
		{"relative without base", "/p/3", "", "", false},
		{"mailto rejected", "mailto:sales@example.com", "", "", false},
		{"javascript rejected", "javascript:void(0)", "https://shop.example.com/", "", false},
		{"garbage rejected", "http://[::1", "", "", false},
		{"blank rejected", "   ", "", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Normalize(tc.raw, tc.base)
			if ok != tc.ok {
				t.Fatalf("Normalize(%q,%q) ok=%v want %v (got %q)", tc.raw, tc.base, ok, tc.ok, got)
			}
			if got != tc.want {
				t.Fatalf("Normalize(%q,%q)=%q want %q", tc.raw, tc.base, got, tc.want)
			}
		})
	}
}

func TestNormalize_FixedPoint(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"http://Shop.Example.com/p/rod-1/?utm_source=a&z=1&a=2#frag",
		"https://shop.example.com/",
		"https://shop.example.com/p/a%20b/",
		"https://shop.example.com/search?q=rod+blank&flag",
		"https://shop.example.com/p/%2Fweird",
		"http://shop.example.com:80//double//",
	}
	for _, in := range inputs {
		once, ok := Normalize(in, "")
		if !ok {
			t.Fatalf("first pass failed for %q", in)
		}
		twice, ok := Normalize(once, "")
		if !ok {
			t.Fatalf("second pass failed for %q", once)
		}
		if once != twice {
			t.Fatalf("not a fixed point: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestSameSite(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want bool
	}{
		{"https://shop.example.com/p/1", "https://www.example.com/", true},
		{"https://shop.example.com/p/1", "https://cdn.other.com/x.js", false},
		{"https://a.example.co.uk/", "https://b.example.co.uk/", true},
		{"https://example.co.uk/", "https://other.co.uk/", false},
		{"http://127.0.0.1:9000/a", "http://127.0.0.1:9000/b", true},
		{"http://127.0.0.1:9000/a", "http://127.0.0.2:9000/b", false},
		{"not a url", "https://example.com/", false},
	}
	for _, tc := range cases {
		if got := SameSite(tc.a, tc.b); got != tc.want {
			t.Fatalf("SameSite(%q,%q)=%v want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMustNormalize_Panics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	_ = MustNormalize("ftp://example.com/file")
}
