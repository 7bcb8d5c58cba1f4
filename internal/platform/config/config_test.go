package config

import (
	"slices"
	"testing"
	"time"

	kit "supplysync/internal/platform/testkit"
)

func TestPrefix(t *testing.T) {
	c := New().Prefix("CRAWLER_").Prefix("FETCH_")
	if got := c.key("TIMEOUT"); got != "CRAWLER_FETCH_TIMEOUT" {
		t.Fatalf("key=%q", got)
	}
	t.Setenv("CRAWLER_FETCH_TIMEOUT", " 20s ")
	if got := c.MustDuration("TIMEOUT"); got != 20*time.Second {
		t.Fatalf("MustDuration=%v", got)
	}
}

func TestMust(t *testing.T) {
	c := New().Prefix("SYNC_")
	t.Setenv("SYNC_NAME", "  supplysync ")
	t.Setenv("SYNC_WORKERS", " 8 ")
	t.Setenv("SYNC_LOGIN", "true")
	t.Setenv("SYNC_BASE", "https://parts.example.com/catalog")
	t.Setenv("SYNC_PORT", "4000")

	if got := c.MustString("NAME"); got != "supplysync" {
		t.Fatalf("MustString=%q", got)
	}
	if got := c.MustInt("WORKERS"); got != 8 {
		t.Fatalf("MustInt=%d", got)
	}
	if !c.MustBool("LOGIN") {
		t.Fatalf("MustBool=false")
	}
	if u := c.MustURL("BASE"); u.Host != "parts.example.com" || u.Path != "/catalog" {
		t.Fatalf("MustURL=%v", u)
	}
	if got := c.MustPort("PORT"); got != ":4000" {
		t.Fatalf("MustPort=%q", got)
	}
	c.Require("NAME", "PORT")
}

func TestMust_Panics(t *testing.T) {
	c := New().Prefix("BAD_")
	t.Setenv("BAD_INT", "eight")
	t.Setenv("BAD_BOOL", "yes please")
	t.Setenv("BAD_DUR", "soon")
	t.Setenv("BAD_URL", "/relative/path")
	t.Setenv("BAD_PORT", "70000")
	t.Setenv("BAD_BLANK", "   ")

	for name, fn := range map[string]func(){
		"missing":    func() { _ = c.MustString("NOPE") },
		"blank":      func() { _ = c.MustString("BLANK") },
		"int":        func() { _ = c.MustInt("INT") },
		"bool":       func() { _ = c.MustBool("BOOL") },
		"duration":   func() { _ = c.MustDuration("DUR") },
		"url":        func() { _ = c.MustURL("URL") },
		"port":       func() { _ = c.MustPort("PORT") },
		"require":    func() { c.Require("INT", "NOPE") },
		"require ws": func() { c.Require("BLANK") },
		"enum":       func() { _ = c.MayEnum("INT", "json", "json", "console") },
	} {
		t.Run(name, func(t *testing.T) { kit.MustPanic(t, fn) })
	}
}

func TestMay(t *testing.T) {
	c := New().Prefix("OPT_")
	t.Setenv("OPT_MAX_PAGES", " 250 ")
	t.Setenv("OPT_BAD_INT", "many")
	t.Setenv("OPT_AUTO", "false")
	t.Setenv("OPT_BAD_BOOL", "nah")
	t.Setenv("OPT_DELAY", "150ms")
	t.Setenv("OPT_BAD_DELAY", "later")
	t.Setenv("OPT_TAG", " nightly ")

	if got := c.MayInt("MAX_PAGES", 1); got != 250 {
		t.Fatalf("MayInt=%d", got)
	}
	if got := c.MayInt("BAD_INT", 3); got != 3 {
		t.Fatalf("MayInt invalid=%d", got)
	}
	if got := c.MayInt("UNSET", 9); got != 9 {
		t.Fatalf("MayInt unset=%d", got)
	}
	if c.MayBool("AUTO", true) || !c.MayBool("BAD_BOOL", true) {
		t.Fatalf("MayBool")
	}
	if got := c.MayDuration("DELAY", time.Second); got != 150*time.Millisecond {
		t.Fatalf("MayDuration=%v", got)
	}
	if got := c.MayDuration("BAD_DELAY", time.Minute); got != time.Minute {
		t.Fatalf("MayDuration invalid=%v", got)
	}
	if got := c.MayString("TAG", "x"); got != "nightly" {
		t.Fatalf("MayString=%q", got)
	}
	if got := c.MayString("UNSET", "def"); got != "def" {
		t.Fatalf("MayString unset=%q", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	t.Setenv("CSV_ORIGINS", " https://a.example, https://b.example , ,")
	t.Setenv("CSV_BLANKS", " , ,  ,")

	cases := []struct {
		key  string
		def  []string
		want []string
	}{
		{"ORIGINS", nil, []string{"https://a.example", "https://b.example"}},
		{"BLANKS", []string{"fallback"}, []string{"fallback"}},
		{"UNSET", []string{"a", "b"}, []string{"a", "b"}},
		{"UNSET", nil, nil},
	}
	for _, tc := range cases {
		if got := c.MayCSV(tc.key, tc.def); !slices.Equal(got, tc.want) {
			t.Fatalf("MayCSV(%s)=%#v want %#v", tc.key, got, tc.want)
		}
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("ENUM_")
	t.Setenv("ENUM_FMT", "Console")

	if got := c.MayEnum("FMT", "json", "json", "console"); got != "console" {
		t.Fatalf("MayEnum=%q", got)
	}
	if got := c.MayEnum("UNSET", "json", "json", "console"); got != "json" {
		t.Fatalf("MayEnum default=%q", got)
	}
	if got := c.MayEnum("UNSET", "", "json", "console"); got != "" {
		t.Fatalf("MayEnum empty default=%q", got)
	}
}
