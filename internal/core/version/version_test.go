package version

import (
	"runtime/debug"
	"testing"

	kit "supplysync/internal/platform/testkit"
)

func TestInfo(t *testing.T) {
	kit.Serial(t)

	kit.Swap(t, &readBuildInfo, func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{GoVersion: "go1.25.0", Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "4f2a9c1"},
			{Key: "vcs.time", Value: "2026-10-01T08:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		}}, true
	})

	bi := Info("supplysync-crawl")
	if bi.Service != "supplysync-crawl" || bi.Version != "dev" || bi.GoVersion != "go1.25.0" {
		t.Fatalf("info=%+v", bi)
	}
	if bi.Commit != "4f2a9c1" || bi.Date != "2026-10-01T08:00:00Z" || !bi.Modified {
		t.Fatalf("vcs=%+v", bi)
	}

	kit.Swap(t, &commit, "stamped")
	if got := Info("x").Commit; got != "stamped" {
		t.Fatalf("linker value lost to vcs: %q", got)
	}

	kit.Swap(t, &readBuildInfo, func() (*debug.BuildInfo, bool) { return nil, false })
	if bi := Info("x"); bi.GoVersion != "" || bi.Date != "" {
		t.Fatalf("no build info=%+v", bi)
	}
}
