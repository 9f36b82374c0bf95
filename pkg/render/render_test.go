package render

import (
	"strings"
	"testing"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/core"
	"github.com/scour-dev/scour/pkg/events"
)

func TestVerdictsOrdering(t *testing.T) {
	out := Verdicts(core.VerdictMap{
		"s3://b/excluded": {},
		"s3://b/match":    {Included: true, Matches: true},
		"s3://b/included": {Included: true},
	})

	matchIdx := strings.Index(out, "s3://b/match")
	includedIdx := strings.Index(out, "s3://b/included")
	excludedIdx := strings.Index(out, "s3://b/excluded")
	if matchIdx < 0 || includedIdx < 0 || excludedIdx < 0 {
		t.Fatalf("missing locations in output:\n%s", out)
	}
	if !(matchIdx < includedIdx && includedIdx < excludedIdx) {
		t.Errorf("expected match < included < excluded ordering:\n%s", out)
	}
}

func TestVerdictsEmpty(t *testing.T) {
	out := Verdicts(core.VerdictMap{})
	if !strings.Contains(out, "No locations") {
		t.Errorf("unexpected empty output: %q", out)
	}
}

func TestSummary(t *testing.T) {
	out := Summary("needle", core.VerdictMap{
		"a": {Included: true, Matches: true},
		"b": {Included: true},
		"c": {},
	}, true)

	if !strings.Contains(out, "1/3 matched") {
		t.Errorf("expected match count in summary: %q", out)
	}
	if !strings.Contains(out, "[cached]") {
		t.Errorf("expected cached marker: %q", out)
	}
}

func TestEvent(t *testing.T) {
	if out := Event(events.Progress(0.5)); !strings.Contains(out, "50%") {
		t.Errorf("unexpected progress rendering: %q", out)
	}
	out := Event(events.Error("boom", events.IDArtifactHandleFailed))
	if !strings.Contains(out, "boom") || !strings.Contains(out, events.IDArtifactHandleFailed) {
		t.Errorf("unexpected error rendering: %q", out)
	}
}

func TestStats(t *testing.T) {
	out := Stats(cache.Stats{Provider: "sqlite", Entries: 1500, SizeBytes: 2048})
	if !strings.Contains(out, "Sqlite") {
		t.Errorf("expected title-cased provider: %q", out)
	}
	if !strings.Contains(out, "1.5K") {
		t.Errorf("expected humanized entry count: %q", out)
	}
	if !strings.Contains(out, "2.0 KiB") {
		t.Errorf("expected humanized size: %q", out)
	}
}
