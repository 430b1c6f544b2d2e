package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFillFromModuleInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/matzehuels/keyplate", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
		},
	}

	got := fill(Info{Version: "dev", Commit: "none", Date: "unknown"}, bi)
	if got.Version != "v0.3.1" || got.Commit != "abc123" || got.Date != "2024-05-01T10:00:00Z" {
		t.Errorf("fill() = %+v", got)
	}
}

func TestFillKeepsLdflags(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}
	in := Info{Version: "v1.0.0", Commit: "fff", Date: "2025-01-01"}
	if got := fill(in, bi); got != in {
		t.Errorf("fill() = %+v, want ldflags values kept", got)
	}
}

func TestFillIgnoresDevel(t *testing.T) {
	bi := &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}
	if got := fill(Info{Version: "dev"}, bi); got.Version != "dev" {
		t.Errorf("Version = %q, want dev for a local build", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	for _, want := range []string{"{{.Name}} version", "commit:", "built:", "go: go"} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}
	if got := Get().String(); !strings.HasPrefix(got, "version: ") {
		t.Errorf("String() = %q", got)
	}
}
