package app

import (
	"runtime/debug"
	"testing"
)

func TestBuildVersion(t *testing.T) {
	origVersion, origRead := Version, readBuildInfo
	t.Cleanup(func() {
		Version = origVersion
		readBuildInfo = origRead
	})

	tests := []struct {
		name   string
		in     string
		module string
		want   string
	}{
		{name: "defaults to dev", in: "", module: "(devel)", want: "dev"},
		{name: "trims value", in: " 1.2.3 ", module: "(devel)", want: "1.2.3"},
		{name: "falls back to module version", in: "dev", module: "v0.4.0", want: "v0.4.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = tt.in
			module := tt.module
			readBuildInfo = func() (*debug.BuildInfo, bool) {
				return &debug.BuildInfo{Main: debug.Module{Version: module}}, true
			}
			if got := BuildVersion(); got != tt.want {
				t.Fatalf("BuildVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildDateYMD(t *testing.T) {
	original := BuildDate
	t.Cleanup(func() {
		BuildDate = original
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "rfc3339", in: "2026-10-18T12:30:00Z", want: "2026-10-18"},
		{name: "date prefix", in: "2026-10-18_build", want: "2026-10-18"},
		{name: "unparseable kept", in: "yesterday", want: "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			BuildDate = tt.in
			if got := BuildDateYMD(); got != tt.want {
				t.Fatalf("BuildDateYMD() = %q, want %q", got, tt.want)
			}
		})
	}
}
