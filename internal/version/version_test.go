package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	origVersion, origCommit := Version, Commit
	defer func() { Version, Commit = origVersion, origCommit }()

	tests := []struct {
		commit string
		want   string
	}{
		{"unknown", "1.0.0"},
		{"", "1.0.0"},
		{"1234567", "1.0.0"},
		{"12345678", "1.0.0 (1234567)"},
		{"abc1234567890", "1.0.0 (abc1234)"},
	}
	for _, tt := range tests {
		t.Run("commit="+tt.commit, func(t *testing.T) {
			Version, Commit = "1.0.0", tt.commit
			if got := Info(); got != tt.want {
				t.Errorf("Info() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFull(t *testing.T) {
	origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
	defer func() {
		Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
	}()

	Version = "1.2.3"
	Commit = "abcdef123456"
	BuildDate = "2026-01-15"

	got := Full()
	for _, part := range []string{
		"gdgen version 1.2.3",
		"Commit: abcdef123456",
		"Built: 2026-01-15",
		"Go: go",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("Full() = %q, want to contain %q", got, part)
		}
	}
}

func TestGet(t *testing.T) {
	origCommit := Commit
	defer func() { Commit = origCommit }()

	Commit = "0123456789"
	d := Get()
	if d.Commit != "0123456789" || d.Version != Version {
		t.Errorf("Get() = %+v", d)
	}
	if !strings.Contains(d.Platform, "/") || d.GoVersion == "" {
		t.Errorf("Get() runtime fields = %q %q", d.Platform, d.GoVersion)
	}
}

func TestDefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if parts := strings.Split(Version, "."); len(parts) < 2 {
		t.Errorf("Version %q doesn't appear to be semver", Version)
	}
}
