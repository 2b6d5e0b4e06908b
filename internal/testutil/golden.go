package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// updateGolden rewrites golden files instead of comparing against them.
// Use: go test ./internal/generators/... -update
var updateGolden = flag.Bool("update", false, "update golden files")

// GoldenDir is where golden files live, relative to the package under test.
const GoldenDir = "testdata/golden"

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// CompareGolden compares got against testdata/golden/<name> after
// normalizing line endings, failing with a diff on mismatch. With -update
// the golden file is written instead.
func CompareGolden(t *testing.T, name, got string) {
	t.Helper()

	got = NormalizeText(got)
	goldenPath := filepath.Join(GoldenDir, filepath.FromSlash(name))

	if *updateGolden {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("Failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(got), 0o644); err != nil {
			t.Fatalf("Failed to write golden file: %v", err)
		}
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create it.", goldenPath, got)
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}

	want := NormalizeText(string(expected))
	if got != want {
		t.Fatalf("Golden mismatch for %s:\n%s\nRun with -update to refresh.", name, Diff(want, got, goldenPath))
	}
}

// Diff is a line-oriented diff of want and got with three lines of
// context around each run of changes.
func Diff(want, got, label string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s (expected)\n", label)
	fmt.Fprintf(&buf, "+++ %s (got)\n", label)

	wantLines := strings.Split(want, "\n")
	gotLines := strings.Split(got, "\n")
	n := max(len(wantLines), len(gotLines))
	line := func(lines []string, i int) (string, bool) {
		if i < len(lines) {
			return lines[i], true
		}
		return "", false
	}

	lastPrinted := -1
	for i := 0; i < n; i++ {
		w, wok := line(wantLines, i)
		g, gok := line(gotLines, i)
		if wok == gok && w == g {
			continue
		}
		start := max(lastPrinted+1, i-3)
		if start > lastPrinted+1 {
			fmt.Fprintf(&buf, "@@ line %d @@\n", start+1)
		}
		for j := start; j < i; j++ {
			fmt.Fprintf(&buf, " %s\n", wantLines[j])
		}
		if wok {
			fmt.Fprintf(&buf, "-%s\n", w)
		}
		if gok {
			fmt.Fprintf(&buf, "+%s\n", g)
		}
		lastPrinted = i
	}
	return buf.String()
}
