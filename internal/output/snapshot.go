package output

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SnapshotExcludeFields lists fields that differ between otherwise
// identical runs.
var SnapshotExcludeFields = []string{
	"stats.durationMs",
	"write.passId",
	"passId",
	"startedAt",
	"finishedAt",
}

// NormalizeForSnapshot removes time-varying fields from a JSON document and
// re-encodes it.
func NormalizeForSnapshot(data []byte) ([]byte, error) {
	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, err
	}
	for _, field := range SnapshotExcludeFields {
		removeNestedField(parsed, field)
	}
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, parsed); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompareSnapshots reports whether two JSON documents are identical once
// time-varying fields are removed.
func CompareSnapshots(a, b []byte) (bool, string) {
	normalizedA, err := NormalizeForSnapshot(a)
	if err != nil {
		return false, "failed to normalize snapshot A: " + err.Error()
	}
	normalizedB, err := NormalizeForSnapshot(b)
	if err != nil {
		return false, "failed to normalize snapshot B: " + err.Error()
	}
	if !bytes.Equal(normalizedA, normalizedB) {
		return false, "snapshots differ"
	}
	return true, ""
}

// removeNestedField deletes a dot-separated path, e.g. "stats.durationMs".
func removeNestedField(data map[string]any, path string) {
	parts := strings.Split(path, ".")
	current := data
	for _, p := range parts[:len(parts)-1] {
		next, ok := current[p].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, parts[len(parts)-1])
}
