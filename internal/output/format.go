// Package output renders command results as human text, JSON or YAML.
//
// JSON and YAML are stable for identical input: struct fields keep their
// declaration order and map keys are sorted by both encoders. Fields that
// vary from run to run (durations, pass IDs, timestamps) can be stripped
// with NormalizeForSnapshot before comparing two outputs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHuman, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatHuman, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want human, json or yaml)", s)
	}
}

// Humanizer is implemented by results with a text form.
type Humanizer interface {
	Human(w io.Writer) error
}

// Write renders v in format. Human output falls back to JSON for values
// that do not implement Humanizer.
func Write(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		return EncodeJSON(w, v)
	case FormatYAML:
		return EncodeYAML(w, v)
	case FormatHuman, "":
		if h, ok := v.(Humanizer); ok {
			return h.Human(w)
		}
		return EncodeJSON(w, v)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// EncodeJSON writes v as indented JSON followed by a newline.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// EncodeYAML writes v as a YAML document.
func EncodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}
