package output

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

type sample struct {
	Name  string         `json:"name" yaml:"name"`
	Count int            `json:"count" yaml:"count"`
	Tags  map[string]int `json:"tags" yaml:"tags"`
}

type greeting struct{ Who string }

func (g greeting) Human(w io.Writer) error {
	_, err := io.WriteString(w, "hello "+g.Who+"\n")
	return err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatHuman, false},
		{"human", FormatHuman, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	v := sample{Name: "Player", Count: 2, Tags: map[string]int{"b": 2, "a": 1}}
	tests := []struct {
		name   string
		format Format
		value  any
		want   string
	}{
		{
			name:   "json",
			format: FormatJSON,
			value:  v,
			want:   "{\n  \"name\": \"Player\",\n  \"count\": 2,\n  \"tags\": {\n    \"a\": 1,\n    \"b\": 2\n  }\n}\n",
		},
		{
			name:   "yaml",
			format: FormatYAML,
			value:  v,
			want:   "name: Player\ncount: 2\ntags:\n  a: 1\n  b: 2\n",
		},
		{
			name:   "human",
			format: FormatHuman,
			value:  greeting{Who: "world"},
			want:   "hello world\n",
		},
		{
			name:   "human falls back to json",
			format: FormatHuman,
			value:  map[string]int{"x": 1},
			want:   "{\n  \"x\": 1\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, tt.format, tt.value); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Write() = %q, want %q", buf.String(), tt.want)
			}
		})
	}

	if err := Write(&bytes.Buffer{}, Format("xml"), v); err == nil {
		t.Error("Write with an unknown format should fail")
	}
}

func TestCompareSnapshots(t *testing.T) {
	a := []byte(`{"units":["A"],"stats":{"files":2,"durationMs":13},"write":{"passId":"x","written":["A"]}}`)
	b := []byte(`{"units":["A"],"stats":{"files":2,"durationMs":99},"write":{"passId":"y","written":["A"]}}`)
	if equal, msg := CompareSnapshots(a, b); !equal {
		t.Errorf("CompareSnapshots() = false (%s), want true", msg)
	}

	c := []byte(`{"units":["B"],"stats":{"files":2,"durationMs":13}}`)
	if equal, _ := CompareSnapshots(a, c); equal {
		t.Error("CompareSnapshots() = true for different units")
	}

	if equal, msg := CompareSnapshots([]byte("not json"), a); equal || !strings.Contains(msg, "snapshot A") {
		t.Errorf("CompareSnapshots(invalid) = %v, %q", equal, msg)
	}
}
