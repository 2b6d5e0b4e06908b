package slogutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"100", 100, false},
		{"100b", 100, false},
		{"1KB", 1024, false},
		{"10kb", 10240, false},
		{"5MB", 5 << 20, false},
		{"1.5MB", int64(1.5 * (1 << 20)), false},
		{"1GB", 1 << 30, false},
		{"invalid", 0, true},
		{"10TB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gdgen.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}
	line := append(bytes.Repeat([]byte("a"), 29), '\n')
	for i := 0; i < 5; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{path, path + ".1", path + ".2"} {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("%s should exist: %v", filepath.Base(p), err)
		}
		if len(data) != 30 {
			t.Errorf("%s holds %d bytes, want 30", filepath.Base(p), len(data))
		}
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("only two backups should be kept")
	}
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdgen.log")
	rf, err := OpenRotatingFile(path, 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	rf.Write([]byte("0123456789"))
	rf.Write([]byte("abc"))
	rf.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "abc" {
		t.Errorf("content = %q, want abc", data)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup should be written")
	}
}

func TestOpenLogFile(t *testing.T) {
	dir := t.TempDir()
	w, err := OpenLogFile(filepath.Join(dir, "a.log"), "1MB", 3)
	if err != nil {
		t.Fatalf("OpenLogFile failed: %v", err)
	}
	w.Close()

	if _, err := OpenLogFile(filepath.Join(dir, "b.log"), "lots", 3); err == nil {
		t.Error("an invalid size should fail")
	}
}
