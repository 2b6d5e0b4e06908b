package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gdgen/internal/slogutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), ".gdgen", "manifest.db"), slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func pass(id string, at time.Time) PassRecord {
	return PassRecord{ID: id, StartedAt: at, FinishedAt: at.Add(time.Second), Units: 1, Written: 1}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	version, err := db.getSchemaVersion()
	if err != nil || version != currentSchemaVersion {
		t.Errorf("schema version = %d, %v", version, err)
	}
	db.Close()

	db, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()
	if db.Path() != path {
		t.Errorf("Path() = %q", db.Path())
	}
}

func TestCodec(t *testing.T) {
	for _, text := range []string{"", "namespace Game;\n", "// <auto-generated/>\n" + string(make([]byte, 4096))} {
		blob, err := compress(text)
		if err != nil {
			t.Fatalf("compress failed: %v", err)
		}
		got, err := decompress(blob)
		if err != nil {
			t.Fatalf("decompress failed: %v", err)
		}
		if got != text {
			t.Errorf("decompress(compress(%d bytes)) returned %d bytes", len(text), len(got))
		}
	}
}

func TestManifest_CommitAndRead(t *testing.T) {
	ctx := context.Background()
	m := NewManifest(openTestDB(t))
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	unit := StoredUnit{
		UnitRecord: UnitRecord{
			Key:       "Game.Player.MakeInterface.g",
			Generator: "MakeInterface",
			Path:      "Generated/Game.Player.MakeInterface.g.cs",
			Source:    "Player.cs:5:22",
			SHA256:    "abc",
			Size:      14,
			UpdatedAt: at,
		},
		Text: "interface IPlayer { }",
	}
	if err := m.Commit(ctx, pass("p1", at), []StoredUnit{unit}, nil); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	units, err := m.Units(ctx)
	if err != nil {
		t.Fatalf("Units failed: %v", err)
	}
	if len(units) != 1 || units[0].Key != unit.Key || units[0].PassID != "p1" {
		t.Fatalf("Units() = %+v", units)
	}
	if !units[0].UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want %v", units[0].UpdatedAt, at)
	}

	got, err := m.Unit(ctx, unit.Key)
	if err != nil {
		t.Fatalf("Unit failed: %v", err)
	}
	if got == nil || got.Text != unit.Text || got.Generator != "MakeInterface" {
		t.Errorf("Unit() = %+v", got)
	}

	missing, err := m.Unit(ctx, "Nope.g")
	if err != nil || missing != nil {
		t.Errorf("Unit(missing) = %+v, %v", missing, err)
	}

	// A later pass replaces the unit and can drop it.
	unit.SHA256 = "def"
	unit.Text = "interface IPlayer { void Jump(); }"
	if err := m.Commit(ctx, pass("p2", at.Add(time.Minute)), []StoredUnit{unit}, nil); err != nil {
		t.Fatalf("second Commit failed: %v", err)
	}
	if got, _ := m.Unit(ctx, unit.Key); got == nil || got.PassID != "p2" || got.SHA256 != "def" {
		t.Errorf("after update Unit() = %+v", got)
	}
	if err := m.Commit(ctx, pass("p3", at.Add(2*time.Minute)), nil, []string{unit.Key}); err != nil {
		t.Fatalf("third Commit failed: %v", err)
	}
	if units, _ := m.Units(ctx); len(units) != 0 {
		t.Errorf("Units() after drop = %+v", units)
	}
}

func TestManifest_CommitDuplicatePassRollsBack(t *testing.T) {
	ctx := context.Background()
	m := NewManifest(openTestDB(t))
	at := time.Now()
	if err := m.Commit(ctx, pass("same", at), nil, nil); err != nil {
		t.Fatal(err)
	}
	u := StoredUnit{UnitRecord: UnitRecord{Key: "A.g", Path: "Generated/A.g.cs", UpdatedAt: at}}
	if err := m.Commit(ctx, pass("same", at), []StoredUnit{u}, nil); err == nil {
		t.Fatal("Commit with a duplicate pass ID should fail")
	}
	if units, _ := m.Units(ctx); len(units) != 0 {
		t.Errorf("failed Commit left units behind: %+v", units)
	}
}

func TestManifest_PassesAndPrune(t *testing.T) {
	ctx := context.Background()
	m := NewManifest(openTestDB(t))
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	owner := StoredUnit{UnitRecord: UnitRecord{Key: "A.g", Path: "Generated/A.g.cs", UpdatedAt: base}, Text: "a"}
	if err := m.Commit(ctx, pass("p0", base), []StoredUnit{owner}, nil); err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"p1", "p2", "p3", "p4"} {
		if err := m.Commit(ctx, pass(id, base.Add(time.Duration(i+1)*time.Hour)), nil, nil); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := m.Passes(ctx, 2)
	if err != nil {
		t.Fatalf("Passes failed: %v", err)
	}
	if len(latest) != 2 || latest[0].ID != "p4" || latest[1].ID != "p3" {
		t.Errorf("Passes(2) = %+v", latest)
	}

	deleted, err := m.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Prune deleted %d, want 2", deleted)
	}
	all, _ := m.Passes(ctx, 0)
	var ids []string
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	// p0 still owns unit A.
	if len(ids) != 3 || ids[0] != "p4" || ids[1] != "p3" || ids[2] != "p0" {
		t.Errorf("passes after prune = %v", ids)
	}

	if n, err := m.Prune(ctx, 0); err != nil || n != 0 {
		t.Errorf("Prune(0) = %d, %v", n, err)
	}
}
