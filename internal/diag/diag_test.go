package diag

import (
	"strings"
	"sync"
	"testing"

	"gdgen/internal/syntax"
)

func TestDiagnostic_String(t *testing.T) {
	d := Errorf(NotNodeOrResource, syntax.Position{Path: "Scenes/Player.cs", Line: 4, Column: 1}, "The class '%s' is not a node or resource", "Player")
	got := d.String()
	want := "Scenes/Player.cs:4:1: error SG0002: The class 'Player' is not a node or resource"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if d.Category != Category {
		t.Errorf("Category = %q, want %q", d.Category, Category)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		code Code
		want Kind
	}{
		{NotNodeOrResource, KindDomainMismatch},
		{NotNode, KindDomainMismatch},
		{DuplicateMarker, KindConfiguration},
		{InvalidShaderExtension, KindConfiguration},
	}
	for _, tt := range tests {
		if got := KindOf(tt.code); got != tt.want {
			t.Errorf("KindOf(%s) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestBag_SortedAndConcurrent(t *testing.T) {
	var bag Bag
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bag.Add(Warningf(NotPartial, syntax.Position{Path: "b.cs", Offset: 10 - i}, "w%d", i))
		}(i)
	}
	wg.Wait()
	bag.Add(Errorf(DuplicateMarker, syntax.Position{Path: "a.cs", Offset: 50}, "dup"))

	got := bag.Sorted()
	if len(got) != 9 {
		t.Fatalf("len = %d, want 9", len(got))
	}
	if got[0].Pos.Path != "a.cs" {
		t.Errorf("first diagnostic should be from a.cs, got %s", got[0].Pos.Path)
	}
	for i := 2; i < len(got); i++ {
		if got[i-1].Pos.Offset > got[i].Pos.Offset && got[i-1].Pos.Path == got[i].Pos.Path {
			t.Errorf("diagnostics not sorted by offset at %d", i)
		}
	}
	if !HasErrors(got) {
		t.Error("HasErrors should be true")
	}
	if HasErrors(got[1:]) {
		t.Error("HasErrors should be false for warnings only")
	}
	if !strings.HasPrefix(got[1].Message, "w") {
		t.Errorf("unexpected message %q", got[1].Message)
	}
}
