package matrix

import (
	"errors"
	"reflect"
	"testing"
)

func twoScreens() []Screen {
	return []Screen{
		{Left: 1920, Top: 0, Width: 1920, Height: 1080, AvailWidth: 1920, AvailHeight: 1040, AvailLeft: 1920, IsExtended: true},
		{Left: -1280, Top: 200, Width: 1280, Height: 1024, AvailLeft: -1280, AvailTop: 200, AvailWidth: 1280, AvailHeight: 1024, IsExtended: true, IsPrimary: true},
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	_, err := Build(nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestBuild_FixingOffsetsFromSharedMinimum(t *testing.T) {
	m, err := Build(twoScreens())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 matrices, got %d", m.Len())
	}

	right, ok := m.Get("l=1920,t=0,w=1920,h=1080")
	if !ok {
		t.Fatalf("missing right matrix, keys=%v", m.Keys())
	}
	left, ok := m.Get("l=-1280,t=200,w=1280,h=1024")
	if !ok {
		t.Fatalf("missing left matrix, keys=%v", m.Keys())
	}

	if left.FixingLeft != 0 {
		t.Errorf("left screen FixingLeft = %d, want 0", left.FixingLeft)
	}
	if right.FixingLeft != 3200 {
		t.Errorf("right screen FixingLeft = %d, want 3200", right.FixingLeft)
	}
	if right.FixingTop != 0 {
		t.Errorf("right screen FixingTop = %d, want 0", right.FixingTop)
	}
	if left.FixingTop != 200 {
		t.Errorf("left screen FixingTop = %d, want 200", left.FixingTop)
	}
	if !left.IsPrimary || right.IsPrimary {
		t.Errorf("primary flags not carried over")
	}
}

func TestBuild_NoNegativeOffsets(t *testing.T) {
	screens := []Screen{
		{Left: 500, Top: -300, Width: 800, Height: 600},
		{Left: -100, Top: 40, Width: 800, Height: 600},
		{Left: 20, Top: 10, Width: 1024, Height: 768},
	}
	m, err := Build(screens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zeroLeft, zeroTop := false, false
	m.Each(func(rec *Matrix) {
		if rec.FixingLeft < 0 || rec.FixingTop < 0 {
			t.Errorf("%s has negative fixing offset (%d,%d)", rec.ID, rec.FixingLeft, rec.FixingTop)
		}
		zeroLeft = zeroLeft || rec.FixingLeft == 0
		zeroTop = zeroTop || rec.FixingTop == 0
	})
	if !zeroLeft || !zeroTop {
		t.Errorf("expected some matrix at fixing 0 on each axis")
	}
}

func TestBuild_InitialGrid(t *testing.T) {
	m, err := Build(twoScreens())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.Each(func(rec *Matrix) {
		if rec.Grid.Template != (Template{1, 1}) {
			t.Errorf("%s template = %v, want 1x1", rec.ID, rec.Grid.Template)
		}
		want := []Cell{{GridID: "1", GridIDLong: rec.ID + ",grid=1"}}
		if !reflect.DeepEqual(rec.Grid.List, want) {
			t.Errorf("%s cells = %+v, want %+v", rec.ID, rec.Grid.List, want)
		}
	})
}

func TestBuild_Deterministic(t *testing.T) {
	a, _ := Build(twoScreens())
	b, _ := Build(twoScreens())
	if !reflect.DeepEqual(a.Keys(), b.Keys()) {
		t.Fatalf("ids differ across builds: %v vs %v", a.Keys(), b.Keys())
	}
	ea := NewEngineFromMap(a)
	eb := NewEngineFromMap(b)
	if !reflect.DeepEqual(ea.Cells(), eb.Cells()) {
		t.Fatalf("cells differ across builds")
	}
}

func TestBuild_CollisionLastWriteWins(t *testing.T) {
	screens := []Screen{
		{Left: 0, Top: 0, Width: 100, Height: 100, IsPrimary: true},
		{Left: 100, Top: 0, Width: 100, Height: 100},
		{Left: 0, Top: 0, Width: 100, Height: 100, IsInternal: true},
	}
	m, err := Build(screens)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 matrices after collision, got %d", m.Len())
	}
	if got := m.Keys()[0]; got != "l=0,t=0,w=100,h=100" {
		t.Fatalf("collided key moved position: keys=%v", m.Keys())
	}
	rec, _ := m.Get("l=0,t=0,w=100,h=100")
	if rec.IsPrimary || !rec.IsInternal {
		t.Fatalf("expected last screen to win, got %+v", rec)
	}
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		in      string
		want    Template
		wantErr bool
	}{
		{"2x2", Template{2, 2}, false},
		{" 3X4 ", Template{3, 4}, false},
		{"0x5", Template{0, 5}, false},
		{"2", Template{}, true},
		{"axb", Template{}, true},
	}
	for _, tt := range tests {
		got, err := ParseTemplate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTemplate(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTemplate(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTemplate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
