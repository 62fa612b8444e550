package tiling

import (
	"testing"

	"github.com/1broseidon/screenwall/internal/matrix"
)

func TestCalculatePositions_GapsAndRowMajor(t *testing.T) {
	bounds := Rect{X: 100, Y: 50, Width: 210, Height: 110}

	positions, err := CalculatePositions(2, 2, bounds, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// total gaps = 30, cell = (210-30)/2 x (110-30)/2 = 90x40
	want := []Rect{
		{X: 110, Y: 60, Width: 90, Height: 40},
		{X: 210, Y: 60, Width: 90, Height: 40},
		{X: 110, Y: 110, Width: 90, Height: 40},
		{X: 210, Y: 110, Width: 90, Height: 40},
	}
	if len(positions) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(positions))
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Fatalf("pos%d = %+v, want %+v", i, positions[i], want[i])
		}
	}
}

func TestCalculatePositions_DegenerateTemplate(t *testing.T) {
	positions, err := CalculatePositions(0, 3, Rect{Width: 100, Height: 100}, 0)
	if err != nil || positions != nil {
		t.Fatalf("expected no positions and no error, got %v, %v", positions, err)
	}
}

func TestCalculatePositions_ErrorsWhenInsufficientSpace(t *testing.T) {
	if _, err := CalculatePositions(1, 2, Rect{Width: 20, Height: 10}, 20); err == nil {
		t.Fatalf("expected error for insufficient space")
	}
}

func TestCellRects_AbsoluteAndFixing(t *testing.T) {
	e, err := matrix.NewEngine([]matrix.Screen{
		{Left: -1920, Top: 0, Width: 1920, Height: 1080},
		{Left: 0, Top: 0, Width: 1920, Height: 1080},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	id := e.IDs()[1]
	e.Split(matrix.Template{1, 2}, []string{id})
	m, _ := e.Matrix(id)

	abs, err := CellRects(m, Absolute, 0)
	if err != nil {
		t.Fatalf("CellRects: %v", err)
	}
	if len(abs) != 2 || abs[1].Rect != (Rect{X: 960, Y: 0, Width: 960, Height: 1080}) {
		t.Fatalf("unexpected absolute rects %+v", abs)
	}
	if abs[1].GridIDLong != matrix.CellID(id, 2) {
		t.Fatalf("cell not carried through: %+v", abs[1].Cell)
	}

	fixed, err := CellRects(m, Fixing, 0)
	if err != nil {
		t.Fatalf("CellRects: %v", err)
	}
	if fixed[0].Rect.X != 1920 {
		t.Fatalf("expected fixing x=1920, got %d", fixed[0].Rect.X)
	}
}
