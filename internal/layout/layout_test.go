package layout

import (
	"testing"

	"github.com/1broseidon/screenwall/internal/matrix"
)

func wall(t *testing.T, screens ...matrix.Screen) []matrix.Matrix {
	t.Helper()
	e, err := matrix.NewEngine(screens)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e.Matrices()
}

func TestCanvas_UsesFixingOffsets(t *testing.T) {
	ms := wall(t,
		matrix.Screen{Left: -1920, Top: 0, Width: 1920, Height: 1080},
		matrix.Screen{Left: 0, Top: -200, Width: 2560, Height: 1440},
	)
	w, h := Canvas(ms)
	if w != 4480 || h != 1440 {
		t.Fatalf("canvas = %dx%d, want 4480x1440", w, h)
	}
}

func TestContentStyle(t *testing.T) {
	ms := wall(t,
		matrix.Screen{Left: 0, Top: 0, Width: 1920, Height: 1080},
		matrix.Screen{Left: 1920, Top: 0, Width: 1920, Height: 1080},
	)

	tests := []struct {
		name          string
		width, height float64
		wantScale     float64
		wantTransform string
		wantFont      string
	}{
		{"width bound", 960, 1000, 0.25, "scale(0.25)", "400%"},
		{"height bound", 10000, 540, 0.5, "scale(0.5)", "200%"},
		{"exact fit", 3840, 1080, 1, "scale(1)", "100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := &Box{Width: tt.width, Height: tt.height}
			child := &Box{Container: parent}
			got := ContentStyle(ms, child)
			if got.Scale != tt.wantScale || got.Transform != tt.wantTransform || got.FontSize != tt.wantFont {
				t.Fatalf("got %+v", got)
			}
			if got.TransformOrigin != "top left" {
				t.Fatalf("origin = %q", got.TransformOrigin)
			}
		})
	}
}

func TestContentStyle_ZeroStyle(t *testing.T) {
	ms := wall(t, matrix.Screen{Width: 1920, Height: 1080})
	parent := &Box{Width: 800, Height: 600}

	tests := []struct {
		name     string
		matrices []matrix.Matrix
		el       Element
	}{
		{"nil element", ms, nil},
		{"nil box", ms, (*Box)(nil)},
		{"no parent", ms, &Box{Width: 10, Height: 10}},
		{"no matrices", nil, &Box{Container: parent}},
		{"empty container", ms, &Box{Container: &Box{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentStyle(tt.matrices, tt.el); !got.IsZero() {
				t.Fatalf("expected zero style, got %+v", got)
			}
		})
	}
}

func TestContentStyleFor(t *testing.T) {
	ms := wall(t, matrix.Screen{Width: 1000, Height: 500})
	boxes := Boxes{
		"#wall":     &Box{Container: &Box{Width: 500, Height: 500}},
		"#detached": &Box{},
	}

	if got := ContentStyleFor(ms, boxes, "#wall"); got.Transform != "scale(0.5)" {
		t.Fatalf("unexpected style %+v", got)
	}
	for _, sel := range []string{"#missing", "#detached"} {
		if got := ContentStyleFor(ms, boxes, sel); !got.IsZero() {
			t.Fatalf("%s: expected zero style, got %+v", sel, got)
		}
	}
	if got := ContentStyleFor(ms, nil, "#wall"); !got.IsZero() {
		t.Fatalf("nil resolver: expected zero style")
	}
}
