package tiling

import (
	"fmt"

	"github.com/1broseidon/screenwall/internal/matrix"
)

// Rect represents a cell position and size
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CellRect pairs a grid cell with its rectangle.
type CellRect struct {
	matrix.Cell
	Rect Rect `json:"rect"`
}

// Origin selects the coordinate space of computed rectangles.
type Origin int

const (
	// Absolute uses global screen-space coordinates.
	Absolute Origin = iota
	// Fixing is relative to the top-left-most screen.
	Fixing
)

// CalculatePositions computes row-major positions for a rows x cols grid
// inside bounds, with gapSize pixels around and between cells.
func CalculatePositions(rows, cols int, bounds Rect, gapSize int) ([]Rect, error) {
	if rows <= 0 || cols <= 0 {
		return nil, nil
	}

	// Gaps: (cols + 1) * gapSize horizontally, one before each column and one after
	totalHorizontalGaps := (cols + 1) * gapSize
	totalVerticalGaps := (rows + 1) * gapSize

	cellWidth := (bounds.Width - totalHorizontalGaps) / cols
	cellHeight := (bounds.Height - totalVerticalGaps) / rows

	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for grid: bounds=%dx%d rows=%d cols=%d gap=%d (cell=%dx%d)",
			bounds.Width, bounds.Height, rows, cols, gapSize, cellWidth, cellHeight,
		)
	}

	positions := make([]Rect, rows*cols)
	for i := range positions {
		row := i / cols
		col := i % cols

		positions[i] = Rect{
			X:      bounds.X + gapSize + col*(cellWidth+gapSize),
			Y:      bounds.Y + gapSize + row*(cellHeight+gapSize),
			Width:  cellWidth,
			Height: cellHeight,
		}
	}

	return positions, nil
}

// Bounds returns the screen rectangle of a matrix in the given origin.
func Bounds(m matrix.Matrix, origin Origin) Rect {
	if origin == Fixing {
		return Rect{X: m.FixingLeft, Y: m.FixingTop, Width: m.Width, Height: m.Height}
	}
	return Rect{X: m.Left, Y: m.Top, Width: m.Width, Height: m.Height}
}

// CellRects lays out every cell of a matrix according to its grid template.
func CellRects(m matrix.Matrix, origin Origin, gapSize int) ([]CellRect, error) {
	positions, err := CalculatePositions(m.Grid.Template.Rows(), m.Grid.Template.Cols(), Bounds(m, origin), gapSize)
	if err != nil {
		return nil, fmt.Errorf("matrix %s: %w", m.ID, err)
	}

	n := min(len(positions), len(m.Grid.List))
	out := make([]CellRect, n)
	for i := 0; i < n; i++ {
		out[i] = CellRect{Cell: m.Grid.List[i], Rect: positions[i]}
	}
	return out, nil
}
