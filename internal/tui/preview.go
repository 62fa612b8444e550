package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/screenwall/internal/layout"
	"github.com/1broseidon/screenwall/internal/matrix"
	"github.com/1broseidon/screenwall/internal/tiling"
)

func summarizeWall(matrices []matrix.Matrix) string {
	if len(matrices) == 0 {
		return "no screens"
	}
	w, h := layout.Canvas(matrices)
	cells, assigned := 0, 0
	for _, m := range matrices {
		for _, c := range m.Grid.List {
			cells++
			if c.DataID != "" {
				assigned++
			}
		}
	}
	return fmt.Sprintf("%d screens • %d×%d px canvas • %d/%d cells assigned", len(matrices), w, h, assigned, cells)
}

// renderWallPreview draws every cell of every matrix, placed by its offset
// from the top-left-most screen, scaled onto a width×height character canvas.
func renderWallPreview(matrices []matrix.Matrix, width, height int) []string {
	canvasW, canvasH := layout.Canvas(matrices)
	if len(matrices) == 0 || canvasW <= 0 || canvasH <= 0 || width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, m := range matrices {
		rects, err := tiling.CellRects(m, tiling.Fixing, 0)
		if err != nil {
			continue
		}
		for _, cr := range rects {
			label := cr.DataID
			if label == "" {
				label = cr.GridID
			}
			drawTile(canvas, cr.Rect, label, canvasW, canvasH, width, height)
		}
	}

	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func drawTile(canvas [][]rune, rect tiling.Rect, label string, wallW, wallH, canvasW, canvasH int) {
	x1 := rect.X * canvasW / wallW
	y1 := rect.Y * canvasH / wallH
	x2 := (rect.X + rect.Width) * canvasW / wallW
	y2 := (rect.Y + rect.Height) * canvasH / wallH

	// Clamp inside the outer border.
	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)

	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY <= y1 || centerY >= y2 {
		return
	}
	runes := []rune(label)
	if room := x2 - x1 - 1; len(runes) > room {
		runes = runes[:max(room, 0)]
	}
	startX := centerX - len(runes)/2
	for i, r := range runes {
		if x := startX + i; x > x1 && x < x2 {
			canvas[centerY][x] = r
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	lines := make([]string, max(height, 0))
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
