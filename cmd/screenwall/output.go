package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/1broseidon/screenwall/internal/matrix"
	"github.com/1broseidon/screenwall/internal/tiling"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderMatrices(w io.Writer, ms []matrix.Matrix) {
	if len(ms) == 0 {
		fmt.Fprintln(w, "no screens")
		return
	}
	t := newTable("MATRIX", "SIZE", "POSITION", "FIXING", "AVAIL", "GRID", "FLAGS")
	for _, m := range ms {
		var flags []string
		if m.IsPrimary {
			flags = append(flags, "primary")
		}
		if m.IsInternal {
			flags = append(flags, "internal")
		}
		if m.IsExtended {
			flags = append(flags, "extended")
		}
		t.Row(
			m.ID,
			fmt.Sprintf("%dx%d", m.Width, m.Height),
			fmt.Sprintf("%d,%d", m.Left, m.Top),
			fmt.Sprintf("%d,%d", m.FixingLeft, m.FixingTop),
			fmt.Sprintf("%dx%d+%d+%d", m.AvailWidth, m.AvailHeight, m.AvailLeft, m.AvailTop),
			m.Grid.Template.String(),
			strings.Join(flags, ","),
		)
	}
	fmt.Fprintln(w, t.Render())
}

func renderCells(w io.Writer, cells []tiling.CellRect) {
	if len(cells) == 0 {
		fmt.Fprintln(w, "no cells")
		return
	}
	t := newTable("CELL", "GRID", "RECT", "DATA")
	for _, c := range cells {
		t.Row(
			c.GridIDLong,
			c.GridID,
			fmt.Sprintf("%dx%d+%d+%d", c.Rect.Width, c.Rect.Height, c.Rect.X, c.Rect.Y),
			c.DataID,
		)
	}
	fmt.Fprintln(w, t.Render())
}
