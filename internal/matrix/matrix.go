package matrix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyInput is returned when a matrix is built from an empty screen list.
var ErrEmptyInput = errors.New("matrix: empty screen list")

// Screen describes one physical display as reported by the host.
type Screen struct {
	Left        int  `json:"left"`
	Top         int  `json:"top"`
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	AvailLeft   int  `json:"availLeft"`
	AvailTop    int  `json:"availTop"`
	AvailWidth  int  `json:"availWidth"`
	AvailHeight int  `json:"availHeight"`
	IsExtended  bool `json:"isExtended"`
	IsInternal  bool `json:"isInternal"`
	IsPrimary   bool `json:"isPrimary"`
}

// Template is a grid shape: rows x cols.
type Template [2]int

// Rows returns the number of grid rows.
func (t Template) Rows() int { return t[0] }

// Cols returns the number of grid columns.
func (t Template) Cols() int { return t[1] }

// Size returns rows*cols, or 0 when either dimension is not positive.
func (t Template) Size() int {
	if t[0] <= 0 || t[1] <= 0 {
		return 0
	}
	return t[0] * t[1]
}

func (t Template) String() string {
	return fmt.Sprintf("%dx%d", t[0], t[1])
}

// ParseTemplate parses "RxC" (for example "2x3").
func ParseTemplate(s string) (Template, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return Template{}, fmt.Errorf("invalid grid template %q (want RxC)", s)
	}
	rows, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Template{}, fmt.Errorf("invalid grid rows in %q: %w", s, err)
	}
	cols, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Template{}, fmt.Errorf("invalid grid cols in %q: %w", s, err)
	}
	return Template{rows, cols}, nil
}

// Cell is one addressable region of a matrix.
type Cell struct {
	GridID     string `json:"gridId"`
	GridIDLong string `json:"gridIdLong"`
	DataID     string `json:"dataId"`
}

// Grid is a matrix's subdivision into cells.
type Grid struct {
	Template Template `json:"template"`
	List     []Cell   `json:"list"`
}

// Matrix is the normalized record for one physical screen.
type Matrix struct {
	ID          string `json:"matrixId"`
	Height      int    `json:"height"`
	Width       int    `json:"width"`
	Left        int    `json:"left"`
	Top         int    `json:"top"`
	AvailHeight int    `json:"availHeight"`
	AvailWidth  int    `json:"availWidth"`
	AvailLeft   int    `json:"availLeft"`
	AvailTop    int    `json:"availTop"`
	// FixingLeft and FixingTop are the offset from the top-left-most screen.
	FixingLeft int  `json:"fixingLeft"`
	FixingTop  int  `json:"fixingTop"`
	IsExtended bool `json:"isExtended"`
	IsInternal bool `json:"isInternal"`
	IsPrimary  bool `json:"isPrimary"`
	Grid       Grid `json:"grid"`
}

// clone returns a deep copy so callers cannot mutate engine-owned cells.
func (m Matrix) clone() Matrix {
	out := m
	out.Grid.List = append([]Cell(nil), m.Grid.List...)
	return out
}

// MatrixID derives the stable matrix key from screen geometry.
func MatrixID(left, top, width, height int) string {
	return fmt.Sprintf("l=%d,t=%d,w=%d,h=%d", left, top, width, height)
}

// CellID derives the globally unique cell key from its matrix and 1-based index.
func CellID(matrixID string, index int) string {
	return fmt.Sprintf("%s,grid=%d", matrixID, index)
}

// NewCells generates the cells for a grid template. Non-positive dimensions
// yield no cells.
func NewCells(matrixID string, template Template) []Cell {
	n := template.Size()
	cells := make([]Cell, 0, n)
	for i := 1; i <= n; i++ {
		cells = append(cells, Cell{
			GridID:     strconv.Itoa(i),
			GridIDLong: CellID(matrixID, i),
		})
	}
	return cells
}
