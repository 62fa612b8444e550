// Package matrix models a set of physical screens as an addressable grid.
//
// Build turns raw screen descriptors into normalized Matrix records. The
// Engine owns those records, splits them into rows x cols cells and exposes
// the flattened cell list that the scheduler writes data ids into.
package matrix

import (
	"slices"
	"sync"
)

// Engine owns the matrix mapping and every cell within it. All methods are
// safe for concurrent use; each call runs to completion under one lock.
type Engine struct {
	mu         sync.Mutex
	matrices   *Map
	generation uint64
}

// NewEngine builds an engine from a screen set.
func NewEngine(screens []Screen) (*Engine, error) {
	m, err := Build(screens)
	if err != nil {
		return nil, err
	}
	return &Engine{matrices: m}, nil
}

// NewEngineFromMap wraps an already built mapping.
func NewEngineFromMap(m *Map) *Engine {
	if m == nil {
		m = NewMap()
	}
	return &Engine{matrices: m}
}

// Rebuild replaces the whole mapping. A failed build keeps the current one.
func (e *Engine) Rebuild(screens []Screen) error {
	m, err := Build(screens)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.matrices = m
	e.generation++
	return nil
}

// Split replaces the grid of every listed matrix with a fresh rows x cols
// grid. Unknown ids are ignored. Previous data assignments are discarded.
func (e *Engine) Split(template Template, matrixIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	e.matrices.Each(func(m *Matrix) {
		if !slices.Contains(matrixIDs, m.ID) {
			return
		}
		m.Grid.Template = template
		m.Grid.List = NewCells(m.ID, template)
		changed = true
	})
	if changed {
		e.generation++
	}
}

// Generation increments whenever the shape of the cell list may have changed.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// Cells returns every matrix's cells concatenated in mapping order.
func (e *Engine) Cells() []Cell {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cellsLocked()
}

func (e *Engine) cellsLocked() []Cell {
	var out []Cell
	e.matrices.Each(func(m *Matrix) {
		out = append(out, m.Grid.List...)
	})
	return out
}

// CellMap returns the flattened cells keyed by GridIDLong.
func (e *Engine) CellMap() map[string]Cell {
	cells := e.Cells()
	out := make(map[string]Cell, len(cells))
	for _, c := range cells {
		out[c.GridIDLong] = c
	}
	return out
}

// Capacity returns the total number of cells and the current generation.
func (e *Engine) Capacity() (int, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	e.matrices.Each(func(m *Matrix) {
		n += len(m.Grid.List)
	})
	return n, e.generation
}

// Assign writes values into the flattened cell list in order. Cells beyond
// len(values) get an empty data id. It reports false without writing when
// the engine generation no longer matches gen.
func (e *Engine) Assign(gen uint64, values []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return false
	}
	i := 0
	e.matrices.Each(func(m *Matrix) {
		for j := range m.Grid.List {
			if i < len(values) {
				m.Grid.List[j].DataID = values[i]
			} else {
				m.Grid.List[j].DataID = ""
			}
			i++
		}
	})
	return true
}

// Matrices returns copies of all records in mapping order.
func (e *Engine) Matrices() []Matrix {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Matrix, 0, e.matrices.Len())
	e.matrices.Each(func(m *Matrix) {
		out = append(out, m.clone())
	})
	return out
}

// Matrix returns a copy of one record.
func (e *Engine) Matrix(id string) (Matrix, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.matrices.Get(id)
	if !ok {
		return Matrix{}, false
	}
	return m.clone(), true
}

// IDs returns the matrix ids in mapping order.
func (e *Engine) IDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matrices.Keys()
}
