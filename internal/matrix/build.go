package matrix

// Map is an insertion-ordered mapping of matrix id to record.
type Map struct {
	order   []string
	entries map[string]*Matrix
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{entries: make(map[string]*Matrix)}
}

// Set inserts or replaces a record. Replacing keeps the original position.
func (m *Map) Set(rec Matrix) {
	if _, ok := m.entries[rec.ID]; !ok {
		m.order = append(m.order, rec.ID)
	}
	r := rec
	m.entries[rec.ID] = &r
}

// Get returns the record for id.
func (m *Map) Get(id string) (*Matrix, bool) {
	rec, ok := m.entries[id]
	return rec, ok
}

// Len returns the number of records.
func (m *Map) Len() int { return len(m.order) }

// Keys returns the ids in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.order...)
}

// Each calls fn for each record in insertion order.
func (m *Map) Each(fn func(*Matrix)) {
	for _, id := range m.order {
		fn(m.entries[id])
	}
}

// Build normalizes a screen set into matrix records. All fixing offsets are
// relative to the shared minimum left/top of the whole set. Screens with
// identical geometry collide on id; the last one wins.
func Build(screens []Screen) (*Map, error) {
	if len(screens) == 0 {
		return nil, ErrEmptyInput
	}

	minLeft, minTop := screens[0].Left, screens[0].Top
	for _, s := range screens[1:] {
		minLeft = min(minLeft, s.Left)
		minTop = min(minTop, s.Top)
	}

	out := NewMap()
	for _, s := range screens {
		id := MatrixID(s.Left, s.Top, s.Width, s.Height)
		out.Set(Matrix{
			ID:          id,
			Height:      s.Height,
			Width:       s.Width,
			Left:        s.Left,
			Top:         s.Top,
			AvailHeight: s.AvailHeight,
			AvailWidth:  s.AvailWidth,
			AvailLeft:   s.AvailLeft,
			AvailTop:    s.AvailTop,
			FixingLeft:  s.Left - minLeft,
			FixingTop:   s.Top - minTop,
			IsExtended:  s.IsExtended,
			IsInternal:  s.IsInternal,
			IsPrimary:   s.IsPrimary,
			Grid: Grid{
				Template: Template{1, 1},
				List:     NewCells(id, Template{1, 1}),
			},
		})
	}
	return out, nil
}
