// Package layout fits the combined multi-screen canvas inside a container.
package layout

import (
	"strconv"

	"github.com/1broseidon/screenwall/internal/matrix"
)

// Element is a node with a rendered size and a containing parent.
type Element interface {
	Parent() Element
	OffsetSize() (width, height float64)
}

// Resolver looks up an element by selector. It returns nil when nothing matches.
type Resolver interface {
	Query(selector string) Element
}

// Box is a fixed-size Element.
type Box struct {
	Width, Height float64
	Container     *Box
}

// Parent returns the containing box, or nil.
func (b *Box) Parent() Element {
	if b == nil || b.Container == nil {
		return nil
	}
	return b.Container
}

// OffsetSize returns the box dimensions.
func (b *Box) OffsetSize() (float64, float64) {
	if b == nil {
		return 0, 0
	}
	return b.Width, b.Height
}

// Boxes resolves selectors from a fixed table.
type Boxes map[string]*Box

// Query implements Resolver.
func (m Boxes) Query(selector string) Element {
	b, ok := m[selector]
	if !ok || b == nil {
		return nil
	}
	return b
}

// Style is a CSS scale transform plus the font size that undoes it for text.
type Style struct {
	Transform       string  `json:"transform,omitempty"`
	TransformOrigin string  `json:"transformOrigin,omitempty"`
	FontSize        string  `json:"fontSize,omitempty"`
	Scale           float64 `json:"scale,omitempty"`
}

// IsZero reports whether no style could be computed.
func (s Style) IsZero() bool { return s == Style{} }

// Canvas returns the bounding box of all matrices in fixing coordinates.
func Canvas(matrices []matrix.Matrix) (width, height int) {
	for _, m := range matrices {
		width = max(width, m.FixingLeft+m.Width)
		height = max(height, m.FixingTop+m.Height)
	}
	return width, height
}

// ContentStyleFor resolves selector and computes its content style.
func ContentStyleFor(matrices []matrix.Matrix, r Resolver, selector string) Style {
	if r == nil {
		return Style{}
	}
	return ContentStyle(matrices, r.Query(selector))
}

// ContentStyle scales the canvas so it fits inside el's parent on both axes.
// The zero Style is returned when el is nil or detached, or when either the
// canvas or the container has no area.
func ContentStyle(matrices []matrix.Matrix, el Element) Style {
	if isNil(el) {
		return Style{}
	}
	parent := el.Parent()
	if isNil(parent) {
		return Style{}
	}
	cw, ch := Canvas(matrices)
	if cw <= 0 || ch <= 0 {
		return Style{}
	}
	pw, ph := parent.OffsetSize()
	scale := min(pw/float64(cw), ph/float64(ch))
	if scale <= 0 {
		return Style{}
	}
	return Style{
		Transform:       "scale(" + formatFloat(scale) + ")",
		TransformOrigin: "top left",
		FontSize:        formatFloat(100/scale) + "%",
		Scale:           scale,
	}
}

func isNil(el Element) bool {
	if el == nil {
		return true
	}
	if b, ok := el.(*Box); ok && b == nil {
		return true
	}
	return false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
