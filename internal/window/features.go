package window

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/screenwall/internal/matrix"
)

// Features is the requested placement of a new window.
type Features struct {
	Left       int
	Top        int
	Width      int
	Height     int
	Fullscreen bool
}

// FeaturesFor places a window over the whole screen of a matrix.
func FeaturesFor(m matrix.Matrix) Features {
	return Features{
		Left:       m.Left,
		Top:        m.Top,
		Width:      m.Width,
		Height:     m.Height,
		Fullscreen: true,
	}
}

// String renders the feature string "height=H,width=W,left=L,top=T,fullscreen".
func (f Features) String() string {
	parts := []string{
		fmt.Sprintf("height=%d", f.Height),
		fmt.Sprintf("width=%d", f.Width),
		fmt.Sprintf("left=%d", f.Left),
		fmt.Sprintf("top=%d", f.Top),
	}
	if f.Fullscreen {
		parts = append(parts, "fullscreen")
	}
	return strings.Join(parts, ",")
}

// ParseFeatures parses a feature string. Unknown keys are ignored.
func ParseFeatures(s string) (Features, error) {
	var f Features
	for _, raw := range strings.Split(s, ",") {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		key, value, hasValue := strings.Cut(item, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if key == "fullscreen" {
			f.Fullscreen = !hasValue || isTruthy(value)
			continue
		}

		var dst *int
		switch key {
		case "left":
			dst = &f.Left
		case "top":
			dst = &f.Top
		case "width":
			dst = &f.Width
		case "height":
			dst = &f.Height
		default:
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return Features{}, fmt.Errorf("invalid window feature %q: %w", item, err)
		}
		*dst = n
	}
	return f, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "", "1", "yes", "true", "on":
		return true
	}
	return false
}
