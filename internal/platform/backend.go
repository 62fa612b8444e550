package platform

import "github.com/1broseidon/screenwall/internal/matrix"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID       int
	Name     string
	Bounds   Rect
	Usable   Rect
	Primary  bool
	Internal bool
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	FindWindowByPID(pid int) (WindowID, bool, error)
	WindowExists(windowID WindowID) (bool, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Fullscreen(windowID WindowID) error
	Close(windowID WindowID) error
}

// Screens converts displays into matrix screen descriptors, keeping order.
// Every screen is extended when more than one display is active.
func Screens(displays []Display) []matrix.Screen {
	screens := make([]matrix.Screen, 0, len(displays))
	extended := len(displays) > 1
	for _, d := range displays {
		screens = append(screens, matrix.Screen{
			Left:        d.Bounds.X,
			Top:         d.Bounds.Y,
			Width:       d.Bounds.Width,
			Height:      d.Bounds.Height,
			AvailLeft:   d.Usable.X,
			AvailTop:    d.Usable.Y,
			AvailWidth:  d.Usable.Width,
			AvailHeight: d.Usable.Height,
			IsExtended:  extended,
			IsInternal:  d.Internal,
			IsPrimary:   d.Primary,
		})
	}
	return screens
}

// ScreenSource enumerates the current screens.
type ScreenSource struct {
	Backend Backend
}

// Screens lists the screens of the backend.
func (s ScreenSource) Screens() ([]matrix.Screen, error) {
	displays, err := s.Backend.Displays()
	if err != nil {
		return nil, err
	}
	return Screens(displays), nil
}
