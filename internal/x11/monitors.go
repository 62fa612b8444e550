package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Rect is a rectangle in root window coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Monitor represents a physical display
type Monitor struct {
	ID       int
	Name     string
	Bounds   Rect
	Avail    Rect
	Primary  bool
	Internal bool
}

// internalOutputPrefixes are RandR output names used for built-in panels.
var internalOutputPrefixes = []string{"edp", "lvds", "dsi"}

// IsInternalOutput reports whether a RandR output name is a laptop panel.
func IsInternalOutput(name string) bool {
	n := strings.ToLower(name)
	for _, p := range internalOutputPrefixes {
		if strings.HasPrefix(n, p) {
			return true
		}
	}
	return false
}

// GetMonitors retrieves all active monitors using XRandR, in CRTC order.
// Avail is each monitor minus dock struts, or clipped to the EWMH work area
// when no struts are set.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		isPrimary := false
		for _, out := range crtcInfo.Outputs {
			if primary != 0 && out == primary {
				isPrimary = true
			}
		}

		bounds := Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{
			ID:       i,
			Name:     outputName,
			Bounds:   bounds,
			Avail:    bounds,
			Primary:  isPrimary,
			Internal: IsInternalOutput(outputName),
		})
	}

	// Without an explicit primary output the first monitor is primary.
	hasPrimary := false
	for _, m := range monitors {
		hasPrimary = hasPrimary || m.Primary
	}
	if !hasPrimary && len(monitors) > 0 {
		monitors[0].Primary = true
	}

	c.applyUsableArea(monitors)
	return monitors, nil
}

func (c *Connection) applyUsableArea(monitors []Monitor) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return
	}
	partials := c.dockStrutPartials(int(rootGeom.Width), int(rootGeom.Height))

	var workArea *Rect
	if wa, err := ewmh.WorkareaGet(c.XUtil); err == nil && len(wa) > 0 {
		desktopIndex := 0
		if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
			if int(currentDesktop) >= 0 && int(currentDesktop) < len(wa) {
				desktopIndex = int(currentDesktop)
			}
		}
		r := wa[desktopIndex]
		workArea = &Rect{X: int(r.X), Y: int(r.Y), Width: int(r.Width), Height: int(r.Height)}
	}

	for i := range monitors {
		monitors[i].Avail = UsableArea(monitors[i].Bounds, int(rootGeom.Width), int(rootGeom.Height), partials, workArea)
	}
}

// dockStrutPartials collects the struts of every dock window.
func (c *Connection) dockStrutPartials(rootWidth, rootHeight int) []*ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var out []*ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out = append(out, sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out = append(out, &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			})
		}
	}
	return out
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

// UsableArea removes dock struts from a monitor. When no strut touches it,
// the monitor is clipped to workArea instead, if the two intersect.
func UsableArea(monitor Rect, rootWidth, rootHeight int, partials []*ewmh.WmStrutPartial, workArea *Rect) Rect {
	var struts dockStruts
	for _, sp := range partials {
		updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
	}

	if struts.left != 0 || struts.right != 0 || struts.top != 0 || struts.bottom != 0 {
		avail := Rect{
			X:      monitor.X + struts.left,
			Y:      monitor.Y + struts.top,
			Width:  max(1, monitor.Width-(struts.left+struts.right)),
			Height: max(1, monitor.Height-(struts.top+struts.bottom)),
		}
		return avail
	}

	if workArea != nil {
		x1 := max(monitor.X, workArea.X)
		y1 := max(monitor.Y, workArea.Y)
		x2 := min(monitor.X+monitor.Width, workArea.X+workArea.Width)
		y2 := min(monitor.Y+monitor.Height, workArea.Y+workArea.Height)
		if x2 > x1 && y2 > y1 {
			return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
		}
	}
	return monitor
}

func updateStrutsForMonitor(monitor Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	monX1 := monitor.X
	monY1 := monitor.Y
	monX2 := monitor.X + monitor.Width
	monY2 := monitor.Y + monitor.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		acc.top = max(acc.top, isect.h)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2, int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		acc.bottom = max(acc.bottom, isect.h)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		acc.left = max(acc.left, isect.w)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2, rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		acc.right = max(acc.right, isect.w)
	}
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}
