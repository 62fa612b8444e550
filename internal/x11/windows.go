package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore move requests on most WMs.
	_ = c.removeStates(windowID, "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT")

	// Use EWMH MoveResize for better WM compatibility
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// SetFullscreen asks the window manager to make the window fullscreen.
func (c *Connection) SetFullscreen(windowID xproto.Window) error {
	const actionAdd = 1
	if err := ewmh.WmStateReq(c.XUtil, windowID, actionAdd, "_NET_WM_STATE_FULLSCREEN"); err != nil {
		return fmt.Errorf("failed to request fullscreen: %w", err)
	}
	return nil
}

func (c *Connection) removeStates(windowID xproto.Window, names ...string) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}
	const actionRemove = 0
	for _, name := range names {
		if slices.Contains(states, name) {
			ewmh.WmStateReq(c.XUtil, windowID, actionRemove, name)
		}
	}
	return nil
}

// FindWindowByPID returns the first normal client window owned by pid.
func (c *Connection) FindWindowByPID(pid int) (xproto.Window, bool, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get client list: %w", err)
	}
	for _, win := range clients {
		p, err := ewmh.WmPidGet(c.XUtil, win)
		if err != nil || int(p) != pid {
			continue
		}
		if c.IsNormalWindow(win) {
			return win, true, nil
		}
	}
	return 0, false, nil
}

// HasClient reports whether the window is still in the EWMH client list.
func (c *Connection) HasClient(windowID xproto.Window) (bool, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false, fmt.Errorf("failed to get client list: %w", err)
	}
	return slices.Contains(clients, windowID), nil
}

// CloseWindow requests graceful window close via WM_DELETE_WINDOW.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	deleteReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_DELETE_WINDOW")), "WM_DELETE_WINDOW").Reply()
	if err != nil {
		return err
	}
	protocolsReply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteReply.Atom), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}
