//go:build !linux

package daemon

import (
	"context"
	"errors"
	"log/slog"

	"github.com/1broseidon/screenwall/internal/config"
)

// Run is only supported on Linux/X11.
func Run(context.Context, *config.Config, *slog.Logger) error {
	return errors.New("screenwall daemon requires Linux with an X11 display")
}
