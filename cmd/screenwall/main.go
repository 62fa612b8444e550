package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/screenwall/internal/config"
	"github.com/1broseidon/screenwall/internal/ipc"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(os.Stderr).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by every command.
type app struct {
	configPath string
	verbose    bool
	jsonOutput bool
	socketPath string

	logOut io.Writer
	logger *slog.Logger
}

func newRootCommand(logOut io.Writer) *cobra.Command {
	a := &app{logOut: logOut}

	root := &cobra.Command{
		Use:          "screenwall",
		Short:        "Spread one view over every connected screen",
		Long:         "screenwall maps each physical screen to a matrix, splits it into a grid of cells, rotates data ids through the cells and opens one fullscreen window per screen.",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(a.logOut, "", a.verbose)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default ~/.config/screenwall/config.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.jsonOutput, "json", false, "print JSON instead of text")
	flags.StringVar(&a.socketPath, "socket", "", "daemon socket path (default $SCREENWALL_SOCKET or the runtime dir)")

	root.AddCommand(
		a.daemonCommand(),
		a.statusCommand(),
		a.screensCommand(),
		a.rebuildCommand(),
		a.splitCommand(),
		a.cellsCommand(),
		a.pollCommand(),
		a.openCommand(),
		a.closeCommand(),
		a.styleCommand(),
		a.storeCommand(),
		a.configCommand(),
		a.mcpCommand(),
		a.watchCommand(),
	)
	return root
}

// newLogger builds the slog logger backed by charmbracelet/log. Output that
// is not a terminal gets the JSON formatter.
func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl, err := charmlog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = charmlog.InfoLevel
	}
	if verbose {
		lvl = charmlog.DebugLevel
	}

	opts := charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           lvl,
	}
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		opts.Formatter = charmlog.JSONFormatter
	}
	return slog.New(charmlog.NewWithOptions(w, opts))
}

func (a *app) loadConfig() (*config.LoadResult, error) {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return config.LoadFromPath(path)
}

func (a *app) client() *ipc.Client {
	if a.socketPath != "" {
		return ipc.NewClientAt(a.socketPath)
	}
	return ipc.NewClient()
}
