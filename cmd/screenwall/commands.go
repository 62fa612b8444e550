package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/screenwall/internal/ipc"
	"github.com/1broseidon/screenwall/internal/matrix"
)

// openTimeout bounds OPEN_WINDOWS, which waits for every launched window.
const openTimeout = time.Minute

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client().GetStatus()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(w, st)
			}
			fmt.Fprintf(w, "daemon_running:  %v\n", st.DaemonRunning)
			fmt.Fprintf(w, "instance_id:     %s\n", st.InstanceID)
			fmt.Fprintf(w, "uptime_seconds:  %d\n", st.UptimeSeconds)
			fmt.Fprintf(w, "matrices:        %d\n", st.Matrices)
			fmt.Fprintf(w, "cells:           %d\n", st.Cells)
			fmt.Fprintf(w, "generation:      %d\n", st.Generation)
			fmt.Fprintf(w, "poll_state:      %s\n", st.Poll.State)
			fmt.Fprintf(w, "poll_cursor:     %d/%d\n", st.Poll.Cursor, st.Poll.DataLen)
			fmt.Fprintf(w, "windows:         %d\n", len(st.Windows))
			fmt.Fprintf(w, "window_polling:  %v\n", st.WindowPolling)
			fmt.Fprintf(w, "close_sticky:    %v\n", st.CloseSticky)
			fmt.Fprintf(w, "storage:         %s (key %s)\n", st.StorageBackend, st.StorageKey)
			return nil
		},
	}
}

func (a *app) screensCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "screens",
		Aliases: []string{"matrices"},
		Short:   "List the matrix built for each screen",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client().GetMatrices()
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), data)
			}
			renderMatrices(cmd.OutOrStdout(), data.Matrices)
			return nil
		},
	}
}

func (a *app) rebuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Re-enumerate screens and rebuild the matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client().Rebuild()
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), data)
			}
			renderMatrices(cmd.OutOrStdout(), data.Matrices)
			return nil
		},
	}
}

func (a *app) splitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "split <ROWSxCOLS> [matrix-id...]",
		Short: "Split matrices into a grid of cells (all matrices when none given)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tpl, err := matrix.ParseTemplate(args[0])
			if err != nil {
				return err
			}
			data, err := a.client().Split(tpl.String(), args[1:])
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), data)
			}
			renderMatrices(cmd.OutOrStdout(), data.Matrices)
			return nil
		},
	}
}

func (a *app) cellsCommand() *cobra.Command {
	var req ipc.CellsPayload
	cmd := &cobra.Command{
		Use:   "cells [matrix-id]",
		Short: "Show the pixel rectangle of every cell",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				req.MatrixID = args[0]
			}
			if req.Gap < 0 {
				return fmt.Errorf("--gap must be >= 0")
			}
			data, err := a.client().GetCells(req)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), data)
			}
			renderCells(cmd.OutOrStdout(), data.Cells)
			return nil
		},
	}
	cmd.Flags().IntVar(&req.Gap, "gap", 0, "gap in pixels between cells")
	cmd.Flags().BoolVar(&req.Fixing, "fixing", false, "coordinates relative to the top-left-most screen")
	return cmd
}

func (a *app) pollCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Rotate data ids through the cells",
	}

	var interval time.Duration
	start := &cobra.Command{
		Use:   "start <data-id>...",
		Short: "Assign data ids to the cells, rotating batches when they do not all fit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval < 0 {
				return fmt.Errorf("--interval must be >= 0")
			}
			st, err := a.client().StartPoll(splitIDs(args), interval)
			if err != nil {
				return err
			}
			return a.printPoll(cmd, st)
		},
	}
	start.Flags().DurationVarP(&interval, "interval", "i", 0, "rotation interval (default: poll_interval from config)")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop rotating; current assignments are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.client().StopPoll()
			if err != nil {
				return err
			}
			return a.printPoll(cmd, st)
		},
	}

	cmd.AddCommand(start, stop)
	return cmd
}

func (a *app) printPoll(cmd *cobra.Command, st *ipc.PollData) error {
	w := cmd.OutOrStdout()
	if a.jsonOutput {
		return printJSON(w, st)
	}
	fmt.Fprintf(w, "state:      %s\n", st.State)
	fmt.Fprintf(w, "interval:   %s\n", st.Interval)
	fmt.Fprintf(w, "cursor:     %d/%d\n", st.Cursor, st.DataLen)
	fmt.Fprintf(w, "capacity:   %d\n", st.Capacity)
	if len(st.LastBatch) > 0 {
		fmt.Fprintf(w, "last_batch: %s\n", strings.Join(st.LastBatch, " "))
	}
	return nil
}

// splitIDs accepts ids as separate args or comma-separated lists.
func splitIDs(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, id := range strings.Split(arg, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func (a *app) openCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open [matrix-id...]",
		Short: "Open one fullscreen window per matrix (all when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client().WithTimeout(openTimeout).OpenWindows(args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(w, res)
			}
			for _, id := range res.Opened {
				fmt.Fprintf(w, "opened  %s\n", id)
			}
			for _, f := range res.Failed {
				fmt.Fprintf(w, "failed  %s: %s\n", f.MatrixID, f.Error)
			}
			if len(res.Opened) == 0 && len(res.Failed) > 0 {
				return fmt.Errorf("no window could be opened")
			}
			return nil
		},
	}
}

func (a *app) closeCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "close [matrix-id]",
		Short: "Close the window of one matrix, or every window with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			switch {
			case all:
				return c.CloseAll()
			case len(args) == 1:
				return c.CloseWindow(args[0])
			default:
				return fmt.Errorf("give a matrix id or --all")
			}
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "close every window")
	return cmd
}

func (a *app) styleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "style <width> <height>",
		Short: "Compute the CSS scale that fits the whole wall in a container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid width %q: %w", args[0], err)
			}
			height, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid height %q: %w", args[1], err)
			}
			style, err := a.client().ContentStyle(width, height)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(w, style)
			}
			if style.IsZero() {
				fmt.Fprintln(w, "no style: container or wall has no area")
				return nil
			}
			fmt.Fprintf(w, "transform: %s;\ntransform-origin: %s;\nfont-size: %s;\n",
				style.Transform, style.TransformOrigin, style.FontSize)
			return nil
		},
	}
}

func (a *app) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect the persisted cell mapping",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the persisted cell mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.client().LoadStore()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(w, data)
			}
			if len(data.Cells) == 0 {
				fmt.Fprintf(w, "nothing stored under %q\n", data.Key)
				return nil
			}
			keys := make([]string, 0, len(data.Cells))
			for k := range data.Cells {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\n", k, data.Cells[k].DataID)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted cell mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client().ClearStore()
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}
