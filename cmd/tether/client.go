package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/tether/internal/ipc"
	"github.com/1broseidon/tether/internal/registry"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newStatusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ipc.NewClient().GetStatus()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				return writeJSON(out, status)
			}
			writeStatus(out, status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON (default when stdout is not a terminal)")
	return cmd
}

func newReflowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reflow",
		Short: "Reposition the cluster around the anchor window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.NewClient().Reflow()
		},
	}
}

func newAnimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "animate <role> <x> <y>",
		Short: "Smoothly move a window to a position",
		Long:  "Animate a window to the given global screen position. Satellites follow once the move completes.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, x, y, err := parseAnimateArgs(args)
			if err != nil {
				return err
			}
			started, err := ipc.NewClient().Animate(string(role), x, y)
			if err != nil {
				return err
			}
			if !started {
				return fmt.Errorf("animation of %s was not started (window missing or target invalid)", role)
			}
			return nil
		},
	}
}

func newLockCmd(locked bool) *cobra.Command {
	use, short := "unlock", "Let the settings window follow the anchor again"
	if locked {
		use, short = "lock", "Keep the settings window where it is"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.NewClient().SetLock(locked)
		},
	}
}

func newBoundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bounds <role>",
		Short: "Print the current bounds of a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := registry.ParseRole(args[0])
			if err != nil {
				return err
			}
			data, err := ipc.NewClient().GetBounds(string(role))
			if err != nil {
				return err
			}
			if !data.Found {
				return fmt.Errorf("%s window not found", role)
			}
			b := data.Bounds
			fmt.Fprintf(cmd.OutOrStdout(), "%s: x=%d y=%d w=%d h=%d\n", role, b.X, b.Y, b.Width, b.Height)
			return nil
		},
	}
}

func newVisibleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visible <role>",
		Short: "Report whether a window is shown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := registry.ParseRole(args[0])
			if err != nil {
				return err
			}
			visible, err := ipc.NewClient().IsVisible(string(role))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), visible)
			return nil
		},
	}
}

func newDisplaysCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "displays",
		Short: "List the displays the daemon sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := ipc.NewClient().GetDisplays()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON || !isTerminal(out) {
				return writeJSON(out, data)
			}
			writeDisplays(out, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON (default when stdout is not a terminal)")
	return cmd
}

func parseAnimateArgs(args []string) (registry.Role, float64, float64, error) {
	if len(args) != 3 {
		return "", 0, 0, fmt.Errorf("expected <role> <x> <y>, got %d arguments", len(args))
	}
	role, err := registry.ParseRole(args[0])
	if err != nil {
		return "", 0, 0, err
	}
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid x %q: %w", args[1], err)
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid y %q: %w", args[2], err)
	}
	return role, x, y, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStatus(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running:  %v\n", s.DaemonRunning)
	fmt.Fprintf(w, "uptime_seconds:  %d\n", s.UptimeSeconds)
	fmt.Fprintf(w, "layout_passes:   %d\n", s.Passes)
	fmt.Fprintf(w, "strategy:        %s\n", orNone(s.Strategy.Name))
	fmt.Fprintf(w, "settings_locked: %v\n", s.SettingsLocked)
	fmt.Fprintf(w, "roles:           %s\n", joinRoles(s.Roles))
	fmt.Fprintf(w, "visible:         %s\n", joinRoles(s.Visible))
	fmt.Fprintf(w, "animating:       %s\n", joinRoles(s.Animating))
}

func writeDisplays(w io.Writer, data *ipc.DisplaysData) {
	if len(data.Displays) == 0 {
		fmt.Fprintln(w, "no displays")
		return
	}
	for _, d := range data.Displays {
		primary := ""
		if d.Primary {
			primary = " (primary)"
		}
		fmt.Fprintf(w, "%d %s%s: %dx%d+%d+%d usable %dx%d+%d+%d\n",
			d.ID, d.Name, primary,
			d.Bounds.Width, d.Bounds.Height, d.Bounds.X, d.Bounds.Y,
			d.Usable.Width, d.Usable.Height, d.Usable.X, d.Usable.Y)
	}
}

func joinRoles(roles []registry.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
