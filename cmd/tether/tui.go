package main

import (
	"fmt"
	"os"

	"github.com/1broseidon/tether/internal/ipc"
	"github.com/1broseidon/tether/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive cluster monitor",
		Long:  "Live view of the cluster windows with keys to reflow, toggle the settings lock and edit layout settings. Works without a running daemon for editing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
			}
			res, path, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return tui.Run(ipc.NewClient(), path, res.Config)
		},
	}
}
