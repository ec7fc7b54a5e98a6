package main

import (
	"github.com/1broseidon/tether/internal/ipc"
	"github.com/1broseidon/tether/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol integration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve MCP tools over stdio, forwarding to the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol; logs go to stderr only.
			logger := opts.logger(nil)
			client := ipc.NewClient()
			if err := client.Ping(); err != nil {
				logger.Warn("daemon not reachable, tools will fail until it starts", "error", err)
			}
			return mcp.NewServer(client, logger).Run(cmd.Context())
		},
	})
	return cmd
}
