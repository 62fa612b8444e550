package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/screenwall/internal/mcp"
)

func (a *app) mcpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Every tool call is forwarded to the running
daemon, so start it first with 'screenwall daemon'.

Example (Claude Code):
  claude mcp add screenwall -- screenwall mcp serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := mcp.NewServer(a.client().WithTimeout(openTimeout), a.logger.With("component", "mcp"))
			return server.Run(cmd.Context())
		},
	})
	return cmd
}
