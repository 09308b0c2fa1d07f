package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	guidedocsmcp "github.com/gorewood/guidedocs/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run guidedocs as a Model Context Protocol (MCP) server over stdio.

Guide editors can preview formatted channels from any MCP-capable client.
Logs go to stderr; stdout carries the protocol.

Configure in your client's MCP settings:
  {
    "mcpServers": {
      "guidedocs": {
        "command": "guidedocs",
        "args": ["serve"]
      }
    }
  }

Available tools: format_channel, split_channel, resolve_embed, sheet_cell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, d)
			if err != nil {
				return err
			}
			defer a.close()

			server := guidedocsmcp.NewServer(buildVersion(), guidedocsmcp.Services{
				Formatter: a.pipeline,
				Resolver:  a.resolver,
				Cells:     a.cells,
			})
			a.log.Debug("serving MCP over stdio")
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
