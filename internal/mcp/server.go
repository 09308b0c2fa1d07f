// Package mcp provides a Model Context Protocol server for guidedocs.
// It exposes channel formatting, embed resolution and spreadsheet lookups as
// MCP tools so guide editors can preview output from an MCP-capable client.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/guidedocs/internal/embed"
)

// ChannelFormatter converts a raw channel export to Markdown.
type ChannelFormatter interface {
	FormatChannel(ctx context.Context, raw string) (string, error)
}

// EmbedResolver resolves links to embeds.
type EmbedResolver interface {
	ResolveAll(ctx context.Context, urls []string) []embed.Result
}

// CellLookup resolves spreadsheet cell references.
type CellLookup interface {
	Cell(ctx context.Context, worksheet, ref string) string
}

// Services are the components the tools call into.
type Services struct {
	Formatter ChannelFormatter
	Resolver  EmbedResolver
	Cells     CellLookup
}

// NewServer creates an MCP server with all guidedocs tools registered.
func NewServer(version string, svc Services) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "guidedocs",
		Version: version,
	}, nil)
	registerTools(server, svc)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

// localAnnotations marks tools that only transform their input.
func localAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// networkAnnotations marks read-only tools that reach external hosts.
func networkAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(true),
	}
}

func registerTools(server *mcp.Server, svc Services) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "format_channel",
		Description: "Convert a raw channel export (messages separated by '.' command lines) into the Markdown page guidedocs would generate.",
		Annotations: networkAnnotations(),
	}, handleFormatChannel(svc.Formatter))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_embed",
		Description: "Resolve links to the HTML embed guidedocs would render for them. Known providers are matched locally; other links are probed with a HEAD request.",
		Annotations: networkAnnotations(),
	}, handleResolveEmbed(svc.Resolver))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sheet_cell",
		Description: "Look up one spreadsheet cell as used by $data_pvme:Worksheet!B2$ tokens. Returns N/A when the value cannot be resolved.",
		Annotations: networkAnnotations(),
	}, handleSheetCell(svc.Cells))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "split_channel",
		Description: "Split a raw channel export into its messages and their command lines without formatting them.",
		Annotations: localAnnotations(),
	}, handleSplitChannel())
}
