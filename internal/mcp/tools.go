package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/guidedocs/internal/message"
	"github.com/gorewood/guidedocs/internal/sheets"
)

// maxEmbedURLs bounds one resolve_embed call.
const maxEmbedURLs = 50

// --- format_channel ---

// FormatChannelInput is the input for the format_channel tool.
type FormatChannelInput struct {
	Content string `json:"content" jsonschema:"raw channel export text"`
}

// FormatChannelOutput is the output for the format_channel tool.
type FormatChannelOutput struct {
	Markdown string `json:"markdown" jsonschema:"generated Markdown page"`
	Messages int    `json:"messages" jsonschema:"number of messages in the export"`
}

func handleFormatChannel(formatter ChannelFormatter) mcp.ToolHandlerFor[FormatChannelInput, FormatChannelOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in FormatChannelInput) (*mcp.CallToolResult, FormatChannelOutput, error) {
		if formatter == nil {
			return nil, FormatChannelOutput{}, errors.New("formatter not configured")
		}
		if strings.TrimSpace(in.Content) == "" {
			return nil, FormatChannelOutput{}, errors.New("content is required")
		}

		markdown, err := formatter.FormatChannel(ctx, in.Content)
		if err != nil {
			return nil, FormatChannelOutput{}, fmt.Errorf("formatting channel: %w", err)
		}

		return nil, FormatChannelOutput{
			Markdown: markdown,
			Messages: len(message.Split(in.Content)),
		}, nil
	}
}

// --- split_channel ---

// SplitChannelInput is the input for the split_channel tool.
type SplitChannelInput struct {
	Content string `json:"content" jsonschema:"raw channel export text"`
}

// SplitMessage is one message of a split export.
type SplitMessage struct {
	Content string `json:"content"           jsonschema:"message text"`
	Command string `json:"command,omitempty" jsonschema:"command line that ended the message"`
}

// SplitChannelOutput is the output for the split_channel tool.
type SplitChannelOutput struct {
	Messages []SplitMessage `json:"messages" jsonschema:"messages in source order"`
}

func handleSplitChannel() mcp.ToolHandlerFor[SplitChannelInput, SplitChannelOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, in SplitChannelInput) (*mcp.CallToolResult, SplitChannelOutput, error) {
		msgs := message.Split(in.Content)
		out := SplitChannelOutput{Messages: make([]SplitMessage, 0, len(msgs))}
		for _, msg := range msgs {
			out.Messages = append(out.Messages, SplitMessage{Content: msg.Content, Command: msg.Command})
		}
		return nil, out, nil
	}
}

// --- resolve_embed ---

// ResolveEmbedInput is the input for the resolve_embed tool.
type ResolveEmbedInput struct {
	URLs []string `json:"urls" jsonschema:"links to resolve"`
}

// EmbedSummary describes the embed for one link.
type EmbedSummary struct {
	URL      string `json:"url"                jsonschema:"link as given"`
	Found    bool   `json:"found"              jsonschema:"whether the link can be embedded"`
	Kind     string `json:"kind,omitempty"     jsonschema:"image, video or iframe"`
	Provider string `json:"provider,omitempty" jsonschema:"matched provider, or probe"`
	HTML     string `json:"html,omitempty"     jsonschema:"HTML fragment appended to the message"`
}

// ResolveEmbedOutput is the output for the resolve_embed tool.
type ResolveEmbedOutput struct {
	Embeds []EmbedSummary `json:"embeds" jsonschema:"one result per link, in input order"`
}

func handleResolveEmbed(resolver EmbedResolver) mcp.ToolHandlerFor[ResolveEmbedInput, ResolveEmbedOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ResolveEmbedInput) (*mcp.CallToolResult, ResolveEmbedOutput, error) {
		if resolver == nil {
			return nil, ResolveEmbedOutput{}, errors.New("resolver not configured")
		}
		if len(in.URLs) == 0 {
			return nil, ResolveEmbedOutput{}, errors.New("at least one url is required")
		}
		if len(in.URLs) > maxEmbedURLs {
			return nil, ResolveEmbedOutput{}, fmt.Errorf("too many urls: %d (max %d)", len(in.URLs), maxEmbedURLs)
		}

		results := resolver.ResolveAll(ctx, in.URLs)
		out := ResolveEmbedOutput{Embeds: make([]EmbedSummary, 0, len(results))}
		for _, res := range results {
			summary := EmbedSummary{URL: res.URL, Found: res.Found}
			if res.Found {
				summary.Kind = string(res.Embed.Kind)
				summary.Provider = res.Embed.Provider
				summary.HTML = res.Embed.HTML
			}
			out.Embeds = append(out.Embeds, summary)
		}
		return nil, out, nil
	}
}

// --- sheet_cell ---

// SheetCellInput is the input for the sheet_cell tool.
type SheetCellInput struct {
	Worksheet string `json:"worksheet" jsonschema:"worksheet name"`
	Ref       string `json:"ref"       jsonschema:"A1-style cell reference such as B2"`
}

// SheetCellOutput is the output for the sheet_cell tool.
type SheetCellOutput struct {
	Worksheet string `json:"worksheet" jsonschema:"worksheet name"`
	Ref       string `json:"ref"       jsonschema:"cell reference"`
	Value     string `json:"value"     jsonschema:"cell value, or N/A"`
	Available bool   `json:"available" jsonschema:"false when the value could not be resolved"`
}

func handleSheetCell(cells CellLookup) mcp.ToolHandlerFor[SheetCellInput, SheetCellOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SheetCellInput) (*mcp.CallToolResult, SheetCellOutput, error) {
		if cells == nil {
			return nil, SheetCellOutput{}, errors.New("spreadsheet not configured")
		}
		if in.Worksheet == "" {
			return nil, SheetCellOutput{}, errors.New("worksheet is required")
		}
		if _, _, err := sheets.ParseCellRef(in.Ref); err != nil {
			return nil, SheetCellOutput{}, err
		}

		value := cells.Cell(ctx, in.Worksheet, in.Ref)
		return nil, SheetCellOutput{
			Worksheet: in.Worksheet,
			Ref:       in.Ref,
			Value:     value,
			Available: value != sheets.NotAvailable,
		}, nil
	}
}
