package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/guidedocs/internal/embed"
)

// embedView is the JSON shape of one resolved link.
type embedView struct {
	URL   string       `json:"url"`
	Found bool         `json:"found"`
	Embed *embed.Embed `json:"embed,omitempty"`
}

// newEmbedCmd creates the embed command.
func newEmbedCmd(d deps) *cobra.Command {
	var htmlFlag bool

	cmd := &cobra.Command{
		Use:   "embed URL...",
		Short: "Show the embed generated for links",
		Long: `Resolve links the way the formatter does and show the result.

Known providers (imgur, YouTube, Twitch, Streamable, Pastebin) are matched
without network access. Other links are probed with a HEAD request and
embedded when they serve an image or video.

Examples:
  guidedocs embed https://youtu.be/dQw4w9WgXcQ
  guidedocs embed https://example.com/clip.mp4 --html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmbed(cmd, d, args, htmlFlag)
		},
	}

	cmd.Flags().BoolVar(&htmlFlag, "html", false, "Print the HTML fragment for each embeddable link")

	return cmd
}

func runEmbed(cmd *cobra.Command, d deps, urls []string, html bool) error {
	a, err := newApp(cmd, d)
	if err != nil {
		return err
	}
	defer a.close()

	results := a.resolver.ResolveAll(cmd.Context(), urls)

	if a.printer.IsJSON() {
		views := make([]embedView, 0, len(results))
		for _, res := range results {
			view := embedView{URL: res.URL, Found: res.Found}
			if res.Found {
				view.Embed = &res.Embed
			}
			views = append(views, view)
		}
		return a.printer.WriteJSON(views)
	}

	if html {
		for _, res := range results {
			if res.Found {
				a.printer.Println(res.Embed.HTML)
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(results))
	for _, res := range results {
		kind, provider := "-", "-"
		if res.Found {
			kind, provider = string(res.Embed.Kind), res.Embed.Provider
		}
		rows = append(rows, []string{res.URL, kind, provider})
	}
	a.printer.Table([]string{"URL", "KIND", "PROVIDER"}, rows)
	return nil
}
