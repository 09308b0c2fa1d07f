// Package site generates the MkDocs sources for a directory of channel
// exports.
//
// The input directory holds one subdirectory per category, each containing
// channel exports named <channel>.txt:
//
//	pvme-guides/
//	  getting-started/
//	    perks.txt
//	  high-tier-pvm/
//	    telos.txt
//	    solak.txt
//
// Generate formats every channel into <output>/pvme-guides/<category>/<channel>.md
// and rewrites the nav of mkdocs.yml to list them:
//
//	nav:
//	  - index.md
//	  - Getting started:
//	      - pvme-guides/getting-started/perks.md
//	  - High tier pvm:
//	      - pvme-guides/high-tier-pvm/solak.md
//	      - pvme-guides/high-tier-pvm/telos.md
//
// Only categories in the configured order are generated; other directories
// and files (README.md, LICENSE) are ignored.
package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gorewood/guidedocs/internal/output"
)

// GuidesDir is the directory under the docs root that receives generated pages.
const GuidesDir = "pvme-guides"

// channelExt marks channel export files.
const channelExt = ".txt"

// DefaultWorkers bounds the number of channels formatted at once.
const DefaultWorkers = 4

// DefaultCategories is the category order used when none is configured.
var DefaultCategories = []string{
	"information",
	"getting-started",
	"upgrading-info",
	"miscellaneous-information",
	"dpm-advice",
	"low-tier-pvm",
	"mid-tier-pvm",
	"high-tier-pvm",
}

// Formatter converts one raw channel export to Markdown.
type Formatter interface {
	FormatChannel(ctx context.Context, raw string) (string, error)
}

// Options configures Generate.
type Options struct {
	// InputDir holds the category directories.
	InputDir string
	// DocsDir is the MkDocs docs directory; pages go to DocsDir/pvme-guides.
	DocsDir string
	// MkdocsFile is the mkdocs.yml whose nav is rewritten.
	MkdocsFile string
	// Categories is the category order. Empty uses DefaultCategories.
	Categories []string
	// Formatter formats each channel. Required.
	Formatter Formatter
	// Workers bounds concurrent channel formatting. Zero uses DefaultWorkers.
	Workers int
	Logger  *zap.Logger
}

// Category is one generated nav section.
type Category struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Channels []string `json:"channels"`
}

// Result summarizes a generation run.
type Result struct {
	Categories []Category `json:"categories"`
	Channels   int        `json:"channels"`
}

// Generate formats every channel of the configured categories and updates
// the mkdocs nav. The pvme-guides output directory is recreated on every run.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if opts.Formatter == nil {
		return nil, output.NewSystemError("site: no formatter configured")
	}
	if len(opts.Categories) == 0 {
		opts.Categories = DefaultCategories
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if info, err := os.Stat(opts.InputDir); err != nil || !info.IsDir() {
		return nil, output.NewUserError(fmt.Sprintf("input directory %s does not exist", opts.InputDir))
	}

	guides := filepath.Join(opts.DocsDir, GuidesDir)
	if err := os.RemoveAll(guides); err != nil {
		return nil, output.NewSystemErrorWithCause("failed to clear "+guides, err)
	}
	if err := os.MkdirAll(guides, 0o755); err != nil {
		return nil, output.NewSystemErrorWithCause("failed to create "+guides, err)
	}

	result := &Result{}
	for _, name := range opts.Categories {
		category, ok, err := generateCategory(ctx, opts, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		result.Categories = append(result.Categories, category)
		result.Channels += len(category.Channels)
	}

	if err := UpdateNav(opts.MkdocsFile, result.Categories); err != nil {
		return nil, err
	}

	opts.Logger.Info("generated site",
		zap.Int("categories", len(result.Categories)),
		zap.Int("channels", result.Channels),
		zap.String("docs", opts.DocsDir),
	)
	return result, nil
}

// generateCategory formats the channels of one category. It reports false
// when the category directory does not exist.
func generateCategory(ctx context.Context, opts Options, name string) (Category, bool, error) {
	srcDir := filepath.Join(opts.InputDir, name)
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		opts.Logger.Debug("skipping missing category", zap.String("category", name))
		return Category{}, false, nil
	}

	channels, err := channelNames(srcDir)
	if err != nil {
		return Category{}, false, err
	}

	dstDir := filepath.Join(opts.DocsDir, GuidesDir, name)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return Category{}, false, output.NewSystemErrorWithCause("failed to create "+dstDir, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, channel := range channels {
		g.Go(func() error {
			return writeChannel(gctx, opts.Formatter,
				filepath.Join(srcDir, channel+channelExt),
				filepath.Join(dstDir, channel+".md"))
		})
	}
	if err := g.Wait(); err != nil {
		return Category{}, false, err
	}

	category := Category{Name: name, Title: CategoryTitle(name)}
	for _, channel := range channels {
		category.Channels = append(category.Channels, NavPath(name, channel))
	}
	opts.Logger.Debug("generated category",
		zap.String("category", name),
		zap.Int("channels", len(channels)),
	)
	return category, true, nil
}

// channelNames lists the channel exports in dir, sorted, without extension.
func channelNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to read "+dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != channelExt {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), channelExt))
	}
	slices.Sort(names)
	return names, nil
}

func writeChannel(ctx context.Context, formatter Formatter, src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to read "+src, err)
	}

	markdown, err := formatter.FormatChannel(ctx, string(raw))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return output.NewSystemErrorWithCause("failed to format "+src, err)
	}

	if err := os.WriteFile(dst, []byte(markdown), 0o644); err != nil {
		return output.NewSystemErrorWithCause("failed to write "+dst, err)
	}
	return nil
}

// CategoryTitle converts a category directory name to its nav title:
// "high-tier-pvm" becomes "High tier pvm".
func CategoryTitle(name string) string {
	title := strings.ToLower(strings.ReplaceAll(name, "-", " "))
	if title == "" {
		return ""
	}
	return strings.ToUpper(title[:1]) + title[1:]
}

// NavPath returns the docs-relative path of a generated channel page.
func NavPath(category, channel string) string {
	return GuidesDir + "/" + category + "/" + channel + ".md"
}
