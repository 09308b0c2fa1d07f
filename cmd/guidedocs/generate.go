package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gorewood/guidedocs/internal/site"
)

// newGenerateCmd creates the generate command.
func newGenerateCmd(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   "generate INPUT_DIR OUTPUT_DIR MKDOCS_YML",
		Short: "Generate the guide pages and mkdocs nav",
		Long: `Generate Markdown pages for every channel export and rewrite the mkdocs nav.

INPUT_DIR holds one directory per category containing <channel>.txt exports.
Pages are written to OUTPUT_DIR/pvme-guides/<category>/<channel>.md; that
directory is recreated on every run. The nav key of MKDOCS_YML is replaced
with index.md followed by one section per category; other keys are kept.

Examples:
  guidedocs generate ../pvme-guides ./docs ./mkdocs.yml
  guidedocs generate ../pvme-guides ./docs ./mkdocs.yml --json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, d, args[0], args[1], args[2])
		},
	}
}

func runGenerate(cmd *cobra.Command, d deps, inputDir, docsDir, mkdocs string) error {
	a, err := newApp(cmd, d)
	if err != nil {
		return err
	}
	defer a.close()

	result, err := site.Generate(cmd.Context(), site.Options{
		InputDir:   inputDir,
		DocsDir:    docsDir,
		MkdocsFile: mkdocs,
		Categories: a.cfg.Categories,
		Formatter:  a.pipeline,
		Workers:    a.cfg.Workers,
		Logger:     a.log.Named("site"),
	})
	if err != nil {
		a.printer.Error(err)
		return err
	}

	if a.printer.IsJSON() {
		return a.printer.WriteJSON(result)
	}

	for _, category := range result.Categories {
		a.printer.KeyValue(category.Title, fmt.Sprintf("%d channels", len(category.Channels)))
	}
	return a.printer.Success(map[string]any{
		"message": fmt.Sprintf("Generated %d channels in %d categories", result.Channels, len(result.Categories)),
	})
}
