// Package main provides the entry point for the guidedocs CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gorewood/guidedocs/internal/config"
	"github.com/gorewood/guidedocs/internal/envfile"
	"github.com/gorewood/guidedocs/internal/output"
)

// Build info set via ldflags at build time by goreleaser.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// boolFlag reads a persistent bool flag from the command hierarchy.
func boolFlag(cmd *cobra.Command, name string) bool {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	return flag != nil && flag.Value.String() == "true"
}

// stringFlag reads a persistent string flag from the command hierarchy.
func stringFlag(cmd *cobra.Command, name string) string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup(name)
	}
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}

func isJSONMode(cmd *cobra.Command) bool {
	return boolFlag(cmd, "json")
}

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}

// newRootCmd creates the root command for the guidedocs CLI.
func newRootCmd() *cobra.Command {
	return newRootCmdInternal(deps{})
}

// newRootCmdInternal creates the root command with injectable dependencies.
func newRootCmdInternal(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guidedocs",
		Short: "Generate MkDocs guide pages from chat channel exports",
		Long: `guidedocs converts exported chat channels into a Markdown documentation site.

Each channel export is split into messages at '.' command lines, and every
message is rewritten for the web:
  - "> __**Title:**__" lines become section headings
  - custom emoji become images, __underline__ becomes <u>
  - links to images, videos and known players get embeds
  - $data_pvme:Sheet!B2$ tokens are replaced with spreadsheet values

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := output.NewPrinter(cmd.OutOrStdout(), true, false)
				err := output.NewUserError("no command specified. Run 'guidedocs --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		loadEnvFiles()
		return nil
	}

	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug details (probe misses, sheet fetches) to stderr")
	cmd.PersistentFlags().String("config", "", "Settings file (default: ./"+config.FileName+", then the config dir)")
	cmd.PersistentFlags().String("color", string(output.ColorAuto), "Color output: auto, always or never")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd, d)

	return cmd
}

// loadEnvFiles loads .env.local, .env and the config dir env file.
// Variables already in the environment take precedence.
func loadEnvFiles() {
	_ = envfile.LoadAll(envfile.DefaultFiles(config.Dir())...)
}

func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "build", Title: "Build Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "inspect", Title: "Inspect Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "integrate", Title: "Integration Commands:"})
}

func addCommands(cmd *cobra.Command, d deps) {
	addGroupedCommand(cmd, newGenerateCmd(d), "build")
	addGroupedCommand(cmd, newFormatCmd(d), "build")

	addGroupedCommand(cmd, newEmbedCmd(d), "inspect")
	addGroupedCommand(cmd, newCellCmd(d), "inspect")
	addGroupedCommand(cmd, newConfigCmd(), "inspect")

	addGroupedCommand(cmd, newServeCmd(d), "integrate")
}

func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
