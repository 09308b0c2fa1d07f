package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gorewood/guidedocs/internal/config"
	"github.com/gorewood/guidedocs/internal/output"
)

// newConfigCmd creates the config command.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings",
		Long: `Show the settings guidedocs would run with and where they came from.

Settings are read from --config, else ./` + config.FileName + `, else the
config dir. Environment variables override file values.

Examples:
  guidedocs config
  guidedocs config --json`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}
}

func runConfig(cmd *cobra.Command, _ []string) error {
	printer, err := newPrinter(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(stringFlag(cmd, "config"))
	if err != nil {
		err = output.UserErrorf("invalid configuration: %v", err)
		printer.Error(err)
		return err
	}

	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{
			"settings":   cfg,
			"config_dir": config.Dir(),
			"sheets":     cfg.SheetsEnabled(),
		})
	}

	source := cfg.Path
	if source == "" {
		source = "(defaults)"
	}

	printer.Section("Settings")
	printer.KeyValue("File", source)
	printer.KeyValue("Config dir", config.Dir())
	printer.KeyValue("Categories", strings.Join(cfg.Categories, ", "))
	printer.KeyValue("Workers", fmt.Sprintf("%d", cfg.Workers))
	printer.KeyValue("Probe timeout", cfg.ProbeTimeout.String())
	printer.KeyValue("Twitch parent", cfg.TwitchParent)

	printer.Section("Spreadsheet")
	printer.KeyValue("Enabled", fmt.Sprintf("%t", cfg.SheetsEnabled()))
	if cfg.SpreadsheetID != "" {
		printer.KeyValue("Spreadsheet", cfg.SpreadsheetID)
	}
	switch {
	case cfg.CredentialsFile != "":
		printer.KeyValue("Credentials", cfg.CredentialsFile)
	case cfg.APIKey != "":
		printer.KeyValue("Credentials", "API key from $"+config.EnvAPIKey)
	default:
		printer.KeyValue("Credentials", "none")
	}
	return nil
}
