package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gorewood/guidedocs/internal/config"
	"github.com/gorewood/guidedocs/internal/embed"
	"github.com/gorewood/guidedocs/internal/logging"
	"github.com/gorewood/guidedocs/internal/output"
	"github.com/gorewood/guidedocs/internal/pipeline"
	"github.com/gorewood/guidedocs/internal/sheets"
)

// deps are injectable collaborators. Zero values select the real ones.
type deps struct {
	httpClient embed.HTTPDoer
	fetcher    sheets.Fetcher
}

// app holds the components shared by one command invocation.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	printer  *output.Printer
	resolver *embed.Resolver
	cells    *sheets.Cache
	pipeline *pipeline.Pipeline
}

// newApp builds the printer, logger, settings and formatting components for
// cmd. Errors are already printed when returned.
func newApp(cmd *cobra.Command, d deps) (*app, error) {
	printer, err := newPrinter(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(boolFlag(cmd, "verbose"), cmd.ErrOrStderr())
	if err != nil {
		err = output.NewSystemErrorWithCause("failed to initialize logger", err)
		printer.Error(err)
		return nil, err
	}

	cfg, err := config.Load(stringFlag(cmd, "config"))
	if err != nil {
		err = output.UserErrorf("invalid configuration: %v", err)
		printer.Error(err)
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debug("loaded settings", zap.String("path", cfg.Path))
	}

	fetcher := d.fetcher
	if fetcher == nil && cfg.SheetsEnabled() {
		fetcher = sheets.NewGoogleFetcher(sheets.GoogleConfig{
			SpreadsheetID:   cfg.SpreadsheetID,
			CredentialsFile: cfg.CredentialsFile,
			APIKey:          cfg.APIKey,
		})
	}
	if fetcher == nil {
		logger.Debug("spreadsheet lookups disabled; tokens render as N/A")
	}

	resolver := embed.NewResolver(embed.Options{
		HTTPClient:   d.httpClient,
		Timeout:      cfg.ProbeTimeout,
		Workers:      cfg.Workers,
		TwitchParent: cfg.TwitchParent,
		Logger:       logger.Named("embed"),
	})
	cells := sheets.NewCache(fetcher, logger.Named("sheets"))

	return &app{
		cfg:      cfg,
		log:      logger,
		printer:  printer,
		resolver: resolver,
		cells:    cells,
		pipeline: pipeline.New(resolver, cells, pipeline.Options{
			Workers: cfg.Workers,
			Logger:  logger.Named("pipeline"),
		}),
	}, nil
}

// newPrinter builds the printer from the --json and --color flags.
func newPrinter(cmd *cobra.Command) (*output.Printer, error) {
	out := cmd.OutOrStdout()
	mode, err := output.ParseColorMode(stringFlag(cmd, "color"))
	if err != nil {
		printer := output.NewPrinter(out, isJSONMode(cmd), false).WithStderr(cmd.ErrOrStderr())
		printer.Error(err)
		return nil, err
	}
	color := mode.Enabled(output.IsTTY(out))
	return output.NewPrinter(out, isJSONMode(cmd), color).WithStderr(cmd.ErrOrStderr()), nil
}

func (a *app) close() {
	logging.Sync(a.log)
}
