package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// ErrNoCredentials is returned when neither a credentials file nor an API key
// is configured.
var ErrNoCredentials = errors.New("no spreadsheet credentials configured")

// ErrNoSpreadsheet is returned when no spreadsheet id is configured.
var ErrNoSpreadsheet = errors.New("no spreadsheet id configured")

// GoogleConfig identifies the spreadsheet and how to authenticate to it.
type GoogleConfig struct {
	SpreadsheetID   string
	CredentialsFile string // service account JSON
	APIKey          string // used when CredentialsFile is empty
}

// GoogleFetcher fetches worksheets through the Google Sheets API.
// The API client is created on first fetch.
type GoogleFetcher struct {
	cfg GoogleConfig

	once    sync.Once
	service *sheetsapi.Service
	initErr error
}

// NewGoogleFetcher creates a fetcher for cfg. Configuration problems are
// reported by FetchWorksheet, not here, so a run without credentials still
// formats every document.
func NewGoogleFetcher(cfg GoogleConfig) *GoogleFetcher {
	return &GoogleFetcher{cfg: cfg}
}

// FetchWorksheet returns the formatted values of every cell in worksheet.
func (g *GoogleFetcher) FetchWorksheet(ctx context.Context, worksheet string) ([][]string, error) {
	service, err := g.client(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := service.Spreadsheets.Values.Get(g.cfg.SpreadsheetID, quoteSheetName(worksheet)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetching worksheet %q: %w", worksheet, err)
	}

	return toGrid(resp.Values), nil
}

func (g *GoogleFetcher) client(ctx context.Context) (*sheetsapi.Service, error) {
	g.once.Do(func() {
		opts, err := g.clientOptions()
		if err != nil {
			g.initErr = err
			return
		}
		g.service, g.initErr = sheetsapi.NewService(ctx, opts...)
		if g.initErr != nil {
			g.initErr = fmt.Errorf("creating sheets client: %w", g.initErr)
		}
	})
	return g.service, g.initErr
}

func (g *GoogleFetcher) clientOptions() ([]option.ClientOption, error) {
	if g.cfg.SpreadsheetID == "" {
		return nil, ErrNoSpreadsheet
	}
	switch {
	case g.cfg.CredentialsFile != "":
		return []option.ClientOption{
			option.WithCredentialsFile(g.cfg.CredentialsFile),
			option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope),
		}, nil
	case g.cfg.APIKey != "":
		return []option.ClientOption{option.WithAPIKey(g.cfg.APIKey)}, nil
	default:
		return nil, ErrNoCredentials
	}
}

// quoteSheetName makes a worksheet name safe to use as an A1 range.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// toGrid converts API values into text cells.
func toGrid(values [][]any) [][]string {
	grid := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprint(v)
		}
		grid[i] = cells
	}
	return grid
}
