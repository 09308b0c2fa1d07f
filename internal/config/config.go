package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gorewood/guidedocs/internal/embed"
	"github.com/gorewood/guidedocs/internal/site"
)

// FileName is the settings file looked up in the working directory and Dir().
const FileName = "guidedocs.yaml"

// Environment variables that override the settings file.
const (
	EnvSheetID     = "GUIDEDOCS_SHEET_ID"
	EnvCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvAPIKey      = "GOOGLE_API_KEY"
)

// Config holds guidedocs settings.
type Config struct {
	// Categories is the category generation order.
	Categories []string `yaml:"categories" json:"categories"`
	// SpreadsheetID identifies the spreadsheet behind $data_pvme tokens.
	SpreadsheetID string `yaml:"spreadsheet_id" json:"spreadsheet_id,omitempty"`
	// CredentialsFile is a service-account key for the Sheets API.
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file,omitempty"`
	// ProbeTimeout bounds each embed HEAD probe.
	ProbeTimeout time.Duration `yaml:"probe_timeout" json:"probe_timeout"`
	// Workers bounds concurrent probes and message formatting.
	Workers int `yaml:"workers" json:"workers"`
	// TwitchParent is the embedding site's host, required by Twitch players.
	TwitchParent string `yaml:"twitch_parent" json:"twitch_parent"`

	// APIKey is read from the environment only.
	APIKey string `yaml:"-" json:"-"`
	// Path is the file the settings were read from, "" for defaults.
	Path string `yaml:"-" json:"path,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Categories:   slices.Clone(site.DefaultCategories),
		ProbeTimeout: embed.DefaultTimeout,
		Workers:      embed.DefaultWorkers,
		TwitchParent: embed.DefaultTwitchParent,
	}
}

// Load reads settings from path, or from the first FileName found in the
// working directory and Dir() when path is empty. A missing file yields the
// defaults; an explicit path that does not exist is an error. Environment
// variables are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Find()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
			cfg.Path = path
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find returns the first existing settings file, or "".
func Find() string {
	candidates := []string{FileName}
	if dir := Dir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, FileName))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// decode overlays YAML onto cfg. Unknown keys are rejected so typos surface.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSheetID); v != "" {
		c.SpreadsheetID = v
	}
	if v := os.Getenv(EnvCredentials); v != "" {
		c.CredentialsFile = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
	}
	if len(c.Categories) == 0 {
		return errors.New("categories must not be empty")
	}
	return nil
}

// SheetsEnabled reports whether spreadsheet lookups can reach the API.
func (c *Config) SheetsEnabled() bool {
	return c.SpreadsheetID != "" && (c.CredentialsFile != "" || c.APIKey != "")
}
