// Package envfile loads environment variables from .env files.
// Variables already set in the environment take precedence.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultFiles returns the files LoadAll reads by default, highest
// precedence first: .env.local and .env in the working directory, then the
// env file in configDir.
func DefaultFiles(configDir string) []string {
	files := []string{".env.local", ".env"}
	if configDir != "" {
		files = append(files, filepath.Join(configDir, "env"))
	}
	return files
}

// LoadAll loads each file in order. Earlier files win over later ones, and
// the process environment wins over all of them. Missing files are skipped.
func LoadAll(paths ...string) error {
	for _, path := range paths {
		if err := Load(path); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a .env file and sets any variables not already in the environment.
// Returns nil if the file doesn't exist.
func Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening env file %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // best-effort close on read-only file

	vars, err := Parse(file)
	if err != nil {
		return fmt.Errorf("reading env file %s: %w", path, err)
	}

	for key, value := range vars {
		if _, set := os.LookupEnv(key); !set {
			_ = os.Setenv(key, value)
		}
	}
	return nil
}

// Parse reads KEY=VALUE lines. Blank lines, comments and malformed lines are
// skipped. A later assignment of the same key replaces an earlier one.
func Parse(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if key, value, ok := parseLine(line); ok {
			vars[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// parseLine splits "[export ]KEY=VALUE", removing matching quotes around
// VALUE and a trailing " #comment" from unquoted values.
func parseLine(line string) (key, value string, ok bool) {
	key, value, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}

	key = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(key), "export "))
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}

	value = strings.TrimSpace(value)
	if n := len(value); n >= 2 && (value[0] == '"' || value[0] == '\'') && value[n-1] == value[0] {
		return key, value[1 : n-1], true
	}
	if i := strings.Index(value, " #"); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return key, value, true
}
