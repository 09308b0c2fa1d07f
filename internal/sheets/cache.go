// Package sheets resolves spreadsheet cell references to values.
//
// A Cache fetches each worksheet once per run and answers every later lookup
// from memory. Lookups never fail: anything that cannot be resolved, from a
// missing credential to an out-of-range cell, yields NotAvailable.
package sheets

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// NotAvailable is substituted for values that cannot be resolved.
const NotAvailable = "N/A"

// FetchTimeout bounds one worksheet fetch.
const FetchTimeout = 30 * time.Second

// Fetcher retrieves the full cell grid of one worksheet.
type Fetcher interface {
	FetchWorksheet(ctx context.Context, worksheet string) ([][]string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, worksheet string) ([][]string, error)

// FetchWorksheet calls f.
func (f FetcherFunc) FetchWorksheet(ctx context.Context, worksheet string) ([][]string, error) {
	return f(ctx, worksheet)
}

// Cache memoizes worksheet grids by name. It is safe for concurrent use;
// concurrent first lookups of one worksheet share a single fetch.
type Cache struct {
	fetcher Fetcher
	log     *zap.Logger

	mu     sync.RWMutex
	grids  map[string]worksheet
	flight singleflight.Group
}

// worksheet is a cached fetch outcome. A failed fetch is cached too so that
// one bad worksheet is not refetched for every reference.
type worksheet struct {
	cells [][]string
	ok    bool
}

// NewCache creates a Cache backed by fetcher. A nil logger disables logging.
func NewCache(fetcher Fetcher, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		fetcher: fetcher,
		log:     logger,
		grids:   make(map[string]worksheet),
	}
}

// Cell returns the value at ref (A1 notation) in the named worksheet, or
// NotAvailable.
func (c *Cache) Cell(ctx context.Context, name, ref string) string {
	row, col, err := ParseCellRef(ref)
	if err != nil {
		c.log.Debug("unparseable cell reference", zap.String("worksheet", name), zap.String("ref", ref))
		return NotAvailable
	}

	ws := c.worksheet(ctx, name)
	if !ws.ok || row < 0 || col < 0 || row >= len(ws.cells) || col >= len(ws.cells[row]) {
		return NotAvailable
	}
	return ws.cells[row][col]
}

// Grid returns a copy of the named worksheet's cells and whether it could be fetched.
func (c *Cache) Grid(ctx context.Context, name string) ([][]string, bool) {
	ws := c.worksheet(ctx, name)
	if !ws.ok {
		return nil, false
	}
	grid := make([][]string, len(ws.cells))
	for i, row := range ws.cells {
		grid[i] = append([]string(nil), row...)
	}
	return grid, true
}

// worksheet returns the cached worksheet, fetching it on first use.
func (c *Cache) worksheet(ctx context.Context, name string) worksheet {
	c.mu.RLock()
	ws, cached := c.grids[name]
	c.mu.RUnlock()
	if cached {
		return ws
	}

	// Fetches outlive the caller's ctx; only the fetch's own failures are cached.
	detached := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(name, func() (any, error) {
		c.mu.RLock()
		existing, done := c.grids[name]
		c.mu.RUnlock()
		if done {
			return existing, nil
		}

		fetched := c.fetch(detached, name)
		c.mu.Lock()
		c.grids[name] = fetched
		c.mu.Unlock()
		return fetched, nil
	})

	select {
	case res := <-ch:
		ws, _ = res.Val.(worksheet)
		return ws
	case <-ctx.Done():
		c.log.Debug("worksheet lookup abandoned", zap.String("worksheet", name), zap.Error(ctx.Err()))
		return worksheet{}
	}
}

func (c *Cache) fetch(ctx context.Context, name string) worksheet {
	if c.fetcher == nil {
		c.log.Warn("no spreadsheet fetcher configured", zap.String("worksheet", name))
		return worksheet{}
	}

	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	cells, err := c.fetcher.FetchWorksheet(ctx, name)
	if err != nil {
		c.log.Warn("worksheet fetch failed; values will be N/A",
			zap.String("worksheet", name), zap.Error(err))
		return worksheet{}
	}

	c.log.Debug("worksheet cached", zap.String("worksheet", name), zap.Int("rows", len(cells)))
	return worksheet{cells: cells, ok: true}
}
