// Package embed turns raw links into HTML embed fragments.
//
// Resolution runs in two tiers. Tier 1 matches known provider URL shapes
// (imgur, YouTube, Twitch, Streamable, Pastebin) and renders a fixed template
// with no network access. Tier 2 issues a HEAD request and embeds the URL as
// an image or video based on the response content type.
//
// Resolution never fails: a link that cannot be embedded simply yields no
// embed, and the caller keeps the plain link.
package embed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Kind identifies the HTML element an embed renders as.
type Kind string

// Embed kinds.
const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindFrame Kind = "iframe"
)

// DefaultTimeout bounds a single tier-2 probe.
const DefaultTimeout = 5 * time.Second

// DefaultWorkers bounds concurrent probes in ResolveAll.
const DefaultWorkers = 8

// Embed is a resolved link.
type Embed struct {
	Kind     Kind   `json:"kind"`
	Source   string `json:"source"`
	Provider string `json:"provider"`
	HTML     string `json:"html"`
}

// Result pairs a link with its resolution outcome.
type Result struct {
	URL   string
	Embed Embed
	Found bool
}

// HTTPDoer defines the HTTP operations required by Resolver.
// This allows injection of test doubles for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options configures a Resolver. Zero values select defaults.
type Options struct {
	HTTPClient   HTTPDoer
	Timeout      time.Duration
	Workers      int
	TwitchParent string
	Logger       *zap.Logger
}

// Resolver resolves links to embeds. It is safe for concurrent use; probe
// outcomes are memoized for the lifetime of the resolver. At most Workers
// probes are in flight at once across all callers.
type Resolver struct {
	client  HTTPDoer
	timeout time.Duration
	workers int
	parent  string
	log     *zap.Logger
	probes  *semaphore.Weighted

	mu     sync.RWMutex
	probed map[string]probeOutcome
	group  singleflight.Group
}

type probeOutcome struct {
	embed Embed
	found bool
}

// NewResolver creates a Resolver from opts.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		client:  opts.HTTPClient,
		timeout: opts.Timeout,
		workers: opts.Workers,
		parent:  opts.TwitchParent,
		log:     opts.Logger,
		probed:  make(map[string]probeOutcome),
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.workers <= 0 {
		r.workers = DefaultWorkers
	}
	if r.parent == "" {
		r.parent = DefaultTwitchParent
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	r.probes = semaphore.NewWeighted(int64(r.workers))
	return r
}

// Resolve returns the embed for url, or false if the link cannot be embedded.
func (r *Resolver) Resolve(ctx context.Context, url string) (Embed, bool) {
	if e, ok := Match(url, r.parent); ok {
		return e, true
	}

	if needsMetadataRewrite(url) {
		r.log.Debug("probing host page without metadata rewrite", zap.String("url", url))
	}

	target := ProbeTarget(url)

	r.mu.RLock()
	outcome, cached := r.probed[target]
	r.mu.RUnlock()
	if cached {
		return outcome.embed, outcome.found
	}

	// Probes outlive the caller's ctx; only the probe's own failures are cached.
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(target, func() (any, error) {
		e, found := r.probe(detached, target)
		out := probeOutcome{embed: e, found: found}
		r.mu.Lock()
		r.probed[target] = out
		r.mu.Unlock()
		return out, nil
	})

	select {
	case res := <-ch:
		outcome, _ = res.Val.(probeOutcome)
		return outcome.embed, outcome.found
	case <-ctx.Done():
		r.log.Debug("resolve abandoned", zap.String("url", url), zap.Error(ctx.Err()))
		return Embed{}, false
	}
}

// ResolveAll resolves urls concurrently, at most Workers at a time.
// Results are returned in input order.
func (r *Resolver) ResolveAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, url := range urls {
		g.Go(func() error {
			e, found := r.Resolve(gctx, url)
			results[i] = Result{URL: url, Embed: e, Found: found}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// probe issues a HEAD request for url and interprets the content type.
// Every failure is reported as not found. The timeout starts once a probe
// slot is free.
func (r *Resolver) probe(ctx context.Context, url string) (Embed, bool) {
	if err := r.probes.Acquire(ctx, 1); err != nil {
		return Embed{}, false
	}
	defer r.probes.Release(1)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		r.log.Debug("invalid probe url", zap.String("url", url), zap.Error(err))
		return Embed{}, false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Debug("probe failed", zap.String("url", url), zap.Error(err))
		return Embed{}, false
	}
	if resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.log.Debug("probe returned non-success status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return Embed{}, false
	}

	contentType := resp.Header.Get("Content-Type")
	e, found := fromContentType(url, contentType)
	if !found {
		r.log.Debug("probe returned unembeddable content type",
			zap.String("url", url), zap.String("content_type", contentType))
	}
	return e, found
}
