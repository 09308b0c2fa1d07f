//nolint:bodyclose // Test file uses mock responses with NopCloser bodies
package embed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockHTTPDoer implements HTTPDoer for testing.
type mockHTTPDoer struct {
	response *http.Response
	err      error
	calls    atomic.Int32
	methods  chan string
}

func (m *mockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	m.calls.Add(1)
	if m.methods != nil {
		m.methods <- req.Method
	}
	return m.response, m.err
}

// mockResponse creates a mock HTTP response with the given status and content type.
func mockResponse(statusCode int, contentType string) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       io.NopCloser(bytes.NewBufferString("")),
	}
}

func TestResolve_TierOneSkipsNetwork(t *testing.T) {
	doer := &mockHTTPDoer{err: errors.New("network must not be used")}
	resolver := NewResolver(Options{HTTPClient: doer, Logger: zaptest.NewLogger(t)})

	got, ok := resolver.Resolve(context.Background(), "https://youtu.be/ABC123")
	if !ok {
		t.Fatal("expected youtu.be link to resolve")
	}
	if !strings.Contains(got.HTML, "https://www.youtube.com/embed/ABC123") {
		t.Errorf("HTML = %s, want youtube embed for ABC123", got.HTML)
	}
	if n := doer.calls.Load(); n != 0 {
		t.Errorf("HTTP calls = %d, want 0", n)
	}
}

func TestResolve_Probe(t *testing.T) {
	tests := []struct {
		name     string
		response *http.Response
		err      error
		wantOK   bool
		wantKind Kind
		wantHTML string
	}{
		{
			name:     "image content type",
			response: mockResponse(http.StatusOK, "image/png"),
			wantOK:   true,
			wantKind: KindImage,
			wantHTML: `<img class="media" src="https://cdn.example.com/pic">`,
		},
		{
			name:     "video content type",
			response: mockResponse(http.StatusOK, "video/mp4"),
			wantOK:   true,
			wantKind: KindVideo,
			wantHTML: `<video class="media" autoplay loop muted controls><source src="https://cdn.example.com/pic"></video>`,
		},
		{
			name:     "uppercase content type with parameters",
			response: mockResponse(http.StatusNoContent, "Image/JPEG; charset=binary"),
			wantOK:   true,
			wantKind: KindImage,
		},
		{
			name:     "html page",
			response: mockResponse(http.StatusOK, "text/html; charset=utf-8"),
			wantOK:   false,
		},
		{
			name:     "missing content type",
			response: mockResponse(http.StatusOK, ""),
			wantOK:   false,
		},
		{
			name:     "not found",
			response: mockResponse(http.StatusNotFound, "image/png"),
			wantOK:   false,
		},
		{
			name:     "redirect status",
			response: mockResponse(http.StatusMovedPermanently, "image/png"),
			wantOK:   false,
		},
		{
			name:   "transport error",
			err:    errors.New("dial tcp: lookup cdn.example.com: no such host"),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := &mockHTTPDoer{response: tt.response, err: tt.err}
			resolver := NewResolver(Options{HTTPClient: doer, Logger: zaptest.NewLogger(t)})

			got, ok := resolver.Resolve(context.Background(), "https://cdn.example.com/pic")
			if ok != tt.wantOK {
				t.Fatalf("Resolve() ok = %v, want %v (embed %+v)", ok, tt.wantOK, got)
			}
			if !ok {
				return
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
			if tt.wantHTML != "" && got.HTML != tt.wantHTML {
				t.Errorf("HTML = %q, want %q", got.HTML, tt.wantHTML)
			}
		})
	}
}

func TestResolve_UsesHEAD(t *testing.T) {
	doer := &mockHTTPDoer{response: mockResponse(http.StatusOK, "image/gif"), methods: make(chan string, 1)}
	resolver := NewResolver(Options{HTTPClient: doer})

	resolver.Resolve(context.Background(), "https://example.com/a.gif")

	if method := <-doer.methods; method != http.MethodHead {
		t.Errorf("method = %q, want HEAD", method)
	}
}

func TestResolve_GifvProbesMP4(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".mp4") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
	}))
	defer srv.Close()

	resolver := NewResolver(Options{HTTPClient: srv.Client()})
	got, ok := resolver.Resolve(context.Background(), srv.URL+"/clip.gifv")
	if !ok {
		t.Fatal("expected gifv link to resolve as video")
	}
	if got.Kind != KindVideo {
		t.Errorf("Kind = %q, want video", got.Kind)
	}
	if got.Source != srv.URL+"/clip.mp4" {
		t.Errorf("Source = %q, want rewritten mp4 url", got.Source)
	}
}

func TestResolve_TimeoutYieldsNothing(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
		w.Header().Set("Content-Type", "image/png")
	}))
	defer srv.Close()
	defer close(release)

	resolver := NewResolver(Options{
		HTTPClient: srv.Client(),
		Timeout:    50 * time.Millisecond,
		Logger:     zaptest.NewLogger(t),
	})

	start := time.Now()
	_, ok := resolver.Resolve(context.Background(), srv.URL+"/slow.png")
	if ok {
		t.Fatal("expected slow host to yield no embed")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Resolve took %v, want it bounded by the probe timeout", elapsed)
	}
}

func TestResolve_MemoizesProbes(t *testing.T) {
	doer := &mockHTTPDoer{response: mockResponse(http.StatusOK, "image/png")}
	resolver := NewResolver(Options{HTTPClient: doer})

	for range 3 {
		if _, ok := resolver.Resolve(context.Background(), "https://example.com/a.png"); !ok {
			t.Fatal("expected link to resolve")
		}
	}
	if n := doer.calls.Load(); n != 1 {
		t.Errorf("HTTP calls = %d, want 1", n)
	}
}

func TestResolveAll_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "slow.png"):
			time.Sleep(30 * time.Millisecond)
			w.Header().Set("Content-Type", "image/png")
		case strings.HasSuffix(r.URL.Path, ".png"):
			w.Header().Set("Content-Type", "image/png")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	resolver := NewResolver(Options{HTTPClient: srv.Client(), Workers: 2})
	urls := []string{
		srv.URL + "/slow.png",
		"https://youtu.be/XYZ",
		srv.URL + "/missing",
		srv.URL + "/fast.png",
	}

	results := resolver.ResolveAll(context.Background(), urls)
	if len(results) != len(urls) {
		t.Fatalf("got %d results, want %d", len(results), len(urls))
	}

	wantFound := []bool{true, true, false, true}
	for i, res := range results {
		if res.URL != urls[i] {
			t.Errorf("results[%d].URL = %q, want %q", i, res.URL, urls[i])
		}
		if res.Found != wantFound[i] {
			t.Errorf("results[%d].Found = %v, want %v", i, res.Found, wantFound[i])
		}
	}
}

func TestNewResolver_Defaults(t *testing.T) {
	resolver := NewResolver(Options{})

	if resolver.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", resolver.timeout, DefaultTimeout)
	}
	if resolver.workers != DefaultWorkers {
		t.Errorf("workers = %d, want %d", resolver.workers, DefaultWorkers)
	}
	if resolver.parent != DefaultTwitchParent {
		t.Errorf("parent = %q, want %q", resolver.parent, DefaultTwitchParent)
	}
}

// gatedDoer blocks every request until release is closed, then answers with
// an image unless the request context was cancelled.
type gatedDoer struct {
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedDoer) Do(req *http.Request) (*http.Response, error) {
	g.calls.Add(1)
	<-g.release
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	return mockResponse(http.StatusOK, "image/png"), nil
}

func TestResolve_CancelledCallerDoesNotCacheMiss(t *testing.T) {
	doer := &gatedDoer{release: make(chan struct{})}
	resolver := NewResolver(Options{HTTPClient: doer})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := resolver.Resolve(ctx, "https://example.com/a.png"); ok {
		t.Fatal("cancelled caller should get no embed")
	}

	close(doer.release)
	got, ok := resolver.Resolve(context.Background(), "https://example.com/a.png")
	if !ok {
		t.Fatal("later caller should see the real outcome")
	}
	if got.Kind != KindImage {
		t.Errorf("Kind = %q, want %q", got.Kind, KindImage)
	}
	if n := doer.calls.Load(); n != 1 {
		t.Errorf("HTTP calls = %d, want 1", n)
	}
}

// concurrencyDoer records the peak number of requests in flight.
type concurrencyDoer struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *concurrencyDoer) Do(_ *http.Request) (*http.Response, error) {
	n := c.inFlight.Add(1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	c.inFlight.Add(-1)
	return mockResponse(http.StatusOK, "video/mp4"), nil
}

func TestResolve_WorkersBoundRequestsAcrossCallers(t *testing.T) {
	doer := &concurrencyDoer{}
	resolver := NewResolver(Options{HTTPClient: doer, Workers: 2})

	var wg sync.WaitGroup
	for caller := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			urls := make([]string, 0, 5)
			for i := range 5 {
				urls = append(urls, fmt.Sprintf("https://example.com/%d/%d.mp4", caller, i))
			}
			for _, res := range resolver.ResolveAll(context.Background(), urls) {
				if !res.Found {
					t.Errorf("%s not resolved", res.URL)
				}
			}
		}()
	}
	wg.Wait()

	if peak := doer.peak.Load(); peak > 2 {
		t.Errorf("peak concurrent requests = %d, want at most 2", peak)
	}
}
