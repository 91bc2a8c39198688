// Package httpx performs the clipper's outbound page and image fetches
// with browser-impersonation headers and per-host rate limits.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"tanaclip/internal/urlutil"
)

const (
	// DefaultTimeout bounds every outbound request.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxImageBytes caps cover-image downloads.
	DefaultMaxImageBytes = 10 << 20

	// maxPageBytes caps how much decoded HTML we are willing to parse.
	maxPageBytes = 20 << 20

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/119.0.0.0 Safari/537.36"
)

// FetchError carries the HTTP status of a failed outbound request.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch error (status %d)", e.Status)
	}
	return fmt.Sprintf("fetch error (status %d): %v", e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves pages and images over plain HTTP. It keeps one
// rate limiter per host so repeated clips of the same site stay polite.
type Fetcher struct {
	client        *http.Client
	userAgent     string
	timeout       time.Duration
	maxImageBytes int64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent overrides the browser-impersonation User-Agent.
// An empty value keeps the default.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxImageBytes caps image downloads. Defaults to DefaultMaxImageBytes.
func WithMaxImageBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxImageBytes = n
		}
	}
}

// NewFetcher creates a Fetcher with browser-like defaults.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent:     defaultUserAgent,
		timeout:       DefaultTimeout,
		maxImageBytes: DefaultMaxImageBytes,
		limiters:      map[string]*rate.Limiter{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// FetchPage GETs rawURL and returns the body decoded to UTF-8.
// Non-2xx responses come back as *FetchError.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (string, error) {
	resp, err := f.get(ctx, rawURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// FetchImage GETs rawURL and returns the raw bytes, bounded by the
// configured image size cap.
func (f *Fetcher) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := f.get(ctx, rawURL, "image/avif,image/webp,image/png,image/*;q=0.8,*/*;q=0.5")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > f.maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxImageBytes)
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	target, err := urlutil.Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	if err := f.limiterFor(req.URL).Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &FetchError{Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return resp, nil
}

func (f *Fetcher) limiterFor(u *url.URL) *rate.Limiter {
	host := u.Hostname()
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(time.Second), 2)
	f.limiters[host] = l
	return l
}
