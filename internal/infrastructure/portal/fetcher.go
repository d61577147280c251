package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
)

const defaultUserAgent = "BillAnalyzer/1.0"

// FetcherOptions tunes the transport used against the portal.
type FetcherOptions struct {
	UserAgent string
	// MaxBytes caps a single response body; 0 disables the cap.
	MaxBytes int64
	// RequestsPerSecond throttles outgoing requests; 0 disables throttling.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Fetcher performs GET requests and reports any non-success as domain.ErrNotFound.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	limiter   *rate.Limiter
	logger    *slog.Logger
}

var _ ports.DocumentFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets a 30s timeout.
func NewFetcher(client *http.Client, opts FetcherOptions) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Fetcher{
		client:    client,
		userAgent: ua,
		maxBytes:  opts.MaxBytes,
		limiter:   limiter,
		logger:    logging.OrDiscard(opts.Logger),
	}
}

// Fetch downloads the body at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: wait for rate limiter: %w", domain.ErrNotFound, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrNotFound, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Debug("fetch failed", "url", rawURL, "error", err)
		return nil, fmt.Errorf("%w: request %s: %w", domain.ErrNotFound, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Debug("fetch rejected", "url", rawURL, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrNotFound, rawURL, resp.Status)
	}

	var reader io.Reader = resp.Body
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrNotFound, rawURL, err)
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrNotFound, rawURL, f.maxBytes)
	}

	f.logger.Debug("fetched", "url", rawURL, "bytes", len(body), "elapsed_ms", time.Since(start).Milliseconds())
	return body, nil
}

// FetchDocument downloads rawURL and parses it as HTML.
func (f *Fetcher) FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse document: %w", domain.ErrNotFound, err)
	}

	return doc, nil
}
