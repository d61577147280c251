package cache

import (
	"bytes"
	"context"
	"log/slog"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
)

// Fetcher memoizes downloads by URL.
type Fetcher struct {
	next   ports.DocumentFetcher
	store  *Store[[]byte]
	logger *slog.Logger
}

var _ ports.DocumentFetcher = (*Fetcher)(nil)

// NewFetcher wraps next with store.
func NewFetcher(next ports.DocumentFetcher, store *Store[[]byte], log *slog.Logger) *Fetcher {
	return &Fetcher{next: next, store: store, logger: logging.OrDiscard(log)}
}

// Fetch serves a stored body or delegates to the wrapped fetcher.
// Every caller gets its own copy; the stored body is never shared.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := f.store.Do(ctx, url, func(ctx context.Context) ([]byte, error) {
		f.logger.Debug("pdf cache miss", "url", url)
		return f.next.Fetch(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	return bytes.Clone(body), nil
}

// Analyzer memoizes analyses by PDF reference.
type Analyzer struct {
	next   ports.BillAnalyzer
	store  *Store[domain.AnalysisResult]
	logger *slog.Logger
}

var _ ports.BillAnalyzer = (*Analyzer)(nil)

// NewAnalyzer wraps next with store.
func NewAnalyzer(next ports.BillAnalyzer, store *Store[domain.AnalysisResult], log *slog.Logger) *Analyzer {
	return &Analyzer{next: next, store: store, logger: logging.OrDiscard(log)}
}

// Analyze serves a stored result or delegates to the wrapped analyzer.
func (a *Analyzer) Analyze(ctx context.Context, pdfReference string) (domain.AnalysisResult, error) {
	return a.store.Do(ctx, pdfReference, func(ctx context.Context) (domain.AnalysisResult, error) {
		a.logger.Debug("analysis cache miss", "pdf", pdfReference)
		return a.next.Analyze(ctx, pdfReference)
	})
}
