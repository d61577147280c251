package ports

import (
	"context"

	"BillAnalyzer/internal/domain"
)

// DocumentFetcher downloads raw bytes by URL. Any failure wraps domain.ErrNotFound.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// BillResolver finds a bill on the portal and reads its detail page.
type BillResolver interface {
	Resolve(ctx context.Context, id domain.BillIdentifier) (domain.BillReference, error)
	ResolveAndExtract(ctx context.Context, id domain.BillIdentifier) (domain.BillReference, domain.BillDetails, error)
}

// CompletionService returns JSON text conforming to the requested fields.
type CompletionService interface {
	CompleteStructured(ctx context.Context, req domain.CompletionRequest) ([]byte, error)
}

// BillAnalyzer turns a PDF reference into an analysis.
type BillAnalyzer interface {
	Analyze(ctx context.Context, pdfReference string) (domain.AnalysisResult, error)
}

// ProgressReporter receives processed/total after each batch row.
type ProgressReporter interface {
	Report(processed, total int)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(processed, total int)

// Report calls f.
func (f ProgressFunc) Report(processed, total int) {
	if f != nil {
		f(processed, total)
	}
}
