package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/infrastructure/portal"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
)

const pdfMIMEType = "application/pdf"

// Options configures an Engine.
type Options struct {
	// BaseURL prefixes PDF references that have no scheme.
	BaseURL string
	// Instruction is sent verbatim with every document.
	Instruction string
	Logger      *slog.Logger
}

// Engine fetches a bill PDF and asks the completion service for a structured opinion.
type Engine struct {
	documents   ports.DocumentFetcher
	completion  ports.CompletionService
	validator   *Validator
	base        *url.URL
	instruction string
	logger      *slog.Logger
}

var _ ports.BillAnalyzer = (*Engine)(nil)

// NewEngine wires the PDF source and completion service.
func NewEngine(documents ports.DocumentFetcher, completion ports.CompletionService, opts Options) (*Engine, error) {
	if documents == nil || completion == nil {
		return nil, fmt.Errorf("analysis engine requires a document fetcher and a completion service")
	}
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil || base.Scheme == "" {
		return nil, fmt.Errorf("invalid portal base url %q", opts.BaseURL)
	}
	if strings.TrimSpace(opts.Instruction) == "" {
		return nil, fmt.Errorf("analysis instruction is empty")
	}
	validator, err := NewValidator(domain.AnalysisFields)
	if err != nil {
		return nil, err
	}
	return &Engine{
		documents:   documents,
		completion:  completion,
		validator:   validator,
		base:        base,
		instruction: opts.Instruction,
		logger:      logging.OrDiscard(opts.Logger),
	}, nil
}

// Analyze downloads the PDF behind pdfReference and returns the validated opinion.
// Every failure wraps domain.ErrUnavailable except a missing API key, which wraps domain.ErrConfiguration.
func (e *Engine) Analyze(ctx context.Context, pdfReference string) (domain.AnalysisResult, error) {
	if strings.TrimSpace(pdfReference) == "" {
		return domain.AnalysisResult{}, domain.ErrNoDocument
	}

	pdfURL, err := e.PDFURL(pdfReference)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	start := time.Now()
	pdf, err := e.documents.Fetch(ctx, pdfURL)
	if err != nil {
		e.logger.Warn("pdf download failed", "url", pdfURL, "error", err)
		return domain.AnalysisResult{}, fmt.Errorf("%w: download %s: %v", domain.ErrUnavailable, pdfURL, err)
	}

	raw, err := e.completion.CompleteStructured(ctx, domain.CompletionRequest{
		Instruction: e.instruction,
		Attachment:  domain.Attachment{MIMEType: pdfMIMEType, Data: pdf},
		Fields:      domain.AnalysisFields,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return domain.AnalysisResult{}, err
		}
		e.logger.Warn("completion failed", "url", pdfURL, "error", err)
		return domain.AnalysisResult{}, fmt.Errorf("%w: completion: %v", domain.ErrUnavailable, err)
	}

	result, err := e.validator.Decode(raw)
	if err != nil {
		e.logger.Warn("completion rejected", "url", pdfURL, "error", err)
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	e.logger.Info("bill analyzed", "url", pdfURL, "pdf_bytes", len(pdf), "elapsed_ms", time.Since(start).Milliseconds())
	return result, nil
}

// PDFURL turns a possibly relative reference into an absolute URL on the portal.
func (e *Engine) PDFURL(pdfReference string) (string, error) {
	return portal.ResolveAgainst(e.base, pdfReference)
}
