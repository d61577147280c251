package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Resolver ports.BillResolver
	Analyzer ports.BillAnalyzer
	Logger   *slog.Logger
}

// Pipeline implements resolve -> extract -> analyze for one bill.
type Pipeline struct {
	resolver ports.BillResolver
	analyzer ports.BillAnalyzer
	logger   *slog.Logger
}

// LookupResult is what a single lookup produced. Analysis is nil when AnalysisErr is set.
type LookupResult struct {
	Identifier  domain.BillIdentifier
	Reference   domain.BillReference
	Details     domain.BillDetails
	Analysis    *domain.AnalysisResult
	AnalysisErr error
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) (*Pipeline, error) {
	if deps.Resolver == nil || deps.Analyzer == nil {
		return nil, fmt.Errorf("pipeline requires a resolver and an analyzer")
	}
	return &Pipeline{
		resolver: deps.Resolver,
		analyzer: deps.Analyzer,
		logger:   logging.OrDiscard(deps.Logger),
	}, nil
}

// Lookup resolves a bill and analyzes its PDF. Resolution failures are returned as the error;
// analysis failures are recorded on the result, except configuration errors which are returned.
func (p *Pipeline) Lookup(ctx context.Context, id domain.BillIdentifier) (LookupResult, error) {
	result := LookupResult{Identifier: id}

	ref, details, err := p.resolver.ResolveAndExtract(ctx, id)
	if err != nil {
		p.logger.Info("bill not resolved", "bill", id.String(), "kind", domain.ErrorKind(err), "error", err)
		return result, err
	}
	result.Reference = ref
	result.Details = details

	if !details.HasPDF() {
		result.AnalysisErr = domain.ErrNoDocument
		return result, nil
	}

	analysis, err := p.analyzer.Analyze(ctx, details.PDFReference())
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return result, err
		}
		p.logger.Info("bill not analyzed", "bill", id.String(), "kind", domain.ErrorKind(err), "error", err)
		result.AnalysisErr = err
		return result, nil
	}

	result.Analysis = &analysis
	return result, nil
}

// Row runs Lookup and folds every outcome into a batch row.
func (p *Pipeline) Row(ctx context.Context, id domain.BillIdentifier) (domain.BatchRow, error) {
	res, err := p.Lookup(ctx, id)
	row := domain.BatchRow{
		Identifier: id,
		Reference:  res.Reference,
		Details:    res.Details,
		Analysis:   res.Analysis,
		Err:        res.AnalysisErr,
	}
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return row, err
		}
		row.Err = err
	}
	return row, nil
}
