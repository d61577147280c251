package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
)

// Batch drives the pipeline over many identifiers.
type Batch struct {
	pipeline    *Pipeline
	concurrency int
	logger      *slog.Logger
}

// NewBatch builds an orchestrator; concurrency <= 1 processes rows one at a time.
func NewBatch(pipeline *Pipeline, concurrency int, log *slog.Logger) *Batch {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batch{pipeline: pipeline, concurrency: concurrency, logger: logging.OrDiscard(log)}
}

// Run returns one row per identifier in input order. Per-row failures are stored on the row;
// only a configuration error or context cancellation stops the run.
func (b *Batch) Run(ctx context.Context, ids []domain.BillIdentifier, progress ports.ProgressReporter) ([]domain.BatchRow, error) {
	if b.pipeline == nil {
		return nil, fmt.Errorf("batch pipeline is not configured")
	}

	rows := make([]domain.BatchRow, len(ids))
	total := len(ids)
	b.logger.Info("batch started", "rows", total, "concurrency", b.concurrency)

	var (
		mu        sync.Mutex
		processed int
	)
	report := func() {
		mu.Lock()
		defer mu.Unlock()
		processed++
		if progress != nil {
			progress.Report(processed, total)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			row, err := b.processRow(gctx, id)
			if err != nil {
				return err
			}
			rows[i] = row
			report()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return rows, err
	}
	if err := ctx.Err(); err != nil {
		return rows, err
	}

	summary := domain.Summarize(rows)
	b.logger.Info("batch finished", "rows", summary.Total, "succeeded", summary.Succeeded, "failed", summary.Failed)
	return rows, nil
}

func (b *Batch) processRow(ctx context.Context, id domain.BillIdentifier) (domain.BatchRow, error) {
	if err := id.Validate(); err != nil {
		return domain.BatchRow{Identifier: id, Err: err}, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.BatchRow{}, err
	}

	row, err := b.pipeline.Row(ctx, id)
	if err != nil {
		return row, fmt.Errorf("bill %s: %w", id, err)
	}
	if row.Err != nil {
		b.logger.Warn("batch row failed", "bill", id.String(), "kind", domain.ErrorKind(row.Err))
	}
	return row, nil
}
