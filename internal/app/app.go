package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"BillAnalyzer/internal/analysis"
	"BillAnalyzer/internal/cache"
	"BillAnalyzer/internal/config"
	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/infrastructure/httpapi"
	"BillAnalyzer/internal/infrastructure/llm"
	"BillAnalyzer/internal/infrastructure/portal"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
	"BillAnalyzer/internal/usecase"
)

// Application wires configuration to the pipeline and owns the process-local caches.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	batch    *usecase.Batch
	server   *httpapi.Server

	documents *cache.Store[[]byte]
	analyses  *cache.Store[domain.AnalysisResult]
}

// New builds the application. A missing Gemini key is not an error here;
// it surfaces as domain.ErrConfiguration on the first analysis.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	fetcher := portal.NewFetcher(&http.Client{Timeout: cfg.Portal.Timeout()}, portal.FetcherOptions{
		UserAgent:         cfg.Portal.UserAgent,
		MaxBytes:          cfg.Portal.MaxDocumentBytes,
		RequestsPerSecond: cfg.Portal.RequestsPerSecond,
		Logger:            baseLogger.With("component", "portal.fetcher"),
	})

	resolver, err := portal.NewResolver(fetcher, cfg.Portal, baseLogger.With("component", "portal.resolver"))
	if err != nil {
		return nil, fmt.Errorf("build resolver: %w", err)
	}

	documents := cache.NewStore[[]byte](cfg.Cache.MaxEntries)
	analyses := cache.NewStore[domain.AnalysisResult](cfg.Cache.MaxEntries)

	gemini := llm.NewGeminiClient(cfg.Gemini, baseLogger.With("component", "llm.gemini"))
	engine, err := analysis.NewEngine(
		cache.NewFetcher(fetcher, documents, baseLogger.With("component", "cache.documents")),
		gemini,
		analysis.Options{
			BaseURL:     cfg.Portal.BaseURL,
			Instruction: cfg.Gemini.Instruction,
			Logger:      baseLogger.With("component", "analysis"),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("build analysis engine: %w", err)
	}

	pipeline, err := usecase.NewPipeline(usecase.PipelineDeps{
		Resolver: resolver,
		Analyzer: cache.NewAnalyzer(engine, analyses, baseLogger.With("component", "cache.analyses")),
		Logger:   baseLogger.With("component", "pipeline"),
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	batch := usecase.NewBatch(pipeline, cfg.Batch.Concurrency, baseLogger.With("component", "batch"))
	baseLogger.Debug("application ready",
		"portal", cfg.Portal.BaseURL,
		"model", gemini.Model(),
		"concurrency", cfg.Batch.Concurrency,
		"cache_max_entries", cfg.Cache.MaxEntries,
	)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		batch:     batch,
		server:    httpapi.NewServer(pipeline, batch, baseLogger),
		documents: documents,
		analyses:  analyses,
	}, nil
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Lookup resolves and analyzes a single bill.
func (a *Application) Lookup(ctx context.Context, id domain.BillIdentifier) (usecase.LookupResult, error) {
	defer a.logCacheStats()
	return a.pipeline.Lookup(ctx, id)
}

// RunBatch processes ids in input order.
func (a *Application) RunBatch(ctx context.Context, ids []domain.BillIdentifier, progress ports.ProgressReporter) ([]domain.BatchRow, error) {
	defer a.logCacheStats()
	return a.batch.Run(ctx, ids, progress)
}

// Handler exposes the HTTP API sharing this application's caches.
func (a *Application) Handler() http.Handler {
	return a.server.Routes()
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	defer a.logCacheStats()
	return a.server.ListenAndServe(ctx, addr)
}

// CacheStats reports the document and analysis stores.
func (a *Application) CacheStats() (documents, analyses cache.Stats) {
	return a.documents.Stats(), a.analyses.Stats()
}

func (a *Application) logCacheStats() {
	docs, results := a.CacheStats()
	a.logger.Debug("cache stats",
		"documents_hits", docs.Hits, "documents_misses", docs.Misses, "documents_entries", docs.Entries,
		"analyses_hits", results.Hits, "analyses_misses", results.Misses, "analyses_entries", results.Entries,
	)
}
