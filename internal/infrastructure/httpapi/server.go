package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/infrastructure/tabular"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
	"BillAnalyzer/internal/usecase"
)

const maxBatchBodyBytes = 1 << 20

// Lookuper runs a single bill lookup.
type Lookuper interface {
	Lookup(ctx context.Context, id domain.BillIdentifier) (usecase.LookupResult, error)
}

// BatchRunner runs many lookups and returns rows in input order.
type BatchRunner interface {
	Run(ctx context.Context, ids []domain.BillIdentifier, progress ports.ProgressReporter) ([]domain.BatchRow, error)
}

// Server exposes lookups and batches as JSON / CSV over HTTP.
type Server struct {
	lookup Lookuper
	batch  BatchRunner
	log    *slog.Logger
}

func NewServer(lookup Lookuper, batch BatchRunner, log *slog.Logger) *Server {
	return &Server{lookup: lookup, batch: batch, log: logging.OrDiscard(log).With("component", "httpapi")}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/bills/{year}/{number}", s.handleLookup)
		r.Post("/batch", s.handleBatch)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type documentResponse struct {
	Type      string `json:"tipo"`
	Number    string `json:"numero"`
	Year      string `json:"ano"`
	Headline  string `json:"titulo"`
	Authors   string `json:"autores"`
	Summary   string `json:"ementa"`
	PDFURL    string `json:"pdf_url,omitempty"`
	DetailURL string `json:"detail_url"`
}

type lookupResponse struct {
	Identifier    domain.BillIdentifier  `json:"identificador"`
	InternalID    string                 `json:"internal_id"`
	Document      documentResponse       `json:"documento"`
	Analysis      *domain.AnalysisResult `json:"analise,omitempty"`
	AnalysisError *errorResponse         `json:"analise_erro,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	id := domain.BillIdentifier{
		Number: strings.TrimSpace(chi.URLParam(r, "number")),
		Year:   strings.TrimSpace(chi.URLParam(r, "year")),
	}
	if err := id.Validate(); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.lookup.Lookup(r.Context(), id)
	if err != nil {
		s.log.Info("lookup failed", "bill", id.String(), "kind", domain.ErrorKind(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newLookupResponse(res))
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBatchBodyBytes)
	table, err := tabular.ReadCSV(body)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := s.batch.Run(r.Context(), table.Identifiers(), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := table.Merge(rows)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = tabular.WriteXLSX(&buf, out)
	} else {
		err = tabular.WriteCSV(&buf, out)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	summary := domain.Summarize(rows)
	s.log.Info("batch served", "rows", summary.Total, "succeeded", summary.Succeeded)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func newLookupResponse(res usecase.LookupResult) lookupResponse {
	number, year := res.Details.NumberYear()
	out := lookupResponse{
		Identifier: res.Identifier,
		InternalID: res.Reference.InternalID,
		Document: documentResponse{
			Type:      res.Details.DocumentType(),
			Number:    number,
			Year:      year,
			Headline:  res.Details.Headline(),
			Authors:   res.Details.Authors(),
			Summary:   res.Details.Summary(),
			PDFURL:    res.Details.PDFReference(),
			DetailURL: res.Reference.DetailURL,
		},
		Analysis: res.Analysis,
	}
	if res.AnalysisErr != nil {
		out.AnalysisError = &errorResponse{Error: res.AnalysisErr.Error(), Kind: domain.ErrorKind(res.AnalysisErr)}
	}
	return out
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrResolution), errors.Is(err, domain.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), errorResponse{Error: err.Error(), Kind: domain.ErrorKind(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"req_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}
