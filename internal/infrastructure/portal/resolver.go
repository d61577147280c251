package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"BillAnalyzer/internal/config"
	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/logging"
	"BillAnalyzer/internal/ports"
)

const resultsContainerSelector = "div#lista_resultado"

// searchDefaults are the constant query parameters the portal search form submits.
var searchDefaults = [][2]string{
	{"direction", "inicio"},
	{"lastPage", "1"},
	{"currentPage", "1"},
	{"act", "detalhe"},
	{"idDocumento", ""},
	{"rowsPerPage", "20"},
	{"currentPageDetalhe", "1"},
	{"tpDocumento", ""},
	{"selecionaDeseleciona", "nao"},
	{"method", "search"},
	{"natureId", "1"},
	{"text", ""},
	{"natureIdMainDoc", ""},
	{"anoDeExercicio", ""},
	{"strInitialDate", ""},
	{"strFinalDate", ""},
	{"author", ""},
	{"supporter", ""},
	{"politicalPartyId", ""},
	{"stageId", ""},
}

type documentFetcher interface {
	FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Resolver locates bills through the portal search and reads their detail pages.
type Resolver struct {
	fetcher    documentFetcher
	base       *url.URL
	searchPath string
	detailPath string
	logger     *slog.Logger
}

var _ ports.BillResolver = (*Resolver)(nil)

// NewResolver validates the portal base URL.
func NewResolver(fetcher documentFetcher, cfg config.PortalConfig, log *slog.Logger) (*Resolver, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("portal fetcher is not configured")
	}
	base, err := parseBase(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		fetcher:    fetcher,
		base:       base,
		searchPath: cfg.SearchPath,
		detailPath: cfg.DetailPath,
		logger:     logging.OrDiscard(log),
	}, nil
}

// Resolve runs the search and picks the first matching bill link in document order.
func (r *Resolver) Resolve(ctx context.Context, id domain.BillIdentifier) (domain.BillReference, error) {
	if err := id.Validate(); err != nil {
		return domain.BillReference{}, err
	}

	searchURL := r.searchURL(id)
	r.logger.Debug("search bill", "bill", id.String(), "url", searchURL)

	doc, err := r.fetcher.FetchDocument(ctx, searchURL)
	if err != nil {
		return domain.BillReference{}, fmt.Errorf("search bill %s: %w", id, err)
	}

	container := doc.Find(resultsContainerSelector).First()
	if container.Length() == 0 {
		return domain.BillReference{}, fmt.Errorf("bill %s: no results container: %w", id, domain.ErrNotFound)
	}

	pattern := r.detailPath + "?id="
	link := container.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		return strings.Contains(href, pattern)
	}).First()
	href, ok := link.Attr("href")
	if !ok {
		return domain.BillReference{}, fmt.Errorf("bill %s: no matching link: %w", id, domain.ErrNotFound)
	}

	internalID := href[strings.LastIndex(href, "=")+1:]
	if strings.TrimSpace(internalID) == "" {
		return domain.BillReference{}, fmt.Errorf("bill %s: empty internal id in %q: %w", id, href, domain.ErrNotFound)
	}

	detailURL, err := r.Absolute(href)
	if err != nil {
		return domain.BillReference{}, fmt.Errorf("bill %s: %w", id, err)
	}

	return domain.BillReference{InternalID: internalID, DetailURL: detailURL}, nil
}

// ResolveAndExtract resolves the bill and reads its metadata table.
// Detail failures wrap domain.ErrResolution, never domain.ErrNotFound.
func (r *Resolver) ResolveAndExtract(ctx context.Context, id domain.BillIdentifier) (domain.BillReference, domain.BillDetails, error) {
	ref, err := r.Resolve(ctx, id)
	if err != nil {
		return domain.BillReference{}, domain.BillDetails{}, err
	}

	detailURL := r.detailURL(ref.InternalID)
	doc, err := r.fetcher.FetchDocument(ctx, detailURL)
	if err != nil {
		return ref, domain.BillDetails{}, fmt.Errorf("%w: detail page %s: %v", domain.ErrResolution, ref.InternalID, err)
	}

	fields := ExtractDetails(doc)
	if len(fields) == 0 {
		return ref, domain.BillDetails{}, fmt.Errorf("%w: detail page %s has no metadata table", domain.ErrResolution, ref.InternalID)
	}

	r.logger.Debug("bill resolved", "bill", id.String(), "internal_id", ref.InternalID, "fields", len(fields))
	return ref, domain.NewBillDetails(fields), nil
}

// Absolute resolves a possibly relative portal link against the base URL.
func (r *Resolver) Absolute(ref string) (string, error) {
	return ResolveAgainst(r.base, ref)
}

func (r *Resolver) searchURL(id domain.BillIdentifier) string {
	query := url.Values{}
	for _, kv := range searchDefaults {
		query.Set(kv[0], kv[1])
	}
	query.Set("legislativeNumber", strings.TrimSpace(id.Number))
	query.Set("legislativeYear", strings.TrimSpace(id.Year))

	u := r.base.JoinPath(r.searchPath)
	u.RawQuery = query.Encode()
	return u.String()
}

func (r *Resolver) detailURL(internalID string) string {
	u := r.base.JoinPath(r.detailPath)
	u.RawQuery = url.Values{"id": {internalID}}.Encode()
	return u.String()
}

func parseBase(raw string) (*url.URL, error) {
	base, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid portal base url %q: %w", raw, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("portal base url %q must be absolute", raw)
	}
	return base, nil
}

// ResolveAgainst returns ref unchanged when it carries a scheme, otherwise resolves it against base.
func ResolveAgainst(base *url.URL, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", ref, err)
	}
	if parsed.Scheme != "" {
		return parsed.String(), nil
	}
	return base.ResolveReference(parsed).String(), nil
}
