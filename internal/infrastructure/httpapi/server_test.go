package httpapi_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"BillAnalyzer/internal/domain"
	"BillAnalyzer/internal/infrastructure/httpapi"
	"BillAnalyzer/internal/infrastructure/tabular"
	"BillAnalyzer/internal/usecase"
	"BillAnalyzer/mocks"
)

var analysisFixture = domain.AnalysisResult{
	ConstitutionalAnalysis: "Constitucional.",
	MeritAssessment:        "Meritório.",
	AmendmentSuggestions:   "Nenhuma.",
	VoteRecommendation:     "Favorável.",
	SentimentEmoji:         "🌱",
}

func detailsFixture() domain.BillDetails {
	return domain.NewBillDetails(domain.DetailFields{
		domain.LabelDocument:     "Projeto de Lei",
		domain.LabelNumberYear:   "500/2022",
		domain.LabelAuthors:      "Dep. Fulana",
		domain.LabelSummary:      "Institui o programa estadual de hortas.",
		domain.LabelPDFReference: "/spl/2022/500.pdf",
	})
}

func newTestServer(t *testing.T, r *mocks.MockBillResolver, a *mocks.MockBillAnalyzer) *httptest.Server {
	t.Helper()
	pipeline, err := usecase.NewPipeline(usecase.PipelineDeps{Resolver: r, Analyzer: a})
	require.NoError(t, err)
	srv := httptest.NewServer(httpapi.NewServer(pipeline, usecase.NewBatch(pipeline, 1, nil), nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, new(mocks.MockBillResolver), new(mocks.MockBillAnalyzer))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestLookup(t *testing.T) {
	id := domain.BillIdentifier{Number: "500", Year: "2022"}
	r := new(mocks.MockBillResolver)
	r.On("ResolveAndExtract", mock.Anything, id).Return(
		domain.BillReference{InternalID: "1000445380", DetailURL: "https://www.al.sp.gov.br/propositura/?id=1000445380"},
		detailsFixture(), nil)
	a := new(mocks.MockBillAnalyzer)
	a.On("Analyze", mock.Anything, "/spl/2022/500.pdf").Return(analysisFixture, nil)
	srv := newTestServer(t, r, a)

	resp, err := http.Get(srv.URL + "/api/bills/2022/500")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		InternalID string `json:"internal_id"`
		Documento  struct {
			Tipo    string `json:"tipo"`
			Numero  string `json:"numero"`
			Ano     string `json:"ano"`
			Titulo  string `json:"titulo"`
			PDFURL  string `json:"pdf_url"`
			Autores string `json:"autores"`
		} `json:"documento"`
		Analise     *domain.AnalysisResult `json:"analise"`
		AnaliseErro *struct{ Kind string } `json:"analise_erro"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "1000445380", body.InternalID)
	assert.Equal(t, "Projeto de Lei", body.Documento.Tipo)
	assert.Equal(t, "500", body.Documento.Numero)
	assert.Equal(t, "2022", body.Documento.Ano)
	assert.Equal(t, "Projeto de Lei 500/2022", body.Documento.Titulo)
	assert.Equal(t, "/spl/2022/500.pdf", body.Documento.PDFURL)
	require.NotNil(t, body.Analise)
	assert.Equal(t, analysisFixture, *body.Analise)
	assert.Nil(t, body.AnaliseErro)
}

func TestLookup_AnalysisFailureStillReturnsDetails(t *testing.T) {
	id := domain.BillIdentifier{Number: "500", Year: "2022"}
	r := new(mocks.MockBillResolver)
	r.On("ResolveAndExtract", mock.Anything, id).Return(domain.BillReference{InternalID: "1"}, detailsFixture(), nil)
	a := new(mocks.MockBillAnalyzer)
	a.On("Analyze", mock.Anything, mock.Anything).Return(domain.AnalysisResult{}, fmt.Errorf("%w: timeout", domain.ErrUnavailable))
	srv := newTestServer(t, r, a)

	resp, err := http.Get(srv.URL + "/api/bills/2022/500")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotContains(t, body, "analise")
	assert.Contains(t, string(body["analise_erro"]), `"kind":"unavailable"`)
}

func TestLookup_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"resolution", fmt.Errorf("%w: detail page", domain.ErrResolution), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := new(mocks.MockBillResolver)
			r.On("ResolveAndExtract", mock.Anything, mock.Anything).Return(domain.BillReference{}, domain.BillDetails{}, tc.err)
			srv := newTestServer(t, r, new(mocks.MockBillAnalyzer))

			resp, err := http.Get(srv.URL + "/api/bills/2021/999999")
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestLookup_ConfigurationError(t *testing.T) {
	r := new(mocks.MockBillResolver)
	r.On("ResolveAndExtract", mock.Anything, mock.Anything).Return(domain.BillReference{InternalID: "1"}, detailsFixture(), nil)
	a := new(mocks.MockBillAnalyzer)
	a.On("Analyze", mock.Anything, mock.Anything).Return(domain.AnalysisResult{}, domain.ErrConfiguration)
	srv := newTestServer(t, r, a)

	resp, err := http.Get(srv.URL + "/api/bills/2022/500")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestBatch(t *testing.T) {
	found := domain.BillIdentifier{Number: "100", Year: "2021"}
	r := new(mocks.MockBillResolver)
	r.On("ResolveAndExtract", mock.Anything, found).Return(domain.BillReference{InternalID: "1"}, detailsFixture(), nil)
	r.On("ResolveAndExtract", mock.Anything, domain.BillIdentifier{Number: "999999", Year: "2021"}).
		Return(domain.BillReference{}, domain.BillDetails{}, domain.ErrNotFound)
	a := new(mocks.MockBillAnalyzer)
	a.On("Analyze", mock.Anything, "/spl/2022/500.pdf").Return(analysisFixture, nil)
	srv := newTestServer(t, r, a)

	resp, err := http.Post(srv.URL+"/api/batch", "text/csv", strings.NewReader("numero,ano\n100,2021\n999999,2021\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")

	table, err := tabular.ReadCSV(resp.Body)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, append([]string{"numero", "ano"}, domain.AnalysisKeys()...), table.Header)
	assert.Equal(t, []string{"100", "2021", "Constitucional.", "Meritório.", "Nenhuma.", "Favorável.", "🌱"}, table.Records[0])
	assert.Equal(t, []string{"999999", "2021", "", "", "", "", ""}, table.Records[1])
}

func TestBatch_XLSX(t *testing.T) {
	r := new(mocks.MockBillResolver)
	r.On("ResolveAndExtract", mock.Anything, mock.Anything).Return(domain.BillReference{}, domain.BillDetails{}, domain.ErrNotFound)
	srv := newTestServer(t, r, new(mocks.MockBillAnalyzer))

	resp, err := http.Post(srv.URL+"/api/batch?format=xlsx", "text/csv", strings.NewReader("numero,ano\n1,2020\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(tabular.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestBatch_MissingColumn(t *testing.T) {
	r := new(mocks.MockBillResolver)
	srv := newTestServer(t, r, new(mocks.MockBillAnalyzer))

	resp, err := http.Post(srv.URL+"/api/batch", "text/csv", strings.NewReader("numero,tipo\n1,PL\n"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	r.AssertNotCalled(t, "ResolveAndExtract", mock.Anything, mock.Anything)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, httpapi.StatusFor(domain.ErrNoDocument))
	assert.Equal(t, http.StatusBadRequest, httpapi.StatusFor(domain.ErrMalformedInput))
	assert.Equal(t, http.StatusInternalServerError, httpapi.StatusFor(errors.New("boom")))
	assert.Equal(t, http.StatusRequestEntityTooLarge,
		httpapi.StatusFor(fmt.Errorf("%w: %w", domain.ErrMalformedInput, &http.MaxBytesError{Limit: 1})))
}
