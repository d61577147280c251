package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BillAnalyzer/internal/domain"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "agent/test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), FetcherOptions{UserAgent: "agent/test"})
	body, err := f.Fetch(context.Background(), server.URL+"/doc.pdf")

	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 body"), body)
}

func TestFetcher_NonSuccessIsNotFound(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := NewFetcher(server.Client(), FetcherOptions{}).Fetch(context.Background(), server.URL)
		assert.ErrorIs(t, err, domain.ErrNotFound, "status %d", status)

		server.Close()
	}
}

func TestFetcher_TransportErrorIsNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	_, err := NewFetcher(nil, FetcherOptions{}).Fetch(context.Background(), addr)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetcher_MaxBytes(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	_, err := NewFetcher(server.Client(), FetcherOptions{MaxBytes: 5}).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	body, err := NewFetcher(server.Client(), FetcherOptions{MaxBytes: 10}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, body, 10)
}

func TestFetcher_FetchDocument(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div id="lista_resultado">ok</div></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), FetcherOptions{RequestsPerSecond: 50})
	doc, err := f.FetchDocument(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Find("#lista_resultado").Text())
}
