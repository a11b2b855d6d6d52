package middleware

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(log.New(&buf, "", 0)))
	r.Get("/teapot", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})
	r.Get("/quiet", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quiet", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "GET /teapot 418 15B")
	assert.Contains(t, lines[1], "GET /quiet 200 0B")
	assert.NotContains(t, lines[0], "[]")
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/runs/"+id, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `popgen_http_requests_total{method="GET",route="/runs/{id}",status="404"} 3`)
	assert.Contains(t, body, `popgen_http_request_duration_seconds_count{route="/runs/{id}"} 3`)
	assert.Contains(t, body, "go_goroutines")
}

func TestGenesAnalyzed(t *testing.T) {
	m := NewMetrics()
	m.GenesAnalyzed(5, 2)
	m.GenesAnalyzed(1, 0)

	body := scrape(t, m)
	assert.Contains(t, body, `popgen_analysis_genes_total{outcome="analyzed"} 6`)
	assert.Contains(t, body, `popgen_analysis_genes_total{outcome="skipped"} 2`)
}
