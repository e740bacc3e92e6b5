package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New()

	m.RecordHTTPRequest("POST", "/api/v1/scraps/:id/do", 200, 15*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/scraps/:id/do", 200, 20*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/scraps/:id/do", 409, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `smeerp_http_requests_total{method="POST",path="/api/v1/scraps/:id/do",status="200"} 2`)
	assert.Contains(t, body, `smeerp_http_requests_total{method="POST",path="/api/v1/scraps/:id/do",status="409"} 1`)
	assert.Contains(t, body, `smeerp_http_request_duration_seconds_count{method="POST",path="/api/v1/scraps/:id/do"} 3`)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ReportLinesServed.WithLabelValues("move").Add(3)

	body := scrape(t, m)
	assert.Contains(t, body, `smeerp_report_lines_total{type="move"} 3`)
	assert.Contains(t, body, "go_goroutines")
}
