package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Optimization("concise", OutcomeSuccess)
	m.Optimization("concise", OutcomeSuccess)
	m.QuotaDenied(true)
	m.HistoryCleared(7, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.optimizations.WithLabelValues("concise", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotaDenials.WithLabelValues("anonymous")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.historyDeletes.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.historyDeletes.WithLabelValues(OutcomeError)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.Optimization("detailed", OutcomeError)
		m.QuotaDenied(false)
		m.ObserveGeneration("model", time.Second)
		m.HistoryCleared(1, 1)
		m.Email("contact", OutcomeSuccess)
		m.PromoRedemption(OutcomeSuccess)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Email("magic_link", OutcomeSuccess)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck // test cleanup

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `promptcraft_emails_total{kind="magic_link",outcome="success"} 1`)
}
