package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/domain/core"
)

func TestCollector_Outcomes(t *testing.T) {
	c := NewCollector("moodlens")
	start := time.Now()
	c.ObserveComputation("correlation", start, nil)
	c.ObserveComputation("correlation", start, core.NewInsufficientDataError("view", 0, 2))
	c.ObserveComputation("correlation", start, errors.New("boom"))
	c.ObservePrediction("Sleep Hours", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Computations.WithLabelValues("correlation", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Computations.WithLabelValues("correlation", OutcomeNoData)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Computations.WithLabelValues("correlation", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Predictions.WithLabelValues("Sleep Hours", OutcomeOK)))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("moodlens")
	c.SetDatasetRecords(42)
	c.RecordHTTP(http.MethodGet, "/api/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "moodlens_dataset_records 42")
	assert.Contains(t, rec.Body.String(), `moodlens_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveFiltered(3)
		c.ObserveComputation("frequency", time.Now(), nil)
		c.RecordHTTP(http.MethodGet, "/", 200, 0)
	})
	assert.Nil(t, c.Registry())
}
