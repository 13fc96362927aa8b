// Package metrics exposes Prometheus counters and histograms for the HTTP
// surface and the analysis engine. Every method is safe on a nil *Collector.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moodlens/domain/core"
)

// Outcome labels for computations and predictions
const (
	OutcomeOK     = "ok"
	OutcomeNoData = "no_data"
	OutcomeError  = "error"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Computations        *prometheus.CounterVec
	ComputationDuration *prometheus.HistogramVec
	FilteredRows        prometheus.Histogram
	Predictions         *prometheus.CounterVec
	DatasetRecords      prometheus.Gauge
}

// NewCollector creates metrics on a private registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computations_total",
			Help:      "Statistics and trend computations by kind and outcome",
		}, []string{"kind", "outcome"}),
		ComputationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "computation_duration_seconds",
			Help:      "Computation duration in seconds",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"kind"}),
		FilteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filtered_rows",
			Help:      "Rows left after applying a filter",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions by model and outcome",
		}, []string{"model", "outcome"}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the loaded dataset",
		}),
	}
	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Computations,
		c.ComputationDuration,
		c.FilteredRows,
		c.Predictions,
		c.DatasetRecords,
	)
	return c
}

// Registry returns the registry metrics are registered on
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordHTTP counts one finished request
func (c *Collector) RecordHTTP(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveComputation records one computation; insufficient data is counted
// apart from failures
func (c *Collector) ObserveComputation(kind string, start time.Time, err error) {
	if c == nil {
		return
	}
	c.Computations.WithLabelValues(kind, outcome(err)).Inc()
	c.ComputationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveFiltered records the size of a filtered view
func (c *Collector) ObserveFiltered(rows int) {
	if c == nil {
		return
	}
	c.FilteredRows.Observe(float64(rows))
}

// ObservePrediction counts one prediction call
func (c *Collector) ObservePrediction(model string, err error) {
	if c == nil {
		return
	}
	c.Predictions.WithLabelValues(model, outcome(err)).Inc()
}

// SetDatasetRecords publishes the loaded dataset size
func (c *Collector) SetDatasetRecords(n int) {
	if c == nil {
		return
	}
	c.DatasetRecords.Set(float64(n))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case core.IsInsufficientData(err):
		return OutcomeNoData
	default:
		return OutcomeError
	}
}
