// Package app runs one dashboard interaction per call: filter the dataset, then
// compute a statistic, a trend, a table page, a persona or a prediction.
package app

import (
	"context"
	"time"

	"moodlens/domain/dataset"
	"moodlens/domain/record"
	"moodlens/internal"
	"moodlens/internal/errors"
	"moodlens/internal/filter"
	"moodlens/internal/metrics"
	"moodlens/internal/persona"
	"moodlens/internal/prediction"
	"moodlens/internal/stats"
	"moodlens/internal/timeseries"
)

// Service holds the immutable state loaded at startup. It is safe for
// concurrent use because nothing it holds is mutated after construction.
type Service struct {
	dataset   *dataset.Dataset
	catalog   *persona.Catalog
	projector *persona.Projector
	models    *prediction.Registry
	engine    *stats.Engine
	metrics   *metrics.Collector
	log       *internal.Logger
}

// NewService creates the service. catalog and models may be empty but not nil.
func NewService(ds *dataset.Dataset, catalog *persona.Catalog, models *prediction.Registry, m *metrics.Collector, log *internal.Logger) *Service {
	if log == nil {
		log = internal.NewNopLogger()
	}
	m.SetDatasetRecords(ds.Len())
	return &Service{
		dataset:   ds,
		catalog:   catalog,
		projector: persona.NewProjector(ds.LastDate()),
		models:    models,
		engine:    stats.NewEngine(),
		metrics:   m,
		log:       log,
	}
}

// Overview describes the loaded dataset
type Overview struct {
	Metadata dataset.Metadata   `json:"metadata"`
	Schema   []record.FieldSpec `json:"schema"`
	Kinds    []stats.Kind       `json:"statistics"`
	Personas int                `json:"personas"`
	Models   int                `json:"models"`
}

// Overview returns dataset metadata and what the service can compute
func (s *Service) Overview() Overview {
	return Overview{
		Metadata: s.dataset.Metadata(),
		Schema:   record.Schema(),
		Kinds:    stats.Kinds(),
		Personas: s.catalog.Len(),
		Models:   len(s.models.List()),
	}
}

// Dataset exposes the loaded dataset, read-only
func (s *Service) Dataset() *dataset.Dataset { return s.dataset }

// Filtered applies spec to the whole dataset
func (s *Service) Filtered(spec filter.Spec) (dataset.View, filter.Counts, error) {
	all := s.dataset.All()
	view, err := filter.Apply(all, spec)
	if err != nil {
		return dataset.View{}, filter.Counts{}, errors.Wrap(err, "invalid filter")
	}
	s.metrics.ObserveFiltered(view.Len())
	return view, filter.Summary(view, all), nil
}

// StatsRequest is a filter plus one statistic
type StatsRequest struct {
	Filter filter.Spec `json:"filter"`
	stats.Request
}

// StatsResult carries the counts line with the statistic
type StatsResult struct {
	Counts filter.Counts `json:"counts"`
	*stats.Result
}

// Stats filters and computes one statistic. An empty filtered view returns the
// counts together with an insufficient-data error.
func (s *Service) Stats(ctx context.Context, req StatsRequest) (*StatsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view, counts, err := s.Filtered(req.Filter)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := s.engine.Compute(view, req.Request)
	s.metrics.ObserveComputation(string(req.Kind), start, err)
	if err != nil {
		s.log.Debug("[Stats] %s over %s rows: %v", req.Kind, counts, err)
		return &StatsResult{Counts: counts}, errors.Wrapf(err, "%s", req.Kind)
	}
	return &StatsResult{Counts: counts, Result: &res}, nil
}

// TrendRequest is a filter plus a resampling
type TrendRequest struct {
	Filter  filter.Spec        `json:"filter"`
	Fields  []string           `json:"fields"`
	Options timeseries.Options `json:"options"`
}

// TrendResult is one series per requested field
type TrendResult struct {
	Counts filter.Counts       `json:"counts"`
	Series []timeseries.Series `json:"series,omitempty"`
}

// Trends filters and resamples
func (s *Service) Trends(ctx context.Context, req TrendRequest) (*TrendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view, counts, err := s.Filtered(req.Filter)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	series, err := timeseries.Resample(view, req.Fields, req.Options)
	s.metrics.ObserveComputation("trend", start, err)
	if err != nil {
		return &TrendResult{Counts: counts}, errors.Wrap(err, "trend")
	}
	return &TrendResult{Counts: counts, Series: series}, nil
}
