// Package stats computes the dashboard's descriptive statistics over a
// filtered view. Every operation is a pure function of (view, request).
package stats

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
)

// Kind is the closed set of statistic families
type Kind string

const (
	KindDistribution Kind = "distribution"
	KindFrequency    Kind = "frequency"
	KindCorrelation  Kind = "correlation"
	KindGrouped      Kind = "grouped"
	KindStacked      Kind = "stacked"
	KindHistogram    Kind = "histogram"
	KindGroupSummary Kind = "group_summary"
)

// Kinds lists every family in presentation order
func Kinds() []Kind {
	return []Kind{KindDistribution, KindFrequency, KindCorrelation, KindGrouped, KindStacked, KindHistogram, KindGroupSummary}
}

// Request selects one statistic and its inputs. Which fields matter depends on Kind.
type Request struct {
	Kind        Kind              `json:"kind" validate:"required"`
	Fields      []string          `json:"fields,omitempty"`
	GroupBy     string            `json:"group_by,omitempty"`
	SubGroup    string            `json:"sub_group,omitempty"`
	Method      Method            `json:"method,omitempty"`
	Aggregate   Aggregate         `json:"aggregate,omitempty"`
	Bins        int               `json:"bins,omitempty" validate:"min=0,max=100"`
	Percentages bool              `json:"percentages,omitempty"`
	Annotations AnnotationOptions `json:"annotations"`
}

// Result carries the output of exactly one family
type Result struct {
	Kind           Kind               `json:"kind"`
	Rows           int                `json:"rows"`
	Distributions  []Distribution     `json:"distributions,omitempty"`
	Frequencies    []Frequency        `json:"frequencies,omitempty"`
	Correlation    *CorrelationMatrix `json:"correlation,omitempty"`
	Grouped        []GroupedRow       `json:"grouped,omitempty"`
	Stacked        []StackedRow       `json:"stacked,omitempty"`
	Histograms     []Histogram        `json:"histograms,omitempty"`
	GroupSummaries []GroupSummary     `json:"group_summaries,omitempty"`
}

type handler func(view dataset.View, req Request) (Result, error)

var validate = validator.New()

// Engine dispatches a request to its family
type Engine struct {
	handlers map[Kind]handler
}

// NewEngine wires every family
func NewEngine() *Engine {
	return &Engine{handlers: map[Kind]handler{
		KindDistribution: distributionHandler,
		KindFrequency:    frequencyHandler,
		KindCorrelation:  correlationHandler,
		KindGrouped:      groupedHandler,
		KindStacked:      stackedHandler,
		KindHistogram:    histogramHandler,
		KindGroupSummary: groupSummaryHandler,
	}}
}

// Compute runs one request. Configuration problems are reported before the view
// is inspected; an empty view then yields core.ErrInsufficientData.
func (e *Engine) Compute(view dataset.View, req Request) (Result, error) {
	h, ok := e.handlers[req.Kind]
	if !ok {
		return Result{}, core.NewConfigError("kind", fmt.Sprintf("unknown statistic %q", req.Kind))
	}
	if err := validate.Struct(req); err != nil {
		return Result{}, core.NewConfigError("request", err.Error())
	}
	res, err := h(view, req)
	if err != nil {
		return Result{}, err
	}
	res.Kind = req.Kind
	res.Rows = view.Len()
	return res, nil
}

func requireFields(req Request, min int) error {
	if len(req.Fields) < min {
		return core.NewConfigError("fields", fmt.Sprintf("%s needs at least %d field(s)", req.Kind, min))
	}
	return nil
}

func distributionHandler(view dataset.View, req Request) (Result, error) {
	if err := requireFields(req, 1); err != nil {
		return Result{}, err
	}
	if _, err := (Summary{}).Annotations(req.Annotations); err != nil {
		return Result{}, err
	}
	var res Result
	for _, f := range req.Fields {
		s, err := DescribeField(view, f)
		if err != nil {
			return Result{}, err
		}
		ann, err := s.Annotations(req.Annotations)
		if err != nil {
			return Result{}, err
		}
		res.Distributions = append(res.Distributions, Distribution{Summary: s, Annotations: ann})
	}
	return res, nil
}

func frequencyHandler(view dataset.View, req Request) (Result, error) {
	if err := requireFields(req, 1); err != nil {
		return Result{}, err
	}
	var res Result
	for _, f := range req.Fields {
		freq, err := Frequencies(view, f, req.Percentages)
		if err != nil {
			return Result{}, err
		}
		res.Frequencies = append(res.Frequencies, freq)
	}
	return res, nil
}

func correlationHandler(view dataset.View, req Request) (Result, error) {
	method, err := ParseMethod(string(req.Method))
	if err != nil {
		return Result{}, err
	}
	m, err := Correlate(view, req.Fields, method)
	if err != nil {
		return Result{}, err
	}
	return Result{Correlation: &m}, nil
}

func groupedHandler(view dataset.View, req Request) (Result, error) {
	if err := requireFields(req, 1); err != nil {
		return Result{}, err
	}
	agg, err := ParseAggregate(string(req.Aggregate))
	if err != nil {
		return Result{}, err
	}
	rows, err := GroupBy(view, req.GroupBy, req.Fields, agg)
	if err != nil {
		return Result{}, err
	}
	return Result{Grouped: rows}, nil
}

func stackedHandler(view dataset.View, req Request) (Result, error) {
	rows, err := Stack(view, req.GroupBy, req.SubGroup)
	if err != nil {
		return Result{}, err
	}
	return Result{Stacked: rows}, nil
}

func histogramHandler(view dataset.View, req Request) (Result, error) {
	if err := requireFields(req, 1); err != nil {
		return Result{}, err
	}
	var res Result
	for _, f := range req.Fields {
		h, err := HistogramOf(view, f, req.Bins)
		if err != nil {
			return Result{}, err
		}
		res.Histograms = append(res.Histograms, h)
	}
	return res, nil
}

func groupSummaryHandler(view dataset.View, req Request) (Result, error) {
	if err := requireFields(req, 1); err != nil {
		return Result{}, err
	}
	var res Result
	for _, f := range req.Fields {
		groups, err := SummarizeGroups(view, req.GroupBy, f)
		if err != nil {
			return Result{}, err
		}
		res.GroupSummaries = append(res.GroupSummaries, groups...)
	}
	return res, nil
}
