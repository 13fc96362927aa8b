package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
)

// Histogram bin bounds
const (
	DefaultBins = 30
	MaxBins     = 100
)

// Bin covers [Lower, Upper); the last bin also holds the maximum
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is a binned count of one numeric column
type Histogram struct {
	Field string `json:"field"`
	Count int    `json:"count"`
	Bins  []Bin  `json:"bins"`
}

// HistogramOf bins a numeric column into equal-width bins spanning its range.
// bins == 0 selects the default.
func HistogramOf(view dataset.View, field string, bins int) (Histogram, error) {
	if bins == 0 {
		bins = DefaultBins
	}
	if bins < 1 || bins > MaxBins {
		return Histogram{}, core.NewConfigError("bins", fmt.Sprintf("must be between 1 and %d", MaxBins))
	}
	values, err := view.Numeric(field)
	if err != nil {
		return Histogram{}, err
	}
	if len(values) == 0 {
		return Histogram{}, core.NewInsufficientDataError(field, 0, 1)
	}
	sort.Float64s(values)

	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	upper := dividers[bins]
	// stat.Histogram wants the top divider strictly above the maximum
	dividers[bins] = math.Nextafter(upper, math.Inf(1))

	counts := stat.Histogram(nil, dividers, values, nil)

	h := Histogram{Field: field, Count: len(values), Bins: make([]Bin, bins)}
	for i, c := range counts {
		h.Bins[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(c)}
	}
	h.Bins[bins-1].Upper = upper
	return h, nil
}
