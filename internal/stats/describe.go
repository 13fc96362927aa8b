package stats

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
)

// Summary is the descriptive profile of one numeric column
type Summary struct {
	Field    string     `json:"field"`
	Count    int        `json:"count"`
	Mean     core.Value `json:"mean"`
	Median   core.Value `json:"median"`
	Std      core.Value `json:"std"`
	Min      core.Value `json:"min"`
	Max      core.Value `json:"max"`
	Q1       core.Value `json:"q1"`
	Q3       core.Value `json:"q3"`
	IQR      core.Value `json:"iqr"`
	Skewness core.Value `json:"skewness"`
	Kurtosis core.Value `json:"kurtosis"`
}

// Describe profiles a sample. Std is the n-1 sample deviation; skewness is the
// adjusted Fisher-Pearson G1 (n >= 3) and kurtosis the sample excess G2 (n >= 4).
// Statistics that need more observations than are present come back undefined.
func Describe(field string, values []float64) (Summary, error) {
	n := len(values)
	if n == 0 {
		return Summary{}, core.NewInsufficientDataError(field, 0, 1)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{Field: field, Count: n}

	mean, err := stats.Mean(sorted)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(sorted)
	if err != nil {
		return Summary{}, err
	}
	s.Mean = core.Some(mean)
	s.Median = core.Some(median)
	s.Min = core.Some(sorted[0])
	s.Max = core.Some(sorted[n-1])

	q1, q3 := Quantile(sorted, 0.25), Quantile(sorted, 0.75)
	s.Q1, s.Q3, s.IQR = core.Some(q1), core.Some(q3), core.Some(q3-q1)

	if n >= 2 {
		std, err := stats.StandardDeviationSample(sorted)
		if err != nil {
			return Summary{}, err
		}
		s.Std = core.Some(std)
	}
	if n >= 3 {
		s.Skewness = core.Some(stat.Skew(sorted, nil))
	}
	if n >= 4 {
		s.Kurtosis = core.Some(stat.ExKurtosis(sorted, nil))
	}
	return s, nil
}

// DescribeField profiles one numeric column of a view
func DescribeField(view dataset.View, field string) (Summary, error) {
	values, err := view.Numeric(field)
	if err != nil {
		return Summary{}, err
	}
	return Describe(field, values)
}

// Quantile interpolates linearly between closest ranks (Hyndman-Fan type 7,
// the NumPy and pandas default). x must be sorted and non-empty.
func Quantile(x []float64, p float64) float64 {
	if len(x) == 1 {
		return x[0]
	}
	h := float64(len(x)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(x)-1 {
		return x[len(x)-1]
	}
	return x[i] + (h-lo)*(x[i+1]-x[i])
}

// Fences are the Tukey outlier fences Q1 - 1.5 IQR and Q3 + 1.5 IQR
func (s Summary) Fences() (lower, upper core.Value) {
	if !s.IQR.Valid {
		return core.None(), core.None()
	}
	return core.Some(s.Q1.Float - 1.5*s.IQR.Float), core.Some(s.Q3.Float + 1.5*s.IQR.Float)
}

// SigmaBand is mean -/+ k standard deviations
func (s Summary) SigmaBand(k int) (lower, upper core.Value) {
	if !s.Mean.Valid || !s.Std.Valid {
		return core.None(), core.None()
	}
	d := float64(k) * s.Std.Float
	return core.Some(s.Mean.Float - d), core.Some(s.Mean.Float + d)
}

// AnnotationOptions picks the reference lines drawn over a distribution
type AnnotationOptions struct {
	Mean      bool `json:"mean"`
	Median    bool `json:"median"`
	Quartiles bool `json:"quartiles"`
	Fences    bool `json:"fences"`
	Sigma     int  `json:"sigma" validate:"min=0,max=3"`
}

// Annotation is one labelled reference value; rendering is the caller's business
type Annotation struct {
	Label string     `json:"label"`
	Value core.Value `json:"value"`
	Group string     `json:"group"`
}

var sigmaLabels = [...][2]string{{"+1σ", "-1σ"}, {"+2σ", "-2σ"}, {"+3σ", "-3σ"}}

// Annotations lists the selected reference values in drawing order
func (s Summary) Annotations(opts AnnotationOptions) ([]Annotation, error) {
	if opts.Sigma < 0 || opts.Sigma > 3 {
		return nil, core.NewConfigError("sigma", "must be between 0 and 3")
	}

	var out []Annotation
	if opts.Mean {
		out = append(out, Annotation{Label: "Mean", Value: s.Mean, Group: "center"})
	}
	if opts.Median {
		out = append(out, Annotation{Label: "Median", Value: s.Median, Group: "center"})
	}
	if opts.Quartiles {
		out = append(out,
			Annotation{Label: "Q1", Value: s.Q1, Group: "quartile"},
			Annotation{Label: "Q3", Value: s.Q3, Group: "quartile"})
	}
	if opts.Fences {
		lo, hi := s.Fences()
		out = append(out,
			Annotation{Label: "Q1 - 1.5 IQR", Value: lo, Group: "fence"},
			Annotation{Label: "Q3 + 1.5 IQR", Value: hi, Group: "fence"})
	}
	for k := 1; k <= opts.Sigma; k++ {
		lo, hi := s.SigmaBand(k)
		out = append(out,
			Annotation{Label: sigmaLabels[k-1][0], Value: hi, Group: "sigma"},
			Annotation{Label: sigmaLabels[k-1][1], Value: lo, Group: "sigma"})
	}
	return out, nil
}

// Distribution is a summary plus its requested annotations
type Distribution struct {
	Summary
	Annotations []Annotation `json:"annotations,omitempty"`
}
