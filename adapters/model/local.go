// Package model provides ports.Predictor implementations: fitted linear and
// softmax models described in YAML, and a remote HTTP predictor.
package model

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"moodlens/domain/core"
	"moodlens/ports"
)

// Model kinds a descriptor may declare
const (
	KindLinear  = "linear"
	KindSoftmax = "softmax"
)

// Terms are the fitted coefficients of one output. Categorical features are
// one-hot encoded; a category with no coefficient is the baseline.
type Terms struct {
	Intercept   float64                       `yaml:"intercept"`
	Numeric     map[string]float64            `yaml:"numeric,omitempty"`
	Categorical map[string]map[string]float64 `yaml:"categorical,omitempty"`
}

// Class is one softmax output
type Class struct {
	Label string `yaml:"label"`
	Terms `yaml:",inline"`
}

// Descriptor is the on-disk form of a fitted model
type Descriptor struct {
	Kind    string  `yaml:"kind"`
	Terms   `yaml:",inline"`
	Classes []Class `yaml:"classes,omitempty"`
}

// ParseDescriptor decodes a YAML model file
func ParseDescriptor(r io.Reader) (Descriptor, error) {
	var d Descriptor
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return Descriptor{}, fmt.Errorf("decode model: %w", err)
	}
	return d, nil
}

type column struct {
	feature  string
	category string // empty for numeric columns
}

// Local evaluates a fitted model in process
type Local struct {
	kind    string
	columns []column
	weights *mat.Dense // one row per output, nil when intercept-only
	bias    *mat.VecDense
	labels  []string
}

// NewLocal compiles a descriptor into a weight matrix. Coefficients on target
// are rejected since the target is never part of the input.
func NewLocal(d Descriptor, target string) (*Local, error) {
	var outputs []Terms
	var labels []string
	switch d.Kind {
	case KindLinear:
		outputs = []Terms{d.Terms}
	case KindSoftmax:
		if len(d.Classes) < 2 {
			return nil, core.NewConfigError("model", "softmax needs at least two classes")
		}
		for _, c := range d.Classes {
			if c.Label == "" {
				return nil, core.NewConfigError("model", "softmax class without label")
			}
			outputs = append(outputs, c.Terms)
			labels = append(labels, c.Label)
		}
	default:
		return nil, core.NewConfigError("model", fmt.Sprintf("unknown kind %q", d.Kind))
	}

	columns := collectColumns(outputs)
	for _, c := range columns {
		if c.feature == target {
			return nil, core.NewConfigError("model", fmt.Sprintf("has a coefficient on its target %q", target))
		}
	}

	m := &Local{kind: d.Kind, columns: columns, labels: labels, bias: mat.NewVecDense(len(outputs), nil)}
	if len(columns) > 0 {
		m.weights = mat.NewDense(len(outputs), len(columns), nil)
	}
	for i, t := range outputs {
		m.bias.SetVec(i, t.Intercept)
		for j, c := range columns {
			var w float64
			if c.category == "" {
				w = t.Numeric[c.feature]
			} else {
				w = t.Categorical[c.feature][c.category]
			}
			m.weights.Set(i, j, w)
		}
	}
	return m, nil
}

// collectColumns lists numeric columns then one-hot columns, each sorted
func collectColumns(outputs []Terms) []column {
	numeric := map[string]bool{}
	onehot := map[column]bool{}
	for _, t := range outputs {
		for f := range t.Numeric {
			numeric[f] = true
		}
		for f, cats := range t.Categorical {
			for c := range cats {
				onehot[column{feature: f, category: c}] = true
			}
		}
	}
	cols := make([]column, 0, len(numeric)+len(onehot))
	for f := range numeric {
		cols = append(cols, column{feature: f})
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].feature < cols[j].feature })
	n := len(cols)
	for c := range onehot {
		cols = append(cols, c)
	}
	tail := cols[n:]
	sort.Slice(tail, func(i, j int) bool {
		if tail[i].feature != tail[j].feature {
			return tail[i].feature < tail[j].feature
		}
		return tail[i].category < tail[j].category
	})
	return cols
}

// Features returns the input fields the model reads
func (m *Local) Features() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range m.columns {
		if !seen[c.feature] {
			seen[c.feature] = true
			out = append(out, c.feature)
		}
	}
	return out
}

// Predict implements ports.Predictor. Linear models return a value; softmax
// models return the most probable label with its probability as value.
func (m *Local) Predict(ctx context.Context, features ports.Features) (ports.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return ports.Prediction{}, err
	}
	x := make([]float64, len(m.columns))
	for j, c := range m.columns {
		raw, ok := features[c.feature]
		if !ok {
			return ports.Prediction{}, core.NewConfigError("features", fmt.Sprintf("missing %q", c.feature))
		}
		if c.category != "" {
			if s, _ := raw.(string); s == c.category {
				x[j] = 1
			}
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return ports.Prediction{}, core.NewConfigError(c.feature, err.Error())
		}
		x[j] = v
	}

	scores := mat.VecDenseCopyOf(m.bias)
	if m.weights != nil {
		scores.MulVec(m.weights, mat.NewVecDense(len(x), x))
		scores.AddVec(scores, m.bias)
	}

	if m.kind == KindLinear {
		return ports.Prediction{Value: core.Some(scores.AtVec(0))}, nil
	}
	s := scores.RawVector().Data
	best := floats.MaxIdx(s)
	p := math.Exp(s[best] - floats.LogSumExp(s))
	return ports.Prediction{Label: m.labels[best], Value: core.Some(p)}, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}
