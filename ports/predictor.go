package ports

import (
	"context"

	"moodlens/domain/core"
)

// Features is one prediction input keyed by field name. Values are string for
// categoricals, int for integer scales and float64 otherwise.
type Features map[string]interface{}

// Prediction is either a class label or a numeric estimate
type Prediction struct {
	Label string     `json:"label,omitempty"`
	Value core.Value `json:"value"`
}

// IsLabel reports whether the predictor returned a class
func (p Prediction) IsLabel() bool { return p.Label != "" }

// Predictor is an already-fitted model. It receives the feature set with the
// target field removed and is never retrained or inspected.
type Predictor interface {
	Predict(ctx context.Context, features Features) (Prediction, error)
}
