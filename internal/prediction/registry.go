package prediction

import (
	"context"
	"fmt"

	"moodlens/domain/core"
	"moodlens/domain/record"
	"moodlens/ports"
)

// Model is a named predictor bound to its target field
type Model struct {
	Name      string
	Target    string
	Predictor ports.Predictor
}

// ModelInfo is the public description of a model
type ModelInfo struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// Registry holds the models loaded at startup, in manifest order
type Registry struct {
	models []Model
	byName map[string]int
}

// NewRegistry checks names are unique and targets are predictable
func NewRegistry(models ...Model) (*Registry, error) {
	r := &Registry{byName: make(map[string]int, len(models))}
	for _, m := range models {
		if m.Name == "" || m.Predictor == nil {
			return nil, core.NewConfigError("model", "name and predictor are required")
		}
		if !IsTarget(m.Target) {
			return nil, core.NewConfigError("model", fmt.Sprintf("%s: %q is not a prediction target", m.Name, m.Target))
		}
		if _, dup := r.byName[m.Name]; dup {
			return nil, core.NewConfigError("model", fmt.Sprintf("duplicate model name %q", m.Name))
		}
		r.byName[m.Name] = len(r.models)
		r.models = append(r.models, m)
	}
	return r, nil
}

// List describes every model
func (r *Registry) List() []ModelInfo {
	out := make([]ModelInfo, len(r.models))
	for i, m := range r.models {
		out[i] = ModelInfo{Name: m.Name, Target: m.Target}
	}
	return out
}

// Get finds a model by name
func (r *Registry) Get(name string) (Model, error) {
	i, ok := r.byName[name]
	if !ok {
		return Model{}, fmt.Errorf("%w: %s", core.ErrModelNotFound, name)
	}
	return r.models[i], nil
}

// Result is one completed prediction
type Result struct {
	Model          string           `json:"model"`
	Target         string           `json:"target"`
	Features       ports.Features   `json:"features"`
	Prediction     ports.Prediction `json:"prediction"`
	Interpretation Interpretation   `json:"interpretation"`
}

// Predict runs the named model on a record
func (r *Registry) Predict(ctx context.Context, name string, rec record.Record) (Result, error) {
	m, err := r.Get(name)
	if err != nil {
		return Result{}, err
	}
	features, err := BuildRequest(rec, m.Target)
	if err != nil {
		return Result{}, err
	}
	if err := CheckShape(features, m.Target); err != nil {
		return Result{}, err
	}

	p, err := m.Predictor.Predict(ctx, features)
	if err != nil {
		return Result{}, fmt.Errorf("model %s: %w", m.Name, err)
	}
	return Result{
		Model:          m.Name,
		Target:         m.Target,
		Features:       features,
		Prediction:     p,
		Interpretation: Interpret(m.Target, p),
	}, nil
}
