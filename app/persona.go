package app

import (
	"context"
	"time"

	"moodlens/domain/core"
	"moodlens/domain/record"
	"moodlens/internal/errors"
	"moodlens/internal/persona"
	"moodlens/internal/prediction"
)

// PersonaView is a persona with its projected, schema-valid record
type PersonaView struct {
	persona.Persona
	Record record.Record `json:"record"`
}

// Personas projects every cluster. A centroid that cannot be projected is
// logged and skipped so one bad row does not hide the others.
func (s *Service) Personas() []PersonaView {
	list := s.catalog.List()
	out := make([]PersonaView, 0, len(list))
	for _, p := range list {
		r, err := s.projector.Project(p.Profile)
		if err != nil {
			s.log.Warn("[Personas] %s cannot be projected: %v", p.Label, err)
			continue
		}
		out = append(out, PersonaView{Persona: p, Record: r})
	}
	return out
}

// Persona projects one cluster
func (s *Service) Persona(cluster int) (PersonaView, error) {
	p, err := s.catalog.Get(cluster)
	if err != nil {
		return PersonaView{}, errors.Wrap(err, "persona")
	}
	r, err := s.projector.Project(p.Profile)
	if err != nil {
		return PersonaView{}, errors.Wrapf(err, "persona %s", p.Label)
	}
	return PersonaView{Persona: p, Record: r}, nil
}

// Models lists the loaded prediction models
func (s *Service) Models() []prediction.ModelInfo {
	return s.models.List()
}

// PredictRequest names a model and its input: either a full record or a
// cluster whose projected record is used
type PredictRequest struct {
	Model   string         `json:"model" binding:"required"`
	Record  *record.Record `json:"record,omitempty"`
	Cluster *int           `json:"cluster,omitempty"`
}

// Predict runs a model on the request input
func (s *Service) Predict(ctx context.Context, req PredictRequest) (prediction.Result, error) {
	var rec record.Record
	switch {
	case req.Record != nil && req.Cluster != nil:
		return prediction.Result{}, errors.InvalidInput("give either a record or a cluster, not both")
	case req.Record != nil:
		rec = *req.Record
		if rec.Date.IsZero() {
			rec.Date = s.dataset.LastDate()
		}
		rec.Date = core.TruncateDay(rec.Date)
	case req.Cluster != nil:
		p, err := s.Persona(*req.Cluster)
		if err != nil {
			return prediction.Result{}, err
		}
		rec = p.Record
	default:
		return prediction.Result{}, errors.InvalidInput("a record or a cluster is required")
	}

	start := time.Now()
	res, err := s.models.Predict(ctx, req.Model, rec)
	s.metrics.ObservePrediction(req.Model, err)
	if err != nil {
		s.log.Warn("[Predict] %s failed after %s: %v", req.Model, time.Since(start), err)
		return prediction.Result{}, errors.Wrap(err, "predict")
	}
	s.log.Debug("[Predict] %s -> %+v in %s", req.Model, res.Prediction, time.Since(start))
	return res, nil
}
