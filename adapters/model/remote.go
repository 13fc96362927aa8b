package model

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"moodlens/internal"
	"moodlens/internal/errors"
	"moodlens/ports"
)

// BreakerConfig tunes the circuit breaker in front of a remote predictor
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig trips after 5 requests when 60% of them failed
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

type remoteRequest struct {
	Model    string         `json:"model"`
	Features ports.Features `json:"features"`
}

// rejectedError is a 4xx answer. The service is healthy, so it does not count
// against the breaker.
type rejectedError struct {
	status int
	body   string
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("predictor rejected request (%d): %s", e.status, e.body)
}

// Remote posts features as JSON to a prediction service
type Remote struct {
	name   string
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker
	log    *internal.Logger
}

// NewRemote creates a remote predictor; timeout bounds each HTTP call
func NewRemote(name, url string, timeout time.Duration, cfg BreakerConfig, log *internal.Logger) *Remote {
	if log == nil {
		log = internal.NewNopLogger()
	}
	r := &Remote{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
	r.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "predictor:" + name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("[Remote] Circuit breaker '%s' state changed from %v to %v", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			var rejected *rejectedError
			return err == nil || stderrors.As(err, &rejected)
		},
	})
	return r
}

// State exposes the breaker state for health reporting
func (r *Remote) State() gobreaker.State {
	return r.cb.State()
}

// Predict implements ports.Predictor
func (r *Remote) Predict(ctx context.Context, features ports.Features) (ports.Prediction, error) {
	res, err := r.cb.Execute(func() (interface{}, error) {
		return r.call(ctx, features)
	})
	if err != nil {
		var rejected *rejectedError
		switch {
		case stderrors.As(err, &rejected):
			return ports.Prediction{}, errors.InvalidInput(rejected.Error())
		case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
			r.log.Warn("[Remote] %s unavailable: %v", r.name, err)
		}
		return ports.Prediction{}, errors.ExternalServiceError("predictor "+r.name, err)
	}
	return res.(ports.Prediction), nil
}

func (r *Remote) call(ctx context.Context, features ports.Features) (ports.Prediction, error) {
	body, err := json.Marshal(remoteRequest{Model: r.name, Features: features})
	if err != nil {
		return ports.Prediction{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return ports.Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return ports.Prediction{}, err
	}
	defer resp.Body.Close()
	r.log.Debug("[Remote] %s answered %d in %s", r.name, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode < 500 {
			return ports.Prediction{}, &rejectedError{status: resp.StatusCode, body: string(bytes.TrimSpace(msg))}
		}
		return ports.Prediction{}, fmt.Errorf("predictor returned %d", resp.StatusCode)
	}

	var p ports.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return ports.Prediction{}, fmt.Errorf("decode prediction: %w", err)
	}
	if !p.IsLabel() && !p.Value.Valid {
		return ports.Prediction{}, fmt.Errorf("prediction has neither label nor value")
	}
	return p, nil
}
