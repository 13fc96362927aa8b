// Package timeseries resamples a filtered view onto a calendar grid.
//
// Buckets are contiguous and cover the span of the view, so a bucket with no
// observations still appears: its Sum is 0, its Mean and Median are undefined.
package timeseries

import (
	"fmt"
	"strings"
	"time"

	"moodlens/domain/core"
	"moodlens/internal/stats"
)

// Granularity is the "heartbeat" of the series
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity accepts any letter case
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Daily, Weekly, Monthly:
		return g, nil
	}
	return "", core.NewConfigError("granularity", fmt.Sprintf("unknown granularity %q", s))
}

// Truncate rounds t down to the start of its bucket. Weeks start on Monday.
func (g Granularity) Truncate(t time.Time) time.Time {
	switch g {
	case Weekly:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		monday := t.AddDate(0, 0, -(weekday - 1))
		return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// Next is the start of the bucket after the one starting at start
func (g Granularity) Next(start time.Time) time.Time {
	switch g {
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Monthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// Grid lists bucket starts covering [first, last]
func (g Granularity) Grid(first, last time.Time) []time.Time {
	var grid []time.Time
	end := g.Truncate(last)
	for current := g.Truncate(first); !current.After(end); current = g.Next(current) {
		grid = append(grid, current)
	}
	return grid
}

// Aggregation reduces the raw values of one bucket
type Aggregation string

const (
	Mean   Aggregation = "mean"
	Median Aggregation = "median"
	Sum    Aggregation = "sum"
)

// ParseAggregation accepts any letter case
func ParseAggregation(s string) (Aggregation, error) {
	switch a := Aggregation(strings.ToLower(strings.TrimSpace(s))); a {
	case Mean, Median, Sum:
		return a, nil
	}
	return "", core.NewConfigError("aggregation", fmt.Sprintf("unknown aggregation %q", s))
}

func (a Aggregation) reduce(values []float64) core.Value {
	return stats.Aggregate(a).Reduce(values)
}

// Rolling window bounds, in buckets
const (
	MinRollingWindow = 2
	MaxRollingWindow = 12
)

// Options configures one resample call
type Options struct {
	Granularity   Granularity `json:"granularity"`
	Aggregation   Aggregation `json:"aggregation"`
	Variability   bool        `json:"variability"`
	RollingWindow int         `json:"rolling_window,omitempty"` // 0 disables the rolling mean
}

// Validate rejects options before any computation
func (o Options) Validate() error {
	if _, err := ParseGranularity(string(o.Granularity)); err != nil {
		return err
	}
	if _, err := ParseAggregation(string(o.Aggregation)); err != nil {
		return err
	}
	if o.RollingWindow != 0 && (o.RollingWindow < MinRollingWindow || o.RollingWindow > MaxRollingWindow) {
		return core.NewConfigError("rolling_window", fmt.Sprintf("must be between %d and %d, got %d", MinRollingWindow, MaxRollingWindow, o.RollingWindow))
	}
	return nil
}

// Point is one bucket of a series
type Point struct {
	Start core.Date  `json:"start"`
	Value core.Value `json:"value"`
	Count int        `json:"count"`
}

// Series is the aggregate line of one field plus its optional companions,
// each aligned one-to-one with Points
type Series struct {
	Field       string       `json:"field"`
	Granularity Granularity  `json:"granularity"`
	Aggregation Aggregation  `json:"aggregation"`
	Points      []Point      `json:"points"`
	Rolling     []core.Value `json:"rolling,omitempty"`
	Std         []core.Value `json:"std,omitempty"`
}

// Band is the variability envelope value -/+ std at bucket i
func (s Series) Band(i int) (lower, upper core.Value) {
	if i >= len(s.Std) || !s.Std[i].Valid || !s.Points[i].Value.Valid {
		return core.None(), core.None()
	}
	v, d := s.Points[i].Value.Float, s.Std[i].Float
	return core.Some(v - d), core.Some(v + d)
}

// Values is the aggregate line without bucket metadata
func (s Series) Values() []core.Value {
	out := make([]core.Value, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}
