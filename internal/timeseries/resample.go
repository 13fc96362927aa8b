package timeseries

import (
	"fmt"
	"time"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
	"moodlens/internal/stats"
)

// Resample buckets the view by date and aggregates each field per bucket
func Resample(view dataset.View, fields []string, opts Options) ([]Series, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.Granularity, _ = ParseGranularity(string(opts.Granularity))
	opts.Aggregation, _ = ParseAggregation(string(opts.Aggregation))
	if len(fields) == 0 {
		return nil, core.NewConfigError("fields", "at least one numeric field is required")
	}
	cols := make([][]float64, len(fields))
	for i, f := range fields {
		col, err := view.Numeric(f)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	first, last, ok := view.DateRange()
	if !ok {
		return nil, core.NewInsufficientDataError("time series", 0, 1)
	}

	g := opts.Granularity
	grid := g.Grid(first, last)
	slot := make(map[time.Time]int, len(grid))
	for i, start := range grid {
		slot[start] = i
	}

	// members[b] lists the view positions falling in bucket b
	members := make([][]int, len(grid))
	for pos, d := range view.Dates() {
		b, ok := slot[g.Truncate(d)]
		if !ok {
			return nil, fmt.Errorf("date %s outside resample grid", d.Format(core.DateLayout))
		}
		members[b] = append(members[b], pos)
	}

	out := make([]Series, len(fields))
	for fi, field := range fields {
		s := Series{
			Field:       field,
			Granularity: g,
			Aggregation: opts.Aggregation,
			Points:      make([]Point, len(grid)),
		}
		if opts.Variability {
			s.Std = make([]core.Value, len(grid))
		}
		for b, start := range grid {
			raw := make([]float64, len(members[b]))
			for i, pos := range members[b] {
				raw[i] = cols[fi][pos]
			}
			s.Points[b] = Point{Start: core.Date(start), Value: opts.Aggregation.reduce(raw), Count: len(raw)}
			if opts.Variability {
				s.Std[b] = stats.AggStd.Reduce(raw)
			}
		}
		if opts.RollingWindow > 0 {
			s.Rolling = Rolling(s.Values(), opts.RollingWindow)
		}
		out[fi] = s
	}
	return out, nil
}

// Rolling is the trailing mean over window points with min-periods 1.
// Undefined points are skipped; a window with no defined point stays undefined.
func Rolling(values []core.Value, window int) []core.Value {
	out := make([]core.Value, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		var n int
		for _, v := range values[start : i+1] {
			if v.Valid {
				sum += v.Float
				n++
			}
		}
		if n > 0 {
			out[i] = core.Some(sum / float64(n))
		}
	}
	return out
}
