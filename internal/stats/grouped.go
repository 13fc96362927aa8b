package stats

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
)

// Aggregate reduces the values of one group
type Aggregate string

const (
	AggMean   Aggregate = "mean"
	AggMedian Aggregate = "median"
	AggSum    Aggregate = "sum"
	AggCount  Aggregate = "count"
	AggStd    Aggregate = "std"
)

// ParseAggregate accepts any letter case; the empty string means Mean
func ParseAggregate(s string) (Aggregate, error) {
	switch a := Aggregate(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AggMean, nil
	case AggMean, AggMedian, AggSum, AggCount, AggStd:
		return a, nil
	}
	return "", core.NewConfigError("aggregate", fmt.Sprintf("unknown aggregate %q", s))
}

// Reduce applies the aggregate. Mean, Median and Std of nothing are undefined;
// Sum and Count of nothing are zero.
func (a Aggregate) Reduce(values []float64) core.Value {
	switch a {
	case AggCount:
		return core.Some(float64(len(values)))
	case AggSum:
		if len(values) == 0 {
			return core.Some(0)
		}
		s, err := stats.Sum(values)
		if err != nil {
			return core.None()
		}
		return core.Some(s)
	}
	if len(values) == 0 {
		return core.None()
	}
	switch a {
	case AggMedian:
		m, err := stats.Median(values)
		if err != nil {
			return core.None()
		}
		return core.Some(m)
	case AggStd:
		if len(values) < 2 {
			return core.None()
		}
		s, err := stats.StandardDeviationSample(values)
		if err != nil {
			return core.None()
		}
		return core.Some(s)
	default:
		m, err := stats.Mean(values)
		if err != nil {
			return core.None()
		}
		return core.Some(m)
	}
}

// GroupedRow is one (group, field) cell of a long-shaped grouped aggregate
type GroupedRow struct {
	Group string     `json:"group"`
	Field string     `json:"field"`
	Value core.Value `json:"value"`
	Count int        `json:"count"`
}

// GroupBy aggregates each numeric field per observed value of groupBy
func GroupBy(view dataset.View, groupBy string, fields []string, agg Aggregate) ([]GroupedRow, error) {
	if len(fields) == 0 {
		return nil, core.NewConfigError("fields", "at least one numeric field is required")
	}
	agg, err := ParseAggregate(string(agg))
	if err != nil {
		return nil, err
	}
	groups, order, err := partition(view, groupBy)
	if err != nil {
		return nil, err
	}

	cols := make(map[string][]float64, len(fields))
	for _, f := range fields {
		col, err := view.Numeric(f)
		if err != nil {
			return nil, err
		}
		cols[f] = col
	}
	if view.IsEmpty() {
		return nil, core.NewInsufficientDataError(groupBy, 0, 1)
	}

	var rows []GroupedRow
	for _, g := range order {
		members := groups[g]
		for _, f := range fields {
			values := gather(cols[f], members)
			rows = append(rows, GroupedRow{Group: g, Field: f, Value: agg.Reduce(values), Count: len(values)})
		}
	}
	return rows, nil
}

// Part is one sub-group share inside a stacked bar
type Part struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Proportion float64 `json:"proportion"`
}

// StackedRow is one primary group with every sub-group, zeros included
type StackedRow struct {
	Group string `json:"group"`
	Total int    `json:"total"`
	Parts []Part `json:"parts"`
}

// Stack computes, per primary group, the share of each secondary value.
// Shares sum to 1 for every row.
func Stack(view dataset.View, primary, secondary string) ([]StackedRow, error) {
	if primary == secondary {
		return nil, core.NewConfigError("sub_group", "must differ from the primary grouping")
	}
	groups, order, err := partition(view, primary)
	if err != nil {
		return nil, err
	}
	sub, err := view.Labels(secondary)
	if err != nil {
		return nil, err
	}
	if view.IsEmpty() {
		return nil, core.NewInsufficientDataError(primary, 0, 1)
	}

	observed := make(map[string]int)
	for _, s := range sub {
		observed[s]++
	}
	subOrder := orderLabels(secondary, observed)

	rows := make([]StackedRow, 0, len(order))
	for _, g := range order {
		members := groups[g]
		counts := make(map[string]int, len(subOrder))
		for _, i := range members {
			counts[sub[i]]++
		}
		row := StackedRow{Group: g, Total: len(members)}
		for _, s := range subOrder {
			row.Parts = append(row.Parts, Part{
				Label:      s,
				Count:      counts[s],
				Proportion: float64(counts[s]) / float64(len(members)),
			})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GroupSummary is the distribution of one numeric field inside one group,
// the numbers behind a box or violin per category
type GroupSummary struct {
	Group string `json:"group"`
	Summary
}

// SummarizeGroups describes field separately for each observed value of groupBy
func SummarizeGroups(view dataset.View, groupBy, field string) ([]GroupSummary, error) {
	groups, order, err := partition(view, groupBy)
	if err != nil {
		return nil, err
	}
	col, err := view.Numeric(field)
	if err != nil {
		return nil, err
	}
	if view.IsEmpty() {
		return nil, core.NewInsufficientDataError(field, 0, 1)
	}

	out := make([]GroupSummary, 0, len(order))
	for _, g := range order {
		s, err := Describe(field, gather(col, groups[g]))
		if err != nil {
			return nil, err
		}
		out = append(out, GroupSummary{Group: g, Summary: s})
	}
	return out, nil
}

// partition maps each observed label of field to the view positions carrying it
func partition(view dataset.View, field string) (map[string][]int, []string, error) {
	labels, err := view.Labels(field)
	if err != nil {
		return nil, nil, err
	}
	groups := make(map[string][]int)
	counts := make(map[string]int)
	for i, l := range labels {
		groups[l] = append(groups[l], i)
		counts[l]++
	}
	return groups, orderLabels(field, counts), nil
}

func gather(col []float64, positions []int) []float64 {
	out := make([]float64, len(positions))
	for i, p := range positions {
		out[i] = col[p]
	}
	return out
}
