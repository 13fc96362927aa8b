package stats

import (
	"sort"
	"strconv"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
	"moodlens/domain/record"
)

// Category is one row of a frequency table
type Category struct {
	Label   string     `json:"label"`
	Count   int        `json:"count"`
	Percent core.Value `json:"percent"`
}

// Frequency counts each observed value of a field
type Frequency struct {
	Field      string     `json:"field"`
	Total      int        `json:"total"`
	Categories []Category `json:"categories"`
}

// Frequencies tabulates a categorical or discretized numeric field. Percentages,
// when requested, are relative to the view size, not the dataset size.
func Frequencies(view dataset.View, field string, withPercent bool) (Frequency, error) {
	labels, err := view.Labels(field)
	if err != nil {
		return Frequency{}, err
	}
	if len(labels) == 0 {
		return Frequency{}, core.NewInsufficientDataError(field, 0, 1)
	}

	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}

	f := Frequency{Field: field, Total: len(labels)}
	for _, l := range orderLabels(field, counts) {
		c := Category{Label: l, Count: counts[l]}
		if withPercent {
			c.Percent = core.Some(100 * float64(c.Count) / float64(f.Total))
		}
		f.Categories = append(f.Categories, c)
	}
	return f, nil
}

// orderLabels returns the observed labels of field: canonical category order for
// closed sets, numeric order for numeric fields, lexical otherwise.
func orderLabels(field string, observed map[string]int) []string {
	out := make([]string, 0, len(observed))
	spec, _ := record.Lookup(field)
	if len(spec.Categories) > 0 {
		for _, c := range spec.Categories {
			if _, ok := observed[c]; ok {
				out = append(out, c)
			}
		}
		return out
	}

	for l := range observed {
		out = append(out, l)
	}
	if spec.Kind == record.KindNumeric {
		sort.Slice(out, func(i, j int) bool {
			a, _ := strconv.ParseFloat(out[i], 64)
			b, _ := strconv.ParseFloat(out[j], 64)
			return a < b
		})
		return out
	}
	sort.Strings(out)
	return out
}
