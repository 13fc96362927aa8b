package dataset

import (
	"fmt"
	"sort"
	"time"

	"moodlens/domain/core"
	"moodlens/domain/record"
)

// View is an ordered subset of a dataset's rows. Operations on a view return new
// views; the dataset and any sibling view are never touched.
type View struct {
	ds  *Dataset
	idx []int
}

// Len is the number of rows in the view
func (v View) Len() int { return len(v.idx) }

// IsEmpty reports whether the view has no rows
func (v View) IsEmpty() bool { return len(v.idx) == 0 }

// Dataset returns the table the view reads from
func (v View) Dataset() *Dataset { return v.ds }

// Record returns the i-th row of the view
func (v View) Record(i int) record.Record { return v.ds.records[v.idx[i]] }

// Records copies the view's rows in view order
func (v View) Records() []record.Record {
	out := make([]record.Record, len(v.idx))
	for i, j := range v.idx {
		out[i] = v.ds.records[j]
	}
	return out
}

// Numeric gathers a numeric column in view order
func (v View) Numeric(field string) ([]float64, error) {
	col, ok := v.ds.numeric[field]
	if !ok {
		return nil, notOfKind(field, record.KindNumeric)
	}
	out := make([]float64, len(v.idx))
	for i, j := range v.idx {
		out[i] = col[j]
	}
	return out, nil
}

// Categorical gathers a categorical column in view order
func (v View) Categorical(field string) ([]string, error) {
	col, ok := v.ds.labels[field]
	if !ok {
		return nil, notOfKind(field, record.KindCategorical)
	}
	out := make([]string, len(v.idx))
	for i, j := range v.idx {
		out[i] = col[j]
	}
	return out, nil
}

// Labels renders any field as category labels, numeric values by exact value
func (v View) Labels(field string) ([]string, error) {
	spec, err := record.Lookup(field)
	if err != nil {
		return nil, err
	}
	if spec.Kind == record.KindCategorical {
		return v.Categorical(field)
	}
	out := make([]string, len(v.idx))
	for i, j := range v.idx {
		out[i], err = v.ds.records[j].Label(field)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Dates gathers the date column in view order
func (v View) Dates() []time.Time {
	out := make([]time.Time, len(v.idx))
	for i, j := range v.idx {
		out[i] = v.ds.records[j].Date
	}
	return out
}

// DateRange returns the first and last date present in the view
func (v View) DateRange() (first, last time.Time, ok bool) {
	for i, j := range v.idx {
		d := v.ds.records[j].Date
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return first, last, len(v.idx) > 0
}

// Where keeps the rows matching pred, preserving order
func (v View) Where(pred func(record.Record) bool) View {
	idx := make([]int, 0, len(v.idx))
	for _, j := range v.idx {
		if pred(v.ds.records[j]) {
			idx = append(idx, j)
		}
	}
	return View{ds: v.ds, idx: idx}
}

// SortBy orders the view by one field. The sort is stable, so ties keep their
// current order; categorical fields sort by canonical category order.
func (v View) SortBy(field string, descending bool) (View, error) {
	spec, err := record.Lookup(field)
	if err != nil {
		return View{}, err
	}

	idx := make([]int, len(v.idx))
	copy(idx, v.idx)
	recs := v.ds.records

	var less func(a, b int) bool
	switch spec.Kind {
	case record.KindTemporal:
		less = func(a, b int) bool { return recs[a].Date.Before(recs[b].Date) }
	case record.KindNumeric:
		col := v.ds.numeric[field]
		less = func(a, b int) bool { return col[a] < col[b] }
	default:
		col := v.ds.labels[field]
		rank := make(map[string]int, len(spec.Categories))
		for i, c := range spec.Categories {
			rank[c] = i
		}
		less = func(a, b int) bool { return rank[col[a]] < rank[col[b]] }
	}

	sort.SliceStable(idx, func(i, j int) bool {
		if descending {
			return less(idx[j], idx[i])
		}
		return less(idx[i], idx[j])
	})
	return View{ds: v.ds, idx: idx}, nil
}

// Page size bounds for the table view
const (
	MinPageSize     = 5
	MaxPageSize     = 100
	DefaultPageSize = 20
)

// Page is one slice of a view for tabular display
type Page struct {
	View   View `json:"-"`
	Number int  `json:"page"`
	Pages  int  `json:"pages"`
	Size   int  `json:"page_size"`
	From   int  `json:"from"` // 1-based, 0 when empty
	To     int  `json:"to"`
	Total  int  `json:"total"`
}

// Caption reads like "Showing rows 21 to 40 of 1200 (page 2/60)"
func (p Page) Caption() string {
	return fmt.Sprintf("Showing rows %d to %d of %d (page %d/%d)", p.From, p.To, p.Total, p.Number, p.Pages)
}

// Page cuts the view into pages of size rows and returns page number (1-based).
// Out-of-range page numbers are clamped.
func (v View) Page(number, size int) (Page, error) {
	if size < MinPageSize || size > MaxPageSize {
		return Page{}, core.NewConfigError("page_size", fmt.Sprintf("must be between %d and %d", MinPageSize, MaxPageSize))
	}
	total := len(v.idx)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}

	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	p := Page{
		View:   View{ds: v.ds, idx: v.idx[start:end:end]},
		Number: number,
		Pages:  pages,
		Size:   size,
		To:     end,
		Total:  total,
	}
	if end > start {
		p.From = start + 1
	}
	return p, nil
}

func notOfKind(field string, kind record.Kind) error {
	if _, err := record.Lookup(field); err != nil {
		return err
	}
	return core.NewConfigError(field, fmt.Sprintf("is not a %s field", kind))
}
