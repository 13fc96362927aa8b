package app

import (
	"context"

	"moodlens/domain/dataset"
	"moodlens/domain/record"
	"moodlens/internal/errors"
	"moodlens/internal/filter"
)

// TableRequest selects, sorts and pages records
type TableRequest struct {
	Filter     filter.Spec `json:"filter"`
	Columns    []string    `json:"columns,omitempty"`
	SortBy     string      `json:"sort_by,omitempty"`
	Descending bool        `json:"descending,omitempty"`
	Page       int         `json:"page,omitempty"`
	PageSize   int         `json:"page_size,omitempty"`
}

// TableResult is one page of rows; Rows[i][j] is the value of Columns[j]
type TableResult struct {
	Counts  filter.Counts   `json:"counts"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
	Page    int             `json:"page"`
	Pages   int             `json:"pages"`
	Size    int             `json:"page_size"`
	Caption string          `json:"caption"`
}

// DefaultColumns is every schema field in table order
func DefaultColumns() []string {
	specs := record.Schema()
	out := make([]string, len(specs))
	for i, f := range specs {
		out[i] = f.Name
	}
	return out
}

// Select filters and sorts without paging; it feeds exports
func (s *Service) Select(req TableRequest) (dataset.View, filter.Counts, []string, error) {
	columns := req.Columns
	if len(columns) == 0 {
		columns = DefaultColumns()
	}
	for _, c := range columns {
		if _, err := record.Lookup(c); err != nil {
			return dataset.View{}, filter.Counts{}, nil, errors.Wrap(err, "columns")
		}
	}
	view, counts, err := s.Filtered(req.Filter)
	if err != nil {
		return dataset.View{}, filter.Counts{}, nil, err
	}
	if req.SortBy != "" {
		if view, err = view.SortBy(req.SortBy, req.Descending); err != nil {
			return dataset.View{}, filter.Counts{}, nil, errors.Wrap(err, "sort")
		}
	}
	return view, counts, columns, nil
}

// Table returns one page of the filtered, sorted records
func (s *Service) Table(ctx context.Context, req TableRequest) (*TableResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	view, counts, columns, err := s.Select(req)
	if err != nil {
		return nil, err
	}
	size := req.PageSize
	if size == 0 {
		size = dataset.DefaultPageSize
	}
	number := req.Page
	if number == 0 {
		number = 1
	}
	page, err := view.Page(number, size)
	if err != nil {
		return nil, errors.Wrap(err, "page")
	}

	rows := make([][]interface{}, page.View.Len())
	for i := range rows {
		r := page.View.Record(i)
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			if row[j], err = r.Value(c); err != nil {
				return nil, err
			}
		}
		rows[i] = row
	}
	return &TableResult{
		Counts:  counts,
		Columns: columns,
		Rows:    rows,
		Page:    page.Number,
		Pages:   page.Pages,
		Size:    page.Size,
		Caption: page.Caption(),
	}, nil
}
