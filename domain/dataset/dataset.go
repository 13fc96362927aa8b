// Package dataset holds the immutable in-memory table every analysis runs on.
package dataset

import (
	"encoding/json"
	"fmt"
	"time"

	"moodlens/domain/core"
	"moodlens/domain/record"
)

// Metadata describes a loaded dataset
type Metadata struct {
	Source      string                  `json:"source"`
	RecordCount int                     `json:"record_count"`
	FieldCount  int                     `json:"field_count"`
	FirstDate   core.Date               `json:"first_date"`
	LastDate    core.Date               `json:"last_date"`
	Fingerprint core.DatasetFingerprint `json:"fingerprint"`
	LoadedAt    time.Time               `json:"loaded_at"`
}

// Dataset is built once at startup and never mutated afterwards.
// Derived columns are materialised here so views only gather by index.
type Dataset struct {
	records []record.Record
	numeric map[string][]float64
	labels  map[string][]string
	meta    Metadata
}

// New validates every record and materialises the columnar form
func New(records []record.Record, source string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, core.NewInsufficientDataError("dataset", 0, 1)
	}

	rows := make([]record.Record, len(records))
	copy(rows, records)

	first, last := rows[0].Date, rows[0].Date
	for i := range rows {
		rows[i].Date = core.TruncateDay(rows[i].Date)
		if err := rows[i].Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if rows[i].Date.Before(first) {
			first = rows[i].Date
		}
		if rows[i].Date.After(last) {
			last = rows[i].Date
		}
	}

	ds := &Dataset{
		records: rows,
		numeric: make(map[string][]float64),
		labels:  make(map[string][]string),
	}
	for _, name := range record.FieldsOfKind(record.KindNumeric) {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i], _ = r.Numeric(name)
		}
		ds.numeric[name] = col
	}
	for _, name := range record.FieldsOfKind(record.KindCategorical) {
		col := make([]string, len(rows))
		for i, r := range rows {
			col[i], _ = r.Category(name)
		}
		ds.labels[name] = col
	}

	fp, err := fingerprint(rows)
	if err != nil {
		return nil, fmt.Errorf("fingerprint dataset: %w", err)
	}

	ds.meta = Metadata{
		Source:      source,
		RecordCount: len(rows),
		FieldCount:  len(record.Schema()),
		FirstDate:   core.Date(first),
		LastDate:    core.Date(last),
		Fingerprint: fp,
		LoadedAt:    time.Now().UTC(),
	}
	return ds, nil
}

func fingerprint(rows []record.Record) (core.DatasetFingerprint, error) {
	data, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return core.DatasetFingerprint(core.NewHash(data)), nil
}

// Metadata returns the load-time description
func (d *Dataset) Metadata() Metadata { return d.meta }

// Len is the total number of records
func (d *Dataset) Len() int { return len(d.records) }

// Fingerprint identifies the dataset content
func (d *Dataset) Fingerprint() core.DatasetFingerprint { return d.meta.Fingerprint }

// LastDate is the most recent observation date
func (d *Dataset) LastDate() time.Time { return d.meta.LastDate.Time() }

// All is the unfiltered view
func (d *Dataset) All() View {
	idx := make([]int, len(d.records))
	for i := range idx {
		idx[i] = i
	}
	return View{ds: d, idx: idx}
}
