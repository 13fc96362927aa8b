package excel

import (
	"context"
	"fmt"

	"moodlens/domain/record"
	"moodlens/internal"
	"moodlens/internal/errors"
	"moodlens/internal/persona"
)

// RecordFile is a dataset file; it implements ports.RecordSource
type RecordFile struct {
	reader *DataReader
	log    *internal.Logger
}

// NewRecordFile opens nothing until LoadRecords is called
func NewRecordFile(path string, log *internal.Logger) *RecordFile {
	if log == nil {
		log = internal.NewNopLogger()
	}
	return &RecordFile{reader: NewDataReader(path, log), log: log}
}

// LoadRecords decodes every row. A row that cannot be decoded fails the whole
// load with its 1-based data row number.
func (f *RecordFile) LoadRecords(ctx context.Context) ([]record.Record, error) {
	table, err := f.reader.ReadData()
	if err != nil {
		return nil, errors.LoadFailed("dataset", err)
	}
	if err := requireColumns(table, recordColumns); err != nil {
		return nil, errors.Wrapf(err, "dataset %s", f.reader.filePath)
	}

	out := make([]record.Record, 0, len(table.Rows))
	for i, row := range table.Rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		r, err := decodeRecord(row)
		if err != nil {
			return nil, errors.Wrapf(fmt.Errorf("row %d: %w", i+1, err), "dataset %s", f.reader.filePath)
		}
		out = append(out, r)
	}
	f.log.Info("[RecordFile] Loaded %d records from %s", len(out), f.reader.filePath)
	return out, nil
}

// ProfileFile is a cluster centroid file; it implements ports.ProfileSource
type ProfileFile struct {
	reader *DataReader
	log    *internal.Logger
}

// NewProfileFile reads centroids from path
func NewProfileFile(path string, log *internal.Logger) *ProfileFile {
	if log == nil {
		log = internal.NewNopLogger()
	}
	return &ProfileFile{reader: NewDataReader(path, log), log: log}
}

// LoadProfiles decodes every centroid row. The cluster index comes from a
// "cluster" column or, failing that, the unnamed index column pandas writes.
func (f *ProfileFile) LoadProfiles(ctx context.Context) ([]persona.Profile, error) {
	table, err := f.reader.ReadData()
	if err != nil {
		return nil, errors.LoadFailed("cluster profiles", err)
	}
	clusterHeader := clusterColumn
	if !table.Has(clusterColumn) && table.Has("") {
		clusterHeader = ""
	}
	if err := requireColumns(table, append([]string{clusterHeader}, profileColumns...)); err != nil {
		return nil, errors.Wrapf(err, "cluster profiles %s", f.reader.filePath)
	}

	out := make([]persona.Profile, 0, len(table.Rows))
	for i, row := range table.Rows {
		p, err := decodeProfile(row, clusterHeader)
		if err != nil {
			return nil, errors.Wrapf(fmt.Errorf("row %d: %w", i+1, err), "cluster profiles %s", f.reader.filePath)
		}
		out = append(out, p)
	}
	f.log.Info("[ProfileFile] Loaded %d cluster profiles from %s", len(out), f.reader.filePath)
	return out, ctx.Err()
}
