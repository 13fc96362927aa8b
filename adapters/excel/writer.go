package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"moodlens/domain/record"
	"moodlens/internal/errors"
)

// ExportSheet is the sheet name written by WriteRecords
const ExportSheet = "Sheet1"

// SourceColumns lists the stored record fields in file order
func SourceColumns() []string {
	out := make([]string, len(recordColumns))
	copy(out, recordColumns)
	return out
}

func rowValues(r record.Record, fields []string) ([]interface{}, error) {
	vals := make([]interface{}, len(fields))
	for i, field := range fields {
		v, err := r.Value(field)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func checkFields(fields []string) ([]string, error) {
	if len(fields) == 0 {
		return SourceColumns(), nil
	}
	for _, f := range fields {
		if _, err := record.Lookup(f); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

// WriteRecords streams rows into a single-sheet workbook. No fields means the
// source columns, which makes the output loadable by RecordFile.
func WriteRecords(w io.Writer, fields []string, rows []record.Record) error {
	fields, err := checkFields(fields)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(ExportSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	header := make([]interface{}, len(fields))
	for i, name := range fields {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, r := range rows {
		vals, err := rowValues(r, fields)
		if err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, vals); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

// WriteRecordsCSV writes the same table as comma-separated text
func WriteRecordsCSV(w io.Writer, fields []string, rows []record.Record) error {
	fields, err := checkFields(fields)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	line := make([]string, len(fields))
	for _, r := range rows {
		for i, field := range fields {
			s, err := r.Label(field)
			if err != nil {
				return err
			}
			line[i] = s
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveRecords writes the file in the format its extension names; it makes
// RecordFile a ports.RecordSink
func (f *RecordFile) SaveRecords(ctx context.Context, records []record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out, err := os.Create(f.reader.filePath)
	if err != nil {
		return errors.Wrapf(err, "create %s", f.reader.filePath)
	}
	defer out.Close()

	if f.reader.fileType == "csv" {
		err = WriteRecordsCSV(out, nil, records)
	} else {
		err = WriteRecords(out, nil, records)
	}
	if err != nil {
		return errors.Wrapf(err, "write %s", f.reader.filePath)
	}
	f.log.Info("[RecordFile] Wrote %d records to %s", len(records), f.reader.filePath)
	return out.Close()
}
