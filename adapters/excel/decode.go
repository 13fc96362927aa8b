package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"moodlens/domain/core"
	"moodlens/domain/record"
	"moodlens/internal/persona"
)

// recordColumns are the headers a dataset file must carry. Derived columns
// present in the file are ignored and recomputed.
var recordColumns = []string{
	record.FieldDate,
	record.FieldAge,
	record.FieldGender,
	record.FieldPlatform,
	record.FieldDailyScreenTime,
	record.FieldSocialMediaTime,
	record.FieldSleepHours,
	record.FieldPhysicalActivity,
	record.FieldNegativeInteractions,
	record.FieldPositiveInteractions,
	record.FieldAnxietyLevel,
	record.FieldStressLevel,
	record.FieldMoodLevel,
	record.FieldMentalState,
}

// profileColumns are the centroid headers; the cluster index column may also be
// spelled as the blank header pandas writes for an index
var profileColumns = []string{
	record.FieldAge,
	record.FieldGender,
	record.FieldPlatform,
	record.FieldDailyScreenTime,
	record.FieldSocialMediaTime,
	record.FieldSleepHours,
	record.FieldPhysicalActivity,
	record.FieldNegativeRatio,
	record.FieldAnxietyLevel,
	record.FieldStressLevel,
	record.FieldMoodLevel,
	record.FieldMentalState,
}

const clusterColumn = "cluster"

func requireColumns(t *Table, columns []string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return core.NewInvalidRecordError("header", "is missing columns "+strings.Join(missing, ", "))
	}
	return nil
}

// rowDecoder accumulates the first error so a row decodes in straight-line code
type rowDecoder struct {
	row RawRowData
	err error
}

func (d *rowDecoder) text(column string) string {
	return d.row[column]
}

func (d *rowDecoder) float(column string) float64 {
	if d.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(d.row[column], 64)
	if err != nil {
		d.err = core.NewInvalidRecordError(column, fmt.Sprintf("is not a number: %q", d.row[column]))
		return 0
	}
	return v
}

// integer accepts "3" and "3.0" but not "3.5"
func (d *rowDecoder) integer(column string) int {
	v := d.float(column)
	if d.err != nil {
		return 0
	}
	if v != math.Trunc(v) {
		d.err = core.NewInvalidRecordError(column, fmt.Sprintf("is not an integer: %q", d.row[column]))
		return 0
	}
	return int(v)
}

func (d *rowDecoder) date(column string) time.Time {
	if d.err != nil {
		return time.Time{}
	}
	t, err := parseCellDate(d.row[column])
	if err != nil {
		d.err = core.NewInvalidRecordError(column, err.Error())
	}
	return t
}

// parseCellDate accepts Excel serial numbers as well as text dates
func parseCellDate(s string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return core.FromExcelSerial(serial), nil
	}
	return core.ParseDate(s)
}

func decodeRecord(row RawRowData) (record.Record, error) {
	d := &rowDecoder{row: row}
	r := record.Record{
		Date:                      d.date(record.FieldDate),
		Age:                       d.integer(record.FieldAge),
		Gender:                    record.Gender(d.text(record.FieldGender)),
		Platform:                  record.Platform(d.text(record.FieldPlatform)),
		DailyScreenTimeMin:        d.integer(record.FieldDailyScreenTime),
		SocialMediaTimeMin:        d.integer(record.FieldSocialMediaTime),
		SleepHours:                d.float(record.FieldSleepHours),
		PhysicalActivityMin:       d.integer(record.FieldPhysicalActivity),
		NegativeInteractionsCount: d.integer(record.FieldNegativeInteractions),
		PositiveInteractionsCount: d.integer(record.FieldPositiveInteractions),
		AnxietyLevel:              d.integer(record.FieldAnxietyLevel),
		StressLevel:               d.integer(record.FieldStressLevel),
		MoodLevel:                 d.integer(record.FieldMoodLevel),
		MentalState:               record.MentalState(d.text(record.FieldMentalState)),
	}
	return r, d.err
}

func decodeProfile(row RawRowData, clusterHeader string) (persona.Profile, error) {
	d := &rowDecoder{row: row}
	p := persona.Profile{
		Cluster:                  d.integer(clusterHeader),
		Name:                     d.text("name"),
		Age:                      d.float(record.FieldAge),
		Gender:                   record.Gender(d.text(record.FieldGender)),
		Platform:                 record.Platform(d.text(record.FieldPlatform)),
		DailyScreenTimeMin:       d.float(record.FieldDailyScreenTime),
		SocialMediaTimeMin:       d.float(record.FieldSocialMediaTime),
		SleepHours:               d.float(record.FieldSleepHours),
		PhysicalActivityMin:      d.float(record.FieldPhysicalActivity),
		InteractionNegativeRatio: d.float(record.FieldNegativeRatio),
		AnxietyLevel:             d.float(record.FieldAnxietyLevel),
		StressLevel:              d.float(record.FieldStressLevel),
		MoodLevel:                d.float(record.FieldMoodLevel),
		MentalState:              record.MentalState(d.text(record.FieldMentalState)),
	}
	return p, d.err
}
