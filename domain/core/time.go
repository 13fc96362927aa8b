package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical wire format for calendar dates
const DateLayout = "2006-01-02"

// accepted input layouts, tried in order
var dateLayouts = []string{
	DateLayout,
	"02/01/2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// TruncateDay drops the clock part, keeping the calendar date in UTC
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDate builds a UTC calendar date
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts the date spellings found in exported datasets
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TruncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// excelEpoch is day zero of the 1900 date system as excelize and Excel count it
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// FromExcelSerial converts an Excel serial day number into a calendar date
func FromExcelSerial(serial float64) time.Time {
	return TruncateDay(excelEpoch.AddDate(0, 0, int(serial)))
}

// Date is a calendar date that marshals as YYYY-MM-DD
type Date time.Time

func (d Date) Time() time.Time { return time.Time(d) }

func (d Date) String() string { return time.Time(d).Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}
