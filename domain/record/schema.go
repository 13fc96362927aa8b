package record

import (
	"strconv"
	"time"

	"moodlens/domain/core"
)

// Field names, as they appear in the dataset header
const (
	FieldDate                 = "date"
	FieldYear                 = "year"
	FieldMonth                = "month"
	FieldMonthName            = "month_name"
	FieldWeekNumber           = "week_number"
	FieldDayOfWeek            = "day_of_week"
	FieldAge                  = "age"
	FieldAgeGroup             = "age_group"
	FieldGender               = "gender"
	FieldPlatform             = "platform"
	FieldDailyScreenTime      = "daily_screen_time_min"
	FieldSocialMediaTime      = "social_media_time_min"
	FieldSleepHours           = "sleep_hours"
	FieldPhysicalActivity     = "physical_activity_min"
	FieldNegativeInteractions = "negative_interactions_count"
	FieldPositiveInteractions = "positive_interactions_count"
	FieldInteractionTotal     = "interaction_total"
	FieldNegativeRatio        = "interaction_negative_ratio"
	FieldAnxietyLevel         = "anxiety_level"
	FieldStressLevel          = "stress_level"
	FieldMoodLevel            = "mood_level"
	FieldMentalState          = "mental_state"
)

// Kind is the semantic type of a field
type Kind string

const (
	KindTemporal    Kind = "temporal"
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// FieldSpec describes one schema column
type FieldSpec struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	Integer    bool     `json:"integer,omitempty"`
	Derived    bool     `json:"derived,omitempty"`
	Categories []string `json:"categories,omitempty"` // canonical order for categoricals
}

// Label turns a field name into a display title: "sleep_hours" -> "Sleep Hours"
func (f FieldSpec) Label() string {
	out := make([]byte, 0, len(f.Name))
	upper := true
	for i := 0; i < len(f.Name); i++ {
		c := f.Name[i]
		if c == '_' {
			out = append(out, ' ')
			upper = true
			continue
		}
		if upper && c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper = false
		out = append(out, c)
	}
	return string(out)
}

var monthNames = func() []string {
	names := make([]string, 12)
	for m := time.January; m <= time.December; m++ {
		names[m-1] = m.String()
	}
	return names
}()

var dayNames = []string{
	time.Monday.String(), time.Tuesday.String(), time.Wednesday.String(), time.Thursday.String(),
	time.Friday.String(), time.Saturday.String(), time.Sunday.String(),
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// schema is in table display order
var schema = []FieldSpec{
	{Name: FieldDate, Kind: KindTemporal},
	{Name: FieldYear, Kind: KindNumeric, Integer: true, Derived: true},
	{Name: FieldMonth, Kind: KindNumeric, Integer: true, Derived: true},
	{Name: FieldMonthName, Kind: KindCategorical, Derived: true, Categories: monthNames},
	{Name: FieldWeekNumber, Kind: KindNumeric, Integer: true, Derived: true},
	{Name: FieldDayOfWeek, Kind: KindCategorical, Derived: true, Categories: dayNames},
	{Name: FieldAge, Kind: KindNumeric, Integer: true},
	{Name: FieldAgeGroup, Kind: KindCategorical, Derived: true, Categories: stringsOf(AgeGroups)},
	{Name: FieldGender, Kind: KindCategorical, Categories: stringsOf(Genders)},
	{Name: FieldPlatform, Kind: KindCategorical, Categories: stringsOf(Platforms)},
	{Name: FieldDailyScreenTime, Kind: KindNumeric, Integer: true},
	{Name: FieldSocialMediaTime, Kind: KindNumeric, Integer: true},
	{Name: FieldSleepHours, Kind: KindNumeric},
	{Name: FieldPhysicalActivity, Kind: KindNumeric, Integer: true},
	{Name: FieldNegativeInteractions, Kind: KindNumeric, Integer: true},
	{Name: FieldPositiveInteractions, Kind: KindNumeric, Integer: true},
	{Name: FieldInteractionTotal, Kind: KindNumeric, Integer: true, Derived: true},
	{Name: FieldNegativeRatio, Kind: KindNumeric, Derived: true},
	{Name: FieldAnxietyLevel, Kind: KindNumeric, Integer: true},
	{Name: FieldStressLevel, Kind: KindNumeric, Integer: true},
	{Name: FieldMoodLevel, Kind: KindNumeric, Integer: true},
	{Name: FieldMentalState, Kind: KindCategorical, Categories: stringsOf(MentalStates)},
}

var schemaIndex = func() map[string]FieldSpec {
	idx := make(map[string]FieldSpec, len(schema))
	for _, f := range schema {
		idx[f.Name] = f
	}
	return idx
}()

// Schema returns every field in table order
func Schema() []FieldSpec {
	out := make([]FieldSpec, len(schema))
	copy(out, schema)
	return out
}

// Lookup resolves a field name, failing fast on names outside the schema
func Lookup(name string) (FieldSpec, error) {
	f, ok := schemaIndex[name]
	if !ok {
		return FieldSpec{}, core.NewUnknownFieldError(name)
	}
	return f, nil
}

// FieldsOfKind lists field names of one kind, in table order
func FieldsOfKind(kind Kind) []string {
	var names []string
	for _, f := range schema {
		if f.Kind == kind {
			names = append(names, f.Name)
		}
	}
	return names
}

// Numeric reads a numeric field, derived or stored
func (r Record) Numeric(name string) (float64, error) {
	switch name {
	case FieldYear:
		return float64(r.Year()), nil
	case FieldMonth:
		return float64(r.Month()), nil
	case FieldWeekNumber:
		return float64(r.WeekNumber()), nil
	case FieldAge:
		return float64(r.Age), nil
	case FieldDailyScreenTime:
		return float64(r.DailyScreenTimeMin), nil
	case FieldSocialMediaTime:
		return float64(r.SocialMediaTimeMin), nil
	case FieldSleepHours:
		return r.SleepHours, nil
	case FieldPhysicalActivity:
		return float64(r.PhysicalActivityMin), nil
	case FieldNegativeInteractions:
		return float64(r.NegativeInteractionsCount), nil
	case FieldPositiveInteractions:
		return float64(r.PositiveInteractionsCount), nil
	case FieldInteractionTotal:
		return float64(r.InteractionTotal()), nil
	case FieldNegativeRatio:
		return r.InteractionNegativeRatio(), nil
	case FieldAnxietyLevel:
		return float64(r.AnxietyLevel), nil
	case FieldStressLevel:
		return float64(r.StressLevel), nil
	case FieldMoodLevel:
		return float64(r.MoodLevel), nil
	}
	if _, err := Lookup(name); err != nil {
		return 0, err
	}
	return 0, core.NewConfigError(name, "is not a numeric field")
}

// Category reads a categorical field
func (r Record) Category(name string) (string, error) {
	switch name {
	case FieldMonthName:
		return r.MonthName(), nil
	case FieldDayOfWeek:
		return r.DayOfWeek(), nil
	case FieldAgeGroup:
		return string(r.AgeGroup()), nil
	case FieldGender:
		return string(r.Gender), nil
	case FieldPlatform:
		return string(r.Platform), nil
	case FieldMentalState:
		return string(r.MentalState), nil
	}
	if _, err := Lookup(name); err != nil {
		return "", err
	}
	return "", core.NewConfigError(name, "is not a categorical field")
}

// Label renders any field as a category label. Numeric fields are discretized by
// exact value, which is how frequency tables treat level scales and counts.
func (r Record) Label(name string) (string, error) {
	spec, err := Lookup(name)
	if err != nil {
		return "", err
	}
	switch spec.Kind {
	case KindCategorical:
		return r.Category(name)
	case KindTemporal:
		return r.Date.Format(core.DateLayout), nil
	default:
		v, err := r.Numeric(name)
		if err != nil {
			return "", err
		}
		return FormatNumber(v), nil
	}
}

// Value returns the field as a JSON-friendly scalar
func (r Record) Value(name string) (interface{}, error) {
	spec, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	switch spec.Kind {
	case KindTemporal:
		return r.Date.Format(core.DateLayout), nil
	case KindCategorical:
		return r.Category(name)
	default:
		v, err := r.Numeric(name)
		if err != nil {
			return nil, err
		}
		if spec.Integer {
			return int64(v), nil
		}
		return v, nil
	}
}

// FormatNumber prints the shortest exact decimal, "3" rather than "3.000000"
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
