package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/domain/core"
)

func sample() Record {
	return Record{
		Date:                      core.NewDate(2024, 1, 3), // Wednesday, ISO week 1
		Age:                       29,
		Gender:                    GenderFemale,
		Platform:                  PlatformInstagram,
		DailyScreenTimeMin:        320,
		SocialMediaTimeMin:        180,
		SleepHours:                6.5,
		PhysicalActivityMin:       25,
		NegativeInteractionsCount: 3,
		PositiveInteractionsCount: 7,
		AnxietyLevel:              4,
		StressLevel:               6,
		MoodLevel:                 5,
		MentalState:               MentalStateStressed,
	}
}

func TestRecord_DerivedFields(t *testing.T) {
	r := sample()

	assert.Equal(t, 2024, r.Year())
	assert.Equal(t, 1, r.Month())
	assert.Equal(t, "January", r.MonthName())
	assert.Equal(t, 1, r.WeekNumber())
	assert.Equal(t, "Wednesday", r.DayOfWeek())
	assert.Equal(t, Age25To34, r.AgeGroup())
	assert.Equal(t, 10, r.InteractionTotal())
	assert.InDelta(t, 0.3, r.InteractionNegativeRatio(), 1e-12)
}

func TestNegativeRatio_ZeroInteractions(t *testing.T) {
	assert.Equal(t, 0.0, NegativeRatio(0, 0))
	assert.Equal(t, 1.0, NegativeRatio(0, 4))
	assert.Equal(t, 0.0, NegativeRatio(5, -2))
}

func TestAgeGroupFor_Boundaries(t *testing.T) {
	cases := map[int]AgeGroup{
		13: AgeUnder18, 17: AgeUnder18, 18: Age18To24, 24: Age18To24, 25: Age25To34,
		34: Age25To34, 35: Age35To44, 44: Age35To44, 45: Age45To54, 54: Age45To54, 55: Age55Plus, 80: Age55Plus,
	}
	for age, want := range cases {
		if got := AgeGroupFor(age); got != want {
			t.Errorf("AgeGroupFor(%d) = %s, want %s", age, got, want)
		}
	}
}

func TestRecord_Validate(t *testing.T) {
	require.NoError(t, sample().Validate())

	bad := sample()
	bad.StressLevel = 11
	assert.True(t, core.IsSchemaError(bad.Validate()))

	bad = sample()
	bad.Platform = "MySpace"
	assert.ErrorIs(t, bad.Validate(), core.ErrInvalidRecord)

	bad = sample()
	bad.NegativeInteractionsCount = -1
	assert.Error(t, bad.Validate())
}

func TestLookup_UnknownField(t *testing.T) {
	_, err := Lookup("shoe_size")
	assert.ErrorIs(t, err, core.ErrUnknownField)

	f, err := Lookup(FieldAgeGroup)
	require.NoError(t, err)
	assert.Equal(t, KindCategorical, f.Kind)
	assert.Equal(t, []string{"<18", "18-24", "25-34", "35-44", "45-54", "55+"}, f.Categories)
	assert.Equal(t, "Age Group", f.Label())
}

func TestRecord_Accessors(t *testing.T) {
	r := sample()

	v, err := r.Numeric(FieldSleepHours)
	require.NoError(t, err)
	assert.Equal(t, 6.5, v)

	v, err = r.Numeric(FieldNegativeRatio)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, v, 1e-12)

	_, err = r.Numeric(FieldPlatform)
	assert.True(t, core.IsConfigError(err))

	c, err := r.Category(FieldDayOfWeek)
	require.NoError(t, err)
	assert.Equal(t, "Wednesday", c)

	l, err := r.Label(FieldStressLevel)
	require.NoError(t, err)
	assert.Equal(t, "6", l)

	x, err := r.Value(FieldAge)
	require.NoError(t, err)
	assert.Equal(t, int64(29), x)
}

func TestSchema_KindsPartitionFields(t *testing.T) {
	total := len(FieldsOfKind(KindTemporal)) + len(FieldsOfKind(KindNumeric)) + len(FieldsOfKind(KindCategorical))
	assert.Equal(t, len(Schema()), total)

	for _, name := range FieldsOfKind(KindNumeric) {
		_, err := sample().Numeric(name)
		assert.NoError(t, err, name)
	}
	for _, name := range FieldsOfKind(KindCategorical) {
		_, err := sample().Category(name)
		assert.NoError(t, err, name)
	}
}
