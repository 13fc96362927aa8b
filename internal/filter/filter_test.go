package filter

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
	"moodlens/domain/record"
	"moodlens/internal/testkit"
)

func generated(t *testing.T) dataset.View {
	t.Helper()
	ds, err := dataset.New(testkit.NewRecordGenerator(testkit.DefaultRecordConfig()).Generate(), "generated")
	require.NoError(t, err)
	return ds.All()
}

func date(y, m, d int) *core.Date {
	v := core.Date(core.NewDate(y, time.Month(m), d))
	return &v
}

func TestApply_DateBoundsInclusive(t *testing.T) {
	ds, err := dataset.New(testkit.Fixture(), "fixture")
	require.NoError(t, err)

	got, err := Apply(ds.All(), Spec{Dates: DateRange{Start: date(2024, 1, 1), End: date(2024, 1, 3)}})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())

	got, err = Apply(ds.All(), Spec{Dates: DateRange{Start: date(2024, 1, 9)}})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	got, err = Apply(ds.All(), Spec{Dates: DateRange{End: date(2024, 1, 1)}})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestApply_EmptySetIsNoRestriction(t *testing.T) {
	view := generated(t)

	none, err := Apply(view, Spec{Genders: []record.Gender{}})
	require.NoError(t, err)
	assert.Equal(t, view.Len(), none.Len())

	withPlatform := Spec{Platforms: []record.Platform{record.PlatformTikTok}}
	a, err := Apply(view, withPlatform)
	require.NoError(t, err)
	withPlatform.Genders = []record.Gender{}
	b, err := Apply(view, withPlatform)
	require.NoError(t, err)
	assert.Equal(t, a.Records(), b.Records())
}

func TestApply_RandomSpecsSatisfyEveryPredicate(t *testing.T) {
	view := generated(t)
	rng := rand.New(rand.NewSource(7))

	pick := func(n int) []int {
		var out []int
		for i := 0; i < n; i++ {
			if rng.Intn(2) == 0 {
				out = append(out, i)
			}
		}
		return out
	}

	for iter := 0; iter < 100; iter++ {
		var spec Spec
		for _, i := range pick(len(record.Genders)) {
			spec.Genders = append(spec.Genders, record.Genders[i])
		}
		for _, i := range pick(len(record.AgeGroups)) {
			spec.AgeGroups = append(spec.AgeGroups, record.AgeGroups[i])
		}
		for _, i := range pick(len(record.Platforms)) {
			spec.Platforms = append(spec.Platforms, record.Platforms[i])
		}
		for _, i := range pick(len(record.MentalStates)) {
			spec.MentalStates = append(spec.MentalStates, record.MentalStates[i])
		}
		if rng.Intn(2) == 0 {
			spec.Dates = DateRange{Start: date(2024, 1, 1+rng.Intn(20)), End: date(2024, 2, 1+rng.Intn(20))}
		}

		got, err := Apply(view, spec)
		require.NoError(t, err)
		assert.LessOrEqual(t, got.Len(), view.Len())
		for _, r := range got.Records() {
			for _, p := range spec.Predicates() {
				if !p(r) {
					t.Fatalf("iteration %d: record %+v fails an active predicate", iter, r)
				}
			}
		}
	}
}

func TestValidate(t *testing.T) {
	err := Spec{Dates: DateRange{Start: date(2024, 3, 1), End: date(2024, 1, 1)}}.Validate()
	assert.True(t, core.IsConfigError(err))

	err = Spec{Platforms: []record.Platform{"Friendster"}}.Validate()
	assert.True(t, core.IsConfigError(err))

	_, err = Apply(generated(t), Spec{AgeGroups: []record.AgeGroup{"90+"}})
	assert.Error(t, err)

	assert.NoError(t, Spec{}.Validate())
	assert.True(t, Spec{Genders: []record.Gender{}}.IsEmpty())
}

func TestSummary(t *testing.T) {
	view := generated(t)
	got, err := Apply(view, Spec{MentalStates: []record.MentalState{record.MentalStateAtRisk}})
	require.NoError(t, err)

	c := Summary(got, view)
	assert.Equal(t, view.Len(), c.Total)
	assert.Equal(t, got.Len(), c.Filtered)
	assert.Contains(t, c.String(), " / 500")
}

func TestApply_EmptyResultIsValid(t *testing.T) {
	view := generated(t)
	got, err := Apply(view, Spec{Dates: DateRange{Start: date(2030, 1, 1)}})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestApply_BlankDateBoundsAreUnset(t *testing.T) {
	ds, err := dataset.New(testkit.Fixture(), "fixture")
	require.NoError(t, err)

	var spec Spec
	require.NoError(t, json.Unmarshal([]byte(`{"date_range":{"start":"","end":""}}`), &spec))
	require.NotNil(t, spec.Dates.Start)
	assert.True(t, spec.IsEmpty())
	assert.Empty(t, spec.Predicates())

	got, err := Apply(ds.All(), spec)
	require.NoError(t, err)
	assert.Equal(t, ds.Len(), got.Len())

	require.NoError(t, json.Unmarshal([]byte(`{"date_range":{"start":"","end":"2024-01-03"}}`), &spec))
	got, err = Apply(ds.All(), spec)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len())
}
