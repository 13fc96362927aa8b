package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
	"moodlens/domain/record"
	"moodlens/internal/testkit"
)

func fixtureView(t *testing.T) dataset.View {
	t.Helper()
	ds, err := dataset.New(testkit.Fixture(), "fixture")
	require.NoError(t, err)
	return ds.All()
}

func TestGranularity_Truncate(t *testing.T) {
	sunday := core.NewDate(2024, 1, 7)
	assert.Equal(t, core.NewDate(2024, 1, 1), Weekly.Truncate(sunday))
	assert.Equal(t, core.NewDate(2024, 1, 8), Weekly.Truncate(core.NewDate(2024, 1, 8)))
	assert.Equal(t, core.NewDate(2024, 2, 1), Monthly.Truncate(core.NewDate(2024, 2, 29)))
	assert.Equal(t, core.NewDate(2024, 3, 9), Daily.Truncate(time.Date(2024, 3, 9, 17, 30, 0, 0, time.UTC)))

	grid := Monthly.Grid(core.NewDate(2024, 1, 31), core.NewDate(2024, 3, 1))
	require.Len(t, grid, 3)
	assert.Equal(t, core.NewDate(2024, 2, 1), grid[1])
}

func TestRolling_MinPeriodsOne(t *testing.T) {
	in := []core.Value{core.Some(10), core.Some(20), core.Some(30), core.Some(40), core.Some(50)}
	got := Rolling(in, 4)

	want := []float64{10, 15, 20, 25, 35}
	for i, w := range want {
		assert.Equal(t, core.Some(w), got[i], "point %d", i)
	}
}

func TestRolling_SkipsUndefined(t *testing.T) {
	in := []core.Value{core.None(), core.Some(4), core.None(), core.None(), core.None()}
	got := Rolling(in, 2)

	assert.False(t, got[0].Valid)
	assert.Equal(t, 4.0, got[1].Float)
	assert.Equal(t, 4.0, got[2].Float)
	assert.False(t, got[3].Valid)
}

func TestResample_EmptyBucketPolicy(t *testing.T) {
	view := fixtureView(t)

	sum, err := Resample(view, []string{record.FieldSleepHours}, Options{Granularity: Weekly, Aggregation: Sum})
	require.NoError(t, err)
	mean, err := Resample(view, []string{record.FieldSleepHours}, Options{Granularity: Weekly, Aggregation: Mean, Variability: true})
	require.NoError(t, err)

	// Jan 1 .. Feb 5 is six Monday-start weeks; weeks of Jan 15, 22 and 29 are empty
	require.Len(t, sum[0].Points, 6)
	assert.Equal(t, "2024-01-15", sum[0].Points[2].Start.String())
	assert.Equal(t, 0, sum[0].Points[2].Count)
	assert.Equal(t, core.Some(0), sum[0].Points[2].Value)
	assert.False(t, mean[0].Points[2].Value.Valid)
	assert.False(t, mean[0].Std[2].Valid)

	// Feb 5 bucket holds a single row: mean defined, band undefined
	assert.Equal(t, core.Some(7), mean[0].Points[5].Value)
	assert.False(t, mean[0].Std[5].Valid)

	assert.Equal(t, 4, sum[0].Points[0].Count)
	assert.InDelta(t, 26.0, sum[0].Points[0].Value.Float, 1e-12)
	lo, hi := mean[0].Band(0)
	assert.True(t, lo.Valid)
	assert.InDelta(t, 2*mean[0].Std[0].Float, hi.Float-lo.Float, 1e-12)
}

func TestResample_DailySumsRollUpToWeekly(t *testing.T) {
	ds, err := dataset.New(testkit.NewRecordGenerator(testkit.DefaultRecordConfig()).Generate(), "generated")
	require.NoError(t, err)
	view := ds.All()

	for _, field := range []string{record.FieldDailyScreenTime, record.FieldSleepHours} {
		daily, err := Resample(view, []string{field}, Options{Granularity: Daily, Aggregation: Sum})
		require.NoError(t, err)
		weekly, err := Resample(view, []string{field}, Options{Granularity: Weekly, Aggregation: Sum})
		require.NoError(t, err)

		rolled := make(map[time.Time]float64)
		for _, p := range daily[0].Points {
			rolled[Weekly.Truncate(p.Start.Time())] += p.Value.Float
		}
		require.Len(t, rolled, len(weekly[0].Points))
		for _, p := range weekly[0].Points {
			assert.InDelta(t, p.Value.Float, rolled[p.Start.Time()], 1e-6, "%s week %s", field, p.Start)
		}
	}
}

func TestResample_Rolling(t *testing.T) {
	out, err := Resample(fixtureView(t), []string{record.FieldStressLevel, record.FieldMoodLevel},
		Options{Granularity: Daily, Aggregation: Median, RollingWindow: 3})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[0].Rolling, len(out[0].Points))
	assert.Equal(t, record.FieldMoodLevel, out[1].Field)
	// Jan 1 median stress of 3 and 6
	assert.Equal(t, core.Some(4.5), out[0].Points[0].Value)
}

func TestResample_Validation(t *testing.T) {
	view := fixtureView(t)

	_, err := Resample(view, []string{record.FieldSleepHours}, Options{Granularity: "hourly", Aggregation: Mean})
	assert.True(t, core.IsConfigError(err))

	_, err = Resample(view, []string{record.FieldSleepHours}, Options{Granularity: Daily, Aggregation: "std"})
	assert.True(t, core.IsConfigError(err))

	for _, w := range []int{1, 13, -2} {
		_, err = Resample(view, []string{record.FieldSleepHours}, Options{Granularity: Daily, Aggregation: Mean, RollingWindow: w})
		assert.True(t, core.IsConfigError(err), "window %d", w)
	}

	_, err = Resample(view, []string{record.FieldGender}, Options{Granularity: Daily, Aggregation: Mean})
	assert.True(t, core.IsConfigError(err))

	empty := view.Where(func(record.Record) bool { return false })
	_, err = Resample(empty, []string{record.FieldSleepHours}, Options{Granularity: Daily, Aggregation: Mean})
	assert.True(t, core.IsInsufficientData(err))

	g, err := ParseGranularity("Weekly")
	require.NoError(t, err)
	assert.Equal(t, Weekly, g)
}
