package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/domain/core"
	"moodlens/domain/record"
	"moodlens/internal/testkit"
)

func fixture(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(testkit.Fixture(), "fixture")
	require.NoError(t, err)
	return ds
}

func TestNew_Metadata(t *testing.T) {
	ds := fixture(t)
	meta := ds.Metadata()

	assert.Equal(t, 8, meta.RecordCount)
	assert.Equal(t, "2024-01-01", meta.FirstDate.String())
	assert.Equal(t, "2024-02-05", meta.LastDate.String())
	assert.Len(t, meta.Fingerprint.String(), 64)

	again, err := New(testkit.Fixture(), "other")
	require.NoError(t, err)
	assert.Equal(t, ds.Fingerprint(), again.Fingerprint())
}

func TestNew_RejectsInvalidRows(t *testing.T) {
	rows := testkit.Fixture()
	rows[3].MoodLevel = 12

	_, err := New(rows, "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidRecord)
	assert.Contains(t, err.Error(), "row 4")

	_, err = New(nil, "empty")
	assert.True(t, core.IsInsufficientData(err))
}

func TestView_Columns(t *testing.T) {
	v := fixture(t).All()

	sleep, err := v.Numeric(record.FieldSleepHours)
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 6, 8, 5, 6.5, 7.5, 4.5, 7}, sleep)

	groups, err := v.Categorical(record.FieldAgeGroup)
	require.NoError(t, err)
	assert.Equal(t, "<18", groups[0])

	_, err = v.Numeric(record.FieldGender)
	assert.True(t, core.IsConfigError(err))

	_, err = v.Numeric("shoe_size")
	assert.ErrorIs(t, err, core.ErrUnknownField)

	labels, err := v.Labels(record.FieldStressLevel)
	require.NoError(t, err)
	assert.Equal(t, "3", labels[0])
}

func TestView_WhereDoesNotTouchSource(t *testing.T) {
	all := fixture(t).All()
	tiktok := all.Where(func(r record.Record) bool { return r.Platform == record.PlatformTikTok })

	assert.Equal(t, 2, tiktok.Len())
	assert.Equal(t, 8, all.Len())

	first, last, ok := tiktok.DateRange()
	require.True(t, ok)
	assert.Equal(t, "2024-01-01", first.Format(core.DateLayout))
	assert.Equal(t, "2024-01-03", last.Format(core.DateLayout))
}

func TestView_SortByIsStableAndIsolated(t *testing.T) {
	all := fixture(t).All()

	sorted, err := all.SortBy(record.FieldSleepHours, true)
	require.NoError(t, err)
	sleep, _ := sorted.Numeric(record.FieldSleepHours)
	assert.Equal(t, []float64{8, 7.5, 7, 7, 6.5, 6, 5, 4.5}, sleep)

	// the two 7.0 rows keep load order: Jan 1 before Feb 5
	assert.Equal(t, 1, sorted.Record(2).Date.Day())
	assert.Equal(t, 5, sorted.Record(3).Date.Day())

	orig, _ := all.Numeric(record.FieldSleepHours)
	assert.Equal(t, 7.0, orig[0])

	byGender, err := all.SortBy(record.FieldGender, false)
	require.NoError(t, err)
	assert.Equal(t, record.GenderMale, byGender.Record(0).Gender)
	assert.Equal(t, record.GenderOther, byGender.Record(7).Gender)

	_, err = all.SortBy("nope", false)
	assert.Error(t, err)
}

func TestView_PageClamps(t *testing.T) {
	all := fixture(t).All()

	p, err := all.Page(2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Pages)
	assert.Equal(t, 3, p.View.Len())
	assert.Equal(t, "Showing rows 6 to 8 of 8 (page 2/2)", p.Caption())

	p, err = all.Page(99, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Number)

	p, err = all.Page(-1, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.From)

	_, err = all.Page(1, 4)
	assert.True(t, core.IsConfigError(err))

	empty := all.Where(func(record.Record) bool { return false })
	p, err = empty.Page(1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Pages)
	assert.Equal(t, 0, p.From)
	assert.Equal(t, 0, p.To)
}
