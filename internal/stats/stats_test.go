package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

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

func emptyView(t *testing.T) dataset.View {
	return fixtureView(t).Where(func(record.Record) bool { return false })
}

func TestDescribe_KnownColumn(t *testing.T) {
	s, err := Describe("x", []float64{5, 3, 1, 4, 2})
	require.NoError(t, err)

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 3.0, s.Mean.Float)
	assert.Equal(t, 3.0, s.Median.Float)
	assert.Equal(t, 2.0, s.Q1.Float)
	assert.Equal(t, 4.0, s.Q3.Float)
	assert.Equal(t, 2.0, s.IQR.Float)
	assert.InDelta(t, math.Sqrt(2.5), s.Std.Float, 1e-12)
	assert.InDelta(t, 0.0, s.Skewness.Float, 1e-12)
	assert.InDelta(t, -1.2, s.Kurtosis.Float, 1e-12)

	lo, hi := s.Fences()
	assert.Equal(t, -1.0, lo.Float)
	assert.Equal(t, 7.0, hi.Float)
}

func TestDescribe_SmallSamples(t *testing.T) {
	s, err := Describe("x", []float64{4})
	require.NoError(t, err)
	assert.True(t, s.Mean.Valid)
	assert.False(t, s.Std.Valid)
	assert.False(t, s.Skewness.Valid)
	assert.False(t, s.Kurtosis.Valid)

	_, err = Describe("x", nil)
	assert.True(t, core.IsInsufficientData(err))
}

func TestQuantile_Type7(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Quantile(x, 0.25), 1e-12)
	assert.InDelta(t, 3.25, Quantile(x, 0.75), 1e-12)
	assert.Equal(t, 4.0, Quantile(x, 1))
	assert.Equal(t, 9.0, Quantile([]float64{9}, 0.5))
}

func TestAnnotations(t *testing.T) {
	s, err := Describe("x", []float64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	ann, err := s.Annotations(AnnotationOptions{Mean: true, Fences: true, Sigma: 2})
	require.NoError(t, err)

	var labels []string
	for _, a := range ann {
		labels = append(labels, a.Label)
	}
	assert.Equal(t, []string{"Mean", "Q1 - 1.5 IQR", "Q3 + 1.5 IQR", "+1σ", "-1σ", "+2σ", "-2σ"}, labels)
	assert.InDelta(t, 3+2*math.Sqrt(2.5), ann[5].Value.Float, 1e-12)

	_, err = s.Annotations(AnnotationOptions{Sigma: 4})
	assert.True(t, core.IsConfigError(err))
}

func TestFrequencies_CanonicalOrderAndPercent(t *testing.T) {
	f, err := Frequencies(fixtureView(t), record.FieldPlatform, true)
	require.NoError(t, err)

	var labels []string
	var total float64
	for _, c := range f.Categories {
		labels = append(labels, c.Label)
		total += c.Percent.Float
	}
	assert.Equal(t, []string{"Facebook", "Instagram", "TikTok", "Twitter", "WhatsApp", "YouTube"}, labels)
	assert.InDelta(t, 100, total, 1e-9)
	assert.Equal(t, 2, f.Categories[1].Count)
	assert.Equal(t, 25.0, f.Categories[1].Percent.Float)

	f, err = Frequencies(fixtureView(t), record.FieldStressLevel, false)
	require.NoError(t, err)
	assert.Equal(t, "2", f.Categories[0].Label)
	assert.Equal(t, "3", f.Categories[1].Label)
	assert.Equal(t, 2, f.Categories[1].Count)
	assert.False(t, f.Categories[1].Percent.Valid)

	_, err = Frequencies(emptyView(t), record.FieldPlatform, true)
	assert.True(t, core.IsInsufficientData(err))
}

func TestFrequencies_PercentOfFilteredView(t *testing.T) {
	females := fixtureView(t).Where(func(r record.Record) bool { return r.Gender == record.GenderFemale })
	f, err := Frequencies(females, record.FieldMentalState, true)
	require.NoError(t, err)
	assert.Equal(t, 3, f.Total)
	assert.InDelta(t, 200.0/3, f.Categories[0].Percent.Float, 1e-9)
}

func TestCorrelate_AllMethods(t *testing.T) {
	view := fixtureView(t)
	fields := []string{record.FieldStressLevel, record.FieldMoodLevel, record.FieldDailyScreenTime, record.FieldPhysicalActivity}

	for _, m := range []Method{Pearson, Spearman, Kendall} {
		cm, err := Correlate(view, fields, m)
		require.NoError(t, err, m)

		for i := range fields {
			assert.Equal(t, core.Some(1), cm.Values[i][i], "%s diagonal", m)
			for j := range fields {
				assert.Equal(t, cm.Values[i][j], cm.Values[j][i])
			}
		}
		v, _ := cm.At(record.FieldStressLevel, record.FieldMoodLevel)
		assert.InDelta(t, -1, v.Float, 1e-9, m)
		v, _ = cm.At(record.FieldStressLevel, record.FieldDailyScreenTime)
		assert.InDelta(t, 1, v.Float, 1e-9, m)

		// physical activity is constant in the fixture
		v, _ = cm.At(record.FieldStressLevel, record.FieldPhysicalActivity)
		assert.False(t, v.Valid, m)
	}
}

func TestCorrelate_Validation(t *testing.T) {
	view := fixtureView(t)

	_, err := Correlate(view, []string{record.FieldAge}, Pearson)
	assert.True(t, core.IsConfigError(err))

	_, err = Correlate(view, []string{record.FieldAge, record.FieldAge}, Pearson)
	assert.True(t, core.IsConfigError(err))

	_, err = Correlate(view, []string{record.FieldAge, "height"}, Pearson)
	assert.ErrorIs(t, err, core.ErrUnknownField)

	_, err = Correlate(emptyView(t), []string{record.FieldAge, record.FieldSleepHours}, Kendall)
	assert.True(t, core.IsInsufficientData(err))

	_, err = ParseMethod("Cosine")
	assert.Error(t, err)
	m, err := ParseMethod("Spearman")
	require.NoError(t, err)
	assert.Equal(t, Spearman, m)
}

func TestRanks_AverageTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, Ranks([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, Ranks([]float64{9, 1, 5}))
}

func TestKendallTauB_Ties(t *testing.T) {
	assert.InDelta(t, 0.8, KendallTauB([]float64{1, 2, 2, 3}, []float64{1, 2, 3, 3}), 1e-12)
	assert.InDelta(t, 1, KendallTauB([]float64{1, 2, 3}, []float64{10, 20, 30}), 1e-12)
	assert.InDelta(t, -1, KendallTauB([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
}

// bruteTauB counts every pair directly
func bruteTauB(x, y []float64) float64 {
	var c, d, tx, ty float64
	for i := range x {
		for j := i + 1; j < len(x); j++ {
			dx, dy := x[i]-x[j], y[i]-y[j]
			switch {
			case dx == 0 && dy == 0:
			case dx == 0:
				tx++
			case dy == 0:
				ty++
			case dx*dy > 0:
				c++
			default:
				d++
			}
		}
	}
	return (c - d) / math.Sqrt((c+d+tx)*(c+d+ty))
}

func TestKendallTauB_MatchesPairCount(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 20; iter++ {
		n := 5 + rng.Intn(60)
		x, y := make([]float64, n), make([]float64, n)
		for i := range x {
			x[i] = float64(rng.Intn(6))
			y[i] = float64(rng.Intn(6)) + x[i]/2
		}
		assert.InDelta(t, bruteTauB(x, y), KendallTauB(x, y), 1e-9)
	}
}

func TestSpearman_IsPearsonOnRanks(t *testing.T) {
	ds, err := dataset.New(testkit.NewRecordGenerator(testkit.DefaultRecordConfig()).Generate(), "generated")
	require.NoError(t, err)
	view := ds.All()

	cm, err := Correlate(view, []string{record.FieldDailyScreenTime, record.FieldSleepHours}, Spearman)
	require.NoError(t, err)

	a, _ := view.Numeric(record.FieldDailyScreenTime)
	b, _ := view.Numeric(record.FieldSleepHours)
	want := stat.Correlation(Ranks(a), Ranks(b), nil)
	assert.InDelta(t, want, cm.Values[0][1].Float, 1e-9)
	assert.Less(t, cm.Values[0][1].Float, 0.0)
}

func TestGroupBy_LongShape(t *testing.T) {
	rows, err := GroupBy(fixtureView(t), record.FieldGender, []string{record.FieldSleepHours, record.FieldStressLevel}, AggMean)
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, GroupedRow{Group: "Male", Field: record.FieldSleepHours, Value: core.Some(7.375), Count: 4}, rows[0])
	assert.Equal(t, "Female", rows[2].Group)
	assert.InDelta(t, 17.0/3, rows[2].Value.Float, 1e-12)
	assert.Equal(t, "Other", rows[4].Group)

	rows, err = GroupBy(fixtureView(t), record.FieldGender, []string{record.FieldSleepHours}, AggCount)
	require.NoError(t, err)
	assert.Equal(t, 4.0, rows[0].Value.Float)

	_, err = GroupBy(fixtureView(t), record.FieldGender, []string{record.FieldSleepHours}, "mode")
	assert.True(t, core.IsConfigError(err))

	_, err = GroupBy(emptyView(t), record.FieldGender, []string{record.FieldSleepHours}, AggMean)
	assert.True(t, core.IsInsufficientData(err))
}

func TestAggregate_EmptyPolicy(t *testing.T) {
	assert.Equal(t, core.Some(0), AggSum.Reduce(nil))
	assert.Equal(t, core.Some(0), AggCount.Reduce(nil))
	assert.False(t, AggMean.Reduce(nil).Valid)
	assert.False(t, AggMedian.Reduce(nil).Valid)
	assert.False(t, AggStd.Reduce([]float64{1}).Valid)
}

func TestStack_SumsToOneWithZeros(t *testing.T) {
	rows, err := Stack(fixtureView(t), record.FieldGender, record.FieldMentalState)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, row := range rows {
		require.Len(t, row.Parts, 3)
		var sum float64
		for _, p := range row.Parts {
			sum += p.Proportion
		}
		assert.InDelta(t, 1, sum, 1e-12, row.Group)
	}

	male := rows[0]
	assert.Equal(t, "Male", male.Group)
	assert.Equal(t, Part{Label: "Healthy", Count: 4, Proportion: 1}, male.Parts[0])
	assert.Equal(t, Part{Label: "At Risk", Count: 0, Proportion: 0}, male.Parts[2])

	_, err = Stack(fixtureView(t), record.FieldGender, record.FieldGender)
	assert.True(t, core.IsConfigError(err))
}

func TestSummarizeGroups(t *testing.T) {
	groups, err := SummarizeGroups(fixtureView(t), record.FieldMentalState, record.FieldSleepHours)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "Healthy", groups[0].Group)
	assert.Equal(t, 4, groups[0].Count)
	assert.Equal(t, 7.375, groups[0].Mean.Float)
}

func TestHistogramOf(t *testing.T) {
	h, err := HistogramOf(fixtureView(t), record.FieldSleepHours, 3)
	require.NoError(t, err)
	require.Len(t, h.Bins, 3)

	total := 0
	for _, b := range h.Bins {
		total += b.Count
	}
	assert.Equal(t, 8, total)
	assert.Equal(t, 4.5, h.Bins[0].Lower)
	assert.Equal(t, 8.0, h.Bins[2].Upper)

	h, err = HistogramOf(fixtureView(t), record.FieldPhysicalActivity, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, h.Bins[0].Count)

	_, err = HistogramOf(fixtureView(t), record.FieldSleepHours, 101)
	assert.True(t, core.IsConfigError(err))
}

func TestEngine_Dispatch(t *testing.T) {
	e := NewEngine()
	view := fixtureView(t)

	for _, k := range Kinds() {
		_, ok := e.handlers[k]
		assert.True(t, ok, "kind %s has no handler", k)
	}

	res, err := e.Compute(view, Request{Kind: KindDistribution, Fields: []string{record.FieldSleepHours}, Annotations: AnnotationOptions{Median: true}})
	require.NoError(t, err)
	assert.Equal(t, KindDistribution, res.Kind)
	assert.Equal(t, 8, res.Rows)
	require.Len(t, res.Distributions, 1)
	assert.Equal(t, "Median", res.Distributions[0].Annotations[0].Label)

	res, err = e.Compute(view, Request{Kind: KindCorrelation, Fields: []string{record.FieldAge, record.FieldSleepHours}, Method: "kendall"})
	require.NoError(t, err)
	assert.Equal(t, Kendall, res.Correlation.Method)

	_, err = e.Compute(view, Request{Kind: "pie"})
	assert.True(t, core.IsConfigError(err))

	_, err = e.Compute(view, Request{Kind: KindCorrelation, Fields: []string{record.FieldAge}})
	assert.True(t, core.IsConfigError(err))

	_, err = e.Compute(view, Request{Kind: KindHistogram, Fields: []string{record.FieldAge}, Bins: 500})
	assert.True(t, core.IsConfigError(err))

	_, err = e.Compute(view, Request{Kind: KindDistribution, Fields: []string{record.FieldAge}, Annotations: AnnotationOptions{Sigma: 7}})
	assert.True(t, core.IsConfigError(err))

	_, err = e.Compute(emptyView(t), Request{Kind: KindHistogram, Fields: []string{record.FieldAge}})
	assert.True(t, core.IsInsufficientData(err))
}
