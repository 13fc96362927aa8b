// Package persona turns offline cluster centroids into schema-valid records.
package persona

import (
	"math"
	"time"

	"moodlens/domain/core"
	"moodlens/domain/record"
)

// NominalInteractions is the fixed total the negative ratio is spread over.
// The resulting pair is a display reconstruction; the original counts are not
// recoverable from a centroid.
const NominalInteractions = 10

// Profile is one cluster centroid. Counts that are integers on a Record are
// floats here because they are averages.
type Profile struct {
	Cluster                  int                `json:"cluster" db:"cluster" yaml:"cluster"`
	Name                     string             `json:"name,omitempty" db:"name" yaml:"name,omitempty"`
	Age                      float64            `json:"age" db:"age" yaml:"age"`
	Gender                   record.Gender      `json:"gender" db:"gender" yaml:"gender"`
	Platform                 record.Platform    `json:"platform" db:"platform" yaml:"platform"`
	DailyScreenTimeMin       float64            `json:"daily_screen_time_min" db:"daily_screen_time_min" yaml:"daily_screen_time_min"`
	SocialMediaTimeMin       float64            `json:"social_media_time_min" db:"social_media_time_min" yaml:"social_media_time_min"`
	SleepHours               float64            `json:"sleep_hours" db:"sleep_hours" yaml:"sleep_hours"`
	PhysicalActivityMin      float64            `json:"physical_activity_min" db:"physical_activity_min" yaml:"physical_activity_min"`
	InteractionNegativeRatio float64            `json:"interaction_negative_ratio" db:"interaction_negative_ratio" yaml:"interaction_negative_ratio"`
	AnxietyLevel             float64            `json:"anxiety_level" db:"anxiety_level" yaml:"anxiety_level"`
	StressLevel              float64            `json:"stress_level" db:"stress_level" yaml:"stress_level"`
	MoodLevel                float64            `json:"mood_level" db:"mood_level" yaml:"mood_level"`
	MentalState              record.MentalState `json:"mental_state" db:"mental_state" yaml:"mental_state"`
}

// Projector maps profiles onto records dated at a fixed reference day
type Projector struct {
	reference time.Time
}

// NewProjector dates every projected record at reference, normally the last
// date of the loaded dataset
func NewProjector(reference time.Time) *Projector {
	return &Projector{reference: core.TruncateDay(reference)}
}

// Project rounds integer scales half-to-even, keeps one decimal of sleep,
// bounds every value to its schema domain and splits the negative ratio into a
// positive/negative pair summing to NominalInteractions. Categoricals pass
// through; an unknown category fails validation.
func (p *Projector) Project(prof Profile) (record.Record, error) {
	ratio := clamp(prof.InteractionNegativeRatio, 0, 1)
	if math.IsNaN(ratio) {
		ratio = 0
	}
	negative := int(math.RoundToEven(ratio * NominalInteractions))

	r := record.Record{
		Date:                      p.reference,
		Age:                       roundInt(prof.Age, 0, 120),
		Gender:                    prof.Gender,
		Platform:                  prof.Platform,
		DailyScreenTimeMin:        roundInt(prof.DailyScreenTimeMin, 0, math.MaxInt32),
		SocialMediaTimeMin:        roundInt(prof.SocialMediaTimeMin, 0, math.MaxInt32),
		SleepHours:                clamp(math.RoundToEven(prof.SleepHours*10)/10, 0, 24),
		PhysicalActivityMin:       roundInt(prof.PhysicalActivityMin, 0, math.MaxInt32),
		NegativeInteractionsCount: negative,
		PositiveInteractionsCount: NominalInteractions - negative,
		AnxietyLevel:              roundInt(prof.AnxietyLevel, record.MinLevel, record.MaxLevel),
		StressLevel:               roundInt(prof.StressLevel, record.MinLevel, record.MaxLevel),
		MoodLevel:                 roundInt(prof.MoodLevel, record.MinLevel, record.MaxLevel),
		MentalState:               prof.MentalState,
	}
	if err := r.Validate(); err != nil {
		return record.Record{}, err
	}
	return r, nil
}

func roundInt(v, lo, hi float64) int {
	if math.IsNaN(v) {
		return int(lo)
	}
	return int(clamp(math.RoundToEven(v), lo, hi))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
