package testkit

import (
	"math"
	"math/rand"
	"time"

	"moodlens/domain/core"
	"moodlens/domain/record"
)

// RecordGeneratorConfig configures the synthetic survey generator
type RecordGeneratorConfig struct {
	Count     int       `json:"count"`
	StartDate time.Time `json:"start_date"`
	Days      int       `json:"days"` // observation dates are spread over [StartDate, StartDate+Days)
	Seed      int64     `json:"seed"`
}

// DefaultRecordConfig returns sensible defaults for fixture generation
func DefaultRecordConfig() RecordGeneratorConfig {
	return RecordGeneratorConfig{
		Count:     500,
		StartDate: core.NewDate(2024, 1, 1),
		Days:      90,
		Seed:      42,
	}
}

// RecordGenerator produces schema-valid records with realistic couplings:
// screen time drives stress and anxiety, sleep pulls mood up, and the mental
// state label follows stress and anxiety.
type RecordGenerator struct {
	config RecordGeneratorConfig
	rng    *rand.Rand
}

// NewRecordGenerator creates a generator; equal seeds give equal output
func NewRecordGenerator(config RecordGeneratorConfig) *RecordGenerator {
	if config.Days < 1 {
		config.Days = 1
	}
	return &RecordGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns Count records ordered by date
func (g *RecordGenerator) Generate() []record.Record {
	out := make([]record.Record, g.config.Count)
	for i := range out {
		day := i * g.config.Days / max(g.config.Count, 1)
		out[i] = g.one(g.config.StartDate.AddDate(0, 0, day))
	}
	return out
}

func (g *RecordGenerator) one(date time.Time) record.Record {
	age := 13 + g.rng.Intn(57)
	screen := clampInt(int(g.rng.NormFloat64()*90+300), 30, 900)
	social := clampInt(int(float64(screen)*(0.35+0.4*g.rng.Float64())), 0, screen)
	sleep := math.Round(clampFloat(8.2-float64(screen)/240+g.rng.NormFloat64()*0.7, 3, 11)*10) / 10
	activity := clampInt(int(g.rng.ExpFloat64()*35), 0, 180)

	negative := g.rng.Intn(1 + social/40)
	positive := g.rng.Intn(1 + social/20)

	stress := clampInt(int(math.Round(float64(screen)/90+g.rng.NormFloat64())), record.MinLevel, record.MaxLevel)
	anxiety := clampInt(int(math.Round(float64(stress)*0.5+float64(negative)*0.3+g.rng.NormFloat64())), record.MinLevel, record.MaxLevel)
	mood := clampInt(int(math.Round(sleep-float64(stress)*0.4+float64(activity)/60+g.rng.NormFloat64())), record.MinLevel, record.MaxLevel)

	state := record.MentalStateHealthy
	switch {
	case stress >= 8 || anxiety >= 6:
		state = record.MentalStateAtRisk
	case stress >= 5 || anxiety >= 3:
		state = record.MentalStateStressed
	}

	return record.Record{
		Date:                      date,
		Age:                       age,
		Gender:                    record.Genders[g.rng.Intn(len(record.Genders))],
		Platform:                  record.Platforms[g.rng.Intn(len(record.Platforms))],
		DailyScreenTimeMin:        screen,
		SocialMediaTimeMin:        social,
		SleepHours:                sleep,
		PhysicalActivityMin:       activity,
		NegativeInteractionsCount: negative,
		PositiveInteractionsCount: positive,
		AnxietyLevel:              anxiety,
		StressLevel:               stress,
		MoodLevel:                 mood,
		MentalState:               state,
	}
}

// Fixture is a small hand-checked table used across package tests. Dates cover
// two ISO weeks of January 2024 and one day of February.
func Fixture() []record.Record {
	mk := func(day, month, age int, g record.Gender, p record.Platform, sleep float64, stress int, state record.MentalState) record.Record {
		return record.Record{
			Date: core.NewDate(2024, time.Month(month), day), Age: age, Gender: g, Platform: p,
			DailyScreenTimeMin: 200 + stress*20, SocialMediaTimeMin: 100 + stress*10, SleepHours: sleep,
			PhysicalActivityMin: 30, NegativeInteractionsCount: stress / 2, PositiveInteractionsCount: 5,
			AnxietyLevel: stress / 2, StressLevel: stress, MoodLevel: 10 - stress, MentalState: state,
		}
	}
	return []record.Record{
		mk(1, 1, 16, record.GenderMale, record.PlatformTikTok, 7.0, 3, record.MentalStateHealthy),
		mk(1, 1, 22, record.GenderFemale, record.PlatformInstagram, 6.0, 6, record.MentalStateStressed),
		mk(2, 1, 30, record.GenderMale, record.PlatformFacebook, 8.0, 2, record.MentalStateHealthy),
		mk(3, 1, 41, record.GenderOther, record.PlatformTikTok, 5.0, 8, record.MentalStateAtRisk),
		mk(8, 1, 19, record.GenderFemale, record.PlatformYouTube, 6.5, 5, record.MentalStateStressed),
		mk(9, 1, 58, record.GenderMale, record.PlatformWhatsApp, 7.5, 4, record.MentalStateHealthy),
		mk(10, 1, 27, record.GenderFemale, record.PlatformInstagram, 4.5, 9, record.MentalStateAtRisk),
		mk(5, 2, 35, record.GenderMale, record.PlatformTwitter, 7.0, 3, record.MentalStateHealthy),
	}
}

func clampInt(v, lo, hi int) int {
	return int(math.Max(float64(lo), math.Min(float64(hi), float64(v))))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
