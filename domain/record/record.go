// Package record defines one observation of the social-media and mental-health
// dataset. Only source attributes are stored; every derived attribute is a method,
// so it cannot be set independently of the fields it is computed from.
package record

import (
	"math"
	"time"

	"moodlens/domain/core"
)

// Gender is a closed categorical set
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Platform is the primary social-media platform of the respondent
type Platform string

const (
	PlatformFacebook  Platform = "Facebook"
	PlatformInstagram Platform = "Instagram"
	PlatformSnapchat  Platform = "Snapchat"
	PlatformTikTok    Platform = "TikTok"
	PlatformTwitter   Platform = "Twitter"
	PlatformWhatsApp  Platform = "WhatsApp"
	PlatformYouTube   Platform = "YouTube"
)

// MentalState is the labelled outcome class
type MentalState string

const (
	MentalStateHealthy  MentalState = "Healthy"
	MentalStateStressed MentalState = "Stressed"
	MentalStateAtRisk   MentalState = "At Risk"
)

// AgeGroup is an ordered bucket derived from age
type AgeGroup string

const (
	AgeUnder18 AgeGroup = "<18"
	Age18To24  AgeGroup = "18-24"
	Age25To34  AgeGroup = "25-34"
	Age35To44  AgeGroup = "35-44"
	Age45To54  AgeGroup = "45-54"
	Age55Plus  AgeGroup = "55+"
)

// Closed value sets, in canonical display order
var (
	Genders      = []Gender{GenderMale, GenderFemale, GenderOther}
	Platforms    = []Platform{PlatformFacebook, PlatformInstagram, PlatformSnapchat, PlatformTikTok, PlatformTwitter, PlatformWhatsApp, PlatformYouTube}
	MentalStates = []MentalState{MentalStateHealthy, MentalStateStressed, MentalStateAtRisk}
	AgeGroups    = []AgeGroup{AgeUnder18, Age18To24, Age25To34, Age35To44, Age45To54, Age55Plus}
)

// Level bounds shared by anxiety, stress and mood
const (
	MinLevel = 0
	MaxLevel = 10
)

// Record is one observation
type Record struct {
	Date                      time.Time   `json:"date"`
	Age                       int         `json:"age"`
	Gender                    Gender      `json:"gender"`
	Platform                  Platform    `json:"platform"`
	DailyScreenTimeMin        int         `json:"daily_screen_time_min"`
	SocialMediaTimeMin        int         `json:"social_media_time_min"`
	SleepHours                float64     `json:"sleep_hours"`
	PhysicalActivityMin       int         `json:"physical_activity_min"`
	NegativeInteractionsCount int         `json:"negative_interactions_count"`
	PositiveInteractionsCount int         `json:"positive_interactions_count"`
	AnxietyLevel              int         `json:"anxiety_level"`
	StressLevel               int         `json:"stress_level"`
	MoodLevel                 int         `json:"mood_level"`
	MentalState               MentalState `json:"mental_state"`
}

// Year of the observation date
func (r Record) Year() int { return r.Date.Year() }

// Month number 1..12
func (r Record) Month() int { return int(r.Date.Month()) }

// MonthName is the English month name
func (r Record) MonthName() string { return r.Date.Month().String() }

// WeekNumber is the ISO-8601 week of year
func (r Record) WeekNumber() int {
	_, week := r.Date.ISOWeek()
	return week
}

// DayOfWeek is the English weekday name
func (r Record) DayOfWeek() string { return r.Date.Weekday().String() }

// AgeGroup buckets the age
func (r Record) AgeGroup() AgeGroup { return AgeGroupFor(r.Age) }

// InteractionTotal is positive + negative interactions
func (r Record) InteractionTotal() int {
	return r.PositiveInteractionsCount + r.NegativeInteractionsCount
}

// InteractionNegativeRatio is negative / max(total, 1)
func (r Record) InteractionNegativeRatio() float64 {
	return NegativeRatio(r.PositiveInteractionsCount, r.NegativeInteractionsCount)
}

// AgeGroupFor maps an age onto its bucket
func AgeGroupFor(age int) AgeGroup {
	switch {
	case age < 18:
		return AgeUnder18
	case age <= 24:
		return Age18To24
	case age <= 34:
		return Age25To34
	case age <= 44:
		return Age35To44
	case age <= 54:
		return Age45To54
	default:
		return Age55Plus
	}
}

// NegativeRatio is 0 when there were no interactions, never undefined.
// Negative inputs are clamped so the result stays in [0, 1].
func NegativeRatio(positive, negative int) float64 {
	if positive < 0 {
		positive = 0
	}
	if negative < 0 {
		negative = 0
	}
	total := positive + negative
	if total < 1 {
		return 0
	}
	return float64(negative) / float64(total)
}

// Validate checks every source field against its domain
func (r Record) Validate() error {
	if r.Date.IsZero() {
		return core.NewInvalidRecordError(FieldDate, "is missing")
	}
	if r.Age < 0 || r.Age > 120 {
		return core.NewInvalidRecordError(FieldAge, "out of range")
	}
	if !validGender(r.Gender) {
		return core.NewInvalidRecordError(FieldGender, "has unknown value "+string(r.Gender))
	}
	if !validPlatform(r.Platform) {
		return core.NewInvalidRecordError(FieldPlatform, "has unknown value "+string(r.Platform))
	}
	if !validMentalState(r.MentalState) {
		return core.NewInvalidRecordError(FieldMentalState, "has unknown value "+string(r.MentalState))
	}
	for field, v := range map[string]int{
		FieldDailyScreenTime:      r.DailyScreenTimeMin,
		FieldSocialMediaTime:      r.SocialMediaTimeMin,
		FieldPhysicalActivity:     r.PhysicalActivityMin,
		FieldNegativeInteractions: r.NegativeInteractionsCount,
		FieldPositiveInteractions: r.PositiveInteractionsCount,
	} {
		if v < 0 {
			return core.NewInvalidRecordError(field, "is negative")
		}
	}
	for field, v := range map[string]int{
		FieldAnxietyLevel: r.AnxietyLevel,
		FieldStressLevel:  r.StressLevel,
		FieldMoodLevel:    r.MoodLevel,
	} {
		if v < MinLevel || v > MaxLevel {
			return core.NewInvalidRecordError(field, "out of range")
		}
	}
	if math.IsNaN(r.SleepHours) || r.SleepHours < 0 || r.SleepHours > 24 {
		return core.NewInvalidRecordError(FieldSleepHours, "out of range")
	}
	return nil
}

func validGender(g Gender) bool {
	for _, v := range Genders {
		if v == g {
			return true
		}
	}
	return false
}

func validPlatform(p Platform) bool {
	for _, v := range Platforms {
		if v == p {
			return true
		}
	}
	return false
}

func validMentalState(m MentalState) bool {
	for _, v := range MentalStates {
		if v == m {
			return true
		}
	}
	return false
}
