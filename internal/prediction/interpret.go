package prediction

import (
	"fmt"
	"math"

	"moodlens/domain/record"
	"moodlens/ports"
)

// Severity maps onto the success/warning/error colouring of the result banner
type Severity string

const (
	SeverityGood    Severity = "good"
	SeverityWarning Severity = "warning"
	SeverityBad     Severity = "bad"
)

// Interpretation is a prediction read against the target's bands
type Interpretation struct {
	Severity Severity `json:"severity"`
	Band     string   `json:"band,omitempty"`
	Message  string   `json:"message"`
}

// Interpret classifies a prediction for its target
func Interpret(target string, p ports.Prediction) Interpretation {
	if target == record.FieldMentalState {
		label := p.Label
		sev := SeverityBad
		switch record.MentalState(label) {
		case record.MentalStateHealthy:
			sev = SeverityGood
		case record.MentalStateStressed:
			sev = SeverityWarning
		}
		return Interpretation{Severity: sev, Band: label, Message: fmt.Sprintf("Predicted Mental State: %s", label)}
	}

	if !p.Value.Valid {
		return Interpretation{Severity: SeverityBad, Message: "No prediction"}
	}
	v := p.Value.Float

	switch target {
	case record.FieldSleepHours:
		sev, band := bandAtLeast(v, 7, 6, "Healthy", "Moderate", "Low")
		return Interpretation{Severity: sev, Band: band,
			Message: fmt.Sprintf("Predicted Sleep Hours: %.1f hours (%s)", round(v, 1), band)}
	case record.FieldStressLevel:
		sev, band := bandAtMost(v, 5, 8, "Low", "Moderate", "High")
		return level("Stress Level", v, sev, band)
	case record.FieldAnxietyLevel:
		sev, band := bandAtMost(v, 1, 3, "Low", "Moderate", "High")
		return level("Anxiety Level", v, sev, band)
	case record.FieldMoodLevel:
		sev, band := bandAtLeast(v, 7, 5, "Good", "Average", "Poor")
		return level("Mood Level", v, sev, band)
	}
	return Interpretation{Severity: SeverityWarning, Message: fmt.Sprintf("Predicted %s: %g", target, v)}
}

func level(name string, v float64, sev Severity, band string) Interpretation {
	return Interpretation{Severity: sev, Band: band, Message: fmt.Sprintf("Predicted %s: %.0f (%s)", name, round(v, 0), band)}
}

// higher is better
func bandAtLeast(v, good, fair float64, names ...string) (Severity, string) {
	switch {
	case v >= good:
		return SeverityGood, names[0]
	case v >= fair:
		return SeverityWarning, names[1]
	}
	return SeverityBad, names[2]
}

// lower is better
func bandAtMost(v, good, fair float64, names ...string) (Severity, string) {
	switch {
	case v <= good:
		return SeverityGood, names[0]
	case v <= fair:
		return SeverityWarning, names[1]
	}
	return SeverityBad, names[2]
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
