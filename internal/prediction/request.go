// Package prediction shapes records into predictor input and reads the output
// back in the dashboard's terms.
package prediction

import (
	"fmt"
	"sort"

	"moodlens/domain/core"
	"moodlens/domain/record"
	"moodlens/ports"
)

// FeatureFields is the input schema every predictor was trained on
var FeatureFields = []string{
	record.FieldGender,
	record.FieldAge,
	record.FieldPhysicalActivity,
	record.FieldSleepHours,
	record.FieldMentalState,
	record.FieldMoodLevel,
	record.FieldStressLevel,
	record.FieldAnxietyLevel,
	record.FieldPlatform,
	record.FieldDailyScreenTime,
	record.FieldSocialMediaTime,
	record.FieldNegativeRatio,
}

// Targets are the fields a model may predict
var Targets = []string{
	record.FieldMentalState,
	record.FieldSleepHours,
	record.FieldStressLevel,
	record.FieldAnxietyLevel,
	record.FieldMoodLevel,
}

// IsTarget reports whether field can be a prediction target
func IsTarget(field string) bool {
	for _, t := range Targets {
		if t == field {
			return true
		}
	}
	return false
}

// BuildRequest turns a record into predictor features with target removed
func BuildRequest(r record.Record, target string) (ports.Features, error) {
	if !IsTarget(target) {
		return nil, core.NewConfigError("target", fmt.Sprintf("%q is not a prediction target", target))
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	features := make(ports.Features, len(FeatureFields)-1)
	for _, f := range FeatureFields {
		if f == target {
			continue
		}
		v, err := r.Value(f)
		if err != nil {
			return nil, err
		}
		features[f] = v
	}
	return features, nil
}

// CheckShape verifies a feature set carries exactly the feature fields minus the
// target. It says nothing about how a predictor will use them.
func CheckShape(features ports.Features, target string) error {
	if _, ok := features[target]; ok {
		return core.NewConfigError("features", fmt.Sprintf("target %q must not be present", target))
	}
	var missing []string
	for _, f := range FeatureFields {
		if f == target {
			continue
		}
		if _, ok := features[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return core.NewConfigError("features", fmt.Sprintf("missing %v", missing))
	}
	if want := len(FeatureFields) - 1; len(features) != want {
		var extra []string
		for k := range features {
			if !isFeature(k) {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		return core.NewConfigError("features", fmt.Sprintf("unexpected %v", extra))
	}
	return nil
}

func isFeature(name string) bool {
	for _, f := range FeatureFields {
		if f == name {
			return true
		}
	}
	return false
}
