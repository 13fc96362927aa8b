// Package filter composes the dashboard's sidebar selections into a single
// predicate over a dataset view.
package filter

import (
	"fmt"
	"time"

	"moodlens/domain/core"
	"moodlens/domain/dataset"
	"moodlens/domain/record"
)

// DateRange is inclusive on both ends; a nil bound is unconstrained
type DateRange struct {
	Start *core.Date `json:"start,omitempty"`
	End   *core.Date `json:"end,omitempty"`
}

// Spec is one filter configuration. An empty category set means "no restriction",
// never "exclude everything".
type Spec struct {
	Dates        DateRange            `json:"date_range"`
	Genders      []record.Gender      `json:"gender,omitempty"`
	AgeGroups    []record.AgeGroup    `json:"age_group,omitempty"`
	Platforms    []record.Platform    `json:"platform,omitempty"`
	MentalStates []record.MentalState `json:"mental_state,omitempty"`
}

// Between builds a spec restricted to [start, end]
func Between(start, end time.Time) Spec {
	s, e := core.Date(core.TruncateDay(start)), core.Date(core.TruncateDay(end))
	return Spec{Dates: DateRange{Start: &s, End: &e}}
}

// IsEmpty reports whether the spec restricts nothing
func (s Spec) IsEmpty() bool {
	return !bound(s.Dates.Start) && !bound(s.Dates.End) &&
		len(s.Genders) == 0 && len(s.AgeGroups) == 0 && len(s.Platforms) == 0 && len(s.MentalStates) == 0
}

// Validate rejects reversed ranges and values outside the closed category sets
func (s Spec) Validate() error {
	if bound(s.Dates.Start) && bound(s.Dates.End) && s.Dates.Start.Time().After(s.Dates.End.Time()) {
		return core.NewConfigError("date_range", fmt.Sprintf("start %s is after end %s", s.Dates.Start, s.Dates.End))
	}
	if err := checkMembers(record.FieldGender, s.Genders, record.Genders); err != nil {
		return err
	}
	if err := checkMembers(record.FieldAgeGroup, s.AgeGroups, record.AgeGroups); err != nil {
		return err
	}
	if err := checkMembers(record.FieldPlatform, s.Platforms, record.Platforms); err != nil {
		return err
	}
	return checkMembers(record.FieldMentalState, s.MentalStates, record.MentalStates)
}

func checkMembers[T comparable](field string, selected, allowed []T) error {
	for _, v := range selected {
		if !contains(allowed, v) {
			return core.NewConfigError(field, fmt.Sprintf("unknown value %v", v))
		}
	}
	return nil
}

// bound reports whether a range end was given; a blank date decodes to the
// zero date and counts as unset
func bound(d *core.Date) bool {
	return d != nil && !d.Time().IsZero()
}

// Predicate is one independent condition
type Predicate func(record.Record) bool

// Predicates lists the active conditions of the spec. Inactive filters
// contribute nothing, so an empty spec yields no predicates.
func (s Spec) Predicates() []Predicate {
	var preds []Predicate
	if start := s.Dates.Start; bound(start) {
		from := start.Time()
		preds = append(preds, func(r record.Record) bool { return !r.Date.Before(from) })
	}
	if end := s.Dates.End; bound(end) {
		to := end.Time()
		preds = append(preds, func(r record.Record) bool { return !r.Date.After(to) })
	}
	if set := s.Genders; len(set) > 0 {
		preds = append(preds, func(r record.Record) bool { return contains(set, r.Gender) })
	}
	if set := s.AgeGroups; len(set) > 0 {
		preds = append(preds, func(r record.Record) bool { return contains(set, r.AgeGroup()) })
	}
	if set := s.Platforms; len(set) > 0 {
		preds = append(preds, func(r record.Record) bool { return contains(set, r.Platform) })
	}
	if set := s.MentalStates; len(set) > 0 {
		preds = append(preds, func(r record.Record) bool { return contains(set, r.MentalState) })
	}
	return preds
}

// Matches is the conjunction of every active predicate
func (s Spec) Matches(r record.Record) bool {
	return all(s.Predicates())(r)
}

func all(preds []Predicate) Predicate {
	return func(r record.Record) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Apply validates the spec and returns the matching subset of view.
// The source view is left as it was.
func Apply(view dataset.View, spec Spec) (dataset.View, error) {
	if err := spec.Validate(); err != nil {
		return dataset.View{}, err
	}
	return view.Where(all(spec.Predicates())), nil
}

// Counts is the "N / M" line shown next to the filters
type Counts struct {
	Filtered int `json:"filtered"`
	Total    int `json:"total"`
}

func (c Counts) String() string {
	return fmt.Sprintf("%d / %d", c.Filtered, c.Total)
}

// Summary compares a filtered view against its source
func Summary(filtered, source dataset.View) Counts {
	return Counts{Filtered: filtered.Len(), Total: source.Len()}
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
