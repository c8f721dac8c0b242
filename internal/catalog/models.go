// Package catalog holds the read-only therapist and package reference data the
// booking engine reads from. Nothing in the engine mutates it.
package catalog

import (
	"math"
	"strings"
)

// Gender is a therapist's stated gender, compared case-insensitively.
type Gender string

const (
	GenderFemale    Gender = "female"
	GenderMale      Gender = "male"
	GenderNonBinary Gender = "non-binary"
)

// Language is a spoken language name, e.g. "Hindi".
type Language string

// AvailabilityTier is how soon a therapist can take a new patient.
type AvailabilityTier string

const (
	AvailableToday    AvailabilityTier = "available_today"
	AvailableThisWeek AvailabilityTier = "available_this_week"
	NextWeek          AvailabilityTier = "next_week"
)

// Therapist is immutable reference data.
type Therapist struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Photo           string           `json:"photo,omitempty"`
	Specializations []string         `json:"specializations"`
	Languages       []Language       `json:"languages"`
	Gender          Gender           `json:"gender"`
	Rating          float64          `json:"rating"`
	Fee             int64            `json:"fee"`
	Availability    AvailabilityTier `json:"availability"`
}

// Speaks reports whether the therapist lists lang among their languages.
func (t Therapist) Speaks(lang Language) bool {
	for _, l := range t.Languages {
		if strings.EqualFold(string(l), string(lang)) {
			return true
		}
	}
	return false
}

// PrimarySpecialization is the first listed specialization, used on appointment snapshots.
func (t Therapist) PrimarySpecialization() string {
	if len(t.Specializations) == 0 {
		return ""
	}
	return t.Specializations[0]
}

// PackageKey enumerates the fixed session bundles.
type PackageKey string

const (
	PackageSingle       PackageKey = "single"
	PackageStarter      PackageKey = "starter"
	PackageProfessional PackageKey = "professional"
)

// Package is a bundle of sessions sold at a fixed price in whole rupees.
type Package struct {
	Key      PackageKey `json:"key"`
	Name     string     `json:"name"`
	Price    int64      `json:"price"`
	Sessions int        `json:"sessions"`
}

// PerSession is the price divided across sessions, rounded half away from zero.
func (p Package) PerSession() int64 {
	if p.Sessions <= 0 {
		return p.Price
	}
	return int64(math.Round(float64(p.Price) / float64(p.Sessions)))
}

// Concern is a patient-stated problem area from the assessment questionnaire.
type Concern string

const (
	ConcernAnxiety       Concern = "Anxiety"
	ConcernDepression    Concern = "Depression"
	ConcernStress        Concern = "Stress"
	ConcernRelationships Concern = "Relationships"
	ConcernTrauma        Concern = "Trauma"
	ConcernSleep         Concern = "Sleep"
	ConcernSelfEsteem    Concern = "Self-esteem"
	ConcernGrief         Concern = "Grief"
	ConcernAddiction     Concern = "Addiction"
	ConcernAnger         Concern = "Anger"
)
