package catalog

import (
	"fmt"
	"strings"
)

// ConcernSpecializations maps each questionnaire concern to the specializations it implies.
var ConcernSpecializations = map[Concern][]string{
	ConcernAnxiety:       {"Anxiety Disorders", "CBT", "Stress Management"},
	ConcernDepression:    {"Depression", "CBT", "Mindfulness"},
	ConcernStress:        {"Stress Management", "Mindfulness"},
	ConcernRelationships: {"Couples Therapy", "Family Therapy"},
	ConcernTrauma:        {"PTSD", "Trauma Recovery"},
	ConcernSleep:         {"Sleep Disorders", "Mindfulness"},
	ConcernSelfEsteem:    {"Self-Esteem", "CBT"},
	ConcernGrief:         {"Grief Counseling"},
	ConcernAddiction:     {"Addiction Recovery"},
	ConcernAnger:         {"Anger Management", "CBT"},
}

// Catalog is the ordered, read-only set of therapists and packages.
// Therapist order is significant: matching breaks ties by it.
type Catalog struct {
	therapists []Therapist
	packages   []Package
}

// New builds a catalog, copying the inputs so callers cannot mutate it afterwards.
func New(therapists []Therapist, packages []Package) *Catalog {
	c := &Catalog{
		therapists: make([]Therapist, len(therapists)),
		packages:   make([]Package, len(packages)),
	}
	copy(c.therapists, therapists)
	copy(c.packages, packages)
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(DefaultTherapists(), DefaultPackages())
}

// Therapists returns the therapists in catalog order.
func (c *Catalog) Therapists() []Therapist {
	out := make([]Therapist, len(c.therapists))
	copy(out, c.therapists)
	return out
}

// Therapist looks up a therapist by id.
func (c *Catalog) Therapist(id string) (Therapist, error) {
	for _, t := range c.therapists {
		if t.ID == id {
			return t, nil
		}
	}
	return Therapist{}, fmt.Errorf("%w: %s", ErrTherapistNotFound, id)
}

// Packages returns the packages in display order.
func (c *Catalog) Packages() []Package {
	out := make([]Package, len(c.packages))
	copy(out, c.packages)
	return out
}

// Package returns the canonical record for key. Keys are matched case-insensitively.
func (c *Catalog) Package(key PackageKey) (Package, error) {
	want := strings.ToLower(strings.TrimSpace(string(key)))
	for _, p := range c.packages {
		if string(p.Key) == want {
			return p, nil
		}
	}
	return Package{}, fmt.Errorf("%w: %q", ErrUnknownPackage, key)
}

// ImpliedSpecializations returns the union of specializations implied by concerns.
// Unknown concerns contribute nothing.
func ImpliedSpecializations(concerns []Concern) map[string]struct{} {
	out := make(map[string]struct{})
	for _, concern := range concerns {
		for key, specs := range ConcernSpecializations {
			if !strings.EqualFold(string(key), strings.TrimSpace(string(concern))) {
				continue
			}
			for _, s := range specs {
				out[s] = struct{}{}
			}
		}
	}
	return out
}

// DefaultPackages returns the fixed session bundles.
func DefaultPackages() []Package {
	return []Package{
		{Key: PackageSingle, Name: "Single Session", Price: 1499, Sessions: 1},
		{Key: PackageStarter, Name: "Starter Pack", Price: 4999, Sessions: 4},
		{Key: PackageProfessional, Name: "Professional Pack", Price: 8999, Sessions: 8},
	}
}

// DefaultTherapists returns the demo therapist roster.
func DefaultTherapists() []Therapist {
	return []Therapist{
		{
			ID:              "th-001",
			Name:            "Dr. Ananya Sharma",
			Photo:           "/images/therapists/ananya-sharma.jpg",
			Specializations: []string{"Anxiety Disorders", "CBT", "Depression"},
			Languages:       []Language{"English", "Hindi"},
			Gender:          GenderFemale,
			Rating:          4.9,
			Fee:             1499,
			Availability:    AvailableToday,
		},
		{
			ID:              "th-002",
			Name:            "Dr. Rohan Mehta",
			Photo:           "/images/therapists/rohan-mehta.jpg",
			Specializations: []string{"Couples Therapy", "Family Therapy", "Stress Management"},
			Languages:       []Language{"English", "Hindi", "Gujarati"},
			Gender:          GenderMale,
			Rating:          4.7,
			Fee:             1799,
			Availability:    AvailableThisWeek,
		},
		{
			ID:              "th-003",
			Name:            "Dr. Priya Nair",
			Photo:           "/images/therapists/priya-nair.jpg",
			Specializations: []string{"PTSD", "Trauma Recovery", "Grief Counseling"},
			Languages:       []Language{"English", "Malayalam", "Tamil"},
			Gender:          GenderFemale,
			Rating:          4.8,
			Fee:             1999,
			Availability:    NextWeek,
		},
		{
			ID:              "th-004",
			Name:            "Dr. Arjun Kapoor",
			Photo:           "/images/therapists/arjun-kapoor.jpg",
			Specializations: []string{"Addiction Recovery", "Anger Management", "CBT"},
			Languages:       []Language{"English", "Hindi", "Punjabi"},
			Gender:          GenderMale,
			Rating:          4.6,
			Fee:             1599,
			Availability:    AvailableToday,
		},
		{
			ID:              "th-005",
			Name:            "Dr. Meera Iyer",
			Photo:           "/images/therapists/meera-iyer.jpg",
			Specializations: []string{"Sleep Disorders", "Mindfulness", "Stress Management"},
			Languages:       []Language{"English", "Tamil", "Kannada"},
			Gender:          GenderFemale,
			Rating:          4.8,
			Fee:             1699,
			Availability:    AvailableThisWeek,
		},
		{
			ID:              "th-006",
			Name:            "Dr. Kabir Singh",
			Photo:           "/images/therapists/kabir-singh.jpg",
			Specializations: []string{"Depression", "Self-Esteem", "Mindfulness"},
			Languages:       []Language{"English", "Hindi", "Bengali"},
			Gender:          GenderMale,
			Rating:          4.5,
			Fee:             1399,
			Availability:    AvailableToday,
		},
	}
}
