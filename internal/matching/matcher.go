// Package matching picks the therapist best suited to a patient's questionnaire answers.
package matching

import (
	"errors"
	"sort"
	"strings"

	"github.com/wolfman30/therapy-booking/internal/catalog"
)

// ErrEmptyCatalog is returned when there is no therapist to choose from.
var ErrEmptyCatalog = errors.New("matching: catalog has no therapists")

// Score weights.
const (
	specializationWeight = 3.0
	languageWeight       = 2.0
	genderWeight         = 1.0
	availableTodayWeight = 1.0
)

// Request carries the questionnaire answers. Empty preferences are ignored.
type Request struct {
	Concerns          []catalog.Concern `json:"concerns"`
	PreferredGender   catalog.Gender    `json:"preferredGender,omitempty"`
	PreferredLanguage catalog.Language  `json:"preferredLanguage,omitempty"`
}

// Scored is a therapist with its match score.
type Scored struct {
	Therapist catalog.Therapist `json:"therapist"`
	Score     float64           `json:"score"`
}

// TherapistSource is the read side of the catalog the matcher needs.
type TherapistSource interface {
	Therapists() []catalog.Therapist
}

// Matcher scores catalog therapists against a Request. It has no side effects.
type Matcher struct {
	source TherapistSource
}

// NewMatcher creates a matcher over source.
func NewMatcher(source TherapistSource) *Matcher {
	if source == nil {
		panic("matching: therapist source required")
	}
	return &Matcher{source: source}
}

// Match returns the highest scoring therapist. On an exact tie the therapist that
// appears first in catalog order wins.
func (m *Matcher) Match(req Request) (catalog.Therapist, error) {
	therapists := m.source.Therapists()
	if len(therapists) == 0 {
		return catalog.Therapist{}, ErrEmptyCatalog
	}
	implied := catalog.ImpliedSpecializations(req.Concerns)

	best := therapists[0]
	bestScore := Score(best, implied, req)
	for _, t := range therapists[1:] {
		if s := Score(t, implied, req); s > bestScore {
			best, bestScore = t, s
		}
	}
	return best, nil
}

// Rank returns every therapist ordered by descending score, catalog order kept on ties.
func (m *Matcher) Rank(req Request) []Scored {
	therapists := m.source.Therapists()
	implied := catalog.ImpliedSpecializations(req.Concerns)
	out := make([]Scored, 0, len(therapists))
	for _, t := range therapists {
		out = append(out, Scored{Therapist: t, Score: Score(t, implied, req)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Score computes one therapist's match score against the implied specialization set.
func Score(t catalog.Therapist, implied map[string]struct{}, req Request) float64 {
	score := 0.0
	for _, spec := range t.Specializations {
		if _, ok := implied[spec]; ok {
			score += specializationWeight
		}
	}
	if strings.TrimSpace(string(req.PreferredLanguage)) != "" && t.Speaks(req.PreferredLanguage) {
		score += languageWeight
	}
	if strings.TrimSpace(string(req.PreferredGender)) != "" && strings.EqualFold(string(t.Gender), string(req.PreferredGender)) {
		score += genderWeight
	}
	if t.Availability == catalog.AvailableToday {
		score += availableTodayWeight
	}
	return score + t.Rating
}
