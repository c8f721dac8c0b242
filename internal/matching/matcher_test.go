package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/therapy-booking/internal/catalog"
)

func TestMatchAnxietyIsDeterministic(t *testing.T) {
	m := NewMatcher(catalog.Default())
	req := Request{Concerns: []catalog.Concern{catalog.ConcernAnxiety}}

	first, err := m.Match(req)
	require.NoError(t, err)
	assert.Equal(t, "th-001", first.ID)

	for i := 0; i < 10; i++ {
		again, err := m.Match(req)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	}
}

func TestMatchPreferences(t *testing.T) {
	m := NewMatcher(catalog.Default())
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"trauma", Request{Concerns: []catalog.Concern{catalog.ConcernTrauma}}, "th-003"},
		{"relationships", Request{Concerns: []catalog.Concern{catalog.ConcernRelationships}}, "th-002"},
		{"addiction and anger", Request{Concerns: []catalog.Concern{catalog.ConcernAddiction, catalog.ConcernAnger}}, "th-004"},
		// th-005 covers both stress specializations and speaks Tamil.
		{"stress tamil", Request{Concerns: []catalog.Concern{catalog.ConcernStress}, PreferredLanguage: "Tamil"}, "th-005"},
		// Depression alone: th-001 scores 11.9 against th-006's 11.5.
		{"depression", Request{Concerns: []catalog.Concern{catalog.ConcernDepression}}, "th-001"},
		{"depression and self-esteem", Request{Concerns: []catalog.Concern{catalog.ConcernDepression, catalog.ConcernSelfEsteem}}, "th-006"},
		// No concerns: rating plus availability decides (th-001 5.9).
		{"no concerns", Request{}, "th-001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Match(tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestMatchTieKeepsCatalogOrder(t *testing.T) {
	twin := func(id string) catalog.Therapist {
		return catalog.Therapist{
			ID:              id,
			Specializations: []string{"CBT"},
			Languages:       []catalog.Language{"English"},
			Gender:          catalog.GenderFemale,
			Rating:          4.5,
			Availability:    catalog.AvailableToday,
		}
	}
	c := catalog.New([]catalog.Therapist{twin("b"), twin("a"), twin("c")}, nil)
	m := NewMatcher(c)

	got, err := m.Match(Request{Concerns: []catalog.Concern{catalog.ConcernAnxiety}, PreferredGender: "female"})
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	ranked := m.Rank(Request{})
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{ranked[0].Therapist.ID, ranked[1].Therapist.ID, ranked[2].Therapist.ID})
}

func TestScoreComponents(t *testing.T) {
	th := catalog.Therapist{
		Specializations: []string{"CBT", "Anxiety Disorders", "PTSD"},
		Languages:       []catalog.Language{"Hindi"},
		Gender:          catalog.GenderMale,
		Rating:          4,
		Availability:    catalog.AvailableToday,
	}
	implied := catalog.ImpliedSpecializations([]catalog.Concern{catalog.ConcernAnxiety})
	req := Request{PreferredGender: "Male", PreferredLanguage: "hindi"}

	// 2 specializations * 3 + language 2 + gender 1 + today 1 + rating 4.
	assert.InDelta(t, 14.0, Score(th, implied, req), 1e-9)

	th.Availability = catalog.NextWeek
	assert.InDelta(t, 13.0, Score(th, implied, req), 1e-9)
}

func TestRankOrdersByScore(t *testing.T) {
	m := NewMatcher(catalog.Default())
	ranked := m.Rank(Request{Concerns: []catalog.Concern{catalog.ConcernAnxiety}})
	require.Len(t, ranked, 6)
	assert.Equal(t, "th-001", ranked[0].Therapist.ID)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	m := NewMatcher(catalog.New(nil, nil))
	_, err := m.Match(Request{})
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}
