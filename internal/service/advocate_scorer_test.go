package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

func TestParseExperienceYears(t *testing.T) {
	cases := map[string]int{
		"10 years": 10,
		"1 year":   1,
		" 7 years": 7,
		"years":    0,
		"":         0,
		"a decade": 0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseExperienceYears(in), in)
	}
}

func TestScoreAdvocateClampsAtHundred(t *testing.T) {
	advocate := &models.Profile{
		Experience:     "10 years",
		Rating:         floatPtr(4.5),
		Availability:   models.AvailabilityHigh,
		Specialization: "Autism & Developmental Disabilities",
	}
	assert.Equal(t, 100, ScoreAdvocate(parentSarah(), advocate))
}

func TestScoreAdvocateComponents(t *testing.T) {
	parent := parentLisa()
	noChildren := &models.Profile{ID: "p", Role: models.RoleParent}

	cases := []struct {
		name     string
		parent   *models.Profile
		advocate *models.Profile
		want     int
	}{
		{"defaults", noChildren, &models.Profile{}, 40},
		{"experience capped", noChildren, &models.Profile{Experience: "30 years", Rating: floatPtr(0)}, 20},
		{"medium availability", noChildren, &models.Profile{Experience: "3 years", Rating: floatPtr(3), Availability: models.AvailabilityMedium}, 46},
		{"low availability", noChildren, &models.Profile{Rating: floatPtr(2), Availability: models.AvailabilityLow}, 20},
		{"autism bonus needs children", noChildren, &models.Profile{Rating: floatPtr(1), Specialization: "Autism"}, 10},
		{"autism bonus", parent, &models.Profile{Rating: floatPtr(1), Specialization: "Autism"}, 35},
		{"autism match is case sensitive", parent, &models.Profile{Rating: floatPtr(1), Specialization: "autism"}, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScoreAdvocate(tc.parent, tc.advocate))
		})
	}
}

func TestRankAdvocatesAssignedFirst(t *testing.T) {
	parent := parentLisa()
	advocates := []models.Profile{*advocateMaria(), *advocateJohn()}

	matches := RankAdvocates(parent, advocates)
	require.Len(t, matches, 2)
	assert.Equal(t, "advocate_john", matches[0].ID)
	assert.True(t, matches[0].IsPriority)
	assert.Equal(t, "advocate_maria", matches[1].ID)
	assert.False(t, matches[1].IsPriority)
	assert.Greater(t, matches[1].Score, matches[0].Score)
}

func TestRankAdvocatesByScoreThenName(t *testing.T) {
	parent := &models.Profile{ID: "p", Role: models.RoleParent}
	advocates := []models.Profile{
		{ID: "b", FullName: "Bea", Rating: floatPtr(3)},
		{ID: "c", FullName: "Cal", Rating: floatPtr(5)},
		{ID: "a", FullName: "Abe", Rating: floatPtr(3)},
	}
	matches := RankAdvocates(parent, advocates)
	require.Len(t, matches, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{matches[0].ID, matches[1].ID, matches[2].ID})
}
