package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
)

func TestHasAccess(t *testing.T) {
	cases := []struct {
		name     string
		tier     models.PlanTier
		role     models.Role
		required models.PlanTier
		want     bool
	}{
		{"free parent needs hero", models.PlanFree, models.RoleParent, models.PlanHero, false},
		{"free parent free feature", models.PlanFree, models.RoleParent, models.PlanFree, true},
		{"hero parent hero feature", models.PlanHero, models.RoleParent, models.PlanHero, true},
		{"hero covers legal tier", models.PlanHero, models.RoleParent, models.PlanLegal, true},
		{"advocate bypasses", models.PlanFree, models.RoleAdvocate, models.PlanHero, true},
		{"legal reviewer without hero", models.PlanLegal, models.RoleLegalReviewer, models.PlanHero, false},
		{"legal tier matches legal", models.PlanLegal, models.RoleLegalReviewer, models.PlanLegal, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasAccess(tc.tier, tc.role, tc.required))
		})
	}
}

func TestRequireHero(t *testing.T) {
	assert.NoError(t, RequireHero(parentMike()))
	assert.NoError(t, RequireHero(advocateMaria()))
	assert.True(t, errors.Is(RequireHero(parentSarah()), appErrors.ErrPlanUpgradeRequired))
	assert.True(t, errors.Is(RequireHero(nil), appErrors.ErrUnauthorized))
}

func TestTierSizing(t *testing.T) {
	assert.Equal(t, 15, AccommodationCount(models.PlanHero))
	assert.Equal(t, 8, AccommodationCount(models.PlanFree))
	assert.Equal(t, 8, AccommodationCount(models.PlanAdvocate))
	assert.Equal(t, 3500, MaxTokens(models.PlanHero))
	assert.Equal(t, 2500, MaxTokens(models.PlanFree))
}

func TestSessionTier(t *testing.T) {
	assert.Equal(t, models.PlanHero, SessionTier(models.PlanHero))
	for _, tier := range []models.PlanTier{models.PlanFree, models.PlanAdvocate, models.PlanLegal, ""} {
		assert.Equal(t, models.PlanFree, SessionTier(tier), "tier %q", tier)
	}
}
