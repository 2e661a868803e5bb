package service

import (
	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
)

const (
	heroAccommodationCount = 15
	freeAccommodationCount = 8

	heroMaxTokens = 3500
	freeMaxTokens = 2500
)

// HasAccess reports whether a user with the given tier and role may use a
// feature requiring the required tier. Hero covers every tier and advocates
// bypass the check entirely.
func HasAccess(tier models.PlanTier, role models.Role, required models.PlanTier) bool {
	return tier == required || tier == models.PlanHero || role == models.RoleAdvocate
}

// RequireHero returns PLAN_UPGRADE_REQUIRED unless the profile may use hero features.
func RequireHero(profile *models.Profile) error {
	if profile == nil {
		return appErrors.ErrUnauthorized
	}
	if !HasAccess(profile.PlanType, profile.Role, models.PlanHero) {
		return appErrors.ErrPlanUpgradeRequired
	}
	return nil
}

// AccommodationCount is how many accommodations to request for a tier.
func AccommodationCount(tier models.PlanTier) int {
	if tier == models.PlanHero {
		return heroAccommodationCount
	}
	return freeAccommodationCount
}

// MaxTokens is the completion budget for a tier.
func MaxTokens(tier models.PlanTier) int {
	if tier == models.PlanHero {
		return heroMaxTokens
	}
	return freeMaxTokens
}

// SessionTier collapses an effective tier to the two tiers a session records.
func SessionTier(tier models.PlanTier) models.PlanTier {
	if tier == models.PlanHero {
		return models.PlanHero
	}
	return models.PlanFree
}
