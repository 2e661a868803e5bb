package service

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

const (
	maxScore            = 100
	maxExperiencePoints = 20
	defaultRating       = 4.0
	autismBonus         = 25
)

var experiencePattern = regexp.MustCompile(`^\s*(\d+)\s+years?`)

// ParseExperienceYears reads the leading integer of strings like "10 years".
// Unparsable input yields 0.
func ParseExperienceYears(experience string) int {
	m := experiencePattern.FindStringSubmatch(experience)
	if m == nil {
		return 0
	}
	years, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return years
}

// ScoreAdvocate rates how well an advocate fits a parent on a 0..100 scale.
func ScoreAdvocate(parent, advocate *models.Profile) int {
	score := 0.0

	exp := ParseExperienceYears(advocate.Experience) * 2
	if exp > maxExperiencePoints {
		exp = maxExperiencePoints
	}
	score += float64(exp)

	rating := defaultRating
	if advocate.Rating != nil {
		rating = *advocate.Rating
	}
	score += rating * 10

	switch advocate.Availability {
	case models.AvailabilityHigh:
		score += 15
	case models.AvailabilityMedium:
		score += 10
	}

	if parent != nil && len(parent.Children) > 0 && strings.Contains(advocate.Specialization, "Autism") {
		score += autismBonus
	}

	result := int(math.Round(score))
	if result > maxScore {
		result = maxScore
	}
	if result < 0 {
		result = 0
	}
	return result
}

// RankAdvocates scores every advocate for parent. The parent's assigned advocate
// leads, the rest follow by descending score then name.
func RankAdvocates(parent *models.Profile, advocates []models.Profile) []models.AdvocateMatch {
	matches := make([]models.AdvocateMatch, 0, len(advocates))
	for i := range advocates {
		adv := &advocates[i]
		matches = append(matches, models.AdvocateMatch{
			PublicAdvocate: models.PublicAdvocate{
				ID:             adv.ID,
				Name:           adv.FullName,
				Specialization: adv.Specialization,
				Credentials:    adv.Credentials,
				Rating:         adv.Rating,
				Experience:     adv.Experience,
				Availability:   adv.Availability,
			},
			Score:      ScoreAdvocate(parent, adv),
			IsPriority: parent != nil && parent.AssignedAdvocateID != nil && *parent.AssignedAdvocateID == adv.ID,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].IsPriority != matches[j].IsPriority {
			return matches[i].IsPriority
		}
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}
