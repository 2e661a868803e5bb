package service

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

var requestedCount = regexp.MustCompile(`Create (\d+) personalized`)
var categoryLine = regexp.MustCompile(`"category": "([^"]+)"`)

func TestBuildAccommodationPromptCountPerTier(t *testing.T) {
	for tier, want := range map[models.PlanTier]string{models.PlanFree: "8", models.PlanHero: "15"} {
		prompt := BuildAccommodationPrompt(sampleChild(), tier)
		m := requestedCount.FindStringSubmatch(prompt.User)
		require.NotNil(t, m, "tier %s", tier)
		assert.Equal(t, want, m[1], "tier %s", tier)
	}
}

func TestBuildAccommodationPromptCategoriesAreClosedSet(t *testing.T) {
	prompt := BuildAccommodationPrompt(sampleChild(), models.PlanFree)
	m := categoryLine.FindStringSubmatch(prompt.User)
	require.NotNil(t, m)
	for _, name := range strings.Split(m[1], "|") {
		assert.True(t, models.Category(name).Valid(), name)
	}
	assert.Len(t, strings.Split(m[1], "|"), len(models.Categories))
}

func TestBuildAccommodationPromptProfileLines(t *testing.T) {
	child := sampleChild()
	child.DiagnosisAreas = []string{models.DiagnosisASD, "ADHD"}
	child.SensoryPreferences = nil
	child.AdditionalNotes = ""

	prompt := BuildAccommodationPrompt(child, models.PlanFree)
	assert.Contains(t, prompt.User, "Child Name: Emma\n")
	assert.Contains(t, prompt.User, "Grade Level: 3rd\n")
	assert.Contains(t, prompt.User, "Diagnosis Areas: Autism Spectrum Disorder (ASD), ADHD\n")
	assert.Contains(t, prompt.User, "Sensory Preferences: None specified\n")
	assert.Contains(t, prompt.User, "Behavioral Challenges: Transitions\n")
	assert.Contains(t, prompt.User, "Communication Method: verbal\n")
	assert.Contains(t, prompt.User, "Additional Information: None specified\n")
	assert.Contains(t, prompt.User, `"accommodations": [`)
	assert.Contains(t, prompt.System, "Always respond with valid JSON only.")
	assert.NotContains(t, prompt.User, "Hero plan")
}

func TestBuildAccommodationPromptHeroSuffix(t *testing.T) {
	prompt := BuildAccommodationPrompt(sampleChild(), models.PlanHero)
	assert.Contains(t, prompt.User, "Hero plan")
	assert.Contains(t, prompt.User, "IDEA and Section 504")
	assert.Contains(t, prompt.User, "implementation timeline")
}

func TestBuildAccommodationPromptIsPure(t *testing.T) {
	child := sampleChild()
	first := BuildAccommodationPrompt(child, models.PlanHero)
	second := BuildAccommodationPrompt(child, models.PlanHero)
	assert.Equal(t, first, second)
	assert.Equal(t, sampleChild(), child)
}

func TestBuildReviewPrompt(t *testing.T) {
	session := sampleSession("s1", "parent_mike", "parent_mike", 2)
	analysis := AssessRisks(session.ChildProfile, session.Accommodations)
	prompt := BuildReviewPrompt(session, analysis)

	assert.Contains(t, prompt.User, "1. [Academic] Support 0")
	assert.Contains(t, prompt.User, "2. [Behavioral] Support 1")
	assert.Contains(t, prompt.User, `"overall_assessment"`)
	assert.Contains(t, prompt.User, "Automated compliance checks flagged")
}

func TestBuildAutismProfilePromptLength(t *testing.T) {
	standard := BuildAutismProfilePrompt(sampleAutismInput(), models.AutismProfileStandard)
	assert.Contains(t, standard.User, "Write a 2-3 paragraph autism profile")
	assert.Contains(t, standard.User, "Sensory Sensitivities: auditory, tactile")
	assert.Contains(t, standard.User, `"profile":`)
	assert.NotContains(t, standard.User, "Individual Strengths")

	hero := BuildAutismProfilePrompt(sampleAutismInput(), models.AutismProfileHero)
	assert.Contains(t, hero.User, "Write a 5-6 paragraph autism profile")
	assert.Contains(t, hero.User, "Individual Strengths: None specified")
	assert.Equal(t, autismProfileSystemInstruction, hero.System)
}

func TestBuildAutismProfilePromptDocuments(t *testing.T) {
	in := sampleAutismInput()
	in.LearningStyle = "Visual learner"
	in.SupplementalDocuments = []models.SupplementalDocument{
		{Name: "IEP_2024.pdf", Content: "Needs sensory breaks every 30 minutes"},
		{Name: "Evaluation.pdf", Content: strings.Repeat("x", documentExcerptLimit+500)},
	}

	prompt := BuildAutismProfilePrompt(in, models.AutismProfileHero)
	assert.Contains(t, prompt.User, "Learning Style: Visual learner")
	assert.Contains(t, prompt.User, "--- IEP_2024.pdf ---\nNeeds sensory breaks every 30 minutes")
	assert.NotContains(t, prompt.User, strings.Repeat("x", documentExcerptLimit+1))
}

func TestBuildProfileInsightsPrompt(t *testing.T) {
	prompt := BuildProfileInsightsPrompt(sampleAutismInput(), "Emma is a curious learner.")
	assert.Contains(t, prompt.User, "Emma is a curious learner.")
	assert.Contains(t, prompt.User, "exactly three top needs")
	for _, key := range []string{"topNeeds", "topRecommendations", "redFlags", "helpfulSupports", "situationsToAvoid", "classroomTips"} {
		assert.Contains(t, prompt.User, `"`+key+`"`)
	}
}
