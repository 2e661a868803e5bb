package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

func riskTypes(analysis models.LegalAnalysis) []string {
	types := make([]string, 0, len(analysis.Risks))
	for _, r := range analysis.Risks {
		types = append(types, r.Type)
	}
	return types
}

func accommodationsOf(categories ...models.Category) models.Accommodations {
	out := make(models.Accommodations, len(categories))
	for i, c := range categories {
		out[i] = models.Accommodation{Title: "t", Description: "d", Category: c, Implementation: "i"}
	}
	return out
}

func TestAssessRisksOnlyMissingDiagnosis(t *testing.T) {
	child := models.ChildProfile{
		DiagnosisAreas:       []string{"ADHD"},
		SensoryPreferences:   []string{},
		BehavioralChallenges: []string{},
		CommunicationMethod:  models.CommunicationVerbal,
	}
	for _, acc := range []models.Accommodations{nil, accommodationsOf(models.CategoryAcademic), accommodationsOf(models.Categories...)} {
		analysis := AssessRisks(child, acc)
		require.Len(t, analysis.Risks, 1)
		assert.Equal(t, models.RiskMissingDiagnosis, analysis.Risks[0].Type)
		assert.Equal(t, models.RiskLevelHigh, analysis.Risks[0].Level)
		require.Len(t, analysis.Warnings, 1)
		assert.Equal(t, models.WarningMeasurableGoals, analysis.Warnings[0].Type)
	}
}

func TestAssessRisksAllRulesFire(t *testing.T) {
	child := models.ChildProfile{
		DiagnosisAreas:       []string{"Autism"},
		SensoryPreferences:   []string{"Bright lights"},
		BehavioralChallenges: []string{"Meltdowns"},
		CommunicationMethod:  models.CommunicationAACDevice,
	}
	analysis := AssessRisks(child, accommodationsOf(models.CategorySensory, models.CategoryBehavioral, models.CategoryCommunication))
	assert.Equal(t, []string{
		models.RiskMissingDiagnosis,
		models.RiskInsufficientSensory,
		models.RiskInsufficientBehavioral,
		models.RiskInsufficientCommunication,
	}, riskTypes(analysis))
	assert.Equal(t, models.RiskLevelMedium, analysis.Risks[1].Level)
	assert.Equal(t, models.RiskLevelMedium, analysis.Risks[2].Level)
	assert.Equal(t, models.RiskLevelHigh, analysis.Risks[3].Level)
}

func TestAssessRisksCoverageThreshold(t *testing.T) {
	child := models.ChildProfile{
		DiagnosisAreas:       []string{models.DiagnosisASD},
		SensoryPreferences:   []string{"Bright lights"},
		BehavioralChallenges: []string{"Meltdowns"},
		CommunicationMethod:  models.CommunicationNonVerbal,
	}
	analysis := AssessRisks(child, accommodationsOf(
		models.CategorySensory, models.CategorySensory,
		models.CategoryBehavioral, models.CategoryBehavioral,
		models.CategoryCommunication, models.CategoryCommunication,
	))
	assert.Empty(t, analysis.Risks)
	assert.Len(t, analysis.Warnings, 1)
}

func TestAssessRisksBoundaries(t *testing.T) {
	child := models.ChildProfile{
		DiagnosisAreas:      []string{models.DiagnosisASD},
		CommunicationMethod: models.CommunicationVerbal,
	}
	analysis := AssessRisks(child, nil)
	assert.NotContains(t, riskTypes(analysis), models.RiskInsufficientSensory)
	assert.NotContains(t, riskTypes(analysis), models.RiskInsufficientBehavioral)
	assert.NotContains(t, riskTypes(analysis), models.RiskInsufficientCommunication)

	child.CommunicationMethod = models.CommunicationLimitedVerbal
	assert.Contains(t, riskTypes(AssessRisks(child, nil)), models.RiskInsufficientCommunication)
}

func TestAssessRisksIdempotent(t *testing.T) {
	session := sampleSession("s1", "parent_sarah", "parent_sarah", 3)
	session.ChildProfile.CommunicationMethod = models.CommunicationPictureCards

	first := AssessRisks(session.ChildProfile, session.Accommodations)
	second := AssessRisks(session.ChildProfile, session.Accommodations)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("analysis changed between runs (-first +second):\n%s", diff)
	}
}
