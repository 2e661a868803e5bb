package service

import "github.com/noah-isme/iep-hero-api/internal/models"

const minCategoryCoverage = 2

// AssessRisks evaluates the rule-based legal checks for a session snapshot.
// Every rule is independent; the measurable goals warning is always present.
func AssessRisks(child models.ChildProfile, accommodations models.Accommodations) models.LegalAnalysis {
	analysis := models.LegalAnalysis{
		Risks:    []models.RiskFlag{},
		Warnings: []models.WarningFlag{},
	}

	if !containsTag(child.DiagnosisAreas, models.DiagnosisASD) {
		analysis.Risks = append(analysis.Risks, models.RiskFlag{
			Type:           models.RiskMissingDiagnosis,
			Level:          models.RiskLevelHigh,
			Message:        "Primary diagnosis of Autism Spectrum Disorder is not documented",
			Recommendation: "Document the ASD diagnosis and evaluation date so eligibility under IDEA is clear",
		})
	}

	if len(child.SensoryPreferences) > 0 && accommodations.CountByCategory(models.CategorySensory) < minCategoryCoverage {
		analysis.Risks = append(analysis.Risks, models.RiskFlag{
			Type:           models.RiskInsufficientSensory,
			Level:          models.RiskLevelMedium,
			Message:        "Sensory needs are identified but fewer than two sensory accommodations are included",
			Recommendation: "Add sensory accommodations that address each listed sensory preference",
		})
	}

	if len(child.BehavioralChallenges) > 0 && accommodations.CountByCategory(models.CategoryBehavioral) < minCategoryCoverage {
		analysis.Risks = append(analysis.Risks, models.RiskFlag{
			Type:           models.RiskInsufficientBehavioral,
			Level:          models.RiskLevelMedium,
			Message:        "Behavioral challenges are identified but fewer than two behavioral supports are included",
			Recommendation: "Add positive behavior supports and consider requesting a functional behavior assessment",
		})
	}

	if child.CommunicationMethod != models.CommunicationVerbal && accommodations.CountByCategory(models.CategoryCommunication) < minCategoryCoverage {
		analysis.Risks = append(analysis.Risks, models.RiskFlag{
			Type:           models.RiskInsufficientCommunication,
			Level:          models.RiskLevelHigh,
			Message:        "Child is not primarily verbal but fewer than two communication supports are included",
			Recommendation: "Add communication accommodations and consider an assistive technology evaluation",
		})
	}

	analysis.Warnings = append(analysis.Warnings, models.WarningFlag{
		Type:           models.WarningMeasurableGoals,
		Message:        "Ensure every accommodation is tied to measurable annual goals",
		Recommendation: "Define how progress is measured and schedule periodic reviews of each goal",
	})

	return analysis
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
