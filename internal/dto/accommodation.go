package dto

import "github.com/noah-isme/iep-hero-api/internal/models"

// ChildProfileInput is the inline child description accepted by generation.
type ChildProfileInput struct {
	ChildName            string   `json:"childName" validate:"required,max=120"`
	GradeLevel           string   `json:"gradeLevel" validate:"required,oneof=pre-k kindergarten 1st 2nd 3rd 4th 5th middle high"`
	DiagnosisAreas       []string `json:"diagnosisAreas" validate:"required,min=1,max=20,unique"`
	SensoryPreferences   []string `json:"sensoryPreferences" validate:"max=20,unique"`
	BehavioralChallenges []string `json:"behavioralChallenges" validate:"max=20,unique"`
	CommunicationMethod  string   `json:"communicationMethod" validate:"required,oneof=verbal limited-verbal aac-device sign-language picture-cards gestures non-verbal"`
	AdditionalInfo       string   `json:"additionalInfo" validate:"max=4000"`
}

// ToModel converts the validated input into a ChildProfile.
func (in ChildProfileInput) ToModel() models.ChildProfile {
	return models.ChildProfile{
		Name:                 in.ChildName,
		GradeLevel:           models.GradeLevel(in.GradeLevel),
		DiagnosisAreas:       nonNil(in.DiagnosisAreas),
		SensoryPreferences:   nonNil(in.SensoryPreferences),
		BehavioralChallenges: nonNil(in.BehavioralChallenges),
		CommunicationMethod:  models.CommunicationMethod(in.CommunicationMethod),
		AdditionalNotes:      in.AdditionalInfo,
	}
}

// GenerateAccommodationsRequest is the body of POST /accommodations/generate.
// Either StudentID or the inline child profile must be supplied. Legacy userId
// and planType fields are accepted but ignored; identity and tier come from the token.
type GenerateAccommodationsRequest struct {
	ChildProfileInput `validate:"-"`
	StudentID         string `json:"studentId"`
	SelectedParentID  string `json:"selectedParentId"`
	UserID            string `json:"userId,omitempty" swaggerignore:"true"`
	PlanType          string `json:"planType,omitempty" swaggerignore:"true"`
}

// GenerateAccommodationsResponse is returned after a successful generation.
type GenerateAccommodationsResponse struct {
	SessionID      string                 `json:"sessionId"`
	Accommodations []models.Accommodation `json:"accommodations"`
	PlanType       models.PlanTier        `json:"planType"`
	ForParent      string                 `json:"forParent"`
	LegalAnalysis  *models.LegalAnalysis  `json:"legalAnalysis,omitempty"`
}

// AdvancedReviewRequest asks for an AI compliance review of a stored session.
type AdvancedReviewRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
