package dto

import (
	"time"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

type SensoryPreferencesInput struct {
	Selected          []string `json:"selected" validate:"max=7,unique,dive,oneof=auditory visual tactile smell taste proprioceptive vestibular"`
	CalmingStrategies string   `json:"calming_strategies" validate:"max=2000"`
}

type CommunicationStyleInput struct {
	PrimaryMethod       string `json:"primary_method" validate:"max=200"`
	EffectiveStrategies string `json:"effective_strategies" validate:"max=2000"`
}

type BehavioralTriggersInput struct {
	Triggers      []string `json:"triggers" validate:"max=20,unique,dive,required,max=200"`
	OtherTriggers string   `json:"other_triggers" validate:"max=2000"`
}

type SupplementalDocumentInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Type    string `json:"type" validate:"max=100"`
	Content string `json:"content" validate:"required,max=20000"`
}

// GenerateAutismProfileRequest is the body of POST /autism-profiles/generate.
// IndividualStrengths, LearningStyle, EnvironmentalPreferences and
// SupplementalDocuments require the Hero plan.
type GenerateAutismProfileRequest struct {
	StudentID                string                      `json:"studentId" validate:"required"`
	SensoryPreferences       SensoryPreferencesInput     `json:"sensoryPreferences"`
	CommunicationStyle       CommunicationStyleInput     `json:"communicationStyle"`
	BehavioralTriggers       BehavioralTriggersInput     `json:"behavioralTriggers"`
	HomeSupports             string                      `json:"homeSupports" validate:"max=4000"`
	Goals                    string                      `json:"goals" validate:"max=4000"`
	IndividualStrengths      string                      `json:"individualStrengths" validate:"max=4000"`
	LearningStyle            string                      `json:"learningStyle" validate:"max=2000"`
	EnvironmentalPreferences string                      `json:"environmentalPreferences" validate:"max=2000"`
	SupplementalDocuments    []SupplementalDocumentInput `json:"supplementalDocuments" validate:"max=5,dive"`
}

// HasHeroDetails reports whether any Hero-only field is filled in.
func (r GenerateAutismProfileRequest) HasHeroDetails() bool {
	return r.IndividualStrengths != "" || r.LearningStyle != "" ||
		r.EnvironmentalPreferences != "" || len(r.SupplementalDocuments) > 0
}

// ToModel converts the questionnaire for a student into the stored input.
func (r GenerateAutismProfileRequest) ToModel(student *models.Student) models.AutismProfileInput {
	in := models.AutismProfileInput{
		StudentName: student.Name,
		GradeLevel:  student.GradeLevel,
		Sensory: models.SensoryProfile{
			Selected:          nonNil(r.SensoryPreferences.Selected),
			CalmingStrategies: r.SensoryPreferences.CalmingStrategies,
		},
		Communication: models.CommunicationStyle{
			PrimaryMethod:       r.CommunicationStyle.PrimaryMethod,
			EffectiveStrategies: r.CommunicationStyle.EffectiveStrategies,
		},
		Triggers: models.BehavioralTriggers{
			Triggers:      nonNil(r.BehavioralTriggers.Triggers),
			OtherTriggers: r.BehavioralTriggers.OtherTriggers,
		},
		HomeSupports:             r.HomeSupports,
		Goals:                    r.Goals,
		IndividualStrengths:      r.IndividualStrengths,
		LearningStyle:            r.LearningStyle,
		EnvironmentalPreferences: r.EnvironmentalPreferences,
	}
	for _, doc := range r.SupplementalDocuments {
		in.SupplementalDocuments = append(in.SupplementalDocuments, models.SupplementalDocument{
			Name: doc.Name, Type: doc.Type, Content: doc.Content,
		})
	}
	return in
}

// ProfileInsightsSummary is the ranked part of the hero insights.
type ProfileInsightsSummary struct {
	TopNeeds           []string `json:"topNeeds"`
	TopRecommendations []string `json:"topRecommendations"`
	RedFlags           []string `json:"redFlags"`
}

// AutismProfileResponse is a generated profile. The hero fields are omitted
// for standard profiles.
type AutismProfileResponse struct {
	ProfileID         string                   `json:"profileId"`
	StudentID         string                   `json:"studentId"`
	StudentName       string                   `json:"studentName"`
	GeneratedProfile  string                   `json:"generatedProfile"`
	ProfileType       models.AutismProfileType `json:"profileType"`
	CreatedBy         string                   `json:"createdBy"`
	CreatedAt         time.Time                `json:"createdAt"`
	SharedWith        *string                  `json:"sharedWith,omitempty"`
	SharedAt          *time.Time               `json:"sharedAt,omitempty"`
	ProfileInsights   *ProfileInsightsSummary  `json:"profileInsights,omitempty"`
	HelpfulSupports   []string                 `json:"helpfulSupports,omitempty"`
	SituationsToAvoid []string                 `json:"situationsToAvoid,omitempty"`
	ClassroomTips     []string                 `json:"classroomTips,omitempty"`
}

// NewAutismProfileResponse flattens a stored profile into the API shape.
func NewAutismProfileResponse(p *models.AutismProfile) AutismProfileResponse {
	resp := AutismProfileResponse{
		ProfileID:        p.ID,
		StudentID:        p.StudentID,
		StudentName:      p.StudentName,
		GeneratedProfile: p.GeneratedProfile,
		ProfileType:      p.ProfileType,
		CreatedBy:        p.CreatedBy,
		CreatedAt:        p.CreatedAt,
		SharedWith:       p.SharedWith,
		SharedAt:         p.SharedAt,
	}
	if p.Insights != nil {
		resp.ProfileInsights = &ProfileInsightsSummary{
			TopNeeds:           p.Insights.TopNeeds,
			TopRecommendations: p.Insights.TopRecommendations,
			RedFlags:           p.Insights.RedFlags,
		}
		resp.HelpfulSupports = p.Insights.HelpfulSupports
		resp.SituationsToAvoid = p.Insights.SituationsToAvoid
		resp.ClassroomTips = p.Insights.ClassroomTips
	}
	return resp
}

// ShareAutismProfileRequest is the body of POST /autism-profiles/:id/share.
type ShareAutismProfileRequest struct {
	Message string `json:"message" validate:"max=1000"`
}

// ShareAutismProfileResponse confirms who received the profile.
type ShareAutismProfileResponse struct {
	Success    bool      `json:"success"`
	ProfileID  string    `json:"profileId"`
	SharedWith string    `json:"sharedWith"`
	SharedAt   time.Time `json:"sharedAt"`
}
