package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AutismProfileType distinguishes the standard narrative from the hero edition.
type AutismProfileType string

const (
	AutismProfileStandard AutismProfileType = "standard"
	AutismProfileHero     AutismProfileType = "hero"
)

// SensorySystems are the sensory channels a profile may flag.
var SensorySystems = []string{"auditory", "visual", "tactile", "smell", "taste", "proprioceptive", "vestibular"}

// SensoryProfile lists the sensory systems a child is sensitive in.
type SensoryProfile struct {
	Selected          []string `json:"selected"`
	CalmingStrategies string   `json:"calming_strategies"`
}

// CommunicationStyle describes how a child communicates best.
type CommunicationStyle struct {
	PrimaryMethod       string `json:"primary_method"`
	EffectiveStrategies string `json:"effective_strategies"`
}

// BehavioralTriggers are the situations a child finds hard.
type BehavioralTriggers struct {
	Triggers      []string `json:"triggers"`
	OtherTriggers string   `json:"other_triggers"`
}

// SupplementalDocument is text extracted from an uploaded report.
type SupplementalDocument struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Content string `json:"content"`
}

// AutismProfileInput is the questionnaire a profile was generated from.
// The last four fields are only accepted on the hero plan.
type AutismProfileInput struct {
	StudentName              string                 `json:"studentName"`
	GradeLevel               GradeLevel             `json:"gradeLevel,omitempty"`
	Sensory                  SensoryProfile         `json:"sensoryPreferences"`
	Communication            CommunicationStyle     `json:"communicationStyle"`
	Triggers                 BehavioralTriggers     `json:"behavioralTriggers"`
	HomeSupports             string                 `json:"homeSupports"`
	Goals                    string                 `json:"goals"`
	IndividualStrengths      string                 `json:"individualStrengths,omitempty"`
	LearningStyle            string                 `json:"learningStyle,omitempty"`
	EnvironmentalPreferences string                 `json:"environmentalPreferences,omitempty"`
	SupplementalDocuments    []SupplementalDocument `json:"supplementalDocuments,omitempty"`
}

// HasHeroDetails reports whether any hero-only field is filled in.
func (in AutismProfileInput) HasHeroDetails() bool {
	return in.IndividualStrengths != "" || in.LearningStyle != "" ||
		in.EnvironmentalPreferences != "" || len(in.SupplementalDocuments) > 0
}

// Value marshals the input to JSON for persistence.
func (in AutismProfileInput) Value() (driver.Value, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal autism profile input: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB document.
func (in *AutismProfileInput) Scan(value interface{}) error {
	return scanJSON(value, in, "autism profile input")
}

// ProfileInsights is the hero summary derived from a generated narrative.
type ProfileInsights struct {
	TopNeeds           []string `json:"topNeeds"`
	TopRecommendations []string `json:"topRecommendations"`
	RedFlags           []string `json:"redFlags"`
	HelpfulSupports    []string `json:"helpfulSupports"`
	SituationsToAvoid  []string `json:"situationsToAvoid"`
	ClassroomTips      []string `json:"classroomTips"`
}

// Value marshals the insights to JSON for persistence.
func (p ProfileInsights) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal profile insights: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB document.
func (p *ProfileInsights) Scan(value interface{}) error {
	return scanJSON(value, p, "profile insights")
}

// AutismProfile is a generated one-page description of a child for educators.
type AutismProfile struct {
	ID               string             `db:"id" json:"profileId"`
	StudentID        string             `db:"student_id" json:"studentId"`
	ParentID         string             `db:"parent_id" json:"parentId"`
	CreatedBy        string             `db:"created_by" json:"createdBy"`
	ProfileType      AutismProfileType  `db:"profile_type" json:"profileType"`
	StudentName      string             `db:"student_name" json:"studentName"`
	Input            AutismProfileInput `db:"input" json:"input"`
	GeneratedProfile string             `db:"generated_profile" json:"generatedProfile"`
	Insights         *ProfileInsights   `db:"insights" json:"insights,omitempty"`
	SharedWith       *string            `db:"shared_with" json:"sharedWith,omitempty"`
	ShareMessage     *string            `db:"share_message" json:"shareMessage,omitempty"`
	SharedAt         *time.Time         `db:"shared_at" json:"sharedAt,omitempty"`
	CreatedAt        time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updatedAt"`
}

// AutismProfileScope filters profile listings. Unless All is set, a profile
// matches when any non-empty filter matches.
type AutismProfileScope struct {
	All        bool
	ParentID   string
	SharedWith string
	CreatedBy  string
	Limit      int
}

// AutismProfileShare records a hand-off of a profile to an advocate.
type AutismProfileShare struct {
	ProfileID  string
	AdvocateID string
	Message    string
	SharedAt   time.Time
}
