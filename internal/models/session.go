package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GradeLevel is the grade band of a child.
type GradeLevel string

const (
	GradePreK         GradeLevel = "pre-k"
	GradeKindergarten GradeLevel = "kindergarten"
	GradeFirst        GradeLevel = "1st"
	GradeSecond       GradeLevel = "2nd"
	GradeThird        GradeLevel = "3rd"
	GradeFourth       GradeLevel = "4th"
	GradeFifth        GradeLevel = "5th"
	GradeMiddle       GradeLevel = "middle"
	GradeHigh         GradeLevel = "high"
)

// CommunicationMethod is how a child primarily communicates.
type CommunicationMethod string

const (
	CommunicationVerbal        CommunicationMethod = "verbal"
	CommunicationLimitedVerbal CommunicationMethod = "limited-verbal"
	CommunicationAACDevice     CommunicationMethod = "aac-device"
	CommunicationSignLanguage  CommunicationMethod = "sign-language"
	CommunicationPictureCards  CommunicationMethod = "picture-cards"
	CommunicationGestures      CommunicationMethod = "gestures"
	CommunicationNonVerbal     CommunicationMethod = "non-verbal"
)

// Category classifies an accommodation.
type Category string

const (
	CategoryAcademic      Category = "Academic"
	CategoryBehavioral    Category = "Behavioral"
	CategorySensory       Category = "Sensory"
	CategoryCommunication Category = "Communication"
	CategoryEnvironmental Category = "Environmental"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryAcademic,
	CategoryBehavioral,
	CategorySensory,
	CategoryCommunication,
	CategoryEnvironmental,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SessionStatus captures the review lifecycle of a session.
type SessionStatus string

const (
	SessionStatusDraft    SessionStatus = "draft"
	SessionStatusReviewed SessionStatus = "reviewed"
	SessionStatusApproved SessionStatus = "approved"
)

// DiagnosisASD is the diagnosis tag the legal checks look for.
const DiagnosisASD = "Autism Spectrum Disorder (ASD)"

// ChildProfile is the input describing the child an accommodation set is for.
type ChildProfile struct {
	Name                 string              `json:"childName"`
	GradeLevel           GradeLevel          `json:"gradeLevel"`
	DiagnosisAreas       []string            `json:"diagnosisAreas"`
	SensoryPreferences   []string            `json:"sensoryPreferences"`
	BehavioralChallenges []string            `json:"behavioralChallenges"`
	CommunicationMethod  CommunicationMethod `json:"communicationMethod"`
	AdditionalNotes      string              `json:"additionalInfo"`
}

// Value marshals the profile to JSON for persistence.
func (p ChildProfile) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal child profile: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB document into the profile.
func (p *ChildProfile) Scan(value interface{}) error {
	return scanJSON(value, p, "child profile")
}

// Accommodation is one generated recommendation.
type Accommodation struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       Category `json:"category"`
	Implementation string   `json:"implementation"`
}

// Accommodations is persisted as an ordered JSONB array.
type Accommodations []Accommodation

// Value marshals the accommodations for persistence.
func (a Accommodations) Value() (driver.Value, error) {
	if a == nil {
		a = Accommodations{}
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal accommodations: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB array.
func (a *Accommodations) Scan(value interface{}) error {
	return scanJSON(value, a, "accommodations")
}

// CountByCategory returns how many accommodations fall in c.
func (a Accommodations) CountByCategory(c Category) int {
	n := 0
	for _, item := range a {
		if item.Category == c {
			n++
		}
	}
	return n
}

// Approval is the advocate sign-off on a session's accommodations.
type Approval struct {
	Approved   bool       `json:"approved"`
	ApprovedBy *string    `json:"approvedBy"`
	ApprovedAt *time.Time `json:"approvedAt"`
}

// Session is a single generation event with its review state.
type Session struct {
	ID             string         `json:"id"`
	ChildProfile   ChildProfile   `json:"childProfile"`
	PlanType       PlanTier       `json:"planType"`
	Accommodations Accommodations `json:"accommodations"`
	CreatedBy      string         `json:"createdBy"`
	CreatedByName  string         `json:"createdByName,omitempty"`
	ForParent      string         `json:"forParent"`
	ForParentName  string         `json:"forParentName,omitempty"`
	Status         SessionStatus  `json:"status"`
	Approval       Approval       `json:"approval"`
	LegalAnalysis  *LegalAnalysis `json:"legalAnalysis,omitempty"`
	CreatedAt      time.Time      `json:"timestamp"`
	LastModified   time.Time      `json:"lastModified"`
}

// ApprovalField names a section of a session that can be approved.
type ApprovalField string

const (
	ApprovalFieldAccommodations ApprovalField = "accommodations"
)

// ApprovalUpdate is the state written by an approval toggle.
type ApprovalUpdate struct {
	SessionID  string
	Field      ApprovalField
	Approved   bool
	Status     SessionStatus
	ApprovedBy *string
	ApprovedAt *time.Time
	ModifiedAt time.Time
}

// SessionScope restricts which sessions a listing returns.
// An empty ParentIDs with All=false matches nothing.
type SessionScope struct {
	All       bool
	ParentIDs []string
	Limit     int
}
