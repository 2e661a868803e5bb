package models

import (
	"time"

	"github.com/lib/pq"
)

// Student is a saved child profile owned by a parent.
type Student struct {
	ID                   string              `db:"id" json:"id"`
	ParentID             string              `db:"parent_id" json:"parentId"`
	Name                 string              `db:"name" json:"name"`
	GradeLevel           GradeLevel          `db:"grade_level" json:"gradeLevel"`
	DiagnosisAreas       pq.StringArray      `db:"diagnosis_areas" json:"diagnosisAreas"`
	SensoryPreferences   pq.StringArray      `db:"sensory_preferences" json:"sensoryPreferences"`
	BehavioralChallenges pq.StringArray      `db:"behavioral_challenges" json:"behavioralChallenges"`
	CommunicationMethod  CommunicationMethod `db:"communication_method" json:"communicationMethod"`
	AdditionalNotes      string              `db:"additional_notes" json:"additionalNotes"`
	DateOfBirth          *time.Time          `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	SchoolName           string              `db:"school_name" json:"schoolName"`
	CurrentIEPDate       *time.Time          `db:"current_iep_date" json:"currentIepDate,omitempty"`
	CreatedAt            time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time           `db:"updated_at" json:"updatedAt"`
}

// ChildProfile converts the student into a generation input.
func (s Student) ChildProfile() ChildProfile {
	return ChildProfile{
		Name:                 s.Name,
		GradeLevel:           s.GradeLevel,
		DiagnosisAreas:       append([]string(nil), s.DiagnosisAreas...),
		SensoryPreferences:   append([]string(nil), s.SensoryPreferences...),
		BehavioralChallenges: append([]string(nil), s.BehavioralChallenges...),
		CommunicationMethod:  s.CommunicationMethod,
		AdditionalNotes:      s.AdditionalNotes,
	}
}
