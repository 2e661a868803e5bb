package dto

// CreateStudentRequest is the body of POST /students.
type CreateStudentRequest struct {
	Name                 string   `json:"name" validate:"required,max=120"`
	GradeLevel           string   `json:"gradeLevel" validate:"required,oneof=pre-k kindergarten 1st 2nd 3rd 4th 5th middle high"`
	DiagnosisAreas       []string `json:"diagnosisAreas" validate:"max=20,unique"`
	SensoryPreferences   []string `json:"sensoryPreferences" validate:"max=20,unique"`
	BehavioralChallenges []string `json:"behavioralChallenges" validate:"max=20,unique"`
	CommunicationMethod  string   `json:"communicationMethod" validate:"required,oneof=verbal limited-verbal aac-device sign-language picture-cards gestures non-verbal"`
	AdditionalNotes      string   `json:"additionalNotes" validate:"max=4000"`
	DateOfBirth          string   `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	SchoolName           string   `json:"schoolName" validate:"max=200"`
	CurrentIEPDate       string   `json:"currentIepDate" validate:"omitempty,datetime=2006-01-02"`
	ParentID             string   `json:"parentId"`
}
