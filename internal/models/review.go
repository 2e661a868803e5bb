package models

// AdvancedReview is the LLM-authored compliance review of a session.
type AdvancedReview struct {
	OverallAssessment OverallAssessment `json:"overall_assessment"`
	DetailedReview    DetailedReview    `json:"detailed_review"`
	Recommendations   ReviewAdvice      `json:"recommendations"`
	LegalAnalysis     *LegalAnalysis    `json:"legalAnalysis,omitempty"`
}

type OverallAssessment struct {
	StrengthScore   int    `json:"strength_score"`
	ComplianceScore int    `json:"compliance_score"`
	Summary         string `json:"summary"`
}

type DetailedReview struct {
	Strengths []string `json:"strengths"`
	Concerns  []string `json:"concerns"`
}

type ReviewAdvice struct {
	ImmediateActions         []string `json:"immediate_actions"`
	AdditionalAccommodations []string `json:"additional_accommodations"`
}

// AdvocateMatch is a scored advocate for a parent.
type AdvocateMatch struct {
	PublicAdvocate
	Score      int  `json:"matchScore"`
	IsPriority bool `json:"isPriority"`
}

// PublicAdvocate is the advocate information shown to parents.
type PublicAdvocate struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Specialization string       `json:"specialization"`
	Credentials    string       `json:"credentials"`
	Rating         *float64     `json:"rating,omitempty"`
	Experience     string       `json:"experience"`
	Availability   Availability `json:"availability"`
}
