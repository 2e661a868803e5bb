package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RiskLevel grades a legal risk.
type RiskLevel string

const (
	RiskLevelHigh   RiskLevel = "high"
	RiskLevelMedium RiskLevel = "medium"
)

// Risk and warning types produced by the legal checks.
const (
	RiskMissingDiagnosis          = "missing_diagnosis"
	RiskInsufficientSensory       = "insufficient_sensory"
	RiskInsufficientBehavioral    = "insufficient_behavioral"
	RiskInsufficientCommunication = "insufficient_communication"
	WarningMeasurableGoals        = "measurable_goals"
)

// RiskFlag is a rule-based compliance risk.
type RiskFlag struct {
	Type           string    `json:"type"`
	Level          RiskLevel `json:"level"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation"`
}

// WarningFlag is an advisory that does not indicate a defect.
type WarningFlag struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// LegalAnalysis groups the risks and warnings found for a session.
type LegalAnalysis struct {
	Risks    []RiskFlag    `json:"risks"`
	Warnings []WarningFlag `json:"warnings"`
}

// Value marshals the analysis for persistence.
func (l LegalAnalysis) Value() (driver.Value, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal legal analysis: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB document.
func (l *LegalAnalysis) Scan(value interface{}) error {
	return scanJSON(value, l, "legal analysis")
}
