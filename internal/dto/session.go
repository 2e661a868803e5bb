package dto

import "github.com/noah-isme/iep-hero-api/internal/models"

// SessionDetail is a session with its comments in chronological order.
type SessionDetail struct {
	Session  *models.Session  `json:"session"`
	Comments []models.Comment `json:"comments"`
}

// AddCommentRequest is the body of POST /session/:id/comments.
type AddCommentRequest struct {
	Text               string `json:"text" validate:"required,max=4000"`
	AccommodationIndex *int   `json:"accommodationIndex" validate:"omitempty,min=0"`
	UserID             string `json:"userId,omitempty" swaggerignore:"true"`
}

// ApprovalRequest is the body of PUT /session/:id/approval.
// Field is the older name for Section and is still accepted.
type ApprovalRequest struct {
	Approved *bool  `json:"approved" validate:"required"`
	Section  string `json:"section" validate:"omitempty,oneof=accommodations"`
	Field    string `json:"field" validate:"omitempty,oneof=accommodations"`
	UserID   string `json:"userId,omitempty" swaggerignore:"true"`
}

// TargetSection is the section being toggled, defaulting to accommodations.
func (r ApprovalRequest) TargetSection() models.ApprovalField {
	switch {
	case r.Section != "":
		return models.ApprovalField(r.Section)
	case r.Field != "":
		return models.ApprovalField(r.Field)
	default:
		return models.ApprovalFieldAccommodations
	}
}

// ApprovalResponse mirrors the toggled state.
type ApprovalResponse struct {
	Success  bool                 `json:"success"`
	Approved bool                 `json:"approved"`
	Section  models.ApprovalField `json:"section"`
	Status   models.SessionStatus `json:"status"`
	Approval models.Approval      `json:"approval"`
}

// ExportSessionRequest is the body of POST /session/:id/export.
type ExportSessionRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportResponse contains the signed download location.
type ExportResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
	Format    string `json:"format"`
}
