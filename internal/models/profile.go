package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
)

// Role represents the account kinds known to the platform.
type Role string

const (
	RoleParent        Role = "parent"
	RoleAdvocate      Role = "advocate"
	RoleLegalReviewer Role = "legal_reviewer"
)

// PlanTier is the subscription level of a profile.
type PlanTier string

const (
	PlanFree     PlanTier = "free"
	PlanHero     PlanTier = "hero"
	PlanAdvocate PlanTier = "advocate"
	PlanLegal    PlanTier = "legal"
)

// Availability describes how much capacity an advocate has for new families.
type Availability string

const (
	AvailabilityHigh   Availability = "high"
	AvailabilityMedium Availability = "medium"
	AvailabilityLow    Availability = "low"
)

// ChildRef is the lightweight child record kept on a parent's profile.
type ChildRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// Children is persisted as a JSONB array.
type Children []ChildRef

// Value marshals the children to JSON for persistence.
func (c Children) Value() (driver.Value, error) {
	if c == nil {
		c = Children{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal children: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB array into the slice.
func (c *Children) Scan(value interface{}) error {
	return scanJSON(value, c, "children")
}

// Profile is the identity record supplied by the external auth provider and
// enriched with role specific fields. AssignedParentIDs is derived from the
// parents whose assigned advocate is this profile.
type Profile struct {
	ID                 string         `db:"id" json:"id"`
	Email              string         `db:"email" json:"email"`
	FullName           string         `db:"full_name" json:"name"`
	Role               Role           `db:"role" json:"role"`
	PlanType           PlanTier       `db:"plan_type" json:"planType"`
	AssignedAdvocateID *string        `db:"assigned_advocate_id" json:"assignedAdvocate,omitempty"`
	Children           Children       `db:"children" json:"children,omitempty"`
	AssignedParentIDs  pq.StringArray `db:"assigned_parent_ids" json:"assignedParents,omitempty"`
	Specialization     string         `db:"specialization" json:"specialization,omitempty"`
	Credentials        string         `db:"credentials" json:"credentials,omitempty"`
	Rating             *float64       `db:"rating" json:"rating,omitempty"`
	Experience         string         `db:"experience" json:"experience,omitempty"`
	Availability       Availability   `db:"availability" json:"availability,omitempty"`
	IsActive           bool           `db:"is_active" json:"isActive"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

// AdvocatesFor reports whether p is an advocate assigned to parentID.
func (p *Profile) AdvocatesFor(parentID string) bool {
	if p == nil || p.Role != RoleAdvocate {
		return false
	}
	for _, id := range p.AssignedParentIDs {
		if id == parentID {
			return true
		}
	}
	return false
}

// PublicProfile is the subset of a profile any authenticated user may see.
type PublicProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Public strips private fields.
func (p *Profile) Public() PublicProfile {
	return PublicProfile{ID: p.ID, Name: p.FullName, Role: p.Role}
}

// AccessClaims is the payload of bearer tokens issued by the auth provider.
// The subject is the profile id.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func scanJSON(value interface{}, dest interface{}, what string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported %s type %T", what, value)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return nil
}
