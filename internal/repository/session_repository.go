package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

const sessionSelect = `
SELECT
	s.id, s.child_profile, s.plan_type, s.accommodations,
	s.created_by, COALESCE(c.full_name, 'Unknown') AS created_by_name,
	s.for_parent, COALESCE(p.full_name, 'Unknown') AS for_parent_name,
	s.status, s.approved, s.approved_by, s.approved_at, s.legal_analysis,
	s.created_at, s.last_modified
FROM accommodation_sessions s
LEFT JOIN user_profiles c ON c.id = s.created_by
LEFT JOIN user_profiles p ON p.id = s.for_parent`

type sessionRow struct {
	ID             string                `db:"id"`
	ChildProfile   models.ChildProfile   `db:"child_profile"`
	PlanType       models.PlanTier       `db:"plan_type"`
	Accommodations models.Accommodations `db:"accommodations"`
	CreatedBy      string                `db:"created_by"`
	CreatedByName  string                `db:"created_by_name"`
	ForParent      string                `db:"for_parent"`
	ForParentName  string                `db:"for_parent_name"`
	Status         models.SessionStatus  `db:"status"`
	Approved       bool                  `db:"approved"`
	ApprovedBy     *string               `db:"approved_by"`
	ApprovedAt     *time.Time            `db:"approved_at"`
	LegalAnalysis  *models.LegalAnalysis `db:"legal_analysis"`
	CreatedAt      time.Time             `db:"created_at"`
	LastModified   time.Time             `db:"last_modified"`
}

func (r sessionRow) toModel() models.Session {
	return models.Session{
		ID:             r.ID,
		ChildProfile:   r.ChildProfile,
		PlanType:       r.PlanType,
		Accommodations: r.Accommodations,
		CreatedBy:      r.CreatedBy,
		CreatedByName:  r.CreatedByName,
		ForParent:      r.ForParent,
		ForParentName:  r.ForParentName,
		Status:         r.Status,
		Approval: models.Approval{
			Approved:   r.Approved,
			ApprovedBy: r.ApprovedBy,
			ApprovedAt: r.ApprovedAt,
		},
		LegalAnalysis: r.LegalAnalysis,
		CreatedAt:     r.CreatedAt,
		LastModified:  r.LastModified,
	}
}

// SessionRepository persists accommodation sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	const query = `
INSERT INTO accommodation_sessions (
	id, child_profile, plan_type, accommodations, created_by, for_parent,
	status, approved, approved_by, approved_at, legal_analysis, created_at, last_modified
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.ChildProfile,
		session.PlanType,
		session.Accommodations,
		session.CreatedBy,
		session.ForParent,
		session.Status,
		session.Approval.Approved,
		session.Approval.ApprovedBy,
		session.Approval.ApprovedAt,
		session.LegalAnalysis,
		session.CreatedAt,
		session.LastModified,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByID returns a session with creator and parent names. sql.ErrNoRows is returned unwrapped.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var row sessionRow
	if err := r.db.GetContext(ctx, &row, sessionSelect+"\nWHERE s.id = $1\nLIMIT 1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	session := row.toModel()
	return &session, nil
}

// List returns sessions visible in scope, newest first.
func (r *SessionRepository) List(ctx context.Context, scope models.SessionScope) ([]models.Session, error) {
	if !scope.All && len(scope.ParentIDs) == 0 {
		return []models.Session{}, nil
	}

	query := strings.Builder{}
	query.WriteString(sessionSelect)
	args := []interface{}{}
	if !scope.All {
		args = append(args, pq.Array(scope.ParentIDs))
		fmt.Fprintf(&query, "\nWHERE s.for_parent = ANY($%d)", len(args))
	}
	query.WriteString("\nORDER BY s.created_at DESC")
	if scope.Limit > 0 {
		args = append(args, scope.Limit)
		fmt.Fprintf(&query, "\nLIMIT $%d", len(args))
	}

	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions := make([]models.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toModel())
	}
	return sessions, nil
}

// UpdateApproval writes the approval state in a single statement so concurrent
// toggles resolve as last writer wins. sql.ErrNoRows is returned when the session is missing.
func (r *SessionRepository) UpdateApproval(ctx context.Context, update models.ApprovalUpdate) error {
	const query = `
UPDATE accommodation_sessions
SET approved = $2, status = $3, approved_by = $4, approved_at = $5, last_modified = $6
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		update.SessionID,
		update.Approved,
		update.Status,
		update.ApprovedBy,
		update.ApprovedAt,
		update.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update session approval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session approval rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
