package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

// CommentRepository stores session comments. Comments are insert-only.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs the repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create appends a comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	const query = `
INSERT INTO session_comments (id, session_id, user_id, text, accommodation_index, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.SessionID,
		comment.UserID,
		comment.Text,
		comment.AccommodationIndex,
		comment.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListBySession returns a session's comments oldest first with author details.
func (r *CommentRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Comment, error) {
	const query = `
SELECT
	c.id, c.session_id, c.user_id,
	COALESCE(u.full_name, 'Unknown') AS user_name,
	COALESCE(u.role, 'unknown') AS user_role,
	c.text, c.accommodation_index, c.created_at
FROM session_comments c
LEFT JOIN user_profiles u ON u.id = c.user_id
WHERE c.session_id = $1
ORDER BY c.created_at ASC, c.id ASC`
	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, sessionID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
