package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

const autismProfileColumns = `id, student_id, parent_id, created_by, profile_type, student_name, input,
	generated_profile, insights, shared_with, share_message, shared_at, created_at, updated_at`

// AutismProfileRepository persists generated autism profiles.
type AutismProfileRepository struct {
	db *sqlx.DB
}

// NewAutismProfileRepository constructs the repository.
func NewAutismProfileRepository(db *sqlx.DB) *AutismProfileRepository {
	return &AutismProfileRepository{db: db}
}

// Create inserts a profile.
func (r *AutismProfileRepository) Create(ctx context.Context, profile *models.AutismProfile) error {
	query := `INSERT INTO autism_profiles (` + autismProfileColumns + `)
VALUES (:id, :student_id, :parent_id, :created_by, :profile_type, :student_name, :input,
	:generated_profile, :insights, :shared_with, :share_message, :shared_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("insert autism profile: %w", err)
	}
	return nil
}

// FindByID returns one profile. sql.ErrNoRows is returned unwrapped.
func (r *AutismProfileRepository) FindByID(ctx context.Context, id string) (*models.AutismProfile, error) {
	var profile models.AutismProfile
	query := `SELECT ` + autismProfileColumns + ` FROM autism_profiles WHERE id = $1`
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find autism profile: %w", err)
	}
	return &profile, nil
}

// List returns the profiles in scope, newest first.
func (r *AutismProfileRepository) List(ctx context.Context, scope models.AutismProfileScope) ([]models.AutismProfile, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if !scope.All {
		filters := []struct {
			column string
			value  string
		}{
			{"parent_id", scope.ParentID},
			{"shared_with", scope.SharedWith},
			{"created_by", scope.CreatedBy},
		}
		for _, f := range filters {
			if f.value == "" {
				continue
			}
			args = append(args, f.value)
			conditions = append(conditions, fmt.Sprintf("%s = $%d", f.column, len(args)))
		}
		if len(conditions) == 0 {
			return []models.AutismProfile{}, nil
		}
	}

	query := strings.Builder{}
	query.WriteString(`SELECT ` + autismProfileColumns + ` FROM autism_profiles`)
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " OR "))
	}
	query.WriteString(" ORDER BY created_at DESC")
	if scope.Limit > 0 {
		args = append(args, scope.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	profiles := []models.AutismProfile{}
	if err := r.db.SelectContext(ctx, &profiles, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list autism profiles: %w", err)
	}
	return profiles, nil
}

// Share marks a profile as shared with an advocate. sql.ErrNoRows is returned when it is missing.
func (r *AutismProfileRepository) Share(ctx context.Context, share models.AutismProfileShare) error {
	const query = `
UPDATE autism_profiles
SET shared_with = $2, share_message = $3, shared_at = $4, updated_at = $4
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, share.ProfileID, share.AdvocateID, share.Message, share.SharedAt)
	if err != nil {
		return fmt.Errorf("share autism profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("share autism profile rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
