package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

const profileColumns = `
	u.id, u.email, u.full_name, u.role, u.plan_type, u.assigned_advocate_id, u.children,
	ARRAY(SELECT p.id FROM user_profiles p WHERE p.assigned_advocate_id = u.id ORDER BY p.id) AS assigned_parent_ids,
	u.specialization, u.credentials, u.rating, u.experience, u.availability, u.is_active, u.created_at, u.updated_at`

// ProfileRepository reads identity profiles. Advocate assignments are derived
// from parents' assigned_advocate_id.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns a profile by identifier. sql.ErrNoRows is returned unwrapped.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM user_profiles u WHERE u.id = $1 LIMIT 1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return &profile, nil
}

// ListAdvocates returns active advocates ordered by name.
func (r *ProfileRepository) ListAdvocates(ctx context.Context) ([]models.Profile, error) {
	query := `SELECT` + profileColumns + ` FROM user_profiles u WHERE u.role = $1 AND u.is_active = TRUE ORDER BY u.full_name ASC`
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, models.RoleAdvocate); err != nil {
		return nil, fmt.Errorf("list advocates: %w", err)
	}
	return profiles, nil
}

// Upsert inserts or refreshes a profile. Used by the seed command.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	const query = `
INSERT INTO user_profiles (
	id, email, full_name, role, plan_type, assigned_advocate_id, children,
	specialization, credentials, rating, experience, availability, is_active, created_at, updated_at
) VALUES (
	:id, :email, :full_name, :role, :plan_type, :assigned_advocate_id, :children,
	:specialization, :credentials, :rating, :experience, :availability, :is_active, :created_at, :updated_at
)
ON CONFLICT (id) DO UPDATE SET
	email = EXCLUDED.email,
	full_name = EXCLUDED.full_name,
	role = EXCLUDED.role,
	plan_type = EXCLUDED.plan_type,
	assigned_advocate_id = EXCLUDED.assigned_advocate_id,
	children = EXCLUDED.children,
	specialization = EXCLUDED.specialization,
	credentials = EXCLUDED.credentials,
	rating = EXCLUDED.rating,
	experience = EXCLUDED.experience,
	availability = EXCLUDED.availability,
	is_active = EXCLUDED.is_active,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.ID, err)
	}
	return nil
}
