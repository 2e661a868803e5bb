package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

const studentColumns = `id, parent_id, name, grade_level, diagnosis_areas, sensory_preferences, behavioral_challenges,
	communication_method, additional_notes, date_of_birth, school_name, current_iep_date, created_at, updated_at`

// StudentRepository persists saved child profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `
INSERT INTO students (` + studentColumns + `)
VALUES (:id, :parent_id, :name, :grade_level, :diagnosis_areas, :sensory_preferences, :behavioral_challenges,
	:communication_method, :additional_notes, :date_of_birth, :school_name, :current_iep_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// FindByID returns a student. sql.ErrNoRows is returned unwrapped.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// ListByParent returns a parent's students ordered by name.
func (r *StudentRepository) ListByParent(ctx context.Context, parentID string) ([]models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE parent_id = $1 ORDER BY name ASC`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, parentID); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}
