package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListByParent(ctx context.Context, parentID string) ([]models.Student, error)
}

const dateLayout = "2006-01-02"

// StudentService manages saved child profiles.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// ownerFor resolves which parent a student operation targets.
func ownerFor(actor *models.Profile, parentID string) (string, error) {
	switch actor.Role {
	case models.RoleParent:
		if parentID != "" && parentID != actor.ID {
			return "", appErrors.Clone(appErrors.ErrForbidden, "cannot manage another parent's students")
		}
		return actor.ID, nil
	case models.RoleAdvocate:
		if parentID == "" {
			return "", appErrors.Clone(appErrors.ErrValidation, "parentId is required")
		}
		if !actor.AdvocatesFor(parentID) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "advocate is not assigned to this parent")
		}
		return parentID, nil
	case models.RoleLegalReviewer:
		if parentID == "" {
			return "", appErrors.Clone(appErrors.ErrValidation, "parentId is required")
		}
		return parentID, nil
	default:
		return "", appErrors.ErrForbidden
	}
}

// List returns the students of the actor, or of parentID for advocates and reviewers.
func (s *StudentService) List(ctx context.Context, actor *models.Profile, parentID string) ([]models.Student, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	owner, err := ownerFor(actor, parentID)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.ListByParent(ctx, owner)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns a student visible to the actor.
func (s *StudentService) Get(ctx context.Context, actor *models.Profile, id string) (*models.Student, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if actor.ID != student.ParentID && actor.Role != models.RoleLegalReviewer && !actor.AdvocatesFor(student.ParentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this student")
	}
	return student, nil
}

// Create saves a new student for the actor or, for advocates, an assigned parent.
func (s *StudentService) Create(ctx context.Context, actor *models.Profile, req dto.CreateStudentRequest) (*models.Student, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if actor.Role == models.RoleLegalReviewer {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "legal reviewers cannot create students")
	}
	owner, err := ownerFor(actor, req.ParentID)
	if err != nil {
		return nil, err
	}

	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dateOfBirth must be YYYY-MM-DD")
	}
	iepDate, err := parseOptionalDate(req.CurrentIEPDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "currentIepDate must be YYYY-MM-DD")
	}

	now := s.now().UTC()
	student := &models.Student{
		ID:                   uuid.NewString(),
		ParentID:             owner,
		Name:                 req.Name,
		GradeLevel:           models.GradeLevel(req.GradeLevel),
		DiagnosisAreas:       stringArray(req.DiagnosisAreas),
		SensoryPreferences:   stringArray(req.SensoryPreferences),
		BehavioralChallenges: stringArray(req.BehavioralChallenges),
		CommunicationMethod:  models.CommunicationMethod(req.CommunicationMethod),
		AdditionalNotes:      req.AdditionalNotes,
		DateOfBirth:          dob,
		SchoolName:           req.SchoolName,
		CurrentIEPDate:       iepDate,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("parent_id", owner))
	return student, nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// stringArray avoids writing NULL for an empty tag set.
func stringArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
