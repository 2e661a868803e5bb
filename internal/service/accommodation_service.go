package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/events"
)

type sessionWriter interface {
	Create(ctx context.Context, session *models.Session) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type profileLookup interface {
	Profile(ctx context.Context, id string) (*models.Profile, error)
}

type accommodationGenerator interface {
	GenerateAccommodations(ctx context.Context, child models.ChildProfile, tier models.PlanTier) (models.Accommodations, error)
}

// AccommodationService runs the generate-analyse-persist workflow.
type AccommodationService struct {
	sessions  sessionWriter
	students  studentReader
	profiles  profileLookup
	generator accommodationGenerator
	bus       eventPublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAccommodationService constructs the service.
func NewAccommodationService(
	sessions sessionWriter,
	students studentReader,
	profiles profileLookup,
	generator accommodationGenerator,
	bus eventPublisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AccommodationService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccommodationService{
		sessions:  sessions,
		students:  students,
		profiles:  profiles,
		generator: generator,
		bus:       bus,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// generationTarget is who a session is for and whose plan governs it.
type generationTarget struct {
	parentID string
	tier     models.PlanTier
	role     models.Role
}

// Generate produces, analyses and stores a new accommodation session.
// Nothing is written unless the completion parsed and validated.
func (s *AccommodationService) Generate(ctx context.Context, actor *models.Profile, req dto.GenerateAccommodationsRequest, meta RequestMeta) (*dto.GenerateAccommodationsResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	target, err := s.resolveTarget(ctx, actor, req.SelectedParentID)
	if err != nil {
		return nil, err
	}

	child, err := s.resolveChild(ctx, target.parentID, req)
	if err != nil {
		return nil, err
	}

	accommodations, err := s.generator.GenerateAccommodations(ctx, child, target.tier)
	if err != nil {
		return nil, err
	}

	var analysis *models.LegalAnalysis
	if HasAccess(target.tier, target.role, models.PlanHero) {
		result := AssessRisks(child, accommodations)
		analysis = &result
	}

	tier := SessionTier(target.tier)
	now := s.now().UTC()
	session := &models.Session{
		ID:             uuid.NewString(),
		ChildProfile:   child,
		PlanType:       tier,
		Accommodations: accommodations,
		CreatedBy:      actor.ID,
		ForParent:      target.parentID,
		Status:         models.SessionStatusDraft,
		LegalAnalysis:  analysis,
		CreatedAt:      now,
		LastModified:   now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save session")
	}

	s.metrics.RecordSessionCreated(string(tier))
	s.logger.Info("accommodation session created",
		zap.String("session_id", session.ID),
		zap.String("created_by", actor.ID),
		zap.String("for_parent", target.parentID),
		zap.String("plan", string(tier)),
		zap.Int("accommodations", len(accommodations)),
	)
	publish(ctx, s.bus, s.logger, events.TopicSessionGenerated, meta.apply(events.Event{
		ActorID:    actor.ID,
		Action:     models.AuditActionSessionGenerated,
		Resource:   models.AuditResourceSession,
		ResourceID: session.ID,
		NewValues: map[string]interface{}{
			"forParent":      target.parentID,
			"planType":       tier,
			"accommodations": len(accommodations),
		},
	}))

	return &dto.GenerateAccommodationsResponse{
		SessionID:      session.ID,
		Accommodations: accommodations,
		PlanType:       tier,
		ForParent:      target.parentID,
		LegalAnalysis:  analysis,
	}, nil
}

// resolveTarget applies the effective tier rule: an advocate generates with
// the selected parent's plan, everyone else with their own.
func (s *AccommodationService) resolveTarget(ctx context.Context, actor *models.Profile, selectedParentID string) (generationTarget, error) {
	switch actor.Role {
	case models.RoleParent:
		return generationTarget{parentID: actor.ID, tier: actor.PlanType, role: actor.Role}, nil
	case models.RoleAdvocate:
		if selectedParentID == "" {
			return generationTarget{}, appErrors.Clone(appErrors.ErrValidation, "selectedParentId is required")
		}
		parent, err := s.loadParent(ctx, selectedParentID)
		if err != nil {
			return generationTarget{}, err
		}
		if !actor.AdvocatesFor(parent.ID) {
			return generationTarget{}, appErrors.Clone(appErrors.ErrForbidden, "advocate is not assigned to this parent")
		}
		return generationTarget{parentID: parent.ID, tier: parent.PlanType, role: parent.Role}, nil
	case models.RoleLegalReviewer:
		target := generationTarget{parentID: actor.ID, tier: actor.PlanType, role: actor.Role}
		if selectedParentID != "" {
			parent, err := s.loadParent(ctx, selectedParentID)
			if err != nil {
				return generationTarget{}, err
			}
			target.parentID = parent.ID
		}
		return target, nil
	default:
		return generationTarget{}, appErrors.Clone(appErrors.ErrForbidden, "role cannot generate accommodations")
	}
}

func (s *AccommodationService) loadParent(ctx context.Context, id string) (*models.Profile, error) {
	parent, err := s.profiles.Profile(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, err
	}
	if parent.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
	}
	return parent, nil
}

func (s *AccommodationService) resolveChild(ctx context.Context, parentID string, req dto.GenerateAccommodationsRequest) (models.ChildProfile, error) {
	input := req.ChildProfileInput
	if req.StudentID != "" {
		student, err := s.students.FindByID(ctx, req.StudentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ChildProfile{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return models.ChildProfile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if student.ParentID != parentID {
			return models.ChildProfile{}, appErrors.Clone(appErrors.ErrForbidden, "student does not belong to this parent")
		}
		input = studentInput(student)
	}
	if err := s.validator.Struct(input); err != nil {
		return models.ChildProfile{}, validationError(err)
	}
	return input.ToModel(), nil
}

func studentInput(student *models.Student) dto.ChildProfileInput {
	child := student.ChildProfile()
	return dto.ChildProfileInput{
		ChildName:            child.Name,
		GradeLevel:           string(child.GradeLevel),
		DiagnosisAreas:       child.DiagnosisAreas,
		SensoryPreferences:   child.SensoryPreferences,
		BehavioralChallenges: child.BehavioralChallenges,
		CommunicationMethod:  string(child.CommunicationMethod),
		AdditionalInfo:       child.AdditionalNotes,
	}
}
