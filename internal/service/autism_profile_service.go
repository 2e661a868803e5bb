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

type autismProfileRepository interface {
	Create(ctx context.Context, profile *models.AutismProfile) error
	FindByID(ctx context.Context, id string) (*models.AutismProfile, error)
	List(ctx context.Context, scope models.AutismProfileScope) ([]models.AutismProfile, error)
	Share(ctx context.Context, share models.AutismProfileShare) error
}

type profileNarrator interface {
	GenerateAutismProfile(ctx context.Context, in models.AutismProfileInput, profileType models.AutismProfileType) (string, error)
	GenerateProfileInsights(ctx context.Context, in models.AutismProfileInput, narrative string) (*models.ProfileInsights, error)
}

type studentLookup interface {
	Get(ctx context.Context, actor *models.Profile, id string) (*models.Student, error)
}

// AutismProfileConfig tunes profile listings.
type AutismProfileConfig struct {
	ListLimit int
}

// AutismProfileService generates, lists and shares autism profiles.
type AutismProfileService struct {
	repo      autismProfileRepository
	narrator  profileNarrator
	students  studentLookup
	bus       eventPublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AutismProfileConfig
	now       func() time.Time
}

// NewAutismProfileService constructs the service.
func NewAutismProfileService(
	repo autismProfileRepository,
	narrator profileNarrator,
	students studentLookup,
	bus eventPublisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg AutismProfileConfig,
) *AutismProfileService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 50
	}
	return &AutismProfileService{
		repo:      repo,
		narrator:  narrator,
		students:  students,
		bus:       bus,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// canViewProfile reports whether actor may read profile.
func canViewProfile(actor *models.Profile, profile *models.AutismProfile) bool {
	switch {
	case actor == nil:
		return false
	case actor.ID == profile.ParentID, actor.ID == profile.CreatedBy:
		return true
	case actor.Role == models.RoleLegalReviewer:
		return true
	default:
		return profile.SharedWith != nil && *profile.SharedWith == actor.ID
	}
}

// Generate writes a profile for one of the actor's students. Hero requests
// also carry the insights summary. Nothing is stored when generation fails.
func (s *AutismProfileService) Generate(ctx context.Context, actor *models.Profile, req dto.GenerateAutismProfileRequest, meta RequestMeta) (*dto.AutismProfileResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleLegalReviewer {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "legal reviewers cannot generate profiles")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	premium := HasAccess(actor.PlanType, actor.Role, models.PlanHero)
	if req.HasHeroDetails() && !premium {
		return nil, appErrors.Clone(appErrors.ErrPlanUpgradeRequired,
			"strengths, learning style, environment and documents require the Hero plan")
	}
	student, err := s.students.Get(ctx, actor, req.StudentID)
	if err != nil {
		return nil, err
	}
	in := req.ToModel(student)

	profileType := models.AutismProfileStandard
	if premium {
		profileType = models.AutismProfileHero
	}

	narrative, err := s.narrator.GenerateAutismProfile(ctx, in, profileType)
	if err != nil {
		s.logger.Warn("autism profile generation failed", zap.String("student_id", student.ID), zap.Error(err))
		return nil, err
	}
	var insights *models.ProfileInsights
	if premium {
		insights, err = s.narrator.GenerateProfileInsights(ctx, in, narrative)
		if err != nil {
			s.logger.Warn("profile insights generation failed", zap.String("student_id", student.ID), zap.Error(err))
			return nil, err
		}
	}

	now := s.now().UTC()
	profile := &models.AutismProfile{
		ID:               uuid.NewString(),
		StudentID:        student.ID,
		ParentID:         student.ParentID,
		CreatedBy:        actor.ID,
		ProfileType:      profileType,
		StudentName:      student.Name,
		Input:            in,
		GeneratedProfile: narrative,
		Insights:         insights,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}

	s.metrics.RecordAutismProfileCreated(string(profileType))
	s.logger.Info("autism profile generated",
		zap.String("profile_id", profile.ID),
		zap.String("student_id", student.ID),
		zap.String("type", string(profileType)),
	)
	publish(ctx, s.bus, s.logger, events.TopicAutismProfileGenerated, meta.apply(events.Event{
		ActorID:    actor.ID,
		Action:     models.AuditActionAutismProfileGenerated,
		Resource:   models.AuditResourceAutismProfile,
		ResourceID: profile.ID,
		NewValues:  map[string]interface{}{"studentId": student.ID, "profileType": profileType},
	}))

	resp := dto.NewAutismProfileResponse(profile)
	return &resp, nil
}

// List returns the profiles visible to actor, newest first.
func (s *AutismProfileService) List(ctx context.Context, actor *models.Profile) ([]dto.AutismProfileResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	scope := models.AutismProfileScope{Limit: s.cfg.ListLimit}
	switch actor.Role {
	case models.RoleLegalReviewer:
		scope.All = true
	case models.RoleAdvocate:
		scope.SharedWith = actor.ID
		scope.CreatedBy = actor.ID
	default:
		scope.ParentID = actor.ID
	}

	profiles, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	out := make([]dto.AutismProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, dto.NewAutismProfileResponse(&profiles[i]))
	}
	return out, nil
}

// Get returns a single profile.
func (s *AutismProfileService) Get(ctx context.Context, actor *models.Profile, id string) (*dto.AutismProfileResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewProfile(actor, profile) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this profile")
	}
	resp := dto.NewAutismProfileResponse(profile)
	return &resp, nil
}

// Share hands a profile to the parent's assigned advocate. Hero plan only.
func (s *AutismProfileService) Share(ctx context.Context, actor *models.Profile, id string, req dto.ShareAutismProfileRequest, meta RequestMeta) (*dto.ShareAutismProfileResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := RequireHero(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != profile.ParentID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the parent can share this profile")
	}
	if actor.AssignedAdvocateID == nil || *actor.AssignedAdvocateID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no advocate is assigned to this account")
	}

	share := models.AutismProfileShare{
		ProfileID:  profile.ID,
		AdvocateID: *actor.AssignedAdvocateID,
		Message:    req.Message,
		SharedAt:   s.now().UTC(),
	}
	if err := s.repo.Share(ctx, share); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to share profile")
	}

	oldValues := map[string]interface{}{"sharedWith": nil}
	if profile.SharedWith != nil {
		oldValues["sharedWith"] = *profile.SharedWith
	}
	publish(ctx, s.bus, s.logger, events.TopicAutismProfileShared, meta.apply(events.Event{
		ActorID:    actor.ID,
		Action:     models.AuditActionAutismProfileShared,
		Resource:   models.AuditResourceAutismProfile,
		ResourceID: profile.ID,
		OldValues:  oldValues,
		NewValues:  map[string]interface{}{"sharedWith": share.AdvocateID},
	}))

	return &dto.ShareAutismProfileResponse{
		Success:    true,
		ProfileID:  profile.ID,
		SharedWith: share.AdvocateID,
		SharedAt:   share.SharedAt,
	}, nil
}

func (s *AutismProfileService) find(ctx context.Context, id string) (*models.AutismProfile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}
