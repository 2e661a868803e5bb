package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
)

type sessionLoader interface {
	Session(ctx context.Context, actor *models.Profile, id string) (*models.Session, error)
}

type reviewGenerator interface {
	GenerateReview(ctx context.Context, session *models.Session, analysis models.LegalAnalysis) (*models.AdvancedReview, error)
}

// ReviewService produces AI compliance reviews for hero users.
type ReviewService struct {
	sessions  sessionLoader
	generator reviewGenerator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs the service.
func NewReviewService(sessions sessionLoader, generator reviewGenerator, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{sessions: sessions, generator: generator, validator: validate, logger: logger}
}

// AdvancedReview reviews a stored session. The result is not persisted.
func (s *ReviewService) AdvancedReview(ctx context.Context, actor *models.Profile, req dto.AdvancedReviewRequest) (*models.AdvancedReview, error) {
	if err := RequireHero(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	session, err := s.sessions.Session(ctx, actor, req.SessionID)
	if err != nil {
		return nil, err
	}

	analysis := AssessRisks(session.ChildProfile, session.Accommodations)
	review, err := s.generator.GenerateReview(ctx, session, analysis)
	if err != nil {
		return nil, err
	}
	review.LegalAnalysis = &analysis
	s.logger.Info("advanced review generated",
		zap.String("session_id", session.ID),
		zap.String("actor_id", actor.ID),
		zap.Int("risks", len(analysis.Risks)),
	)
	return review, nil
}
