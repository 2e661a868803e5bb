package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
)

type advocateLister interface {
	ListAdvocates(ctx context.Context) ([]models.Profile, error)
}

// AdvocateService recommends advocates to parents.
type AdvocateService struct {
	profiles  profileLookup
	advocates advocateLister
	logger    *zap.Logger
}

// NewAdvocateService constructs the service.
func NewAdvocateService(profiles profileLookup, advocates advocateLister, logger *zap.Logger) *AdvocateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvocateService{profiles: profiles, advocates: advocates, logger: logger}
}

// Recommendations ranks active advocates for parentID.
func (s *AdvocateService) Recommendations(ctx context.Context, actor *models.Profile, parentID string) ([]models.AdvocateMatch, error) {
	if err := RequireHero(actor); err != nil {
		return nil, err
	}
	switch {
	case actor.ID == parentID, actor.Role == models.RoleLegalReviewer, actor.AdvocatesFor(parentID):
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view recommendations for another parent")
	}

	parent, err := s.profiles.Profile(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
	}

	advocates, err := s.advocates.ListAdvocates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load advocates")
	}
	return RankAdvocates(parent, advocates), nil
}
