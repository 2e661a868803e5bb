package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
)

const reviewCompletion = `{
	"overall_assessment": {"strength_score": 8, "compliance_score": 7, "summary": "Well rounded"},
	"detailed_review": {"strengths": ["Specific steps"], "concerns": []},
	"recommendations": {"immediate_actions": ["Schedule review"], "additional_accommodations": []}
}`

func newReviewHarness(reply scriptedReply) (*ReviewService, *scriptedProvider) {
	provider := &scriptedProvider{replies: []scriptedReply{reply}}
	sessions := NewSessionService(newSessionStore(
		sampleSession("session_mike", "parent_mike", "parent_mike", 4),
		sampleSession("session_lisa", "parent_lisa", "parent_lisa", 4),
	), &commentStore{}, nil, nil, nil, nil, nil, SessionConfig{})
	return NewReviewService(sessions, newTestGeneration(provider, 1), nil, nil), provider
}

func TestAdvancedReviewAttachesLegalAnalysis(t *testing.T) {
	svc, provider := newReviewHarness(scriptedReply{text: "```json\n" + reviewCompletion + "\n```"})

	review, err := svc.AdvancedReview(context.Background(), parentMike(), dto.AdvancedReviewRequest{SessionID: "session_mike"})
	require.NoError(t, err)
	assert.Equal(t, "Well rounded", review.OverallAssessment.Summary)
	require.NotNil(t, review.LegalAnalysis)
	assert.Len(t, review.LegalAnalysis.Warnings, 1)
	assert.Equal(t, 0.3, provider.options[0].Temperature)
}

func TestAdvancedReviewGates(t *testing.T) {
	svc, provider := newReviewHarness(scriptedReply{text: reviewCompletion})
	ctx := context.Background()

	_, err := svc.AdvancedReview(ctx, parentSarah(), dto.AdvancedReviewRequest{SessionID: "session_mike"})
	assert.True(t, errors.Is(err, appErrors.ErrPlanUpgradeRequired))

	_, err = svc.AdvancedReview(ctx, parentMike(), dto.AdvancedReviewRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.AdvancedReview(ctx, parentMike(), dto.AdvancedReviewRequest{SessionID: "session_lisa"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.AdvancedReview(ctx, parentMike(), dto.AdvancedReviewRequest{SessionID: "missing"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.Equal(t, 0, provider.calls)
}

func TestAdvancedReviewUpstreamFailure(t *testing.T) {
	svc, _ := newReviewHarness(scriptedReply{err: errors.New("timeout")})
	_, err := svc.AdvancedReview(context.Background(), advocateMaria(), dto.AdvancedReviewRequest{SessionID: "session_mike"})
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}

func TestAdvocateRecommendations(t *testing.T) {
	profiles := newProfileStore(parentSarah(), parentMike(), parentLisa(), advocateMaria(), advocateJohn())
	inactive := &models.Profile{ID: "advocate_old", Role: models.RoleAdvocate, FullName: "Old", IsActive: false}
	profiles.profiles[inactive.ID] = inactive
	svc := NewAdvocateService(profiles, profiles, nil)
	ctx := context.Background()

	matches, err := svc.Recommendations(ctx, parentLisa(), "parent_lisa")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "advocate_john", matches[0].ID)
	assert.True(t, matches[0].IsPriority)

	matches, err = svc.Recommendations(ctx, advocateMaria(), "parent_mike")
	require.NoError(t, err)
	assert.Equal(t, "advocate_maria", matches[0].ID)
	assert.Equal(t, 100, matches[0].Score)

	_, err = svc.Recommendations(ctx, parentSarah(), "parent_sarah")
	assert.True(t, errors.Is(err, appErrors.ErrPlanUpgradeRequired))

	_, err = svc.Recommendations(ctx, parentMike(), "parent_lisa")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Recommendations(ctx, advocateJohn(), "parent_mike")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
