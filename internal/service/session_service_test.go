package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/internal/repository"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/events"
)

type sessionHarness struct {
	svc      *SessionService
	sessions *sessionStore
	comments *commentStore
	bus      *recordingBus
}

func newSessionHarness(t *testing.T, cache *CacheService) *sessionHarness {
	t.Helper()
	sessions := newSessionStore(
		sampleSession("session_sarah", "parent_sarah", "parent_sarah", 5),
		sampleSession("session_mike", "advocate_maria", "parent_mike", 3),
		sampleSession("session_lisa", "parent_lisa", "parent_lisa", 2),
	)
	comments := &commentStore{}
	bus := &recordingBus{}
	svc := NewSessionService(sessions, comments, cache, bus, NewMetricsService(), nil, nil, SessionConfig{ListLimit: 25})
	svc.now = fixedClock
	return &sessionHarness{svc: svc, sessions: sessions, comments: comments, bus: bus}
}

func TestAddCommentTiedAndGeneral(t *testing.T) {
	h := newSessionHarness(t, nil)
	ctx := context.Background()

	tied, err := h.svc.AddComment(ctx, parentSarah(), "session_sarah", dto.AddCommentRequest{Text: "Can we adjust this?", AccommodationIndex: intPtr(2)}, RequestMeta{})
	require.NoError(t, err)
	general, err := h.svc.AddComment(ctx, advocateMaria(), "session_sarah", dto.AddCommentRequest{Text: "Looks good overall"}, RequestMeta{})
	require.NoError(t, err)

	detail, err := h.svc.Detail(ctx, parentSarah(), "session_sarah")
	require.NoError(t, err)
	require.Len(t, detail.Comments, 2)

	assert.Equal(t, tied.ID, detail.Comments[0].ID)
	require.NotNil(t, detail.Comments[0].AccommodationIndex)
	assert.Equal(t, 2, *detail.Comments[0].AccommodationIndex)
	assert.Equal(t, "Sarah Johnson", detail.Comments[0].UserName)
	assert.Equal(t, "parent", detail.Comments[0].UserRole)

	assert.Equal(t, general.ID, detail.Comments[1].ID)
	assert.True(t, detail.Comments[1].IsGeneral())
	assert.Equal(t, "advocate", detail.Comments[1].UserRole)

	require.Len(t, h.bus.topics, 2)
	assert.Equal(t, events.TopicCommentAdded, h.bus.topics[0])
}

func TestAddCommentIndexBounds(t *testing.T) {
	h := newSessionHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.AddComment(ctx, parentSarah(), "session_sarah", dto.AddCommentRequest{Text: "first", AccommodationIndex: intPtr(0)}, RequestMeta{})
	assert.NoError(t, err)
	_, err = h.svc.AddComment(ctx, parentSarah(), "session_sarah", dto.AddCommentRequest{Text: "last", AccommodationIndex: intPtr(4)}, RequestMeta{})
	assert.NoError(t, err)

	_, err = h.svc.AddComment(ctx, parentSarah(), "session_sarah", dto.AddCommentRequest{Text: "past end", AccommodationIndex: intPtr(5)}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = h.svc.AddComment(ctx, parentSarah(), "session_sarah", dto.AddCommentRequest{Text: "negative", AccommodationIndex: intPtr(-1)}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Len(t, h.comments.comments, 2)
}

func TestAddCommentValidationAndAccess(t *testing.T) {
	h := newSessionHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.AddComment(ctx, parentSarah(), "session_sarah", dto.AddCommentRequest{}, RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, "text is required", appErrors.FromError(err).Message)

	_, err = h.svc.AddComment(ctx, parentSarah(), "missing", dto.AddCommentRequest{Text: "hi"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = h.svc.AddComment(ctx, parentMike(), "session_sarah", dto.AddCommentRequest{Text: "hi"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = h.svc.AddComment(ctx, advocateJohn(), "session_sarah", dto.AddCommentRequest{Text: "hi"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = h.svc.AddComment(ctx, legalReviewer(), "session_sarah", dto.AddCommentRequest{Text: "compliance note"}, RequestMeta{})
	assert.NoError(t, err)

	_, err = h.svc.AddComment(ctx, nil, "session_sarah", dto.AddCommentRequest{Text: "hi"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestConcurrentCommentsAreAllRecorded(t *testing.T) {
	h := newSessionHarness(t, nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.svc.AddComment(context.Background(), parentSarah(), "session_sarah", dto.AddCommentRequest{Text: "note"}, RequestMeta{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, h.comments.comments, 10)
}

func TestSetApprovalRejectsNonAdvocate(t *testing.T) {
	h := newSessionHarness(t, nil)
	for _, actor := range []*models.Profile{parentSarah(), legalReviewer()} {
		_, err := h.svc.SetApproval(context.Background(), actor, "session_sarah", dto.ApprovalRequest{Approved: boolPtr(true)}, RequestMeta{})
		assert.True(t, errors.Is(err, appErrors.ErrForbidden))

		_, err = h.svc.SetApproval(context.Background(), actor, "session_sarah", dto.ApprovalRequest{}, RequestMeta{})
		assert.True(t, errors.Is(err, appErrors.ErrForbidden), "role check precedes body validation, got %v", err)
	}
	stored, err := h.sessions.FindByID(context.Background(), "session_sarah")
	require.NoError(t, err)
	assert.False(t, stored.Approval.Approved)
	assert.Equal(t, models.SessionStatusDraft, stored.Status)
	assert.Empty(t, h.sessions.updates)
}

func TestSetApprovalRequiresAssignment(t *testing.T) {
	h := newSessionHarness(t, nil)
	_, err := h.svc.SetApproval(context.Background(), advocateJohn(), "session_sarah", dto.ApprovalRequest{Approved: boolPtr(true)}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = h.svc.SetApproval(context.Background(), advocateJohn(), "missing", dto.ApprovalRequest{Approved: boolPtr(true)}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSetApprovalValidation(t *testing.T) {
	h := newSessionHarness(t, nil)
	_, err := h.svc.SetApproval(context.Background(), advocateMaria(), "session_sarah", dto.ApprovalRequest{}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = h.svc.SetApproval(context.Background(), advocateMaria(), "session_sarah", dto.ApprovalRequest{Approved: boolPtr(true), Field: "status"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = h.svc.SetApproval(context.Background(), advocateMaria(), "session_sarah", dto.ApprovalRequest{Approved: boolPtr(true), Section: "goals"}, RequestMeta{})
	require.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Contains(t, err.Error(), "section must be one of")
	assert.Empty(t, h.sessions.updates)
}

func TestApprovalRequestTargetSection(t *testing.T) {
	assert.Equal(t, models.ApprovalFieldAccommodations, dto.ApprovalRequest{}.TargetSection())
	assert.Equal(t, models.ApprovalFieldAccommodations, dto.ApprovalRequest{Section: "accommodations"}.TargetSection())
	assert.Equal(t, models.ApprovalFieldAccommodations, dto.ApprovalRequest{Field: "accommodations"}.TargetSection())
}

func TestSetApprovalToggle(t *testing.T) {
	h := newSessionHarness(t, nil)
	ctx := context.Background()

	resp, err := h.svc.SetApproval(ctx, advocateMaria(), "session_mike", dto.ApprovalRequest{Approved: boolPtr(true)}, RequestMeta{})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.Approved)
	assert.Equal(t, models.ApprovalFieldAccommodations, resp.Section)
	assert.Equal(t, models.SessionStatusApproved, resp.Status)
	require.NotNil(t, resp.Approval.ApprovedBy)
	assert.Equal(t, "advocate_maria", *resp.Approval.ApprovedBy)
	require.NotNil(t, resp.Approval.ApprovedAt)
	assert.Equal(t, fixedNow, *resp.Approval.ApprovedAt)

	stored, err := h.sessions.FindByID(ctx, "session_mike")
	require.NoError(t, err)
	assert.True(t, stored.Approval.Approved)
	assert.Equal(t, fixedNow, stored.LastModified)

	later := fixedNow.Add(time.Minute)
	h.svc.now = func() time.Time { return later }
	resp, err = h.svc.SetApproval(ctx, advocateMaria(), "session_mike", dto.ApprovalRequest{Approved: boolPtr(false), Section: "accommodations"}, RequestMeta{})
	require.NoError(t, err)
	assert.False(t, resp.Approved)
	assert.Equal(t, models.SessionStatusReviewed, resp.Status)
	assert.Nil(t, resp.Approval.ApprovedBy)
	assert.Nil(t, resp.Approval.ApprovedAt)

	stored, err = h.sessions.FindByID(ctx, "session_mike")
	require.NoError(t, err)
	assert.False(t, stored.Approval.Approved)
	assert.Nil(t, stored.Approval.ApprovedBy)
	assert.Equal(t, later, stored.LastModified)

	require.Len(t, h.bus.events, 2)
	assert.Equal(t, events.TopicApprovalChanged, h.bus.topics[1])
	assert.Equal(t, true, h.bus.events[1].OldValues["approved"])
}

func TestListForUserScopes(t *testing.T) {
	h := newSessionHarness(t, nil)
	ctx := context.Background()

	sessions, err := h.svc.ListForUser(ctx, parentSarah(), "parent_sarah")
	require.NoError(t, err)
	assert.Equal(t, []string{"parent_sarah"}, h.sessions.lastScope.ParentIDs)
	assert.Equal(t, 25, h.sessions.lastScope.Limit)
	require.Len(t, sessions, 1)

	sessions, err = h.svc.ListForUser(ctx, advocateMaria(), "advocate_maria")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"parent_sarah", "parent_mike"}, h.sessions.lastScope.ParentIDs)
	assert.Len(t, sessions, 2)

	sessions, err = h.svc.ListForUser(ctx, legalReviewer(), "reviewer_ann")
	require.NoError(t, err)
	assert.True(t, h.sessions.lastScope.All)
	assert.Len(t, sessions, 3)

	_, err = h.svc.ListForUser(ctx, parentSarah(), "parent_mike")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestListForUserNeverReturnsNil(t *testing.T) {
	h := newSessionHarness(t, nil)
	advocate := advocateMaria()
	advocate.AssignedParentIDs = nil

	sessions, err := h.svc.ListForUser(context.Background(), advocate, advocate.ID)
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestDetailUsesCacheAndInvalidatesOnComment(t *testing.T) {
	cache := NewCacheService(repository.NewMemoryCacheRepository(time.Minute), NewMetricsService(), time.Minute, nil, true)
	h := newSessionHarness(t, cache)
	ctx := context.Background()

	first, err := h.svc.Detail(ctx, parentSarah(), "session_sarah")
	require.NoError(t, err)
	assert.Empty(t, first.Comments)

	var cached dto.SessionDetail
	assert.True(t, cache.Get(ctx, sessionDetailCacheKey("session_sarah"), &cached))

	_, err = h.svc.Detail(ctx, parentMike(), "session_sarah")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = h.svc.AddComment(ctx, parentSarah(), "session_sarah", dto.AddCommentRequest{Text: "new"}, RequestMeta{})
	require.NoError(t, err)

	second, err := h.svc.Detail(ctx, parentSarah(), "session_sarah")
	require.NoError(t, err)
	assert.Len(t, second.Comments, 1)
}

func TestLegalAnalysisGate(t *testing.T) {
	h := newSessionHarness(t, nil)
	ctx := context.Background()

	_, err := h.svc.LegalAnalysis(ctx, parentSarah(), "session_sarah")
	assert.True(t, errors.Is(err, appErrors.ErrPlanUpgradeRequired))

	analysis, err := h.svc.LegalAnalysis(ctx, advocateMaria(), "session_sarah")
	require.NoError(t, err)
	assert.Len(t, analysis.Warnings, 1)

	_, err = h.svc.LegalAnalysis(ctx, parentMike(), "session_lisa")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}
