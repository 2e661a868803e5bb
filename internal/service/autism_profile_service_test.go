package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/events"
)

// autismProfileStore is an in-memory profile table.
type autismProfileStore struct {
	mu        sync.Mutex
	profiles  map[string]*models.AutismProfile
	lastScope models.AutismProfileScope
}

func newAutismProfileStore(profiles ...*models.AutismProfile) *autismProfileStore {
	s := &autismProfileStore{profiles: map[string]*models.AutismProfile{}}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *autismProfileStore) Create(_ context.Context, profile *models.AutismProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.profiles[profile.ID] = &cp
	return nil
}

func (s *autismProfileStore) FindByID(_ context.Context, id string) (*models.AutismProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (s *autismProfileStore) List(_ context.Context, scope models.AutismProfileScope) ([]models.AutismProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScope = scope
	out := []models.AutismProfile{}
	for _, p := range s.profiles {
		shared := p.SharedWith != nil && *p.SharedWith == scope.SharedWith
		if scope.All || (scope.ParentID != "" && p.ParentID == scope.ParentID) ||
			(scope.SharedWith != "" && shared) || (scope.CreatedBy != "" && p.CreatedBy == scope.CreatedBy) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *autismProfileStore) Share(_ context.Context, share models.AutismProfileShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[share.ProfileID]
	if !ok {
		return sql.ErrNoRows
	}
	advocate, message, at := share.AdvocateID, share.Message, share.SharedAt
	p.SharedWith, p.ShareMessage, p.SharedAt = &advocate, &message, &at
	return nil
}

func (s *autismProfileStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}

const narrativeCompletion = `{"profile": "Emma is a curious third grader.\n\nShe does best with warning before transitions."}`

type autismFixture struct {
	svc      *AutismProfileService
	store    *autismProfileStore
	provider *scriptedProvider
	bus      *recordingBus
}

func newAutismFixture(replies []scriptedReply, profiles ...*models.AutismProfile) autismFixture {
	students := NewStudentService(&mockStudentRepo{students: map[string]models.Student{
		"student_emma":  {ID: "student_emma", ParentID: "parent_sarah", Name: "Emma", GradeLevel: models.GradeThird},
		"student_david": {ID: "student_david", ParentID: "parent_mike", Name: "David", GradeLevel: models.GradeFifth},
	}}, nil, nil)
	provider := &scriptedProvider{replies: replies}
	store := newAutismProfileStore(profiles...)
	bus := &recordingBus{}
	svc := NewAutismProfileService(store, newTestGeneration(provider, 1), students, bus, NewMetricsService(), nil, nil, AutismProfileConfig{ListLimit: 10})
	svc.now = fixedClock
	return autismFixture{svc: svc, store: store, provider: provider, bus: bus}
}

func storedProfile(id, parentID string, sharedWith *string) *models.AutismProfile {
	return &models.AutismProfile{
		ID: id, StudentID: "student_" + id, ParentID: parentID, CreatedBy: parentID,
		ProfileType: models.AutismProfileStandard, StudentName: "Emma",
		GeneratedProfile: "Emma likes trains.", SharedWith: sharedWith,
		CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
}

func TestAutismProfileGenerateStandard(t *testing.T) {
	f := newAutismFixture([]scriptedReply{{text: narrativeCompletion}})

	resp, err := f.svc.Generate(context.Background(), parentSarah(), dto.GenerateAutismProfileRequest{
		StudentID:          "student_emma",
		SensoryPreferences: dto.SensoryPreferencesInput{Selected: []string{"auditory"}},
		Goals:              "Calmer mornings",
	}, RequestMeta{IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, models.AutismProfileStandard, resp.ProfileType)
	assert.Equal(t, "Emma", resp.StudentName)
	assert.Contains(t, resp.GeneratedProfile, "curious third grader")
	assert.Nil(t, resp.ProfileInsights)
	assert.Nil(t, resp.HelpfulSupports)
	assert.Equal(t, fixedNow, resp.CreatedAt)
	assert.Equal(t, 1, f.provider.calls)
	assert.Equal(t, 2500, f.provider.options[0].MaxTokens)

	stored, err := f.store.FindByID(context.Background(), resp.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "parent_sarah", stored.ParentID)
	assert.Equal(t, []string{"auditory"}, stored.Input.Sensory.Selected)
	assert.Equal(t, models.GradeThird, stored.Input.GradeLevel)

	require.Len(t, f.bus.topics, 1)
	assert.Equal(t, events.TopicAutismProfileGenerated, f.bus.topics[0])
	assert.Equal(t, models.AuditActionAutismProfileGenerated, f.bus.events[0].Action)
	assert.Equal(t, "10.0.0.1", f.bus.events[0].IPAddress)
}

func TestAutismProfileGenerateHero(t *testing.T) {
	f := newAutismFixture([]scriptedReply{{text: narrativeCompletion}, {text: insightsCompletion}})

	resp, err := f.svc.Generate(context.Background(), parentMike(), dto.GenerateAutismProfileRequest{
		StudentID:           "student_david",
		IndividualStrengths: "Remembers every train timetable",
		SupplementalDocuments: []dto.SupplementalDocumentInput{
			{Name: "ot-eval.pdf", Content: "Fine motor delays noted."},
		},
	}, RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, models.AutismProfileHero, resp.ProfileType)
	require.NotNil(t, resp.ProfileInsights)
	assert.Len(t, resp.ProfileInsights.TopNeeds, 3)
	assert.Len(t, resp.ClassroomTips, 4)
	assert.Equal(t, 2, f.provider.calls)
	assert.Equal(t, 3500, f.provider.options[0].MaxTokens)

	stored, err := f.store.FindByID(context.Background(), resp.ProfileID)
	require.NoError(t, err)
	require.Len(t, stored.Input.SupplementalDocuments, 1)
	require.NotNil(t, stored.Insights)
}

func TestAutismProfileGenerateAdvocateIsPremium(t *testing.T) {
	f := newAutismFixture([]scriptedReply{{text: narrativeCompletion}, {text: insightsCompletion}})

	resp, err := f.svc.Generate(context.Background(), advocateMaria(), dto.GenerateAutismProfileRequest{
		StudentID: "student_emma", LearningStyle: "Visual",
	}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.AutismProfileHero, resp.ProfileType)
	assert.Equal(t, "advocate_maria", resp.CreatedBy)

	stored, err := f.store.FindByID(context.Background(), resp.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "parent_sarah", stored.ParentID)
}

func TestAutismProfileGenerateHeroFieldsRequireUpgrade(t *testing.T) {
	f := newAutismFixture([]scriptedReply{{text: narrativeCompletion}})

	_, err := f.svc.Generate(context.Background(), parentSarah(), dto.GenerateAutismProfileRequest{
		StudentID:                "student_emma",
		EnvironmentalPreferences: "Natural light",
	}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPlanUpgradeRequired))
	assert.Equal(t, 0, f.provider.calls)
	assert.Equal(t, 0, f.store.count())
}

func TestAutismProfileGenerateErrors(t *testing.T) {
	f := newAutismFixture([]scriptedReply{{text: narrativeCompletion}})
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, nil, dto.GenerateAutismProfileRequest{StudentID: "student_emma"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = f.svc.Generate(ctx, legalReviewer(), dto.GenerateAutismProfileRequest{StudentID: "student_emma"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Generate(ctx, parentSarah(), dto.GenerateAutismProfileRequest{}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.Generate(ctx, parentSarah(), dto.GenerateAutismProfileRequest{
		StudentID:          "student_emma",
		SensoryPreferences: dto.SensoryPreferencesInput{Selected: []string{"smell", "sixth sense"}},
	}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = f.svc.Generate(ctx, parentSarah(), dto.GenerateAutismProfileRequest{StudentID: "missing"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.Generate(ctx, parentLisa(), dto.GenerateAutismProfileRequest{StudentID: "student_emma"}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	assert.Equal(t, 0, f.provider.calls)
	assert.Empty(t, f.bus.topics)
}

func TestAutismProfileGenerateUpstreamFailureStoresNothing(t *testing.T) {
	f := newAutismFixture([]scriptedReply{{text: narrativeCompletion}, {text: `{"topNeeds": []}`}})

	_, err := f.svc.Generate(context.Background(), parentMike(), dto.GenerateAutismProfileRequest{StudentID: "student_david"}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidUpstreamResponse))
	assert.Equal(t, 0, f.store.count())
	assert.Empty(t, f.bus.topics)
}

func TestAutismProfileListScopes(t *testing.T) {
	f := newAutismFixture(nil,
		storedProfile("p1", "parent_sarah", nil),
		storedProfile("p2", "parent_mike", strPtr("advocate_maria")),
		storedProfile("p3", "parent_lisa", nil),
	)
	ctx := context.Background()

	list, err := f.svc.List(ctx, parentSarah())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p1", list[0].ProfileID)
	assert.Equal(t, models.AutismProfileScope{ParentID: "parent_sarah", Limit: 10}, f.store.lastScope)

	list, err = f.svc.List(ctx, advocateMaria())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "p2", list[0].ProfileID)

	list, err = f.svc.List(ctx, legalReviewer())
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = f.svc.List(ctx, nil)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestAutismProfileGetVisibility(t *testing.T) {
	f := newAutismFixture(nil,
		storedProfile("p1", "parent_sarah", nil),
		storedProfile("p2", "parent_mike", strPtr("advocate_maria")),
	)
	ctx := context.Background()

	resp, err := f.svc.Get(ctx, parentSarah(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Emma likes trains.", resp.GeneratedProfile)

	_, err = f.svc.Get(ctx, advocateMaria(), "p2")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, advocateMaria(), "p1")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Get(ctx, parentMike(), "p1")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Get(ctx, legalReviewer(), "p1")
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, parentSarah(), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAutismProfileShare(t *testing.T) {
	f := newAutismFixture(nil, storedProfile("p2", "parent_mike", nil))

	resp, err := f.svc.Share(context.Background(), parentMike(), "p2",
		dto.ShareAutismProfileRequest{Message: "Please look before Friday"}, RequestMeta{UserAgent: "test"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "advocate_maria", resp.SharedWith)
	assert.Equal(t, fixedNow, resp.SharedAt)

	stored, err := f.store.FindByID(context.Background(), "p2")
	require.NoError(t, err)
	require.NotNil(t, stored.SharedWith)
	assert.Equal(t, "advocate_maria", *stored.SharedWith)
	assert.Equal(t, "Please look before Friday", *stored.ShareMessage)

	require.Len(t, f.bus.events, 1)
	evt := f.bus.events[0]
	assert.Equal(t, events.TopicAutismProfileShared, f.bus.topics[0])
	assert.Equal(t, models.AuditActionAutismProfileShared, evt.Action)
	assert.Equal(t, models.AuditResourceAutismProfile, evt.Resource)
	assert.Equal(t, "p2", evt.ResourceID)
	assert.Equal(t, "advocate_maria", evt.NewValues["sharedWith"])
	assert.Equal(t, "test", evt.UserAgent)

	_, err = f.svc.Get(context.Background(), advocateMaria(), "p2")
	require.NoError(t, err)
}

func TestAutismProfileShareErrors(t *testing.T) {
	noAdvocate := parentMike()
	noAdvocate.AssignedAdvocateID = nil
	f := newAutismFixture(nil,
		storedProfile("p1", "parent_sarah", nil),
		storedProfile("p2", "parent_mike", nil),
		storedProfile("p4", "parent_lisa", nil),
	)
	ctx := context.Background()

	_, err := f.svc.Share(ctx, nil, "p2", dto.ShareAutismProfileRequest{}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = f.svc.Share(ctx, parentSarah(), "p1", dto.ShareAutismProfileRequest{}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrPlanUpgradeRequired))

	_, err = f.svc.Share(ctx, parentMike(), "missing", dto.ShareAutismProfileRequest{}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = f.svc.Share(ctx, parentMike(), "p4", dto.ShareAutismProfileRequest{}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.Share(ctx, noAdvocate, "p2", dto.ShareAutismProfileRequest{}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}
	_, err = f.svc.Share(ctx, parentMike(), "p2", dto.ShareAutismProfileRequest{Message: string(long)}, RequestMeta{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	assert.Empty(t, f.bus.topics)
}
