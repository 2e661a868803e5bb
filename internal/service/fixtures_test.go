package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/events"
	"github.com/noah-isme/iep-hero-api/pkg/llm"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func strPtr(v string) *string     { return &v }

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func parentSarah() *models.Profile {
	return &models.Profile{
		ID: "parent_sarah", FullName: "Sarah Johnson", Role: models.RoleParent, PlanType: models.PlanFree,
		AssignedAdvocateID: strPtr("advocate_maria"), IsActive: true,
		Children: models.Children{{ID: "child_1", Name: "Emma", Grade: "3rd"}, {ID: "child_2", Name: "Alex", Grade: "1st"}},
	}
}

func parentMike() *models.Profile {
	return &models.Profile{
		ID: "parent_mike", FullName: "Mike Chen", Role: models.RoleParent, PlanType: models.PlanHero,
		AssignedAdvocateID: strPtr("advocate_maria"), IsActive: true,
		Children: models.Children{{ID: "child_3", Name: "David", Grade: "5th"}},
	}
}

func parentLisa() *models.Profile {
	return &models.Profile{
		ID: "parent_lisa", FullName: "Lisa Rodriguez", Role: models.RoleParent, PlanType: models.PlanHero,
		AssignedAdvocateID: strPtr("advocate_john"), IsActive: true,
		Children: models.Children{{ID: "child_4", Name: "Sofia", Grade: "2nd"}},
	}
}

func advocateMaria() *models.Profile {
	return &models.Profile{
		ID: "advocate_maria", FullName: "Maria Garcia", Role: models.RoleAdvocate, PlanType: models.PlanAdvocate,
		AssignedParentIDs: pq.StringArray{"parent_sarah", "parent_mike"}, IsActive: true,
		Specialization: "Autism & Developmental Disabilities", Credentials: "M.Ed., Special Education Advocate",
		Rating: floatPtr(4.9), Experience: "12 years", Availability: models.AvailabilityHigh,
	}
}

func advocateJohn() *models.Profile {
	return &models.Profile{
		ID: "advocate_john", FullName: "John Smith", Role: models.RoleAdvocate, PlanType: models.PlanAdvocate,
		AssignedParentIDs: pq.StringArray{"parent_lisa"}, IsActive: true,
		Specialization: "IEP Legal Compliance", Credentials: "J.D., Education Law",
		Rating: floatPtr(4.7), Experience: "8 years", Availability: models.AvailabilityMedium,
	}
}

func legalReviewer() *models.Profile {
	return &models.Profile{ID: "reviewer_ann", FullName: "Ann Lee", Role: models.RoleLegalReviewer, PlanType: models.PlanLegal, IsActive: true}
}

// profileStore is an in-memory identity provider.
type profileStore struct {
	profiles map[string]*models.Profile
	err      error
}

func newProfileStore(profiles ...*models.Profile) *profileStore {
	store := &profileStore{profiles: map[string]*models.Profile{}}
	for _, p := range profiles {
		store.profiles[p.ID] = p
	}
	return store
}

func (s *profileStore) FindByID(_ context.Context, id string) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (s *profileStore) Profile(ctx context.Context, id string) (*models.Profile, error) {
	p, err := s.FindByID(ctx, id)
	if err == sql.ErrNoRows {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return p, err
}

func (s *profileStore) ListAdvocates(_ context.Context) ([]models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Profile
	for _, p := range s.profiles {
		if p.Role == models.RoleAdvocate && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

// sessionStore is an in-memory session repository.
type sessionStore struct {
	mu        sync.Mutex
	byID      map[string]*models.Session
	lastScope models.SessionScope
	updates   []models.ApprovalUpdate
	createErr error
}

func newSessionStore(sessions ...*models.Session) *sessionStore {
	store := &sessionStore{byID: map[string]*models.Session{}}
	for _, s := range sessions {
		store.byID[s.ID] = s
	}
	return store
}

func (s *sessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	clone := *session
	s.byID[session.ID] = &clone
	return nil
}

func (s *sessionStore) FindByID(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *session
	return &clone, nil
}

func (s *sessionStore) List(_ context.Context, scope models.SessionScope) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScope = scope
	var out []models.Session
	for _, session := range s.byID {
		if scope.All || containsTag(scope.ParentIDs, session.ForParent) {
			out = append(out, *session)
		}
	}
	return out, nil
}

func (s *sessionStore) UpdateApproval(_ context.Context, update models.ApprovalUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[update.SessionID]
	if !ok {
		return sql.ErrNoRows
	}
	s.updates = append(s.updates, update)
	session.Status = update.Status
	session.Approval = models.Approval{Approved: update.Approved, ApprovedBy: update.ApprovedBy, ApprovedAt: update.ApprovedAt}
	session.LastModified = update.ModifiedAt
	return nil
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// commentStore is an in-memory comment repository.
type commentStore struct {
	mu       sync.Mutex
	comments []models.Comment
}

func (s *commentStore) Create(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *commentStore) ListBySession(_ context.Context, sessionID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Comment
	for _, c := range s.comments {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	topics []string
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, topic string, evt events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	b.events = append(b.events, evt)
	return nil
}

// scriptedProvider replays canned completions.
type scriptedProvider struct {
	mu       sync.Mutex
	replies  []scriptedReply
	calls    int
	options  []llm.Options
	messages [][]llm.Message
}

type scriptedReply struct {
	text string
	err  error
}

func (p *scriptedProvider) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.options = append(p.options, llm.Apply(llm.Options{}, opts...))
	p.messages = append(p.messages, history)
	idx := p.calls
	p.calls++
	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	return p.replies[idx].text, p.replies[idx].err
}

func (p *scriptedProvider) Name() string { return "scripted" }

func completionJSON(categories ...models.Category) string {
	items := make([]string, 0, len(categories))
	for i, c := range categories {
		items = append(items, fmt.Sprintf(`{"title":"Support %d","description":"Description %d","category":%q,"implementation":"Steps %d"}`, i, i, c, i))
	}
	return `{"accommodations":[` + strings.Join(items, ",") + `]}`
}

func sampleChild() models.ChildProfile {
	return models.ChildProfile{
		Name:                 "Emma",
		GradeLevel:           models.GradeThird,
		DiagnosisAreas:       []string{models.DiagnosisASD},
		SensoryPreferences:   []string{"Noise sensitivity"},
		BehavioralChallenges: []string{"Transitions"},
		CommunicationMethod:  models.CommunicationVerbal,
		AdditionalNotes:      "Loves trains",
	}
}

func sampleSession(id, createdBy, forParent string, n int) *models.Session {
	accommodations := make(models.Accommodations, n)
	for i := range accommodations {
		accommodations[i] = models.Accommodation{
			Title:          fmt.Sprintf("Support %d", i),
			Description:    "Description",
			Category:       models.Categories[i%len(models.Categories)],
			Implementation: "Steps",
		}
	}
	return &models.Session{
		ID:             id,
		ChildProfile:   sampleChild(),
		PlanType:       models.PlanFree,
		Accommodations: accommodations,
		CreatedBy:      createdBy,
		ForParent:      forParent,
		Status:         models.SessionStatusDraft,
		CreatedAt:      fixedNow.Add(-time.Hour),
		LastModified:   fixedNow.Add(-time.Hour),
	}
}

func sampleAutismInput() models.AutismProfileInput {
	return models.AutismProfileInput{
		StudentName:   "Emma",
		GradeLevel:    models.GradeThird,
		Sensory:       models.SensoryProfile{Selected: []string{"auditory", "tactile"}, CalmingStrategies: "quiet corner with weighted blanket"},
		Communication: models.CommunicationStyle{PrimaryMethod: "Limited verbal", EffectiveStrategies: "visual schedules and simple language"},
		Triggers:      models.BehavioralTriggers{Triggers: []string{"Transitions between activities"}, OtherTriggers: "unexpected loud noises"},
		HomeSupports:  "Visual timer for transitions",
		Goals:         "Reduce transition anxiety",
	}
}
