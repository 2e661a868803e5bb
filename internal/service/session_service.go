package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/events"
)

type sessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, scope models.SessionScope) ([]models.Session, error)
	UpdateApproval(ctx context.Context, update models.ApprovalUpdate) error
}

type commentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListBySession(ctx context.Context, sessionID string) ([]models.Comment, error)
}

// SessionConfig tunes session reads.
type SessionConfig struct {
	ListLimit int
	DetailTTL time.Duration
}

// SessionService implements listing, detail, commenting and approval of sessions.
type SessionService struct {
	sessions  sessionRepository
	comments  commentRepository
	cache     *CacheService
	bus       eventPublisher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SessionConfig
	now       func() time.Time
}

// NewSessionService constructs the service.
func NewSessionService(
	sessions sessionRepository,
	comments commentRepository,
	cache *CacheService,
	bus eventPublisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SessionConfig,
) *SessionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 50
	}
	return &SessionService{
		sessions:  sessions,
		comments:  comments,
		cache:     cache,
		bus:       bus,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// canView reports whether actor may read or comment on session.
func canView(actor *models.Profile, session *models.Session) bool {
	switch {
	case actor == nil:
		return false
	case actor.ID == session.CreatedBy, actor.ID == session.ForParent:
		return true
	case actor.Role == models.RoleLegalReviewer:
		return true
	default:
		return actor.AdvocatesFor(session.ForParent)
	}
}

// ListForUser returns the sessions visible to userID, newest first.
func (s *SessionService) ListForUser(ctx context.Context, actor *models.Profile, userID string) ([]models.Session, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.ID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot list sessions of another user")
	}

	scope := models.SessionScope{Limit: s.cfg.ListLimit}
	switch actor.Role {
	case models.RoleParent:
		scope.ParentIDs = []string{actor.ID}
	case models.RoleAdvocate:
		scope.ParentIDs = actor.AssignedParentIDs
	case models.RoleLegalReviewer:
		scope.All = true
	}

	sessions, err := s.sessions.List(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, nil
}

// Session loads a single session the actor is allowed to see.
func (s *SessionService) Session(ctx context.Context, actor *models.Profile, id string) (*models.Session, error) {
	session, err := s.findSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, session) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this session")
	}
	return session, nil
}

// Detail returns a session with its comments in chronological order.
func (s *SessionService) Detail(ctx context.Context, actor *models.Profile, id string) (*dto.SessionDetail, error) {
	key := sessionDetailCacheKey(id)
	var cached dto.SessionDetail
	if s.cache.Get(ctx, key, &cached) && cached.Session != nil {
		if !canView(actor, cached.Session) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this session")
		}
		return &cached, nil
	}

	var (
		session  *models.Session
		comments []models.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.findSession(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.comments.ListBySession(gctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comments")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !canView(actor, session) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this session")
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	detail := &dto.SessionDetail{Session: session, Comments: comments}
	s.cache.Set(ctx, key, detail, s.cfg.DetailTTL)
	return detail, nil
}

// AddComment appends a comment, optionally tied to one accommodation by index.
func (s *SessionService) AddComment(ctx context.Context, actor *models.Profile, sessionID string, req dto.AddCommentRequest, meta RequestMeta) (*models.Comment, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	session, err := s.Session(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	if idx := req.AccommodationIndex; idx != nil && *idx >= len(session.Accommodations) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("accommodationIndex must be between 0 and %d", len(session.Accommodations)-1))
	}

	comment := &models.Comment{
		ID:                 uuid.NewString(),
		SessionID:          session.ID,
		UserID:             actor.ID,
		UserName:           actor.FullName,
		UserRole:           string(actor.Role),
		Text:               req.Text,
		AccommodationIndex: req.AccommodationIndex,
		CreatedAt:          s.now().UTC(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add comment")
	}

	s.cache.Invalidate(ctx, sessionDetailCacheKey(session.ID))
	s.metrics.RecordCommentAdded()
	newValues := map[string]interface{}{"sessionId": session.ID}
	if comment.AccommodationIndex != nil {
		newValues["accommodationIndex"] = *comment.AccommodationIndex
	}
	publish(ctx, s.bus, s.logger, events.TopicCommentAdded, meta.apply(events.Event{
		ActorID:    actor.ID,
		Action:     models.AuditActionCommentAdded,
		Resource:   models.AuditResourceComment,
		ResourceID: comment.ID,
		NewValues:  newValues,
	}))
	return comment, nil
}

// SetApproval approves or withdraws approval of a session section.
// Only the advocate assigned to the session's parent may do this.
func (s *SessionService) SetApproval(ctx context.Context, actor *models.Profile, sessionID string, req dto.ApprovalRequest, meta RequestMeta) (*dto.ApprovalResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdvocate {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only advocates can approve sessions")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !actor.AdvocatesFor(session.ForParent) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "advocate is not assigned to this parent")
	}

	field := req.TargetSection()

	now := s.now().UTC()
	update := models.ApprovalUpdate{
		SessionID:  session.ID,
		Field:      field,
		Approved:   *req.Approved,
		Status:     models.SessionStatusReviewed,
		ModifiedAt: now,
	}
	if update.Approved {
		approver := actor.ID
		update.Status = models.SessionStatusApproved
		update.ApprovedBy = &approver
		update.ApprovedAt = &now
	}

	if err := s.sessions.UpdateApproval(ctx, update); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update approval")
	}

	s.cache.Invalidate(ctx, sessionDetailCacheKey(session.ID))
	s.metrics.RecordApprovalChange(update.Approved)
	publish(ctx, s.bus, s.logger, events.TopicApprovalChanged, meta.apply(events.Event{
		ActorID:    actor.ID,
		Action:     models.AuditActionApprovalChanged,
		Resource:   models.AuditResourceSession,
		ResourceID: session.ID,
		OldValues:  map[string]interface{}{"approved": session.Approval.Approved, "status": session.Status},
		NewValues:  map[string]interface{}{"approved": update.Approved, "status": update.Status, "field": field},
	}))

	return &dto.ApprovalResponse{
		Success:  true,
		Approved: update.Approved,
		Section:  field,
		Status:   update.Status,
		Approval: models.Approval{
			Approved:   update.Approved,
			ApprovedBy: update.ApprovedBy,
			ApprovedAt: update.ApprovedAt,
		},
	}, nil
}

// LegalAnalysis runs the compliance checks on a stored session.
func (s *SessionService) LegalAnalysis(ctx context.Context, actor *models.Profile, sessionID string) (*models.LegalAnalysis, error) {
	if err := RequireHero(actor); err != nil {
		return nil, err
	}
	session, err := s.Session(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	analysis := AssessRisks(session.ChildProfile, session.Accommodations)
	return &analysis, nil
}

func (s *SessionService) findSession(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}
