package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/pkg/events"
)

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditTopics are the event topics recorded on the audit trail.
var AuditTopics = []string{
	events.TopicSessionGenerated,
	events.TopicCommentAdded,
	events.TopicApprovalChanged,
	events.TopicAutismProfileGenerated,
	events.TopicAutismProfileShared,
}

// AuditRecorder writes domain events to the audit log.
type AuditRecorder struct {
	repo   auditWriter
	logger *zap.Logger
	now    func() time.Time
}

// NewAuditRecorder constructs the recorder.
func NewAuditRecorder(repo auditWriter, logger *zap.Logger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRecorder{repo: repo, logger: logger, now: time.Now}
}

// Handle is an events.Handler persisting evt.
func (r *AuditRecorder) Handle(ctx context.Context, evt events.Event) error {
	oldValues, err := marshalValues(evt.OldValues)
	if err != nil {
		return err
	}
	newValues, err := marshalValues(evt.NewValues)
	if err != nil {
		return err
	}
	entry := &models.AuditLog{
		ID:         uuid.NewString(),
		UserID:     optional(evt.ActorID),
		Action:     evt.Action,
		Resource:   evt.Resource,
		ResourceID: optional(evt.ResourceID),
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  optional(evt.IPAddress),
		UserAgent:  optional(evt.UserAgent),
		CreatedAt:  r.now().UTC(),
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("record audit %s: %w", evt.Action, err)
	}
	r.logger.Debug("audit recorded", zap.String("action", evt.Action), zap.String("resource_id", evt.ResourceID))
	return nil
}

func marshalValues(values map[string]interface{}) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal audit values: %w", err)
	}
	return data, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
