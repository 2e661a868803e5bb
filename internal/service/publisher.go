package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/pkg/events"
)

type eventPublisher interface {
	Publish(ctx context.Context, topic string, evt events.Event) error
}

// RequestMeta carries caller details recorded on the audit trail.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

func (m RequestMeta) apply(evt events.Event) events.Event {
	evt.IPAddress = m.IPAddress
	evt.UserAgent = m.UserAgent
	return evt
}

// publish emits evt when a bus is configured. Delivery failures never fail the request.
func publish(ctx context.Context, bus eventPublisher, logger *zap.Logger, topic string, evt events.Event) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, topic, evt); err != nil {
		logger.Warn("failed to publish event", zap.String("topic", topic), zap.String("resource_id", evt.ResourceID), zap.Error(err))
	}
}
