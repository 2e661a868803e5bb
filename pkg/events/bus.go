// Package events carries domain events over an in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

// Topics published by the session and autism profile workflows.
const (
	TopicSessionGenerated = "session.generated"
	TopicCommentAdded     = "session.comment_added"
	TopicApprovalChanged  = "session.approval_changed"

	TopicAutismProfileGenerated = "autism_profile.generated"
	TopicAutismProfileShared    = "autism_profile.shared"
)

// Event is the envelope every topic carries.
type Event struct {
	ActorID    string                 `json:"actorId"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID string                 `json:"resourceId"`
	OldValues  map[string]interface{} `json:"oldValues,omitempty"`
	NewValues  map[string]interface{} `json:"newValues,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty"`
	UserAgent  string                 `json:"userAgent,omitempty"`
}

// Bus publishes and subscribes events.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger *zap.Logger
}

// NewBus creates a gochannel-backed bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		NewZapAdapter(logger),
	)
	return &Bus{pubSub: pubSub, logger: logger}
}

// Publish serialises evt and sends it on topic.
func (b *Bus) Publish(ctx context.Context, topic string, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubSub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns the raw message stream for topic.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

// Close stops delivery to all subscribers.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}

// Decode unmarshals a message payload into an Event.
func Decode(msg *message.Message) (Event, error) {
	var evt Event
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return evt, nil
}
