package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerDeliversEvents(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close() //nolint:errcheck

	received := make(chan Event, 2)
	consumer := NewConsumer("test", bus, []string{TopicCommentAdded, TopicApprovalChanged}, func(_ context.Context, evt Event) error {
		received <- evt
		return nil
	}, ConsumerConfig{Workers: 2})
	require.NoError(t, consumer.Start(context.Background()))
	defer consumer.Stop()

	require.NoError(t, bus.Publish(context.Background(), TopicCommentAdded, Event{Action: "comment_added", ResourceID: "s1"}))
	require.NoError(t, bus.Publish(context.Background(), TopicApprovalChanged, Event{Action: "approval_changed", ResourceID: "s1"}))

	actions := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case evt := <-received:
			actions[evt.Action] = true
			assert.Equal(t, "s1", evt.ResourceID)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.True(t, actions["comment_added"])
	assert.True(t, actions["approval_changed"])
}

func TestConsumerRetriesFailingHandler(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close() //nolint:errcheck

	var calls int32
	done := make(chan struct{})
	consumer := NewConsumer("retry", bus, []string{TopicSessionGenerated}, func(_ context.Context, _ Event) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, ConsumerConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	require.NoError(t, consumer.Start(context.Background()))
	defer consumer.Stop()

	require.NoError(t, bus.Publish(context.Background(), TopicSessionGenerated, Event{Action: "session_generated"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never succeeded")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
