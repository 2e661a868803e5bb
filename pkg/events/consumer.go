package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes one decoded event.
type Handler func(context.Context, Event) error

// ConsumerConfig configures worker pool behaviour.
type ConsumerConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Consumer drains one or more topics with a fixed pool of workers.
// A failing handler is retried up to MaxRetries times before the message is dropped.
type Consumer struct {
	name    string
	bus     *Bus
	topics  []string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewConsumer builds a consumer for topics.
func NewConsumer(name string, bus *Bus, topics []string, handler Handler, cfg ConsumerConfig) *Consumer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Consumer{
		name:       name,
		bus:        bus,
		topics:     topics,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
	}
}

// Start subscribes to every topic and begins consumption. Safe to call once.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	merged := make(chan *message.Message)
	var feeders sync.WaitGroup
	for _, topic := range c.topics {
		stream, err := c.bus.Subscribe(ctx, topic)
		if err != nil {
			cancel()
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		feeders.Add(1)
		go func(stream <-chan *message.Message) {
			defer feeders.Done()
			for msg := range stream {
				select {
				case merged <- msg:
				case <-ctx.Done():
					msg.Nack()
					return
				}
			}
		}(stream)
	}
	go func() {
		feeders.Wait()
		close(merged)
	}()

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, merged)
	}
	c.cancel = cancel
	c.started = true
	c.logger.Sugar().Infow("consumer started", "consumer", c.name, "workers", c.workers, "topics", c.topics)
	return nil
}

// Stop cancels workers and waits for them to exit.
func (c *Consumer) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
	c.logger.Sugar().Infow("consumer stopped", "consumer", c.name)
}

func (c *Consumer) worker(ctx context.Context, msgs <-chan *message.Message) {
	defer c.wg.Done()
	for msg := range msgs {
		c.process(ctx, msg)
	}
}

func (c *Consumer) process(ctx context.Context, msg *message.Message) {
	// Always ack: gochannel redelivers nacked messages forever.
	defer msg.Ack()

	evt, err := Decode(msg)
	if err != nil {
		c.logger.Sugar().Errorw("dropping undecodable event", "consumer", c.name, "message_id", msg.UUID, "error", err)
		return
	}

	for attempt := 1; ; attempt++ {
		err := c.handler(ctx, evt)
		if err == nil {
			return
		}
		if attempt > c.maxRetries {
			c.logger.Sugar().Errorw("event exceeded retries", "consumer", c.name, "message_id", msg.UUID, "action", evt.Action, "error", err)
			return
		}
		c.logger.Sugar().Warnw("event failed, retrying", "consumer", c.name, "message_id", msg.UUID, "action", evt.Action, "attempt", attempt, "error", err)

		timer := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
