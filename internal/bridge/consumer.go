package bridge

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/opencode-ai/discode/internal/event"
	"github.com/opencode-ai/discode/internal/logging"
)

const (
	// reconnectDelay is the fixed wait between stream attempts.
	reconnectDelay = 10 * time.Second
	// settleDelay lets the backend finish persisting messages after an
	// idle event before the mirror pass reads them.
	settleDelay = 250 * time.Millisecond
)

// Consumer drains the backend event stream and reacts to session
// transitions. It reconnects forever with a fixed delay until its context
// is cancelled.
type Consumer struct {
	source  EventSource
	manager *Manager
	bus     *event.Bus

	// Injectable for tests.
	settle     time.Duration
	newBackoff func() backoff.BackOff
}

// NewConsumer creates a consumer over an event source.
func NewConsumer(source EventSource, manager *Manager, bus *event.Bus) *Consumer {
	return &Consumer{
		source:  source,
		manager: manager,
		bus:     bus,
		settle:  settleDelay,
		newBackoff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(reconnectDelay)
		},
	}
}

// Run blocks, draining the stream until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	policy := c.newBackoff()
	for {
		err := c.drain(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.bus.Publish(event.Event{
			Type: event.StreamStatus,
			Data: event.StreamStatusData{Connected: false, Reason: errString(err)},
		})
		delay := policy.NextBackOff()
		logging.Warn().Err(err).Dur("retry_in", delay).Msg("event stream ended, reconnecting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// drain consumes one stream connection until it ends.
func (c *Consumer) drain(ctx context.Context) error {
	events, errs := c.source.Stream(ctx)

	c.bus.Publish(event.Event{
		Type: event.StreamStatus,
		Data: event.StreamStatusData{Connected: true},
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return err
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			c.handle(ctx, evt)
		}
	}
}

// handle dispatches one backend event. Mirror work runs in its own
// goroutine so a slow chat API never blocks the stream loop.
func (c *Consumer) handle(ctx context.Context, evt BackendEvent) {
	if evt.SessionID == "" {
		logging.Debug().Str("type", string(evt.Type)).Msg("event without session ID, skipping")
		return
	}

	switch evt.Type {
	case EventSessionIdle:
		go c.mirrorAfterSettle(ctx, evt.SessionID)
	case EventSessionDeleted:
		c.manager.HandleSessionDeleted(evt.SessionID)
	default:
		// Other stream events carry nothing the bridge acts on.
	}
}

func (c *Consumer) mirrorAfterSettle(ctx context.Context, sessionID string) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(c.settle):
	}

	if _, err := c.manager.MirrorSession(ctx, sessionID); err != nil {
		// Per-event failures are logged, never propagated: the stream
		// must keep draining.
		logging.Error().Err(err).Str("session", sessionID).Msg("mirror failed")
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
