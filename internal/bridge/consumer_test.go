package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/opencode-ai/discode/internal/event"
	"github.com/opencode-ai/discode/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(t *testing.T) (*Consumer, *fakeSource, *fakeBackend, *fakeChat) {
	t.Helper()
	backend := newFakeBackend()
	chat := newFakeChat()
	source := newFakeSource()
	bus := event.NewBus()
	t.Cleanup(func() { bus.Close() })

	models := NewModels(types.ModelRef{ProviderID: "anthropic", ModelID: "claude-sonnet-4"})
	mgr := NewManager(NewRegistry(), NewLedger(), backend, chat, models, bus, "/srv/project")

	c := NewConsumer(source, mgr, bus)
	c.settle = time.Millisecond
	c.newBackoff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(5 * time.Millisecond)
	}
	return c, source, backend, chat
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestConsumerIdleCreatesThreadAndMirrors(t *testing.T) {
	c, source, backend, chat := newTestConsumer(t)

	backend.seed("abc123",
		Message{ID: "u1", Role: RoleUser, Text: "refactor the config loader"},
		Message{ID: "a1", Role: RoleAssistant, Text: "refactored, tests pass"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	source.events <- BackendEvent{Type: EventSessionIdle, SessionID: "abc123"}

	waitFor(t, func() bool {
		threadID, ok := c.manager.registry.ThreadFor("abc123")
		return ok && len(chat.messages(threadID)) == 2
	})

	threadID, _ := c.manager.registry.ThreadFor("abc123")
	assert.Equal(t, "refactor the config loader", chat.titles[threadID])
	posts := chat.messages(threadID)
	assert.Equal(t, "**You:**\nrefactor the config loader", posts[0])
	assert.Equal(t, "**Assistant:**\nrefactored, tests pass", posts[1])
}

func TestConsumerRepeatedIdleIsIdempotent(t *testing.T) {
	c, source, backend, chat := newTestConsumer(t)

	backend.seed("abc123",
		Message{ID: "u1", Role: RoleUser, Text: "hello"},
		Message{ID: "a1", Role: RoleAssistant, Text: "hi"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	source.events <- BackendEvent{Type: EventSessionIdle, SessionID: "abc123"}
	waitFor(t, func() bool {
		threadID, ok := c.manager.registry.ThreadFor("abc123")
		return ok && len(chat.messages(threadID)) == 2
	})

	// A second idle with no new messages changes nothing.
	source.events <- BackendEvent{Type: EventSessionIdle, SessionID: "abc123"}
	time.Sleep(50 * time.Millisecond)

	threadID, _ := c.manager.registry.ThreadFor("abc123")
	assert.Len(t, chat.messages(threadID), 2)
	assert.Equal(t, 1, c.manager.registry.Len())
}

func TestConsumerForwardedReplyNotEchoed(t *testing.T) {
	c, source, backend, chat := newTestConsumer(t)

	backend.seed("abc123",
		Message{ID: "u1", Role: RoleUser, Text: "start"},
		Message{ID: "a1", Role: RoleAssistant, Text: "started"},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	source.events <- BackendEvent{Type: EventSessionIdle, SessionID: "abc123"}
	waitFor(t, func() bool {
		threadID, ok := c.manager.registry.ThreadFor("abc123")
		return ok && len(chat.messages(threadID)) == 2
	})
	threadID, _ := c.manager.registry.ThreadFor("abc123")

	// A thread reply is forwarded, then the backend goes idle again.
	require.NoError(t, c.manager.ForwardReply(ctx, threadID, "keep going", "user-1"))
	source.events <- BackendEvent{Type: EventSessionIdle, SessionID: "abc123"}
	time.Sleep(50 * time.Millisecond)

	// 2 mirrored + 1 forwarded answer; the forwarded exchange is not
	// mirrored a second time.
	assert.Len(t, chat.messages(threadID), 3)
}

func TestConsumerSessionDeleted(t *testing.T) {
	c, source, _, _ := newTestConsumer(t)

	c.manager.registry.Bind("abc123", "th_1", false)
	c.manager.ledger.Mark("abc123", "u1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	source.events <- BackendEvent{Type: EventSessionDeleted, SessionID: "abc123"}

	waitFor(t, func() bool { return c.manager.registry.Len() == 0 })
	assert.False(t, c.manager.ledger.Seen("abc123", "u1"))

	// Late replies still resolve the dead session.
	sessionID, ok := c.manager.registry.SessionFor("th_1")
	require.True(t, ok)
	assert.Equal(t, "abc123", sessionID)
}

func TestConsumerIgnoresMalformedEvents(t *testing.T) {
	c, source, _, chat := newTestConsumer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	source.events <- BackendEvent{Type: EventSessionIdle, SessionID: ""}
	source.events <- BackendEvent{Type: "session.unknown", SessionID: "abc123"}
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, c.manager.registry.Len())
	assert.Empty(t, chat.titles)
}

// countingBackOff records how often the policy advances.
type countingBackOff struct {
	mu    sync.Mutex
	calls int
}

func (b *countingBackOff) NextBackOff() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return time.Millisecond
}

func (b *countingBackOff) Reset() {}

func (b *countingBackOff) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func TestConsumerAdvancesBackoffOncePerReconnect(t *testing.T) {
	c, source, _, _ := newTestConsumer(t)
	counter := &countingBackOff{}
	c.newBackoff = func() backoff.BackOff { return counter }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, func() bool { return source.streamCount() == 1 })
	source.errs <- errors.New("connection reset")
	waitFor(t, func() bool { return source.streamCount() >= 2 })

	assert.Equal(t, 1, counter.count())
}

func TestConsumerReconnectsAfterStreamError(t *testing.T) {
	c, source, _, _ := newTestConsumer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	waitFor(t, func() bool { return source.streamCount() == 1 })
	source.errs <- errors.New("connection reset")
	waitFor(t, func() bool { return source.streamCount() >= 2 })
}

func TestConsumerStopsOnCancel(t *testing.T) {
	c, source, _, _ := newTestConsumer(t)
	_ = source

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
