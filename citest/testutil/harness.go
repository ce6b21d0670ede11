// Package testutil provides the in-process harness and HTTP helpers for
// the citest suites. The harness wires the real bridge components to fake
// backend and chat implementations so suites exercise the full pipeline
// without Discord or an opencode server.
package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"

	"github.com/opencode-ai/discode/internal/bridge"
	"github.com/opencode-ai/discode/internal/event"
	"github.com/opencode-ai/discode/internal/server"
	"github.com/opencode-ai/discode/pkg/types"
)

// PromptCall records one forwarded prompt.
type PromptCall struct {
	SessionID string
	Text      string
	Model     types.ModelRef
}

// FakeBackend is an in-memory bridge.Backend.
type FakeBackend struct {
	mu          sync.Mutex
	sessions    map[string][]bridge.Message
	nextSession int
	nextMsg     int
	prompts     []PromptCall
}

// NewFakeBackend creates an empty backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{sessions: make(map[string][]bridge.Message)}
}

// SeedSession installs a session with an initial exchange.
func (b *FakeBackend) SeedSession(sessionID, userText, assistantText string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = append(b.sessions[sessionID],
		bridge.Message{ID: b.msgID(), Role: bridge.RoleUser, Text: userText},
		bridge.Message{ID: b.msgID(), Role: bridge.RoleAssistant, Text: assistantText},
	)
}

// RemoveSession drops a session, as the backend does before emitting a
// deleted event.
func (b *FakeBackend) RemoveSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
}

func (b *FakeBackend) msgID() string {
	b.nextMsg++
	return fmt.Sprintf("msg_%d", b.nextMsg)
}

// CreateSession implements bridge.Backend.
func (b *FakeBackend) CreateSession(ctx context.Context, directory, title string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextSession++
	id := fmt.Sprintf("ses_chat_%d", b.nextSession)
	b.sessions[id] = nil
	return id, nil
}

// Messages implements bridge.Backend.
func (b *FakeBackend) Messages(ctx context.Context, sessionID string) ([]bridge.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs, ok := b.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	out := make([]bridge.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Prompt implements bridge.Backend. The reply echoes the input.
func (b *FakeBackend) Prompt(ctx context.Context, sessionID, text string, model types.ModelRef) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[sessionID]; !ok {
		return "", fmt.Errorf("session %s not found", sessionID)
	}
	b.prompts = append(b.prompts, PromptCall{SessionID: sessionID, Text: text, Model: model})
	reply := "reply to: " + text
	b.sessions[sessionID] = append(b.sessions[sessionID],
		bridge.Message{ID: b.msgID(), Role: bridge.RoleUser, Text: text},
		bridge.Message{ID: b.msgID(), Role: bridge.RoleAssistant, Text: reply},
	)
	return reply, nil
}

// Prompts returns a copy of the recorded prompt calls.
func (b *FakeBackend) Prompts() []PromptCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]PromptCall, len(b.prompts))
	copy(out, b.prompts)
	return out
}

// FakeChat is an in-memory bridge.ChatClient.
type FakeChat struct {
	mu         sync.Mutex
	posts      map[string][]string
	titles     map[string]string
	deleted    []string
	nextThread int
}

// NewFakeChat creates an empty chat client.
func NewFakeChat() *FakeChat {
	return &FakeChat{
		posts:  make(map[string][]string),
		titles: make(map[string]string),
	}
}

// CreateThread implements bridge.ChatClient.
func (c *FakeChat) CreateThread(ctx context.Context, title string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextThread++
	id := fmt.Sprintf("th_%d", c.nextThread)
	c.titles[id] = title
	return id, nil
}

// DeleteThread implements bridge.ChatClient.
func (c *FakeChat) DeleteThread(ctx context.Context, threadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, threadID)
	return nil
}

// PostMessage implements bridge.ChatClient.
func (c *FakeChat) PostMessage(ctx context.Context, channelID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts[channelID] = append(c.posts[channelID], content)
	return nil
}

// Posts returns a copy of the messages posted to a thread.
func (c *FakeChat) Posts(threadID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.posts[threadID]))
	copy(out, c.posts[threadID])
	return out
}

// Title returns the title a thread was created with.
func (c *FakeChat) Title(threadID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.titles[threadID]
}

// FakeSource is a bridge.EventSource fed by the test.
type FakeSource struct {
	events chan bridge.BackendEvent
	errs   chan error
}

// NewFakeSource creates a source with buffered channels.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		events: make(chan bridge.BackendEvent, 32),
		errs:   make(chan error, 4),
	}
}

// Stream implements bridge.EventSource.
func (s *FakeSource) Stream(ctx context.Context) (<-chan bridge.BackendEvent, <-chan error) {
	return s.events, s.errs
}

// EmitIdle injects a session.idle event.
func (s *FakeSource) EmitIdle(sessionID string) {
	s.events <- bridge.BackendEvent{Type: bridge.EventSessionIdle, SessionID: sessionID}
}

// EmitDeleted injects a session.deleted event.
func (s *FakeSource) EmitDeleted(sessionID string) {
	s.events <- bridge.BackendEvent{Type: bridge.EventSessionDeleted, SessionID: sessionID}
}

// TestBridge bundles a fully wired bridge with fakes and a running
// webhook server.
type TestBridge struct {
	Backend *FakeBackend
	Chat    *FakeChat
	Source  *FakeSource
	Manager *bridge.Manager
	Client  *TestClient

	bus    *event.Bus
	srv    *httptest.Server
	cancel context.CancelFunc
}

// BridgeOptions configures StartTestBridge.
type BridgeOptions struct {
	AllowedDirs  []string
	DefaultModel types.ModelRef
}

// StartTestBridge wires the bridge against fakes, starts the event
// consumer, and serves the webhook API over httptest.
func StartTestBridge(opts BridgeOptions) *TestBridge {
	backend := NewFakeBackend()
	chat := NewFakeChat()
	source := NewFakeSource()
	bus := event.NewBus()

	model := opts.DefaultModel
	if model.IsZero() {
		model = types.ModelRef{ProviderID: "anthropic", ModelID: "claude-sonnet-4"}
	}
	models := bridge.NewModels(model)
	manager := bridge.NewManager(bridge.NewRegistry(), bridge.NewLedger(), backend, chat, models, bus, "/tmp")

	ctx, cancel := context.WithCancel(context.Background())
	consumer := bridge.NewConsumer(source, manager, bus)
	go consumer.Run(ctx)

	cfg := server.DefaultConfig()
	cfg.AllowedDirs = opts.AllowedDirs
	srv := httptest.NewServer(server.New(cfg, manager).Router())

	return &TestBridge{
		Backend: backend,
		Chat:    chat,
		Source:  source,
		Manager: manager,
		Client:  NewTestClient(srv.URL),
		bus:     bus,
		srv:     srv,
		cancel:  cancel,
	}
}

// Close shuts everything down.
func (tb *TestBridge) Close() {
	tb.cancel()
	tb.srv.Close()
	tb.bus.Close()
}
