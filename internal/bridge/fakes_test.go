package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/opencode-ai/discode/pkg/types"
)

// fakeBackend is an in-memory Backend for tests.
type fakeBackend struct {
	mu       sync.Mutex
	sessions map[string][]Message
	nextID   int

	promptErr   error
	promptCalls []promptCall
}

type promptCall struct {
	sessionID string
	text      string
	model     types.ModelRef
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{sessions: make(map[string][]Message)}
}

func (b *fakeBackend) seed(sessionID string, messages ...Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = append(b.sessions[sessionID], messages...)
}

func (b *fakeBackend) CreateSession(ctx context.Context, directory, title string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := fmt.Sprintf("ses_chat_%d", b.nextID)
	b.sessions[id] = nil
	return id, nil
}

func (b *fakeBackend) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msgs := b.sessions[sessionID]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (b *fakeBackend) Prompt(ctx context.Context, sessionID, text string, model types.ModelRef) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.promptCalls = append(b.promptCalls, promptCall{sessionID: sessionID, text: text, model: model})
	if b.promptErr != nil {
		return "", b.promptErr
	}

	b.nextID++
	reply := "reply to: " + text
	b.sessions[sessionID] = append(b.sessions[sessionID],
		Message{ID: fmt.Sprintf("msg_u_%d", b.nextID), Role: RoleUser, Text: text},
		Message{ID: fmt.Sprintf("msg_a_%d", b.nextID), Role: RoleAssistant, Text: reply},
	)
	return reply, nil
}

// fakeChat is an in-memory ChatClient for tests.
type fakeChat struct {
	mu      sync.Mutex
	posts   map[string][]string // threadID -> messages
	titles  map[string]string
	deleted []string
	nextID  int

	createErr error
	postErr   error

	// onCreate runs inside CreateThread, before it returns. Tests use it
	// to interleave a concurrent bind.
	onCreate func()
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		posts:  make(map[string][]string),
		titles: make(map[string]string),
	}
}

func (c *fakeChat) CreateThread(ctx context.Context, title string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.createErr != nil {
		return "", c.createErr
	}
	c.nextID++
	id := fmt.Sprintf("th_%d", c.nextID)
	c.titles[id] = title
	if c.onCreate != nil {
		c.mu.Unlock()
		c.onCreate()
		c.mu.Lock()
	}
	return id, nil
}

func (c *fakeChat) DeleteThread(ctx context.Context, threadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, threadID)
	return nil
}

func (c *fakeChat) PostMessage(ctx context.Context, channelID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.postErr != nil {
		return c.postErr
	}
	c.posts[channelID] = append(c.posts[channelID], content)
	return nil
}

func (c *fakeChat) messages(threadID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.posts[threadID]))
	copy(out, c.posts[threadID])
	return out
}

// fakeSource feeds scripted events to a consumer.
type fakeSource struct {
	mu      sync.Mutex
	events  chan BackendEvent
	errs    chan error
	streams int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		events: make(chan BackendEvent, 16),
		errs:   make(chan error, 1),
	}
}

func (s *fakeSource) Stream(ctx context.Context) (<-chan BackendEvent, <-chan error) {
	s.mu.Lock()
	s.streams++
	s.mu.Unlock()
	return s.events, s.errs
}

func (s *fakeSource) streamCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams
}
