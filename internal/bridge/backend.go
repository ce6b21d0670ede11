package bridge

import (
	"context"
	"errors"

	"github.com/opencode-ai/discode/pkg/types"
)

// Sentinel errors callers branch on.
var (
	// ErrNotBound indicates a thread with no registered session.
	ErrNotBound = errors.New("thread is not bound to a session")
	// ErrNoSession indicates a session with no registered thread.
	ErrNoSession = errors.New("session is not bound to a thread")
)

// Role identifies the author of a session message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one backend session message reduced to its text content.
type Message struct {
	ID   string
	Role Role
	Text string
}

// BackendEventType identifies a backend stream event the bridge reacts to.
type BackendEventType string

const (
	// EventSessionIdle fires when a session finishes processing.
	EventSessionIdle BackendEventType = "session.idle"
	// EventSessionDeleted fires when a session is removed on the backend.
	EventSessionDeleted BackendEventType = "session.deleted"
)

// BackendEvent is the reduced envelope the consumer operates on.
type BackendEvent struct {
	Type      BackendEventType
	SessionID string
}

// EventSource streams backend events. The channels close when the stream
// ends; the error channel reports the terminal error, if any.
type EventSource interface {
	Stream(ctx context.Context) (<-chan BackendEvent, <-chan error)
}

// Backend is the coding-assistant side of the bridge.
type Backend interface {
	// CreateSession creates a session and returns its ID.
	CreateSession(ctx context.Context, directory, title string) (string, error)
	// Messages returns the session's messages in order.
	Messages(ctx context.Context, sessionID string) ([]Message, error)
	// Prompt sends text to the session and returns the assistant's reply.
	Prompt(ctx context.Context, sessionID, text string, model types.ModelRef) (string, error)
}

// ChatClient is the chat-platform side of the bridge.
type ChatClient interface {
	// CreateThread creates a thread under the bridge channel.
	CreateThread(ctx context.Context, title string) (string, error)
	// DeleteThread removes a thread. Used when a create races a
	// concurrent bind and loses.
	DeleteThread(ctx context.Context, threadID string) error
	// PostMessage posts one message into a thread or channel.
	PostMessage(ctx context.Context, channelID, content string) error
}
