package bridge

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/opencode-ai/discode/internal/event"
	"github.com/opencode-ai/discode/internal/logging"
)

// maxTitleLen is the chat platform's thread name limit.
const maxTitleLen = 100

// fallbackTitle names threads for sessions with no usable first prompt.
const fallbackTitle = "opencode session"

// Manager owns thread lifecycle: creating threads for sessions, mirroring
// exchanges into them, and forwarding replies back to the backend.
type Manager struct {
	registry *Registry
	ledger   *Ledger
	backend  Backend
	chat     ChatClient
	models   *Models
	bus      *event.Bus

	// defaultDir is the working directory for chat-initiated sessions.
	defaultDir string
}

// NewManager wires a manager over its collaborators.
func NewManager(registry *Registry, ledger *Ledger, backend Backend, chat ChatClient, models *Models, bus *event.Bus, defaultDir string) *Manager {
	return &Manager{
		registry:   registry,
		ledger:     ledger,
		backend:    backend,
		chat:       chat,
		models:     models,
		bus:        bus,
		defaultDir: defaultDir,
	}
}

// Registry exposes the underlying registry for status reporting.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// ThreadTitle derives a thread name from a session's first prompt.
func ThreadTitle(firstPrompt string) string {
	title := strings.TrimSpace(firstPrompt)
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return fallbackTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		runes := []rune(title)
		title = string(runes[:maxTitleLen])
	}
	return title
}

// EnsureThread returns the thread bound to a session, creating one when the
// session is unbound. The second return reports whether a binding already
// existed. Creation races are resolved in the registry: the loser deletes
// the thread it created.
func (m *Manager) EnsureThread(ctx context.Context, sessionID, title string) (string, bool, error) {
	if threadID, ok := m.registry.ThreadFor(sessionID); ok {
		return threadID, true, nil
	}

	threadID, err := m.chat.CreateThread(ctx, ThreadTitle(title))
	if err != nil {
		return "", false, fmt.Errorf("create thread: %w", err)
	}

	bound, inserted := m.registry.Bind(sessionID, threadID, false)
	if !inserted {
		// Lost a concurrent bind; drop the surplus thread.
		if err := m.chat.DeleteThread(ctx, threadID); err != nil {
			logging.Warn().Err(err).Str("thread", threadID).Msg("failed to delete surplus thread")
		}
		return bound, true, nil
	}

	logging.Info().Str("session", sessionID).Str("thread", threadID).Msg("thread created")
	m.bus.Publish(event.Event{
		Type: event.ThreadCreated,
		Data: event.ThreadCreatedData{SessionID: sessionID, ThreadID: threadID, Title: ThreadTitle(title)},
	})
	return threadID, false, nil
}

// MirrorSession posts every exchange the ledger has not yet seen into the
// session's thread, creating the thread first if needed. Returns the number
// of exchanges posted.
func (m *Manager) MirrorSession(ctx context.Context, sessionID string) (int, error) {
	// Chat-initiated sessions already show every exchange in their channel;
	// mirroring them would echo the conversation back at the user.
	if m.registry.ChatInitiated(sessionID) {
		return 0, nil
	}

	messages, err := m.backend.Messages(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("load messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	fresh := completeExchanges(unseenExchanges(m.ledger, sessionID, ExtractExchanges(messages)))
	if len(fresh) == 0 {
		return 0, nil
	}

	threadID, _, err := m.EnsureThread(ctx, sessionID, FirstUserText(messages))
	if err != nil {
		return 0, err
	}

	for _, ex := range fresh {
		for _, segment := range FormatExchange(ex) {
			if err := m.chat.PostMessage(ctx, threadID, segment); err != nil {
				return 0, fmt.Errorf("post segment: %w", err)
			}
		}
		m.ledger.MarkAll(sessionID, ex.MessageIDs)
	}

	logging.Debug().Str("session", sessionID).Int("exchanges", len(fresh)).Msg("mirrored exchanges")
	m.bus.Publish(event.Event{
		Type: event.MirrorPosted,
		Data: event.MirrorPostedData{SessionID: sessionID, ThreadID: threadID, Exchanges: len(fresh)},
	})
	return len(fresh), nil
}

// PostExchange posts a pre-extracted exchange into a thread. Used by the
// webhook message endpoint, where the caller supplies the content directly.
// When the session is known its current messages are marked, so an idle
// event that follows the webhook post does not repost the same exchange.
func (m *Manager) PostExchange(ctx context.Context, sessionID, threadID, userContent, assistantContent string) error {
	ex := Exchange{UserText: userContent, AssistantText: assistantContent}
	for _, segment := range FormatExchange(ex) {
		if err := m.chat.PostMessage(ctx, threadID, segment); err != nil {
			return fmt.Errorf("post segment: %w", err)
		}
	}
	if sessionID != "" {
		m.suppressEcho(ctx, sessionID)
	}
	return nil
}

// ForwardReply sends thread content to the bound session as a prompt, posts
// the assistant's answer back into the thread, and records the resulting
// messages so the next mirror pass skips them.
func (m *Manager) ForwardReply(ctx context.Context, threadID, content, userID string) error {
	sessionID, ok := m.registry.SessionFor(threadID)
	if !ok {
		return ErrNotBound
	}

	model := m.models.For(userID)
	reply, err := m.backend.Prompt(ctx, sessionID, content, model)
	if err != nil {
		return fmt.Errorf("forward prompt: %w", err)
	}

	for _, segment := range labeledSegments(assistantLabel, reply) {
		if err := m.chat.PostMessage(ctx, threadID, segment); err != nil {
			return fmt.Errorf("post reply: %w", err)
		}
	}

	// The prompt and its answer are already visible in the thread; mark
	// everything so the idle pass does not echo them.
	m.suppressEcho(ctx, sessionID)

	m.bus.Publish(event.Event{
		Type: event.ReplyForwarded,
		Data: event.ReplyForwardedData{SessionID: sessionID, ThreadID: threadID, UserID: userID},
	})
	return nil
}

// suppressEcho marks every current session message as mirrored.
func (m *Manager) suppressEcho(ctx context.Context, sessionID string) {
	messages, err := m.backend.Messages(ctx, sessionID)
	if err != nil {
		logging.Warn().Err(err).Str("session", sessionID).Msg("echo suppression fetch failed")
		return
	}
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	m.ledger.MarkAll(sessionID, ids)
}

// StartChatSession creates a backend session on behalf of a chat user,
// binds it to the given channel, and forwards the opening prompt. Returns
// the new session ID.
func (m *Manager) StartChatSession(ctx context.Context, channelID, content, userID string) (string, error) {
	sessionID, err := m.backend.CreateSession(ctx, m.defaultDir, ThreadTitle(content))
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	m.registry.Bind(sessionID, channelID, true)
	logging.Info().Str("session", sessionID).Str("channel", channelID).Msg("chat-initiated session")
	m.bus.Publish(event.Event{
		Type: event.ThreadCreated,
		Data: event.ThreadCreatedData{SessionID: sessionID, ThreadID: channelID, Title: ThreadTitle(content), ChatInitiated: true},
	})

	if err := m.ForwardReply(ctx, channelID, content, userID); err != nil {
		return sessionID, err
	}
	return sessionID, nil
}

// HandleSessionDeleted tears down bridge state for a removed session. The
// thread mapping survives in reverse so late replies fail loudly.
func (m *Manager) HandleSessionDeleted(sessionID string) {
	threadID, ok := m.registry.Remove(sessionID)
	if !ok {
		return
	}
	m.ledger.Forget(sessionID)

	logging.Info().Str("session", sessionID).Str("thread", threadID).Msg("session removed")
	m.bus.Publish(event.Event{
		Type: event.SessionRemoved,
		Data: event.SessionRemovedData{SessionID: sessionID, ThreadID: threadID},
	})
}
