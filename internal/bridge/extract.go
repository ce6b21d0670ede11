package bridge

import "strings"

// Exchange is one user prompt paired with the assistant output it produced.
// A trailing user message with no response yet yields an exchange with an
// empty AssistantText.
type Exchange struct {
	UserText      string
	AssistantText string
	// MessageIDs are the backend IDs of every message folded into this
	// exchange, in order. Used for ledger bookkeeping.
	MessageIDs []string
}

// ExtractExchanges pairs a session's messages into exchanges. Each user
// message opens a new exchange; consecutive assistant messages are folded
// into the current one. Assistant output with no preceding user message
// (summaries, compactions) opens an exchange with an empty UserText.
func ExtractExchanges(messages []Message) []Exchange {
	var out []Exchange
	var current *Exchange

	flush := func() {
		if current != nil {
			out = append(out, *current)
			current = nil
		}
	}

	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			flush()
			current = &Exchange{UserText: m.Text, MessageIDs: []string{m.ID}}
		case RoleAssistant:
			if current == nil {
				current = &Exchange{}
			}
			if m.Text != "" {
				if current.AssistantText != "" {
					current.AssistantText += "\n"
				}
				current.AssistantText += m.Text
			}
			current.MessageIDs = append(current.MessageIDs, m.ID)
		}
	}
	flush()

	return out
}

// FirstUserText returns the text of the first user message, used for thread
// titles. Returns "" when the session has no user messages.
func FirstUserText(messages []Message) string {
	for _, m := range messages {
		if m.Role == RoleUser && strings.TrimSpace(m.Text) != "" {
			return m.Text
		}
	}
	return ""
}

// completeExchanges keeps only exchanges with both sides present. A prompt
// with no answer yet stays unmarked so a later pass picks it up once the
// response lands; assistant output with no prompt (summaries, compactions)
// never mirrors.
func completeExchanges(exchanges []Exchange) []Exchange {
	var out []Exchange
	for _, ex := range exchanges {
		if ex.UserText == "" || ex.AssistantText == "" {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// unseenExchanges filters exchanges down to those the ledger has not fully
// recorded. An exchange counts as new when any of its messages is unseen.
func unseenExchanges(ledger *Ledger, sessionID string, exchanges []Exchange) []Exchange {
	var out []Exchange
	for _, ex := range exchanges {
		fresh := false
		for _, id := range ex.MessageIDs {
			if !ledger.Seen(sessionID, id) {
				fresh = true
				break
			}
		}
		if fresh {
			out = append(out, ex)
		}
	}
	return out
}
