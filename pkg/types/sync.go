package types

// SyncSessionRequest asks the bridge to bind a backend session to a thread,
// creating the thread if necessary. Idempotent per session.
type SyncSessionRequest struct {
	SessionID string `json:"sessionId"`
	Title     string `json:"title,omitempty"`
	Directory string `json:"directory,omitempty"`
}

// SyncSessionResponse reports the thread bound to the session.
type SyncSessionResponse struct {
	ThreadID string `json:"threadId"`
	Existing bool   `json:"existing"`
}

// SyncMessageRequest posts an exchange into a bound thread. Either SessionID
// or ThreadID must be set; SessionID wins when both are present.
type SyncMessageRequest struct {
	SessionID        string `json:"sessionId,omitempty"`
	ThreadID         string `json:"threadId,omitempty"`
	UserContent      string `json:"userContent,omitempty"`
	AssistantContent string `json:"assistantContent,omitempty"`
}

// SyncMessageResponse acknowledges a posted exchange.
type SyncMessageResponse struct {
	Success bool `json:"success"`
}

// SessionBinding is one registry entry in the status dump.
type SessionBinding struct {
	SessionID     string `json:"sessionId"`
	ThreadID      string `json:"threadId"`
	ChatInitiated bool   `json:"chatInitiated"`
}

// SyncStatusResponse is the diagnostic dump of the registry.
type SyncStatusResponse struct {
	ActiveSessions int              `json:"activeSessions"`
	Sessions       []SessionBinding `json:"sessions"`
}
