package event

// ThreadCreatedData is the data for thread.created events.
type ThreadCreatedData struct {
	SessionID     string `json:"sessionID"`
	ThreadID      string `json:"threadID"`
	Title         string `json:"title"`
	ChatInitiated bool   `json:"chatInitiated"`
}

// MirrorPostedData is the data for mirror.posted events.
type MirrorPostedData struct {
	SessionID string `json:"sessionID"`
	ThreadID  string `json:"threadID"`
	Exchanges int    `json:"exchanges"`
}

// ReplyForwardedData is the data for reply.forwarded events.
type ReplyForwardedData struct {
	SessionID string `json:"sessionID"`
	ThreadID  string `json:"threadID"`
	UserID    string `json:"userID,omitempty"`
}

// SessionRemovedData is the data for session.removed events.
type SessionRemovedData struct {
	SessionID string `json:"sessionID"`
	ThreadID  string `json:"threadID,omitempty"`
}

// ModelSelectedData is the data for model.selected events.
type ModelSelectedData struct {
	UserID string `json:"userID"`
	Model  string `json:"model"`
}

// StreamStatusData is the data for stream.status events.
type StreamStatusData struct {
	Connected bool   `json:"connected"`
	Reason    string `json:"reason,omitempty"`
}
