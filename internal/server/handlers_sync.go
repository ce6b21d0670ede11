package server

import (
	"encoding/json"
	"net/http"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/opencode-ai/discode/internal/logging"
	"github.com/opencode-ai/discode/pkg/types"
)

// syncSession binds a backend session to a thread, creating the thread when
// none exists yet. Idempotent: re-posting an already-bound session returns
// 200 with the existing thread.
func (s *Server) syncSession(w http.ResponseWriter, r *http.Request) {
	var req types.SyncSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "sessionId is required")
		return
	}

	if !s.directoryAllowed(req.Directory) {
		writeError(w, http.StatusForbidden, ErrCodePermissionDenied, "directory is not in the allowed list")
		return
	}

	threadID, existing, err := s.manager.EnsureThread(r.Context(), req.SessionID, req.Title)
	if err != nil {
		logging.Error().Err(err).Str("session", req.SessionID).Msg("session sync failed")
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	status := http.StatusCreated
	if existing {
		status = http.StatusOK
	}
	writeJSON(w, status, types.SyncSessionResponse{ThreadID: threadID, Existing: existing})
}

// directoryAllowed checks a directory against the configured doublestar
// patterns. An empty pattern list allows everything; an empty directory is
// always allowed.
func (s *Server) directoryAllowed(directory string) bool {
	if len(s.config.AllowedDirs) == 0 || directory == "" {
		return true
	}
	for _, pattern := range s.config.AllowedDirs {
		if ok, err := doublestar.Match(pattern, directory); err == nil && ok {
			return true
		}
	}
	return false
}

// syncMessage posts an exchange into a bound thread, addressed by session
// or by thread.
func (s *Server) syncMessage(w http.ResponseWriter, r *http.Request) {
	var req types.SyncMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if req.SessionID == "" && req.ThreadID == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "sessionId or threadId is required")
		return
	}
	if req.UserContent == "" && req.AssistantContent == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "userContent or assistantContent is required")
		return
	}

	registry := s.manager.Registry()
	sessionID := req.SessionID
	threadID := req.ThreadID
	if sessionID != "" {
		bound, ok := registry.ThreadFor(sessionID)
		if !ok {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "unknown session")
			return
		}
		threadID = bound
	} else {
		bound, ok := registry.SessionFor(threadID)
		if !ok {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "unknown thread")
			return
		}
		sessionID = bound
	}

	if err := s.manager.PostExchange(r.Context(), sessionID, threadID, req.UserContent, req.AssistantContent); err != nil {
		logging.Error().Err(err).Str("thread", threadID).Msg("message sync failed")
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, types.SyncMessageResponse{Success: true})
}

// syncStatus dumps the registry for diagnostics.
func (s *Server) syncStatus(w http.ResponseWriter, r *http.Request) {
	registry := s.manager.Registry()
	writeJSON(w, http.StatusOK, types.SyncStatusResponse{
		ActiveSessions: registry.Len(),
		Sessions:       registry.Snapshot(),
	})
}
