// Package server implements the bridge's webhook HTTP API.
//
// The API lets companion processes (editor plugins, shell hooks) drive the
// bridge directly instead of waiting for the backend event stream:
//
//   - POST /sync/session: bind a session to a thread (idempotent)
//   - POST /sync/message: post an exchange into a bound thread
//   - GET /sync/status: dump the active bindings
//   - GET /health: liveness probe
//
// Errors use a {"error":{"code","message"}} body. The directory field of a
// session sync request is validated against the configured allowlist of
// doublestar patterns; violations return 403.
package server
