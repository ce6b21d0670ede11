/*
Package bridge implements the session synchronization core: the mapping
between backend coding sessions and chat threads, and the data flow that
keeps the two sides consistent.

# Components

  - Registry: bidirectional session/thread mapping with provenance
  - Ledger: per-session record of already-mirrored message IDs
  - Extractor: pairs raw session messages into user/assistant exchanges
  - Splitter: breaks long content into chat-sized segments at natural
    boundaries
  - Manager: thread lifecycle (create, mirror, forward)
  - Consumer: drains the backend event stream and schedules mirroring
  - Models: per-user model preferences with fuzzy catalog resolution

# Data flow

A terminal-originated session becomes visible to the bridge when the backend
emits an idle event for it. The consumer waits a short settle delay, loads
the session's messages, creates a thread titled after the first user prompt
if none is bound yet, and posts every exchange the ledger has not seen.

Replies typed into a bound thread travel the other way: the manager forwards
the content as a prompt (using the author's model preference), posts the
assistant's answer back into the thread, and records the resulting messages
in the ledger so the next idle pass does not mirror them again.
*/
package bridge
