/*
Package event provides a type-safe pub/sub event system for the bridge.

The event system enables decoupled communication between bridge components:
the stream consumer, the thread manager, and the webhook server publish
events that diagnostics and command handlers react to without direct
dependencies.

# Architecture

The package is built on top of watermill's gochannel for infrastructure while
maintaining direct-call semantics to preserve type information. It provides
both synchronous and asynchronous publishing.

# Event Types

  - thread.created: a Discord thread was bound to a session
  - mirror.posted: an idle mirror pass posted new exchanges
  - reply.forwarded: a thread reply was forwarded to the backend
  - session.removed: the backend deleted a session
  - model.selected: a user recorded a model preference
  - stream.status: the backend event stream connected or dropped

# Basic Usage

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.ThreadCreated, func(e event.Event) {
		data := e.Data.(event.ThreadCreatedData)
		logging.Info().Str("thread", data.ThreadID).Msg("thread created")
	})
	defer unsubscribe()

	bus.Publish(event.Event{
		Type: event.ThreadCreated,
		Data: event.ThreadCreatedData{SessionID: id, ThreadID: tid},
	})

# Subscriber Safety Guidelines

When using PublishSync, subscribers are called synchronously in the
publisher's goroutine. To avoid blocking or deadlocks, subscribers MUST:

  - Complete quickly (avoid long-running operations)
  - Use non-blocking channel sends (select with default case)
  - Never call Publish/PublishSync from within a subscriber
  - Never acquire locks that the publisher might hold

# Thread Safety

The event bus is safe for concurrent use. Both publishing and subscribing
operations are protected by internal synchronization.

# Integration with Watermill

The package uses watermill's gochannel internally, exposing the underlying
pubsub via PubSub for middleware or a future move to a distributed broker.
*/
package event
