// Package opencode adapts the opencode SDK to the bridge's backend
// interfaces. All SDK union handling lives here; the bridge core only sees
// reduced messages and events.
package opencode

import (
	"context"
	"fmt"

	"github.com/opencode-ai/discode/internal/bridge"
	"github.com/opencode-ai/discode/internal/logging"
	"github.com/opencode-ai/discode/pkg/types"
	opencode "github.com/sst/opencode-sdk-go"
	"github.com/sst/opencode-sdk-go/option"
)

// Client wraps the SDK client. It implements bridge.Backend and
// bridge.EventSource.
type Client struct {
	api *opencode.Client
}

// New creates a client against the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		api: opencode.NewClient(option.WithBaseURL(baseURL)),
	}
}

// CreateSession creates a session and returns its ID.
func (c *Client) CreateSession(ctx context.Context, directory, title string) (string, error) {
	params := opencode.SessionNewParams{}
	if directory != "" {
		params.Directory = opencode.F(directory)
	}
	if title != "" {
		params.Title = opencode.F(title)
	}

	session, err := c.api.Session.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return session.ID, nil
}

// Messages returns the session's messages reduced to their text content.
func (c *Client) Messages(ctx context.Context, sessionID string) ([]bridge.Message, error) {
	resp, err := c.api.Session.Messages(ctx, sessionID, opencode.SessionMessagesParams{})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if resp == nil {
		return nil, nil
	}

	out := make([]bridge.Message, 0, len(*resp))
	for _, m := range *resp {
		msg := bridge.Message{ID: m.Info.ID}
		switch m.Info.Role {
		case opencode.MessageRoleUser:
			msg.Role = bridge.RoleUser
		case opencode.MessageRoleAssistant:
			msg.Role = bridge.RoleAssistant
		default:
			continue
		}
		msg.Text = joinTextParts(m.Parts)
		out = append(out, msg)
	}
	return out, nil
}

// Prompt sends text to a session and returns the assistant's reply text.
func (c *Client) Prompt(ctx context.Context, sessionID, text string, model types.ModelRef) (string, error) {
	params := opencode.SessionPromptParams{
		Parts: opencode.F([]opencode.SessionPromptParamsPartUnion{
			opencode.TextPartInputParam{
				Type: opencode.F(opencode.TextPartInputTypeText),
				Text: opencode.F(text),
			},
		}),
	}
	if !model.IsZero() {
		params.Model = opencode.F(opencode.SessionPromptParamsModel{
			ProviderID: opencode.F(model.ProviderID),
			ModelID:    opencode.F(model.ModelID),
		})
	}

	resp, err := c.api.Session.Prompt(ctx, sessionID, params)
	if err != nil {
		return "", fmt.Errorf("prompt session: %w", err)
	}
	return joinTextParts(resp.Parts), nil
}

// DeleteSession removes a session on the backend.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := c.api.Session.Delete(ctx, sessionID, opencode.SessionDeleteParams{})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// joinTextParts concatenates the text parts of a message.
func joinTextParts(parts []opencode.Part) string {
	var text string
	for _, part := range parts {
		if textPart, ok := part.AsUnion().(opencode.TextPart); ok {
			if text != "" {
				text += "\n"
			}
			text += textPart.Text
		}
	}
	return text
}

// Stream opens the server's SSE event stream and reduces it to bridge
// events. Both channels close when the stream ends; a terminal error is
// delivered on the error channel first.
func (c *Client) Stream(ctx context.Context) (<-chan bridge.BackendEvent, <-chan error) {
	events := make(chan bridge.BackendEvent)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		stream := c.api.Event.ListStreaming(ctx, opencode.EventListParams{})
		defer stream.Close()

		for stream.Next() {
			evt, ok := reduceEvent(stream.Current())
			if !ok {
				continue
			}
			select {
			case events <- evt:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil {
			errs <- err
		}
	}()

	return events, errs
}

// reduceEvent maps an SDK stream event to the bridge envelope. Events the
// bridge does not act on are dropped.
func reduceEvent(evt opencode.EventListResponse) (bridge.BackendEvent, bool) {
	switch v := evt.AsUnion().(type) {
	case opencode.EventListResponseEventSessionIdle:
		return bridge.BackendEvent{
			Type:      bridge.EventSessionIdle,
			SessionID: v.Properties.SessionID,
		}, true
	case opencode.EventListResponseEventSessionDeleted:
		return bridge.BackendEvent{
			Type:      bridge.EventSessionDeleted,
			SessionID: v.Properties.Info.ID,
		}, true
	default:
		logging.Debug().Str("type", string(evt.Type)).Msg("ignoring stream event")
		return bridge.BackendEvent{}, false
	}
}
