package discord

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/opencode-ai/discode/internal/bridge"
	"github.com/opencode-ai/discode/internal/event"
	"github.com/opencode-ai/discode/internal/logging"
)

// onMessageCreate routes incoming messages: prefix commands, DM session
// starts, and thread replies.
func (c *Client) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}
	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	ctx := context.Background()

	if cmd, ok := strings.CutPrefix(content, c.cfg.CommandPrefix); ok {
		c.handleCommand(ctx, m, cmd)
		return
	}

	if m.GuildID == "" {
		c.handleDirectMessage(ctx, m, content)
		return
	}

	c.handleThreadReply(ctx, m, content)
}

// handleCommand dispatches prefix commands.
func (c *Client) handleCommand(ctx context.Context, m *discordgo.MessageCreate, cmd string) {
	name, arg, _ := strings.Cut(cmd, " ")
	switch name {
	case "model":
		c.handleModelCommand(ctx, m, strings.TrimSpace(arg))
	default:
		c.reply(m.ChannelID, "Unknown command. Try `"+c.cfg.CommandPrefix+"model`.")
	}
}

// handleModelCommand records a model preference. With an argument the input
// is resolved against the catalog directly; without one a paginated picker
// is shown.
func (c *Client) handleModelCommand(ctx context.Context, m *discordgo.MessageCreate, arg string) {
	if arg != "" {
		ref, ok := bridge.Resolve(arg, c.catalog)
		if !ok {
			c.reply(m.ChannelID, "No model matches `"+arg+"`. Use `"+c.cfg.CommandPrefix+"model` to pick from the list.")
			return
		}
		c.models.Set(m.Author.ID, ref)
		c.publishModelSelected(m.Author.ID, ref.String())
		c.reply(m.ChannelID, "Model set to **"+ref.DisplayLabel()+"**.")
		return
	}

	if len(c.catalog) == 0 {
		c.reply(m.ChannelID, "No model catalog configured. Use `"+c.cfg.CommandPrefix+"model provider/model` instead.")
		return
	}

	if err := c.sendModelPicker(m.ChannelID, m.Author.ID); err != nil {
		logging.Error().Err(err).Msg("failed to send model picker")
	}
}

// handleDirectMessage forwards DM content: into an existing DM-bound
// session if one exists, otherwise by starting a fresh chat-initiated
// session.
func (c *Client) handleDirectMessage(ctx context.Context, m *discordgo.MessageCreate, content string) {
	c.session.ChannelTyping(m.ChannelID)

	registry := c.manager.Registry()
	if _, ok := registry.SessionFor(m.ChannelID); ok {
		c.forward(ctx, m, content)
		return
	}

	if _, err := c.manager.StartChatSession(ctx, m.ChannelID, content, m.Author.ID); err != nil {
		logging.Error().Err(err).Str("user", m.Author.ID).Msg("chat session start failed")
		c.reply(m.ChannelID, "Could not start a session: "+err.Error())
	}
}

// handleThreadReply forwards a message typed into a bound thread.
func (c *Client) handleThreadReply(ctx context.Context, m *discordgo.MessageCreate, content string) {
	registry := c.manager.Registry()
	if _, ok := registry.SessionFor(m.ChannelID); !ok {
		// Not one of ours.
		return
	}

	c.session.ChannelTyping(m.ChannelID)
	c.forward(ctx, m, content)
}

func (c *Client) forward(ctx context.Context, m *discordgo.MessageCreate, content string) {
	err := c.manager.ForwardReply(ctx, m.ChannelID, content, m.Author.ID)
	if err == nil {
		return
	}

	logging.Error().Err(err).Str("thread", m.ChannelID).Msg("forward failed")
	if errors.Is(err, bridge.ErrNotBound) {
		c.reply(m.ChannelID, "This thread is not connected to a session.")
		return
	}
	// Backend errors (including prompts into deleted sessions) are
	// rendered into the thread so the author sees what happened.
	c.reply(m.ChannelID, "Could not forward your message: "+err.Error())
}

func (c *Client) reply(channelID, content string) {
	if _, err := c.session.ChannelMessageSend(channelID, content); err != nil {
		logging.Warn().Err(err).Str("channel", channelID).Msg("reply failed")
	}
}

func (c *Client) publishModelSelected(userID, model string) {
	c.bus.Publish(event.Event{
		Type: event.ModelSelected,
		Data: event.ModelSelectedData{UserID: userID, Model: model},
	})
}
