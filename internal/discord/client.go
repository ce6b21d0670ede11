// Package discord adapts the chat platform to the bridge: thread
// operations for the manager, plus the message and interaction handlers
// that drive replies, DM sessions, and the model picker.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/opencode-ai/discode/internal/bridge"
	"github.com/opencode-ai/discode/internal/event"
	"github.com/opencode-ai/discode/internal/logging"
	"github.com/opencode-ai/discode/internal/pager"
	"github.com/opencode-ai/discode/pkg/types"
)

// threadArchiveMinutes is the auto-archive duration for created threads.
const threadArchiveMinutes = 1440

// Client connects the Discord gateway to the bridge. It implements
// bridge.ChatClient.
type Client struct {
	session *discordgo.Session
	cfg     types.DiscordConfig

	mu        sync.RWMutex
	channelID string // resolved parent channel

	manager *bridge.Manager
	models  *bridge.Models
	catalog []types.ModelRef
	menus   *pager.Store
	bus     *event.Bus
}

// New creates a gateway client. Attach must be called with the bridge
// manager before Start.
func New(cfg types.DiscordConfig, models *bridge.Models, catalog []types.ModelRef, bus *event.Bus) (*Client, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &Client{
		session: session,
		cfg:     cfg,
		models:  models,
		catalog: catalog,
		menus:   pager.NewStore(),
		bus:     bus,
	}, nil
}

// Attach wires the bridge manager. Split from New because the manager
// needs the client as its ChatClient.
func (c *Client) Attach(manager *bridge.Manager) {
	c.manager = manager
}

// Start opens the gateway connection, resolves the parent channel, and
// registers handlers.
func (c *Client) Start(ctx context.Context) error {
	c.session.AddHandler(c.onMessageCreate)
	c.session.AddHandler(c.onInteractionCreate)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}

	channelID, err := c.resolveChannel()
	if err != nil {
		c.session.Close()
		return err
	}
	c.mu.Lock()
	c.channelID = channelID
	c.mu.Unlock()

	logging.Info().Str("channel", channelID).Msg("discord client ready")
	return nil
}

// Stop closes the gateway connection.
func (c *Client) Stop() error {
	return c.session.Close()
}

// resolveChannel finds the configured parent channel, creating it when only
// a name is configured and no channel matches.
func (c *Client) resolveChannel() (string, error) {
	if c.cfg.ChannelID != "" {
		if _, err := c.session.Channel(c.cfg.ChannelID); err != nil {
			return "", fmt.Errorf("configured channel %s: %w", c.cfg.ChannelID, err)
		}
		return c.cfg.ChannelID, nil
	}

	if c.cfg.GuildID == "" {
		return "", fmt.Errorf("either discord.channelID or discord.guildID must be configured")
	}

	channels, err := c.session.GuildChannels(c.cfg.GuildID)
	if err != nil {
		return "", fmt.Errorf("list guild channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == c.cfg.ChannelName {
			return ch.ID, nil
		}
	}

	created, err := c.session.GuildChannelCreate(c.cfg.GuildID, c.cfg.ChannelName, discordgo.ChannelTypeGuildText)
	if err != nil {
		return "", fmt.Errorf("create channel %q: %w", c.cfg.ChannelName, err)
	}
	logging.Info().Str("channel", created.ID).Str("name", c.cfg.ChannelName).Msg("created bridge channel")
	return created.ID, nil
}

// CreateThread starts a public thread under the parent channel.
func (c *Client) CreateThread(ctx context.Context, title string) (string, error) {
	c.mu.RLock()
	parent := c.channelID
	c.mu.RUnlock()

	thread, err := c.session.ThreadStart(parent, title, discordgo.ChannelTypeGuildPublicThread, threadArchiveMinutes)
	if err != nil {
		return "", fmt.Errorf("start thread: %w", err)
	}
	if err := c.session.ThreadJoin(thread.ID); err != nil {
		logging.Warn().Err(err).Str("thread", thread.ID).Msg("thread join failed")
	}
	return thread.ID, nil
}

// DeleteThread removes a thread channel.
func (c *Client) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := c.session.ChannelDelete(threadID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}

// PostMessage sends one message to a channel or thread.
func (c *Client) PostMessage(ctx context.Context, channelID, content string) error {
	if _, err := c.session.ChannelMessageSend(channelID, content); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
