package types

// Config represents the discode bridge configuration.
type Config struct {
	// Schema reference (for editor support)
	Schema string `json:"$schema,omitempty"`

	// Discord connection settings
	Discord DiscordConfig `json:"discord,omitempty"`

	// Opencode backend settings
	Opencode OpencodeConfig `json:"opencode,omitempty"`

	// Default model in "provider/model" form, used when a user has no preference
	Model string `json:"model,omitempty"`

	// Optional YAML model catalog for the interactive picker
	Catalog string `json:"catalog,omitempty"`

	// Glob patterns (doublestar) limiting the directories /sync/session may bind
	AllowedDirs []string `json:"allowedDirs,omitempty"`

	// Webhook HTTP server settings
	HTTP HTTPConfig `json:"http,omitempty"`

	// Log level (DEBUG|INFO|WARN|ERROR)
	LogLevel string `json:"logLevel,omitempty"`
}

// DiscordConfig holds the chat-platform settings.
type DiscordConfig struct {
	// Bot token. Usually supplied via DISCODE_TOKEN rather than a file.
	Token string `json:"token,omitempty"`

	// Guild hosting the bridge channel
	GuildID string `json:"guildID,omitempty"`

	// Parent channel for mirrored threads. If ChannelID is empty the bridge
	// resolves (or creates) a text channel named ChannelName in the guild.
	ChannelID   string `json:"channelID,omitempty"`
	ChannelName string `json:"channelName,omitempty"`

	// Prefix for text commands such as "!model"
	CommandPrefix string `json:"commandPrefix,omitempty"`
}

// OpencodeConfig holds the AI backend settings.
type OpencodeConfig struct {
	// Base URL of the opencode server, e.g. "http://127.0.0.1:4096"
	URL string `json:"url,omitempty"`

	// Default working directory for sessions created by the chat flow
	Directory string `json:"directory,omitempty"`
}

// HTTPConfig holds webhook server settings.
type HTTPConfig struct {
	Port int `json:"port,omitempty"`

	// EnableCORS is a pointer so an explicit "false" in a later config
	// layer can override an earlier "true".
	EnableCORS *bool `json:"enableCORS,omitempty"`
}

// CORSEnabled resolves the tri-state flag; unset means enabled.
func (h HTTPConfig) CORSEnabled() bool {
	return h.EnableCORS == nil || *h.EnableCORS
}
