// Package config provides configuration loading, merging, and path management
// for discode.
//
// # Configuration Loading
//
// The Load function searches for and merges configuration from multiple
// sources in priority order:
//
//  1. Global config (~/.config/discode/discode.json or .jsonc)
//  2. Working-directory config (discode.json / discode.jsonc)
//  3. DISCODE_CONFIG file
//  4. DISCODE_CONFIG_CONTENT inline JSON
//  5. Environment variables
//
// Later sources override earlier ones; environment variables have the highest
// precedence.
//
// # Supported Formats
//
// Both JSON and JSONC (JSON with Comments) are supported. JSONC files are
// processed using tidwall/jsonc before unmarshalling.
//
// # Variable Interpolation
//
// Configuration files support two placeholder forms:
//   - {env:VAR_NAME} - expands to the environment variable value
//   - {file:path} - expands to file contents (escaped for JSON)
//
// File paths support absolute paths, paths relative to the config file's
// directory, and ~/ home expansion.
//
// Example:
//
//	{
//	  "discord": {
//	    "token": "{env:DISCODE_TOKEN}"
//	  },
//	  "opencode": {
//	    "url": "http://127.0.0.1:4096"
//	  }
//	}
//
// # Environment Variable Overrides
//
//   - DISCODE_TOKEN - Discord bot token
//   - DISCODE_CHANNEL - parent channel ID
//   - OPENCODE_SERVER - opencode server base URL
//   - DISCODE_MODEL - default model in provider/model form
//   - DISCODE_LOG_LEVEL - log level
//   - DISCODE_CONFIG - path to a specific config file
//   - DISCODE_CONFIG_CONTENT - inline JSON configuration
//
// # Live Reload
//
// Watch monitors the loaded config files with fsnotify and invokes a callback
// with the freshly loaded configuration on changes. The serve command uses
// this to apply log-level changes without a restart.
package config
