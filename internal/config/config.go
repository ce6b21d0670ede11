package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/opencode-ai/discode/pkg/types"
	"github.com/tidwall/jsonc"
)

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.config/discode/)
// 2. Working-directory config (discode.json / discode.jsonc)
// 3. DISCODE_CONFIG file
// 4. DISCODE_CONFIG_CONTENT inline JSON
// 5. Environment variables
//
// The second return value lists the files that were actually loaded, in
// order, for use by the config watcher.
func Load(directory string) (*types.Config, []string, error) {
	config := defaultConfig()

	var loadedPaths []string
	loaded := make(map[string]bool)

	loadOnce := func(path string, baseDir string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config, baseDir) == nil {
			loaded[absPath] = true
			loadedPaths = append(loadedPaths, absPath)
		}
	}

	// 1. Global config
	globalPath := GetPaths().Config
	loadOnce(filepath.Join(globalPath, "discode.json"), globalPath)
	loadOnce(filepath.Join(globalPath, "discode.jsonc"), globalPath)

	// 2. Working-directory config
	if directory != "" {
		loadOnce(filepath.Join(directory, "discode.json"), directory)
		loadOnce(filepath.Join(directory, "discode.jsonc"), directory)
	}

	// 3. DISCODE_CONFIG file override
	if configPath := os.Getenv("DISCODE_CONFIG"); configPath != "" {
		loadOnce(configPath, filepath.Dir(configPath))
	}

	// 4. DISCODE_CONFIG_CONTENT inline JSON
	if configContent := os.Getenv("DISCODE_CONFIG_CONTENT"); configContent != "" {
		var inlineConfig types.Config
		if err := json.Unmarshal([]byte(configContent), &inlineConfig); err == nil {
			mergeConfig(config, &inlineConfig)
		}
	}

	// 5. Environment variables (highest priority)
	applyEnvOverrides(config)

	return config, loadedPaths, nil
}

func defaultConfig() *types.Config {
	return &types.Config{
		Discord: types.DiscordConfig{
			ChannelName:   "opencode",
			CommandPrefix: "!",
		},
		Opencode: types.OpencodeConfig{
			URL: "http://127.0.0.1:4096",
		},
		HTTP: types.HTTPConfig{
			Port: 8194,
		},
	}
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config, baseDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip
	}

	// Strip JSONC comments using tidwall/jsonc
	data = jsonc.ToJSON(data)

	// Apply interpolation
	data = interpolate(data, baseDir)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	// Handle {env:VAR_NAME} placeholders
	envPattern := regexp.MustCompile(`\{env:([^}]+)\}`)
	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})

	// Handle {file:path} placeholders
	filePattern := regexp.MustCompile(`\{file:([^}]+)\}`)
	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		filePath := filePattern.FindStringSubmatch(match)[1]

		if strings.HasPrefix(filePath, "~/") {
			home := os.Getenv("HOME")
			filePath = filepath.Join(home, filePath[2:])
		} else if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(baseDir, filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return match // Keep original if file not found
		}

		// Escape for JSON string
		escaped := strings.ReplaceAll(strings.TrimSpace(string(content)), "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		escaped = strings.ReplaceAll(escaped, "\n", "\\n")
		escaped = strings.ReplaceAll(escaped, "\r", "\\r")
		escaped = strings.ReplaceAll(escaped, "\t", "\\t")

		return escaped
	})

	return []byte(str)
}

// mergeConfig merges source config into target. Non-zero source fields win.
func mergeConfig(target, source *types.Config) {
	if source.Schema != "" {
		target.Schema = source.Schema
	}
	if source.Model != "" {
		target.Model = source.Model
	}
	if source.Catalog != "" {
		target.Catalog = source.Catalog
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
	}
	if len(source.AllowedDirs) > 0 {
		target.AllowedDirs = append(target.AllowedDirs, source.AllowedDirs...)
	}

	if source.Discord.Token != "" {
		target.Discord.Token = source.Discord.Token
	}
	if source.Discord.GuildID != "" {
		target.Discord.GuildID = source.Discord.GuildID
	}
	if source.Discord.ChannelID != "" {
		target.Discord.ChannelID = source.Discord.ChannelID
	}
	if source.Discord.ChannelName != "" {
		target.Discord.ChannelName = source.Discord.ChannelName
	}
	if source.Discord.CommandPrefix != "" {
		target.Discord.CommandPrefix = source.Discord.CommandPrefix
	}

	if source.Opencode.URL != "" {
		target.Opencode.URL = source.Opencode.URL
	}
	if source.Opencode.Directory != "" {
		target.Opencode.Directory = source.Opencode.Directory
	}

	if source.HTTP.Port != 0 {
		target.HTTP.Port = source.HTTP.Port
	}
	if source.HTTP.EnableCORS != nil {
		target.HTTP.EnableCORS = source.HTTP.EnableCORS
	}
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(config *types.Config) {
	if token := os.Getenv("DISCODE_TOKEN"); token != "" {
		config.Discord.Token = token
	}
	if channel := os.Getenv("DISCODE_CHANNEL"); channel != "" {
		config.Discord.ChannelID = channel
	}
	if url := os.Getenv("OPENCODE_SERVER"); url != "" {
		config.Opencode.URL = url
	}
	if model := os.Getenv("DISCODE_MODEL"); model != "" {
		config.Model = model
	}
	if level := os.Getenv("DISCODE_LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}
}

// Save saves the configuration to a file.
func Save(config *types.Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
