/*
Package config manages TOML config for PinServe services.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/pinserve/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the name of the config file inside the config dir.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Backend BackendConfig `toml:"backend"`
	Suggest SuggestConfig `toml:"suggest"`
	CLI     CliConfig     `toml:"cli"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxInput     int `toml:"max_input"`
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

// BackendConfig points at the pinyin conversion backend.
type BackendConfig struct {
	Endpoint  string `toml:"endpoint"`
	InputTool string `toml:"input_tool"`
	TimeoutMs int    `toml:"timeout_ms"`
	CacheTTLs int    `toml:"cache_ttl_s"`
	CacheSize int    `toml:"cache_size"`
}

// SuggestConfig holds caller-side request pacing.
type SuggestConfig struct {
	DebounceMs int `toml:"debounce_ms"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Limit     int  `toml:"limit"`
	ShowTrace bool `toml:"show_trace"`
	Suggest   bool `toml:"suggest"`
}

// Timeout is the per-request backend timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

// CacheTTL is how long conversions stay cached; zero disables the cache.
func (b BackendConfig) CacheTTL() time.Duration {
	return time.Duration(b.CacheTTLs) * time.Second
}

// Debounce is the wait between the last keystroke and a backend request.
func (s SuggestConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxInput:     256,
			DefaultLimit: 6,
			MaxLimit:     20,
		},
		Backend: BackendConfig{
			Endpoint:  "https://inputtools.google.com/request",
			InputTool: "zh-t-i0-pinyin",
			TimeoutMs: 3000,
			CacheTTLs: 300,
			CacheSize: 2048,
		},
		Suggest: SuggestConfig{
			DebounceMs: 300,
		},
		CLI: CliConfig{
			Limit:     6,
			ShowTrace: true,
			Suggest:   true,
		},
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.MaxInput < 1:
		return fmt.Errorf("server.max_input must be positive, got %d", c.Server.MaxInput)
	case c.Server.MaxLimit < 1:
		return fmt.Errorf("server.max_limit must be positive, got %d", c.Server.MaxLimit)
	case c.Server.DefaultLimit < 1 || c.Server.DefaultLimit > c.Server.MaxLimit:
		return fmt.Errorf("server.default_limit must be within 1..%d, got %d", c.Server.MaxLimit, c.Server.DefaultLimit)
	case c.Backend.Endpoint == "":
		return fmt.Errorf("backend.endpoint is empty")
	case c.Backend.TimeoutMs < 1:
		return fmt.Errorf("backend.timeout_ms must be positive, got %d", c.Backend.TimeoutMs)
	case c.Backend.CacheTTLs < 0 || c.Backend.CacheSize < 0:
		return fmt.Errorf("backend cache settings must not be negative")
	case c.Suggest.DebounceMs < 0:
		return fmt.Errorf("suggest.debounce_ms must not be negative, got %d", c.Suggest.DebounceMs)
	}
	return nil
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/pinserve
// 2. ~/Library/Application Support/pinserve (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "pinserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "pinserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/pinserve/config.toml
// 3. Builtin defaults
//
// The returned path is empty when builtin defaults are used.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Keys of the wrong type are recovered
// section by section; a file that is not TOML at all, or values that fail
// validation, are an error so callers can keep what they had.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		var perr error
		config, perr = tryPartialParse(configPath)
		if perr != nil {
			return nil, perr
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if backendSection, ok := utils.ExtractSection(tempConfig, "backend"); ok {
		extractBackendConfig(backendSection, &config.Backend)
	}
	if suggestSection, ok := utils.ExtractSection(tempConfig, "suggest"); ok {
		if val, ok := utils.ExtractInt64(suggestSection, "debounce_ms"); ok {
			config.Suggest.DebounceMs = val
		}
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_input"); ok {
		server.MaxInput = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
}

// extractBackendConfig extracts backend configuration from a map
func extractBackendConfig(data map[string]any, backend *BackendConfig) {
	if val, ok := utils.ExtractString(data, "endpoint"); ok {
		backend.Endpoint = val
	}
	if val, ok := utils.ExtractString(data, "input_tool"); ok {
		backend.InputTool = val
	}
	if val, ok := utils.ExtractInt64(data, "timeout_ms"); ok {
		backend.TimeoutMs = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_ttl_s"); ok {
		backend.CacheTTLs = val
	}
	if val, ok := utils.ExtractInt64(data, "cache_size"); ok {
		backend.CacheSize = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		cli.Limit = val
	}
	if val, ok := utils.ExtractBool(data, "show_trace"); ok {
		cli.ShowTrace = val
	}
	if val, ok := utils.ExtractBool(data, "suggest"); ok {
		cli.Suggest = val
	}
}

// RebuildConfigFile force creates a new config.toml at the given path, or at
// the default location when path is empty.
func RebuildConfigFile(path string) (string, error) {
	if path == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	return path, SaveConfig(DefaultConfig(), path)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
