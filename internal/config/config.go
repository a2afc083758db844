// Package config handles the user configuration for askchat.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/diogo/askchat/internal/chat"
	"github.com/diogo/askchat/internal/models"
)

// Environment variables that override the config file
const (
	EnvBaseURL = "ASKCHAT_URL"
	EnvMode    = "ASKCHAT_MODE"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// BaseURL is the address of the assistant service
	BaseURL string `json:"base_url"`
	// Mode selects the response channel: stream, ask or simulate
	Mode string `json:"mode"`
	// BusyPolicy decides what a new question does while a reply is
	// still arriving: reject it, or cancel the old reply
	BusyPolicy      string `json:"busy_policy"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	SimulateDelayMS int    `json:"simulate_delay_ms"`

	Placeholder string `json:"placeholder,omitempty"`
	ErrorText   string `json:"error_text,omitempty"`
	Greeting    string `json:"greeting,omitempty"`
	SeedPrompt  string `json:"seed_prompt,omitempty"`

	Verbose         bool           `json:"verbose"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:         models.DefaultBaseURL,
		Mode:            string(models.ModeStream),
		BusyPolicy:      string(chat.BusyReject),
		TimeoutSeconds:  120,
		SimulateDelayMS: 1000,
		Placeholder:     models.PlaceholderText,
		ErrorText:       models.ErrorText,
		Greeting:        models.DefaultGreeting,
		SeedPrompt:      models.DefaultSeedPrompt,
		Verbose:         false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// Timeout returns the per-request timeout
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SimulateDelay returns the delay of the simulated channel
func (c Config) SimulateDelay() time.Duration {
	return time.Duration(c.SimulateDelayMS) * time.Millisecond
}

// Validate reports the first setting that cannot work
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: must be an http or https URL", c.BaseURL)
	}
	if _, ok := models.ParseMode(c.Mode); !ok {
		return fmt.Errorf("invalid mode %q: must be one of %v", c.Mode, models.Modes())
	}
	if _, ok := chat.ParseBusyPolicy(c.BusyPolicy); !ok {
		return fmt.Errorf("invalid busy_policy %q: must be %q or %q", c.BusyPolicy, chat.BusyReject, chat.BusyCancel)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid timeout_seconds %d: must be positive", c.TimeoutSeconds)
	}
	if c.SimulateDelayMS < 0 {
		return fmt.Errorf("invalid simulate_delay_ms %d: must not be negative", c.SimulateDelayMS)
	}
	return nil
}

// ApplyEnv overrides settings from the environment. getenv is usually os.Getenv.
func (c Config) ApplyEnv(getenv func(string) string) Config {
	if v := getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := getenv(EnvMode); v != "" {
		c.Mode = v
	}
	return c
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".askchat")
	return configDir, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
