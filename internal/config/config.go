// Package config provides configuration types and defaults for agentdeck.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for agentdeck.
type Config struct {
	ServerURL string   `mapstructure:"server_url"` // orchestrator base URL, e.g. http://localhost:8000
	UI        UIConfig `mapstructure:"ui"`

	// Timers. These mirror the orchestrator dashboard's cadence and rarely
	// need changing; they are configurable mainly for tests and demos.
	ReconnectDelay  time.Duration `mapstructure:"reconnect_delay"`
	InspectInterval time.Duration `mapstructure:"inspect_interval"`
	ElapsedInterval time.Duration `mapstructure:"elapsed_interval"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		ServerURL: "http://localhost:8000",
		UI: UIConfig{
			ShowStatusBar: true,
			MarkdownStyle: "dark",
		},
		ReconnectDelay:  3 * time.Second,
		InspectInterval: 2 * time.Second,
		ElapsedInterval: 100 * time.Millisecond,
	}
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server_url %q: %w", c.ServerURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url must be http or https, got %q", u.Scheme)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect_delay must be positive")
	}
	if c.InspectInterval <= 0 {
		return fmt.Errorf("inspect_interval must be positive")
	}
	if c.ElapsedInterval <= 0 {
		return fmt.Errorf("elapsed_interval must be positive")
	}
	switch c.UI.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", c.UI.MarkdownStyle)
	}
	return nil
}

// WebSocketURL derives the stream endpoint from the server URL
// (http://host → ws://host/ws).
func (c Config) WebSocketURL() string {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String()
}

// StateDir returns the directory holding the snapshot store and debug log,
// creating it if needed.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "agentdeck")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating state directory: %w", err)
	}
	return dir, nil
}

// WriteDefaultConfig writes the default config as YAML to the given path,
// creating parent directories as needed.
func WriteDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	d := Defaults()
	content := fmt.Sprintf(`# agentdeck configuration
server_url: %s

ui:
  show_status_bar: %t
  markdown_style: %s

reconnect_delay: %s
inspect_interval: %s
elapsed_interval: %s
`, d.ServerURL, d.UI.ShowStatusBar, d.UI.MarkdownStyle,
		d.ReconnectDelay, d.InspectInterval, d.ElapsedInterval)
	return os.WriteFile(path, []byte(content), 0644) //nolint:gosec // G306: config file is not sensitive
}
