package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "http://localhost:8000", cfg.ServerURL)
	require.Equal(t, "dark", cfg.UI.MarkdownStyle)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"https server", func(c *Config) { c.ServerURL = "https://sre.example.com" }, false},
		{"light markdown", func(c *Config) { c.UI.MarkdownStyle = "light" }, false},
		{"bad scheme", func(c *Config) { c.ServerURL = "ftp://host" }, true},
		{"zero reconnect", func(c *Config) { c.ReconnectDelay = 0 }, true},
		{"negative inspect", func(c *Config) { c.InspectInterval = -1 }, true},
		{"bad markdown style", func(c *Config) { c.UI.MarkdownStyle = "solarized" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWebSocketURL(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, "ws://localhost:8000/ws", cfg.WebSocketURL())

	cfg.ServerURL = "https://sre.example.com"
	require.Equal(t, "wss://sre.example.com/ws", cfg.WebSocketURL())
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "server_url: http://localhost:8000")
	require.Contains(t, string(data), "reconnect_delay: 3s")
}
