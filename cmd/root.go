// Package cmd wires configuration and the Bubble Tea program together.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"agentdeck/internal/api"
	"agentdeck/internal/app"
	"agentdeck/internal/config"
	"agentdeck/internal/log"
	"agentdeck/internal/store"
	"agentdeck/internal/watcher"
	"agentdeck/internal/ws"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "agentdeck",
	Short:   "A terminal ui for the SRE agent orchestrator",
	Long:    `A terminal user interface for chatting with the SRE agent orchestrator, watching its pipeline execute in real time, and inspecting the ephemeral agents it spawns.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/agentdeck/config.yaml)")
	rootCmd.Flags().StringP("server", "s", "",
		"orchestrator base URL (e.g. http://localhost:8000)")
	rootCmd.Flags().Bool("debug", false,
		"write a debug log to the state directory")

	_ = viper.BindPFlag("server_url", rootCmd.Flags().Lookup("server"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("server_url", defaults.ServerURL)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("reconnect_delay", defaults.ReconnectDelay)
	viper.SetDefault("inspect_interval", defaults.InspectInterval)
	viper.SetDefault("elapsed_interval", defaults.ElapsedInterval)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(filepath.Join(home, ".config", "agentdeck"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the default one.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "agentdeck", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	stateDir, err := config.StateDir()
	if err != nil {
		return err
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		closeLog, logErr := log.Init(filepath.Join(stateDir, "debug.log"))
		if logErr != nil {
			return fmt.Errorf("opening debug log: %w", logErr)
		}
		defer closeLog()
	}

	snapshots, err := store.Open(filepath.Join(stateDir, "state.db"))
	if err != nil {
		// Durability degrades, the client still runs.
		log.ErrorErr(log.CatStore, "On-disk store unavailable, using memory", err)
		snapshots, err = store.OpenInMemory()
		if err != nil {
			return fmt.Errorf("opening snapshot store: %w", err)
		}
	}
	defer func() { _ = snapshots.Close() }()

	conn := ws.New(ws.Config{
		URL:            cfg.WebSocketURL(),
		ReconnectDelay: cfg.ReconnectDelay,
	})

	zone.NewGlobal()
	model := app.New(cfg, conn, api.New(cfg.ServerURL), snapshots)

	// Live-reload UI settings when the config file changes on disk.
	var w *watcher.Watcher
	if path := viper.ConfigFileUsed(); path != "" {
		if ww, werr := watcher.New(watcher.DefaultConfig(path)); werr == nil {
			if onChange, startErr := ww.Start(); startErr == nil {
				w = ww
				model = model.WithConfigReload(reloadConfigs(onChange))
			} else {
				_ = ww.Stop()
			}
		}
		// Watcher init errors are not fatal; the client runs without reload.
	}

	conn.Start()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	model.Close()
	if w != nil {
		_ = w.Stop()
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// reloadConfigs re-reads the config file on each change notification and
// forwards the parsed result. Unparsable edits are skipped.
func reloadConfigs(onChange <-chan struct{}) <-chan config.Config {
	out := make(chan config.Config, 1)
	go func() {
		defer close(out)
		for range onChange {
			if err := viper.ReadInConfig(); err != nil {
				log.ErrorErr(log.CatConfig, "Config re-read failed", err)
				continue
			}
			var next config.Config
			if err := viper.Unmarshal(&next); err != nil {
				log.ErrorErr(log.CatConfig, "Config re-parse failed", err)
				continue
			}
			select {
			case out <- next:
			default:
			}
		}
	}()
	return out
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
