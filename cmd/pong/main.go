// pong is the terminal client for Pong: local matches against the CPU, online
// matches on a pongserver, stats, and an SSH front end.
//
// Usage:
//
//	pong                 - Start the menu
//	pong play            - Play a local match against the CPU
//	pong online          - Join the match server
//	pong stats           - Show recent matches and your record
//	pong ssh             - Serve the menu to SSH users
//
// Global flags:
//
//	--config <path>      - Path to pong.yaml
//	--settings <path>    - Path to settings.yaml (default: ~/.pong/settings.yaml)
//	--log-file <path>    - Write logs to a file while the TUI runs
//	--log-level <level>  - debug, info, warn, error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/pong-ultimate/internal/client"
	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/platform/tui"
)

const envLogLevel = "PONG_LOG_LEVEL"

var (
	flagConfig   string
	flagSettings string
	flagLogFile  string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pong",
	Short: "Pong in your terminal",
	Long: `Pong in your terminal, against the CPU or another player online.

Available commands:
  play     - Local match against the CPU
  online   - Join a pongserver match
  stats    - Recent matches and your record
  ssh      - Serve the menu over SSH

Without a command the interactive menu starts.

Controls:
  W/S, Up/Down  - Move paddle
  Space         - Serve after the opponent scores
  R             - Ready (lobby)
  P             - Pause (local)
  Esc/B         - Back
  Q/Ctrl+C      - Quit`,
	SilenceUsage: true,
	RunE:         runMenu,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", os.Getenv(config.EnvConfigPath), "Path to pong.yaml")
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Path to settings.yaml")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", envOr(envLogLevel, "info"), "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(onlineCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sshCmd)
}

func runMenu(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := client.NewFileSettings(flagSettings)
	if err != nil {
		return err
	}

	width, height := terminalSize()
	return tui.RunSession(tui.SessionConfig{
		Game:     cfg,
		Settings: store,
		Logger:   logger,
	}, width, height)
}

// newLogger builds the process logger. The TUI owns the terminal, so unless
// toStderr is set logs go to --log-file or nowhere.
func newLogger(toStderr bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}

	var (
		out     io.Writer = io.Discard
		closeFn           = func() {}
	)
	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	case toStderr:
		out = os.Stderr
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "pong",
	})
	logger.SetLevel(level)
	return logger, closeFn, nil
}

func terminalSize() (int, int) {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadSettings reads the saved settings; a broken file is reported and the
// defaults are used.
func loadSettings() client.Settings {
	store, err := client.NewFileSettings(flagSettings)
	if err != nil {
		return client.DefaultSettings()
	}
	s, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return s
}
