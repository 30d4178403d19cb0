package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/platform/tui"
)

var (
	flagURL      string
	flagUser     string
	flagPassword string
)

var onlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Join a match on a pongserver",
	Long: `Connect to a pongserver, log in and take a seat in the lobby.

When both seats are taken and both players are ready the server counts
down and starts the match. If the connection drops, the client reconnects
and logs in again on its own.

With --user and --password the login form is submitted automatically.

Examples:
  pong online
  pong online --url ws://pong.example.com/ws
  pong online --user alice --password secret`,
	RunE: runOnline,
}

func init() {
	onlineCmd.Flags().StringVar(&flagURL, "url", "", "WebSocket URL of the match server (default: saved setting)")
	onlineCmd.Flags().StringVar(&flagUser, "user", "", "Username")
	onlineCmd.Flags().StringVar(&flagPassword, "password", "", "Password")
}

func runOnline(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(false)
	if err != nil {
		return err
	}
	defer closeLog()

	settings := loadSettings()
	url := settings.ServerURL
	if flagURL != "" {
		url = flagURL
	}
	user := settings.Username
	if flagUser != "" {
		user = flagUser
	}

	width, height := terminalSize()
	return tui.RunOnline(tui.OnlineConfig{
		URL:      url,
		Username: user,
		Password: flagPassword,
		Game:     cfg,
		Logger:   logger.WithPrefix("online"),
	}, width, height)
}
