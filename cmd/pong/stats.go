package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pong-ultimate/internal/client"
	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/platform/tui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recent matches and your record",
	Long: `Show the server's most recent matches. With --user and --password the
client also logs in and shows your wins, losses and games played.

Examples:
  pong stats
  pong stats --user alice --password secret
  pong stats --url ws://pong.example.com/ws`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&flagURL, "url", "", "WebSocket URL of the match server (default: saved setting)")
	statsCmd.Flags().StringVar(&flagUser, "user", "", "Username")
	statsCmd.Flags().StringVar(&flagPassword, "password", "", "Password")
}

func runStats(_ *cobra.Command, _ []string) error {
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

	// Without a password there is nothing to log in with.
	user := ""
	if flagPassword != "" {
		user = flagUser
		if user == "" {
			user = settings.Username
		}
	}

	load := func(ctx context.Context) (client.StatsReport, error) {
		return client.LoadStats(ctx, url, user, flagPassword, cfg.Sync, logger.WithPrefix("stats"))
	}

	width, height := terminalSize()
	return tui.RunStats(load, width, height)
}
