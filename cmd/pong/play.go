package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/platform/tui"
)

var (
	flagDifficulty   string
	flagPaddleHeight float64
	flagName         string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a local match against the CPU",
	Long: `Play against the CPU. You hold the left paddle.

The ball is served at the start in a random direction. After a goal the
player who conceded serves: press Space when it is your turn, the CPU
serves on its own after a short delay.

Difficulty options:
  easy    - Slow CPU with a wide dead zone
  normal  - Tuning from the config file
  hard    - Fast CPU that tracks the ball closely

Examples:
  pong play
  pong play --difficulty hard
  pong play --paddle-height 140`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard (default: saved setting)")
	playCmd.Flags().Float64Var(&flagPaddleHeight, "paddle-height", 0, "Paddle height in field units (default: saved setting)")
	playCmd.Flags().StringVar(&flagName, "name", "", "Name shown on the scoreline")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	settings := loadSettings()

	difficulty := settings.Difficulty
	if flagDifficulty != "" {
		difficulty = config.ParseDifficulty(flagDifficulty)
	}
	config.ApplyDifficulty(&cfg.AI, difficulty)

	height := settings.PaddleHeight
	if flagPaddleHeight > 0 {
		height = flagPaddleHeight
	}
	if height > 0 {
		cfg.Paddles.Height = height
	}
	cfg = cfg.Validate()

	name := flagName
	if name == "" {
		name = settings.Username
	}

	width, termHeight := terminalSize()
	return tui.RunLocal(cfg, name, width, termHeight)
}
