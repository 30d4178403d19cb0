// pongserver runs the authoritative Pong match server.
//
// Usage:
//
//	pongserver                    - Listen on $PORT (default 3000)
//	pongserver --port 8080        - Listen on a specific port
//	pongserver --db ./pong.db     - Use a specific SQLite database
//
// Environment:
//
//	PORT            - listen port
//	DATABASE_URL    - SQLite database path
//	PONG_CONFIG     - path to a pong.yaml
//	PONG_LOG_LEVEL  - debug, info, warn or error
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/server"
)

const envLogLevel = "PONG_LOG_LEVEL"

var (
	flagPort       int
	flagDBPath     string
	flagConfig     string
	flagLogLevel   string
	flagShutdownIn time.Duration
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pongserver",
	Short: "Authoritative Pong match server",
	Long: `pongserver hosts one two-seat Pong match at a time over WebSocket.

Endpoints:
  /ws        - game connection (JSON messages)
  /healthz   - liveness probe
  /status    - seats, phase and logged-in users
  /matches   - recent match results

Examples:
  pongserver
  pongserver --port 8080 --db ./pong.db
  PORT=8080 DATABASE_URL=/data/pong.db pongserver`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "Listen port (overrides $PORT and the config file)")
	rootCmd.Flags().StringVar(&flagDBPath, "db", "", "SQLite database path (overrides $DATABASE_URL)")
	rootCmd.Flags().StringVar(&flagConfig, "config", os.Getenv(config.EnvConfigPath), "Path to pong.yaml")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", envOr(envLogLevel, "info"), "Log level: debug, info, warn, error")
	rootCmd.Flags().DurationVar(&flagShutdownIn, "shutdown-timeout", 10*time.Second, "Grace period for open connections on shutdown")
}

func runServer(cmd *cobra.Command, _ []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "pongserver",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	logger.SetLevel(level)

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg, os.Getenv); err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = flagPort
	}
	if flagDBPath != "" {
		cfg.Server.DatabaseURL = flagDBPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := server.OpenStore(ctx, cfg.Server.DatabaseURL, logger.WithPrefix("store"))
	srv := server.New(cfg, users, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), flagShutdownIn)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
