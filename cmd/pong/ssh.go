package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagServerURL   string
	flagIdleTimeout int
)

var sshCmd = &cobra.Command{
	Use:   "ssh",
	Short: "Serve the Pong menu over SSH",
	Long: `Start an SSH server that gives every connection its own Pong menu.

Online matches from SSH sessions are played on the match server given by
--server-url; the SSH user name is offered as the login name.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.pong/host_key

Examples:
  pong ssh                                   # Listen on :23234
  pong ssh --addr :2222
  pong ssh --server-url ws://pong.example.com/ws

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runSSH,
}

func init() {
	def := tui.DefaultSSHServerConfig()
	sshCmd.Flags().StringVar(&flagSSHAddr, "addr", def.Address, "SSH server address (host:port)")
	sshCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	sshCmd.Flags().StringVar(&flagServerURL, "server-url", def.ServerURL, "Match server WebSocket URL for online play")
	sshCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", int(def.IdleTimeout/time.Minute), "Idle timeout in minutes before disconnecting")
}

func runSSH(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	srv, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		ServerURL:   flagServerURL,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
	}, cfg, logger.WithPrefix("ssh"))
	if err != nil {
		return fmt.Errorf("create SSH server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
