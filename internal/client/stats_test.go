package client

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/pong-ultimate/internal/config"
	"github.com/vovakirdan/pong-ultimate/internal/server"
	"github.com/vovakirdan/pong-ultimate/internal/storage"
)

func startServer(t *testing.T) string {
	t.Helper()
	storage.HashCost = bcrypt.MinCost
	users, err := storage.NewDemoMemoryStore()
	require.NoError(t, err)

	srv := server.New(config.DefaultPongConfig(), users, log.New(io.Discard))
	srv.Start()
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		srv.Shutdown(context.Background())
	})
	return "ws" + strings.TrimPrefix(hs.URL, "http") + "/ws"
}

func TestLoadStats(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rep, err := LoadStats(ctx, url, "guest1", "password", testNetConfig(), log.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, "guest1", rep.Username)
	require.NotNil(t, rep.Stats)
	assert.Equal(t, 5, rep.Stats.Wins)
	assert.Equal(t, 8, rep.Stats.Games)
	assert.Empty(t, rep.Matches)
}

func TestLoadStatsWrongPassword(t *testing.T) {
	url := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := LoadStats(ctx, url, "guest1", "nope", testNetConfig(), log.New(io.Discard))
	assert.ErrorIs(t, err, ErrLoginRejected)
}

func TestLoadStatsAnonymous(t *testing.T) {
	url := startServer(t)
	rep, err := LoadStats(context.Background(), url, "", "", testNetConfig(), log.New(io.Discard))
	require.NoError(t, err)
	assert.Nil(t, rep.Stats)
}
