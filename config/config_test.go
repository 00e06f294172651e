package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"CANDLE_INTERVAL_MS", "WINDOW_CAPACITY", "SCALE_PADDING", "PLAYER_NAMES", "NUM_PLAYERS", "REDIS_URL", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500*time.Millisecond, cfg.Chart.CandleInterval)
	assert.Equal(t, 30, cfg.Chart.WindowCapacity)
	assert.Equal(t, 0.1, cfg.Chart.ScalePadding)
	assert.Equal(t, 4, cfg.Players.NumPlayers)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Postgres.Enabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CANDLE_INTERVAL_MS", "250")
	t.Setenv("WINDOW_CAPACITY", "12")
	t.Setenv("SCALE_PADDING", "0.2")
	t.Setenv("PLAYER_NAMES", "Ada, Linus ,,Grace")
	t.Setenv("NUM_PLAYERS", "2")
	t.Setenv("REDIS_URL", "localhost:6379")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 250*time.Millisecond, cfg.Chart.CandleInterval)
	assert.Equal(t, 12, cfg.Chart.WindowCapacity)
	assert.Equal(t, 0.2, cfg.Chart.ScalePadding)
	assert.Equal(t, []string{"Ada", "Linus", "Grace"}, cfg.Players.Names)
	assert.Equal(t, []string{"Ada", "Linus"}, cfg.Players.PlayerNames())
	assert.True(t, cfg.Redis.Enabled())

	opts := cfg.Chart.Options()
	assert.Equal(t, 12, opts.Capacity)
	assert.Equal(t, 250*time.Millisecond, opts.Interval)
}

func TestFromEnv_UnparsableFallsBack(t *testing.T) {
	t.Setenv("WINDOW_CAPACITY", "lots")
	t.Setenv("SCALE_EPSILON", "tiny")

	cfg := FromEnv()
	assert.Equal(t, DefaultWindowCapacity, cfg.Chart.WindowCapacity)
	assert.Equal(t, DefaultScaleEpsilon, cfg.Chart.ScaleEpsilon)
}

func TestValidate_Errors(t *testing.T) {
	cfg := FromEnv()
	cfg.Chart.WindowCapacity = 0
	cfg.Chart.ScaleEpsilon = 0
	cfg.Chart.CandleInterval = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window capacity")
	assert.Contains(t, err.Error(), "scale epsilon")
	assert.Contains(t, err.Error(), "candle interval")
}

func TestPlayerNames_FillsMissing(t *testing.T) {
	p := PlayersConfig{Names: []string{"Ada"}, NumPlayers: 3}
	assert.Equal(t, []string{"Ada", "Player 2", "Player 3"}, p.PlayerNames())
}
