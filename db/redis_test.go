package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goLangClient/config"
	"goLangClient/state"
)

func TestRedisLeaderboard(t *testing.T) {
	_ = godotenv.Load("../.env")

	if os.Getenv("REDIS_URL") == "" {
		t.Skip("REDIS_URL not set")
	}

	require.NoError(t, InitRedis(config.RedisConfig{
		URL:      os.Getenv("REDIS_URL"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}))
	defer CloseRedis()

	ctx := context.Background()
	require.NoError(t, RedisClient.Del(ctx, config.RedisLeaderboardKey).Err())
	defer RedisClient.Del(ctx, config.RedisLeaderboardKey)

	t.Run("RecordResults_KeepsTop", func(t *testing.T) {
		for round := 0; round < 30; round++ {
			var results []state.LeaderboardEntry
			for p := 0; p < 4; p++ {
				results = append(results, state.LeaderboardEntry{
					PlayerID: fmt.Sprintf("player-%d", p),
					Networth: float64(round*4 + p),
				})
			}
			_, err := RecordResults(ctx, results, time.Now())
			require.NoError(t, err)
		}

		size, err := RedisClient.ZCard(ctx, config.RedisLeaderboardKey).Result()
		require.NoError(t, err)
		assert.EqualValues(t, config.LeaderboardMaxSize, size)
	})

	t.Run("TopResults_Ordered", func(t *testing.T) {
		top, err := TopResults(ctx, config.GlobalTopSize)
		require.NoError(t, err)
		require.Len(t, top, config.GlobalTopSize)

		assert.Equal(t, 119.0, top[0].Networth)
		assert.Equal(t, "player-3", top[0].PlayerID)
		for i := 1; i < len(top); i++ {
			assert.GreaterOrEqual(t, top[i-1].Networth, top[i].Networth)
		}
	})

	t.Run("RoundSummary", func(t *testing.T) {
		summary := Summarize(sampleRound("redis-test-round"))
		require.NoError(t, CacheRoundSummary(ctx, summary))

		got, err := GetRoundSummary(ctx, "redis-test-round")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, summary.Close, got.Close)

		missing, err := GetRoundSummary(ctx, "no-such-round")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}
