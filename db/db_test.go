package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goLangClient/state"
)

func sampleRound(id string) state.RoundRecord {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return state.RoundRecord{
		RoundID: id,
		Symbol:  "AAPL",
		Candles: []state.CandleRecord{
			{Open: 100, High: 103, Low: 99, Close: 102, StartTime: start.UnixMilli()},
			{Open: 102, High: 108, Low: 101, Close: 97, StartTime: start.UnixMilli() + 500},
		},
		Leaderboard: []state.LeaderboardEntry{
			{PlayerID: "AI", Networth: 10400, Type: state.PlayerTypeAI},
			{PlayerID: "alice", Networth: 9800, Type: state.PlayerTypeHum},
		},
		StartedAt: start,
		EndedAt:   start.Add(3 * time.Minute),
	}
}

func TestUninitializedBackends(t *testing.T) {
	ctx := context.Background()
	require.Nil(t, RedisClient)
	require.Nil(t, PostgresPool)

	_, err := RecordResults(ctx, nil, time.Now())
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = TopResults(ctx, 10)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, CacheRoundSummary(ctx, RoundSummary{}), ErrNotInitialized)
	assert.ErrorIs(t, HealthCheck(ctx), ErrNotInitialized)

	assert.ErrorIs(t, StoreRound(ctx, sampleRound("r")), ErrNotInitialized)
	_, err = GetRound(ctx, "r")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = RecentRounds(ctx, 5)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, HealthCheckPostgres(ctx), ErrNotInitialized)

	// With nothing configured the archive has nowhere to write.
	assert.NoError(t, Archive{}.RecordRound(ctx, sampleRound("r")))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRound("r1"))

	assert.Equal(t, "r1", s.RoundID)
	assert.Equal(t, 2, s.Candles)
	assert.Equal(t, 100.0, s.Open)
	assert.Equal(t, 97.0, s.Close)
	assert.Equal(t, 108.0, s.High)
	assert.Equal(t, 99.0, s.Low)
	assert.Len(t, s.Leaderboard, 2)

	empty := Summarize(state.RoundRecord{RoundID: "r2"})
	assert.Zero(t, empty.Candles)
	assert.Zero(t, empty.High)
}
