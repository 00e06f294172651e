package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, msgType string, data any) Envelope {
	t.Helper()
	env, err := NewEnvelope(msgType, data)
	require.NoError(t, err)
	return env
}

func running(tick int, price float64) GameState {
	return GameState{
		CurrentTick: tick,
		StockA:      StockQuote{Symbol: "AAPL", Price: price},
		GameRunning: true,
	}
}

func newTestSession() *Session {
	n := 0
	return NewSession(
		WithSessionClock(func() time.Time { return time.UnixMilli(1_700_000_000_000) }),
		WithRoundIDs(func() string { n++; return fmt.Sprintf("round-%d", n) }),
	)
}

func TestSession_StartsInLobby(t *testing.T) {
	s := newTestSession()

	assert.Equal(t, PhaseLobby, s.Phase())
	assert.False(t, s.CanAct())

	_, err := s.Act("alice", ActionAllIn)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestSession_GameStartedEmitsOneRoundStart(t *testing.T) {
	s := newTestSession()
	initial := running(0, 100)

	events, err := s.Handle(envelope(t, MsgGameStarted, GameStarted{StockA: "AAPL", InitialState: &initial}))
	require.NoError(t, err)

	require.Len(t, events, 2)
	started, ok := events[0].(RoundStarted)
	require.True(t, ok)
	assert.Equal(t, "round-1", started.RoundID)
	assert.Equal(t, "AAPL", started.Symbol)
	assert.Equal(t, PriceUpdate{Tick: 0, Price: 100}, events[1])

	events, err = s.Handle(envelope(t, MsgGameUpdate, running(1, 101)))
	require.NoError(t, err)
	assert.Equal(t, []Event{PriceUpdate{Tick: 1, Price: 101}}, events)
	assert.Equal(t, 1, s.RoundsStarted())
	assert.True(t, s.CanAct())
}

func TestSession_RunningSnapshotStartsRound(t *testing.T) {
	s := newTestSession()

	events, err := s.Handle(envelope(t, MsgGameUpdate, running(420, 99)))
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.IsType(t, RoundStarted{}, events[0])
	assert.Equal(t, PriceUpdate{Tick: 420, Price: 99}, events[1])
	assert.Equal(t, 420, s.View().Tick)
}

func TestSession_UpdatesIgnoredOutsideRound(t *testing.T) {
	s := newTestSession()

	idle := running(0, 100)
	idle.GameRunning = false
	events, err := s.Handle(envelope(t, MsgGameUpdate, idle))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, PhaseLobby, s.Phase())
}

func TestSession_GameOverEndsRound(t *testing.T) {
	s := newTestSession()
	_, err := s.Handle(envelope(t, MsgGameUpdate, running(1, 100)))
	require.NoError(t, err)

	board := []LeaderboardEntry{{PlayerID: "alice", Networth: 12000, Type: PlayerTypeHum}}
	final := running(2700, 110)
	events, err := s.Handle(envelope(t, MsgGameOver, GameOver{
		FinalState:  &final,
		Leaderboard: board,
		GlobalTop10: []GlobalEntry{{PlayerID: "alice", Networth: 12000}},
	}))
	require.NoError(t, err)

	require.Len(t, events, 1)
	ended, ok := events[0].(RoundEnded)
	require.True(t, ok)
	assert.Equal(t, "round-1", ended.RoundID)
	assert.Equal(t, board, ended.Leaderboard)
	assert.Len(t, ended.GlobalTop, 1)

	assert.Equal(t, PhaseEnded, s.Phase())
	assert.False(t, s.CanAct())

	// A duplicate game_over does not end the round twice.
	events, err = s.Handle(envelope(t, MsgGameOver, GameOver{}))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSession_StoppedSnapshotEndsRound(t *testing.T) {
	s := newTestSession()
	_, err := s.Handle(envelope(t, MsgGameUpdate, running(1, 100)))
	require.NoError(t, err)

	stopped := running(2, 100)
	stopped.GameRunning = false
	events, err := s.Handle(envelope(t, MsgGameUpdate, stopped))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.IsType(t, RoundEnded{}, events[0])
}

func TestSession_TickRewindStartsNewRound(t *testing.T) {
	s := newTestSession()
	_, err := s.Handle(envelope(t, MsgGameUpdate, running(50, 100)))
	require.NoError(t, err)

	events, err := s.Handle(envelope(t, MsgGameUpdate, running(3, 80)))
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.IsType(t, RoundEnded{}, events[0])
	started, ok := events[1].(RoundStarted)
	require.True(t, ok)
	assert.Equal(t, "round-2", started.RoundID)
	assert.Equal(t, PriceUpdate{Tick: 3, Price: 80}, events[2])
}

func TestSession_LaggingStateReplyIgnored(t *testing.T) {
	s := newTestSession()
	_, err := s.Handle(envelope(t, MsgGameUpdate, running(50, 100)))
	require.NoError(t, err)
	_, err = s.Handle(envelope(t, MsgGameUpdate, running(51, 101)))
	require.NoError(t, err)

	events, err := s.Handle(envelope(t, MsgGameState, running(50, 100)))
	require.NoError(t, err)
	assert.Empty(t, events)

	stale := running(49, 99)
	events, err = s.Handle(envelope(t, MsgPlayerJoined, PlayerJoined{InitialState: &stale}))
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.Equal(t, 1, s.RoundsStarted())
	assert.Equal(t, PhaseRunning, s.Phase())
	assert.Equal(t, 51, s.View().Tick)
	assert.Equal(t, 101.0, s.View().Price)

	events, err = s.Handle(envelope(t, MsgGameUpdate, running(52, 102)))
	require.NoError(t, err)
	assert.Equal(t, []Event{PriceUpdate{Tick: 52, Price: 102}}, events)
}

func TestSession_NextRoundAfterEnd(t *testing.T) {
	s := newTestSession()
	_, err := s.Handle(envelope(t, MsgGameUpdate, running(1, 100)))
	require.NoError(t, err)
	_, err = s.Handle(envelope(t, MsgGameOver, GameOver{}))
	require.NoError(t, err)

	events, err := s.Handle(envelope(t, MsgGameStarted, GameStarted{StockA: "MSFT"}))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "round-2", events[0].(RoundStarted).RoundID)
	assert.Equal(t, "MSFT", s.View().Symbol)
}

func TestSession_Act(t *testing.T) {
	s := newTestSession()
	_, err := s.Handle(envelope(t, MsgGameUpdate, running(1, 100)))
	require.NoError(t, err)

	msg, err := s.Act("alice", ActionAllIn)
	require.NoError(t, err)
	assert.Equal(t, PlayerAction{PlayerID: "alice", Fund: FundA, Action: ActionAllIn}, msg)

	_, err = s.Act("alice", "sell_half")
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = s.Act("", ActionAllOut)
	assert.Error(t, err)
}

func TestSession_SideMessages(t *testing.T) {
	s := newTestSession()

	_, err := s.Handle(envelope(t, MsgConnectionStatus, ConnectionStatus{Status: "connected", ClientID: "sid-1"}))
	require.NoError(t, err)
	_, err = s.Handle(envelope(t, MsgAvailableStocks, AvailableStocks{Stocks: []string{"AAPL", "MSFT"}}))
	require.NoError(t, err)
	_, err = s.Handle(envelope(t, MsgActionFailed, ErrorMessage{Message: "Game not running"}))
	require.NoError(t, err)

	view := s.View()
	assert.Equal(t, "sid-1", view.ClientID)
	assert.Equal(t, []string{"AAPL", "MSFT"}, view.Stocks)
	assert.Equal(t, "Game not running", view.LastError)

	_, err = s.Handle(Envelope{Type: MsgGameUpdate, Data: []byte(`{"current_tick":"x"}`)})
	assert.Error(t, err)

	events, err := s.Handle(Envelope{Type: "something_new"})
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestSession_ViewIsACopy(t *testing.T) {
	s := newTestSession()
	st := running(1, 100)
	st.Players = map[string]PlayerState{"alice": {PlayerID: "alice", Networth: 10000}}
	_, err := s.Handle(envelope(t, MsgGameUpdate, st))
	require.NoError(t, err)

	view := s.View()
	view.Players["bob"] = PlayerState{PlayerID: "bob"}

	assert.Len(t, s.View().Players, 1)
	require.NotNil(t, view.StartedAt)
	assert.Nil(t, view.EndedAt)
}
