package config

import "time"

/* =========================
   CHART DEFAULTS
========================= */

const (
	DefaultCandleIntervalMs = 500  // one candle per 500ms of samples
	DefaultWindowCapacity   = 30   // finalized candles kept on screen
	DefaultScalePadding     = 0.1  // fraction of the price range above and below
	DefaultScaleEpsilon     = 1e-6 // padding when all visible prices are equal
	DefaultGridLines        = 5

	DefaultViewportWidth  = 800
	DefaultViewportHeight = 400
)

/* =========================
   GAME SERVER
========================= */

const (
	DefaultGameServerURL = "ws://localhost:5001/ws"
	DefaultNumPlayers    = 4

	// Server tick rate, 15 Hz
	TickRate     = 15
	TickInterval = time.Second / TickRate

	// Round length used by the simulator, 3 minutes of ticks
	RoundDuration = 180 * time.Second
	MaxTicks      = TickRate * 180

	InitialCash = 10000.0

	// Pause between simulated rounds
	SimRestartDelay = 5 * time.Second
)

/* =========================
   WEBSOCKET CONFIGURATION
========================= */

const (
	WSHandshakeTimeout = 5 * time.Second
	WSReadDeadline     = 60 * time.Second
	WSWriteDeadline    = 10 * time.Second
	WSPingInterval     = 30 * time.Second

	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024

	MaxMessageSize = 512 * 1024 // 512KB

	// Reconnect backoff
	InitialReconnectDelay = 1 * time.Second
	MaxReconnectDelay     = 30 * time.Second

	// Per-viewer send buffer on the chart feed
	ViewerSendBuffer = 64
)

/* =========================
   PLAYER ACTIONS
========================= */

const (
	DefaultActionsPerSecond = 5.0
	ActionBurst             = 2
)

/* =========================
   REDIS
========================= */

const (
	// Global leaderboard, sorted set of "player|roundId" scored by net worth
	RedisLeaderboardKey = "leaderboard:global"
	LeaderboardMaxSize  = 100
	GlobalTopSize       = 10

	// Last finished round summary, per round
	RedisRoundSummaryKey = "round:%s:summary"
	RoundSummaryTTL      = 1 * time.Hour
)

/* =========================
   POSTGRESQL
========================= */

const (
	PostgresMaxConns        = 10
	PostgresMinConns        = 1
	PostgresConnMaxLifetime = 5 * time.Minute

	RecordTimeout = 10 * time.Second
)

/* =========================
   HTTP API
========================= */

const (
	DefaultHTTPAddr   = "0.0.0.0:8090"
	AllowOrigin       = "*"
	DefaultRoundLimit = 20
	MaxRoundLimit     = 100
)
