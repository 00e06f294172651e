package state

import (
	"encoding/json"
	"time"
)

// ==============================================================================
// WIRE ENVELOPE
// ==============================================================================
//
// Every message between the game server and this client is a JSON object
// {"type": ..., "data": {...}}. Payload shapes follow the server's state dict.
//
// ==============================================================================

type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an envelope of the given type.
func NewEnvelope(msgType string, data any) (Envelope, error) {
	if data == nil {
		return Envelope{Type: msgType}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: msgType, Data: raw}, nil
}

// Server -> client
const (
	MsgConnectionStatus = "connection_status"
	MsgPlayerJoined     = "player_joined"
	MsgGameStarted      = "game_started"
	MsgGameUpdate       = "game_update"
	MsgGameOver         = "game_over"
	MsgGameState        = "game_state"
	MsgActionSuccess    = "action_success"
	MsgActionFailed     = "action_failed"
	MsgAvailableStocks  = "available_stocks"
	MsgError            = "error"
)

// Client -> server
const (
	MsgJoinGame           = "join_game"
	MsgStartGame          = "start_game"
	MsgPlayerAction       = "player_action"
	MsgGetGameState       = "get_game_state"
	MsgGetAvailableStocks = "get_available_stocks"
)

// ==============================================================================
// GAME STATE SNAPSHOT
// ==============================================================================

type GameState struct {
	CurrentTick int                    `json:"current_tick"`
	StockA      StockQuote             `json:"stock_a"`
	Players     map[string]PlayerState `json:"players"`
	Leaderboard []LeaderboardEntry     `json:"leaderboard"`
	GameRunning bool                   `json:"game_running"`
}

type StockQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

type PlayerState struct {
	PlayerID string    `json:"player_id"`
	FundA    FundState `json:"fund_a"`
	Networth float64   `json:"networth"`
}

type FundState struct {
	Cash   float64 `json:"cash"`
	Shares float64 `json:"shares"`
	Value  float64 `json:"value"`
}

type LeaderboardEntry struct {
	PlayerID string  `json:"player_id"`
	Networth float64 `json:"networth"`
	Type     string  `json:"type"` // "human" or "ai"
}

type GlobalEntry struct {
	PlayerID  string  `json:"player_id"`
	Networth  float64 `json:"networth"`
	Timestamp string  `json:"timestamp"`
}

// ==============================================================================
// SERVER PAYLOADS
// ==============================================================================

type ConnectionStatus struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

type PlayerJoined struct {
	InitialState *GameState `json:"initial_state"`
}

type GameStarted struct {
	StockA       string     `json:"stock_a"`
	InitialState *GameState `json:"initial_state"`
}

type GameOver struct {
	FinalState  *GameState         `json:"final_state"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	GlobalTop10 []GlobalEntry      `json:"global_top10"`
}

type ActionSuccess struct {
	PlayerID    string      `json:"player_id"`
	Fund        string      `json:"fund"`
	Action      string      `json:"action"`
	PlayerState PlayerState `json:"player_state"`
}

type AvailableStocks struct {
	Stocks []string `json:"stocks"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// ==============================================================================
// CLIENT PAYLOADS
// ==============================================================================

type JoinGame struct {
	PlayerNames []string `json:"playerNames"`
	NumPlayers  int      `json:"numPlayers"`
}

type StartGame struct {
	StockA string `json:"stock_a,omitempty"`
}

type PlayerAction struct {
	PlayerID string `json:"player_id"`
	Fund     string `json:"fund"`
	Action   string `json:"action"`
}

const (
	FundA         = "a"
	ActionAllIn   = "all_in"
	ActionAllOut  = "all_out"
	PlayerTypeAI  = "ai"
	PlayerTypeHum = "human"
)

// ==============================================================================
// ROUND RECORD
// ==============================================================================

// RoundRecord is what gets archived when a round ends.
type RoundRecord struct {
	RoundID     string             `json:"roundId"`
	Symbol      string             `json:"symbol"`
	Candles     []CandleRecord     `json:"candles"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	StartedAt   time.Time          `json:"startedAt"`
	EndedAt     time.Time          `json:"endedAt"`
}

// CandleRecord is a finalized candle as stored in the archive.
type CandleRecord struct {
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	StartTime int64   `json:"startTime"`
}
