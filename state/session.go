package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ==============================================================================
// SESSION PHASES
// ==============================================================================

type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhaseRunning Phase = "running"
	PhaseEnded   Phase = "ended"
)

var (
	ErrNotRunning     = errors.New("round is not running")
	ErrAlreadyRunning = errors.New("round already running")
	ErrUnknownAction  = errors.New("unknown action")
)

// ==============================================================================
// EVENTS
// ==============================================================================
//
// Session turns server messages into a small set of events the hub acts on.
// RoundStarted is the explicit reset signal for the chart.
//
// ==============================================================================

type Event interface {
	event()
}

type RoundStarted struct {
	RoundID string
	Symbol  string
	At      time.Time
}

type PriceUpdate struct {
	Tick  int
	Price float64
}

type RoundEnded struct {
	RoundID     string
	Symbol      string
	StartedAt   time.Time
	EndedAt     time.Time
	Leaderboard []LeaderboardEntry
	GlobalTop   []GlobalEntry
}

func (RoundStarted) event() {}
func (PriceUpdate) event()  {}
func (RoundEnded) event()   {}

// ==============================================================================
// SESSION
// ==============================================================================

// Session tracks the game as seen from this client. It is not safe for
// concurrent use; the hub owns it.
type Session struct {
	phase     Phase
	roundID   string
	symbol    string
	clientID  string
	tick      int
	price     float64
	startedAt time.Time
	endedAt   time.Time

	players     map[string]PlayerState
	leaderboard []LeaderboardEntry
	globalTop   []GlobalEntry
	stocks      []string
	lastError   string

	now     func() time.Time
	newID   func() string
	started int
}

type SessionOption func(*Session)

// WithSessionClock overrides time.Now.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithRoundIDs overrides how round IDs are generated.
func WithRoundIDs(gen func() string) SessionOption {
	return func(s *Session) { s.newID = gen }
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		phase:   PhaseLobby,
		players: make(map[string]PlayerState),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) RoundID() string { return s.roundID }

// RoundsStarted counts distinct round starts seen by this session.
func (s *Session) RoundsStarted() int { return s.started }

// CanAct reports whether player input should be accepted.
func (s *Session) CanAct() bool { return s.phase == PhaseRunning }

// Act validates a player action and returns the message to send.
func (s *Session) Act(playerID, action string) (PlayerAction, error) {
	if !s.CanAct() {
		return PlayerAction{}, ErrNotRunning
	}
	if action != ActionAllIn && action != ActionAllOut {
		return PlayerAction{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if playerID == "" {
		return PlayerAction{}, errors.New("player id is required")
	}
	return PlayerAction{PlayerID: playerID, Fund: FundA, Action: action}, nil
}

// Handle applies one server message. Unknown types are ignored.
func (s *Session) Handle(env Envelope) ([]Event, error) {
	switch env.Type {
	case MsgConnectionStatus:
		var msg ConnectionStatus
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		s.clientID = msg.ClientID
		return nil, nil

	case MsgPlayerJoined:
		var msg PlayerJoined
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		if msg.InitialState == nil {
			return nil, nil
		}
		return s.applyReply(*msg.InitialState), nil

	case MsgGameStarted:
		var msg GameStarted
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		symbol := msg.StockA
		if msg.InitialState != nil && msg.InitialState.StockA.Symbol != "" {
			symbol = msg.InitialState.StockA.Symbol
		}
		events := []Event{s.startRound(symbol)}
		if msg.InitialState != nil {
			events = append(events, s.apply(*msg.InitialState)...)
		}
		return events, nil

	case MsgGameUpdate:
		var msg GameState
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return s.apply(msg), nil

	case MsgGameState:
		var msg GameState
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		return s.applyReply(msg), nil

	case MsgGameOver:
		var msg GameOver
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		var events []Event
		if msg.FinalState != nil {
			final := *msg.FinalState
			final.GameRunning = false
			s.absorb(final)
		}
		if msg.Leaderboard != nil {
			s.leaderboard = msg.Leaderboard
		}
		s.globalTop = msg.GlobalTop10
		if s.phase == PhaseRunning {
			events = append(events, s.endRound())
		}
		return events, nil

	case MsgActionSuccess:
		var msg ActionSuccess
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		if msg.PlayerID != "" {
			s.players[msg.PlayerID] = msg.PlayerState
		}
		s.lastError = ""
		return nil, nil

	case MsgActionFailed, MsgError:
		var msg ErrorMessage
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		s.lastError = msg.Message
		return nil, nil

	case MsgAvailableStocks:
		var msg AvailableStocks
		if err := decode(env, &msg); err != nil {
			return nil, err
		}
		s.stocks = msg.Stocks
		return nil, nil
	}
	return nil, nil
}

// applyReply folds in a snapshot sent as a reply to a request. Replies can
// trail the tick stream, so one behind the current tick is dropped instead of
// being read as a new round.
func (s *Session) applyReply(st GameState) []Event {
	if s.phase == PhaseRunning && st.CurrentTick < s.tick {
		return nil
	}
	return s.apply(st)
}

// apply folds a snapshot into the session and derives round transitions.
func (s *Session) apply(st GameState) []Event {
	var events []Event

	switch {
	case st.GameRunning && s.phase != PhaseRunning:
		events = append(events, s.startRound(st.StockA.Symbol))
	case st.GameRunning && st.CurrentTick < s.tick:
		// Tick went backwards: we missed game_over/game_started.
		events = append(events, s.endRound(), s.startRound(st.StockA.Symbol))
	}

	s.absorb(st)

	if s.phase == PhaseRunning {
		if st.GameRunning {
			events = append(events, PriceUpdate{Tick: st.CurrentTick, Price: st.StockA.Price})
		} else {
			events = append(events, s.endRound())
		}
	}
	return events
}

func (s *Session) absorb(st GameState) {
	s.tick = st.CurrentTick
	s.price = st.StockA.Price
	if st.StockA.Symbol != "" {
		s.symbol = st.StockA.Symbol
	}
	if st.Players != nil {
		s.players = st.Players
	}
	if st.Leaderboard != nil {
		s.leaderboard = st.Leaderboard
	}
}

func (s *Session) startRound(symbol string) RoundStarted {
	s.phase = PhaseRunning
	s.roundID = s.newID()
	s.started++
	s.tick = 0
	s.startedAt = s.now()
	s.endedAt = time.Time{}
	s.globalTop = nil
	s.lastError = ""
	if symbol != "" {
		s.symbol = symbol
	}
	return RoundStarted{RoundID: s.roundID, Symbol: s.symbol, At: s.startedAt}
}

func (s *Session) endRound() RoundEnded {
	s.phase = PhaseEnded
	s.endedAt = s.now()
	return RoundEnded{
		RoundID:     s.roundID,
		Symbol:      s.symbol,
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
		Leaderboard: append([]LeaderboardEntry(nil), s.leaderboard...),
		GlobalTop:   append([]GlobalEntry(nil), s.globalTop...),
	}
}

// ==============================================================================
// VIEW
// ==============================================================================

type SessionView struct {
	Phase       Phase                  `json:"phase"`
	RoundID     string                 `json:"roundId,omitempty"`
	Symbol      string                 `json:"symbol,omitempty"`
	ClientID    string                 `json:"clientId,omitempty"`
	Tick        int                    `json:"tick"`
	Price       float64                `json:"price"`
	CanAct      bool                   `json:"canAct"`
	StartedAt   *time.Time             `json:"startedAt,omitempty"`
	EndedAt     *time.Time             `json:"endedAt,omitempty"`
	Players     map[string]PlayerState `json:"players"`
	Leaderboard []LeaderboardEntry     `json:"leaderboard"`
	GlobalTop   []GlobalEntry          `json:"globalTop,omitempty"`
	Stocks      []string               `json:"stocks,omitempty"`
	LastError   string                 `json:"lastError,omitempty"`
}

// View returns a copy safe to hand to other goroutines.
func (s *Session) View() SessionView {
	v := SessionView{
		Phase:       s.phase,
		RoundID:     s.roundID,
		Symbol:      s.symbol,
		ClientID:    s.clientID,
		Tick:        s.tick,
		Price:       s.price,
		CanAct:      s.CanAct(),
		Players:     make(map[string]PlayerState, len(s.players)),
		Leaderboard: append([]LeaderboardEntry{}, s.leaderboard...),
		GlobalTop:   append([]GlobalEntry(nil), s.globalTop...),
		Stocks:      append([]string(nil), s.stocks...),
		LastError:   s.lastError,
	}
	for id, p := range s.players {
		v.Players[id] = p
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		v.StartedAt = &t
	}
	if !s.endedAt.IsZero() {
		t := s.endedAt
		v.EndedAt = &t
	}
	return v
}

func decode(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return nil
}
