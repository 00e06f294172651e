package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"goLangClient/config"
	"goLangClient/state"
)

// ==============================================================================
// IN-PROCESS GAME SERVER
// ==============================================================================
//
// Server plays the game server's role without a network: it answers the same
// client messages and emits the same envelopes, ticking at the server's rate.
// It satisfies state.Sender so a hub can be wired to it directly.
//
// ==============================================================================

type Emit func(env state.Envelope) error

type Server struct {
	log          logrus.FieldLogger
	source       StockSource
	board        Leaderboard
	tickInterval time.Duration
	maxTicks     int
	initialCash  float64
	restartDelay time.Duration
	now          func() time.Time

	mu        sync.Mutex
	players   map[string]*Player
	order     []string
	series    Series
	tick      int
	price     float64
	running   bool
	restartAt time.Time

	inbox chan request
}

// request is a client message handled on the Run goroutine. It returns the
// replies to emit.
type request func() []state.Envelope

type Option func(*Server)

func WithTickInterval(d time.Duration) Option {
	return func(s *Server) { s.tickInterval = d }
}

// WithMaxTicks bounds a round like the server's MAX_TICKS. Zero replays the
// whole series instead.
func WithMaxTicks(n int) Option {
	return func(s *Server) { s.maxTicks = n }
}

func WithLeaderboard(b Leaderboard) Option {
	return func(s *Server) { s.board = b }
}

// WithAutoRestart starts a new round on a random stock d after each round
// ends. Zero disables it.
func WithAutoRestart(d time.Duration) Option {
	return func(s *Server) { s.restartDelay = d }
}

func WithInitialCash(cash float64) Option {
	return func(s *Server) { s.initialCash = cash }
}

func WithServerClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(source StockSource, log logrus.FieldLogger, opts ...Option) *Server {
	s := &Server{
		log:          log,
		source:       source,
		tickInterval: config.TickInterval,
		maxTicks:     config.MaxTicks,
		initialCash:  config.InitialCash,
		now:          time.Now,
		players:      make(map[string]*Player),
		inbox:        make(chan request, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.board == nil {
		s.board = NewMemoryLeaderboard(config.LeaderboardMaxSize)
	}
	return s
}

// ==============================================================================
// CLIENT MESSAGES
// ==============================================================================

// Send handles one client message. The request runs on the Run goroutine, in
// order with the ticks, and its replies are emitted there.
func (s *Server) Send(msgType string, data any) error {
	switch msgType {
	case state.MsgJoinGame:
		var msg state.JoinGame
		if err := convert(data, &msg); err != nil {
			return err
		}
		s.enqueue(msgType, func() []state.Envelope { return s.join(msg) })

	case state.MsgStartGame:
		var msg state.StartGame
		if err := convert(data, &msg); err != nil {
			return err
		}
		s.enqueue(msgType, func() []state.Envelope {
			started, err := s.start(msg.StockA)
			if err != nil {
				return s.reply(state.MsgError, state.ErrorMessage{Message: err.Error()})
			}
			return s.reply(state.MsgGameStarted, started)
		})

	case state.MsgPlayerAction:
		var msg state.PlayerAction
		if err := convert(data, &msg); err != nil {
			return err
		}
		s.enqueue(msgType, func() []state.Envelope { return s.act(msg) })

	case state.MsgGetGameState:
		s.enqueue(msgType, func() []state.Envelope {
			s.mu.Lock()
			snapshot := s.snapshot()
			s.mu.Unlock()
			return s.reply(state.MsgGameState, snapshot)
		})

	case state.MsgGetAvailableStocks:
		s.enqueue(msgType, func() []state.Envelope {
			stocks, err := s.source.Available()
			if err != nil {
				return s.reply(state.MsgError, state.ErrorMessage{Message: err.Error()})
			}
			return s.reply(state.MsgAvailableStocks, state.AvailableStocks{Stocks: stocks})
		})

	default:
		return fmt.Errorf("unsupported message type %q", msgType)
	}
	return nil
}

// join replaces every player, so it is refused while a round is running.
func (s *Server) join(msg state.JoinGame) []state.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.reply(state.MsgError, state.ErrorMessage{Message: "cannot join while a game is running"})
	}

	num := msg.NumPlayers
	if num <= 0 {
		num = config.DefaultNumPlayers
	}

	s.players = make(map[string]*Player)
	s.order = nil
	s.addPlayer(AIPlayerID)
	for i := 0; i < num; i++ {
		name := fmt.Sprintf("Player %d", i+1)
		if i < len(msg.PlayerNames) && msg.PlayerNames[i] != "" {
			name = msg.PlayerNames[i]
		}
		s.addPlayer(name)
	}
	s.log.Infof("👥 Added %d players", num)

	snapshot := s.snapshot()
	return s.reply(state.MsgPlayerJoined, state.PlayerJoined{InitialState: &snapshot})
}

func (s *Server) addPlayer(id string) {
	if _, ok := s.players[id]; !ok {
		s.order = append(s.order, id)
	}
	s.players[id] = &Player{ID: id, Fund: Fund{Cash: s.initialCash}}
}

func (s *Server) start(symbol string) (state.GameStarted, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return state.GameStarted{}, errors.New("game already running")
	}

	if symbol == "" {
		stocks, err := s.source.Available()
		if err != nil {
			return state.GameStarted{}, fmt.Errorf("failed to start game: %w", err)
		}
		if len(stocks) == 0 {
			return state.GameStarted{}, errors.New("failed to start game: need at least 1 stock")
		}
		symbol = stocks[rand.Intn(len(stocks))]
	}

	series, err := s.source.Load(symbol)
	if err != nil {
		return state.GameStarted{}, fmt.Errorf("failed to start game: %w", err)
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}

	if _, ok := s.players[AIPlayerID]; !ok {
		s.addPlayer(AIPlayerID)
	}
	for _, p := range s.players {
		p.Fund = Fund{Cash: s.initialCash}
	}
	s.series = series
	s.tick = 0
	s.price = 0
	s.running = true
	s.restartAt = time.Time{}

	s.log.Infof("🎮 Round started on %s (%d ticks of data)", series.Symbol, series.Len())
	snapshot := s.snapshot()
	return state.GameStarted{StockA: series.Symbol, InitialState: &snapshot}, nil
}

func (s *Server) act(msg state.PlayerAction) []state.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.players[msg.PlayerID]
	if !ok {
		return s.reply(state.MsgError, state.ErrorMessage{Message: "Player not found"})
	}

	success := false
	if msg.Fund == state.FundA {
		switch msg.Action {
		case state.ActionAllIn:
			success = player.Fund.AllIn(s.price)
		case state.ActionAllOut:
			success = player.Fund.AllOut(s.price)
		}
	}

	if !success {
		return s.reply(state.MsgActionFailed, state.ErrorMessage{
			Message: fmt.Sprintf("Action %s failed for fund %s", msg.Action, msg.Fund),
		})
	}
	return s.reply(state.MsgActionSuccess, state.ActionSuccess{
		PlayerID:    msg.PlayerID,
		Fund:        msg.Fund,
		Action:      msg.Action,
		PlayerState: player.View(s.price),
	})
}

// ==============================================================================
// GAME LOOP
// ==============================================================================

// Run handles client requests and emits one game_update per tick until ctx is
// done or emit fails.
func (s *Server) Run(ctx context.Context, emit Emit) error {
	if err := send(emit, state.MsgConnectionStatus, state.ConnectionStatus{Status: "connected", ClientID: "local"}); err != nil {
		return err
	}

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case req := <-s.inbox:
			if err := emitAll(emit, req()); err != nil {
				return err
			}

		case <-ticker.C:
			// Requests received before this tick are handled first.
			if err := s.flush(emit); err != nil {
				return err
			}
			if err := s.tickOnce(ctx, emit); err != nil {
				return err
			}
		}
	}
}

func (s *Server) tickOnce(ctx context.Context, emit Emit) error {
	if s.restartDue() {
		started, err := s.start("")
		if err != nil {
			s.log.Warnf("⚠️  Auto restart failed: %v", err)
			return send(emit, state.MsgError, state.ErrorMessage{Message: err.Error()})
		}
		return send(emit, state.MsgGameStarted, started)
	}

	update, over := s.step()
	if update == nil {
		return nil
	}
	if err := send(emit, state.MsgGameUpdate, *update); err != nil {
		return err
	}
	if over == nil {
		return nil
	}

	recordCtx, cancel := context.WithTimeout(ctx, config.RecordTimeout)
	top, err := s.board.RecordResults(recordCtx, over.Leaderboard, s.now())
	cancel()
	if err != nil {
		s.log.Errorf("❌ Failed to save results to global leaderboard: %v", err)
	}
	over.GlobalTop10 = top
	s.log.Infof("🏁 Round over on %s", over.FinalState.StockA.Symbol)
	return send(emit, state.MsgGameOver, *over)
}

// step advances one tick. It returns nil when no round is running.
func (s *Server) step() (*state.GameState, *state.GameOver) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, nil
	}

	t := s.series.At(s.tick)
	s.price = t.Price
	s.tick++

	if ai, ok := s.players[AIPlayerID]; ok {
		switch t.Action {
		case ActionBuy:
			ai.Fund.AllIn(t.Price)
		case ActionSell:
			ai.Fund.AllOut(t.Price)
		}
	}

	update := s.snapshot()
	if s.tick < s.limit() {
		return &update, nil
	}

	s.running = false
	if s.restartDelay > 0 {
		s.restartAt = s.now().Add(s.restartDelay)
	}
	final := s.snapshot()
	return &update, &state.GameOver{FinalState: &final, Leaderboard: final.Leaderboard}
}

// limit is the number of updates a round emits.
func (s *Server) limit() int {
	if s.maxTicks <= 0 {
		return max(s.series.Len(), 1)
	}
	return max(s.maxTicks-1, 1)
}

func (s *Server) restartDue() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.running && !s.restartAt.IsZero() && !s.now().Before(s.restartAt)
}

// flush handles the requests already queued, not ones arriving meanwhile.
func (s *Server) flush(emit Emit) error {
	for n := len(s.inbox); n > 0; n-- {
		if err := emitAll(emit, (<-s.inbox)()); err != nil {
			return err
		}
	}
	return nil
}

// Running reports whether a round is in progress.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// ==============================================================================
// SNAPSHOTS
// ==============================================================================

// snapshot must be called with mu held.
func (s *Server) snapshot() state.GameState {
	players := make(map[string]state.PlayerState, len(s.players))
	for id, p := range s.players {
		players[id] = p.View(s.price)
	}
	return state.GameState{
		CurrentTick: s.tick,
		StockA:      state.StockQuote{Symbol: s.series.Symbol, Price: s.price},
		Players:     players,
		Leaderboard: s.leaderboard(),
		GameRunning: s.running,
	}
}

func (s *Server) leaderboard() []state.LeaderboardEntry {
	board := make([]state.LeaderboardEntry, 0, len(s.order))
	for _, id := range s.order {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		kind := state.PlayerTypeHum
		if id == AIPlayerID {
			kind = state.PlayerTypeAI
		}
		board = append(board, state.LeaderboardEntry{
			PlayerID: id,
			Networth: p.Fund.Value(s.price),
			Type:     kind,
		})
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Networth > board[j].Networth
	})
	return board
}

// reply encodes one envelope. It may be called with mu held.
func (s *Server) reply(msgType string, data any) []state.Envelope {
	env, err := state.NewEnvelope(msgType, data)
	if err != nil {
		s.log.Errorf("❌ Failed to encode %s: %v", msgType, err)
		return nil
	}
	return []state.Envelope{env}
}

func (s *Server) enqueue(msgType string, req request) {
	select {
	case s.inbox <- req:
	default:
		s.log.Warnf("⚠️  Request queue full, dropping %s", msgType)
	}
}

func emitAll(emit Emit, envs []state.Envelope) error {
	for _, env := range envs {
		if err := emit(env); err != nil {
			return err
		}
	}
	return nil
}

func send(emit Emit, msgType string, data any) error {
	env, err := state.NewEnvelope(msgType, data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msgType, err)
	}
	return emit(env)
}

// convert accepts either the typed payload or anything that marshals to it.
func convert(data any, v any) error {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
