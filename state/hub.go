package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"goLangClient/config"
	"goLangClient/game"
)

// ==============================================================================
// COLLABORATORS
// ==============================================================================

// Sender delivers client messages to the game server.
type Sender interface {
	Send(msgType string, data any) error
}

// Publisher receives every frame the hub lays out. Publish must not block.
type Publisher interface {
	Publish(frame game.Frame)
}

// RoundRecorder archives finished rounds.
type RoundRecorder interface {
	RecordRound(ctx context.Context, round RoundRecord) error
}

var ErrNoSender = errors.New("no sender configured")

// ==============================================================================
// HUB
// ==============================================================================
//
// Hub owns the session and the chart. Everything that touches them runs on
// the goroutine inside Run, so ingest, reset and layout never overlap.
// Readers on other goroutines get atomic snapshots.
//
// ==============================================================================

type Hub struct {
	log     logrus.FieldLogger
	chart   *game.Chart
	session *Session

	inbound  chan Envelope
	resized  chan struct{}
	commands chan func()

	sender        Sender
	publishers    []Publisher
	recorder      RoundRecorder
	recordTimeout time.Duration
	now           func() time.Time

	frame atomic.Pointer[game.Frame]
	view  atomic.Pointer[SessionView]

	roundCandles []game.Candle
	recording    sync.WaitGroup
}

type HubOption func(*Hub)

func WithSender(s Sender) HubOption {
	return func(h *Hub) { h.sender = s }
}

func WithPublisher(p Publisher) HubOption {
	return func(h *Hub) { h.publishers = append(h.publishers, p) }
}

func WithRecorder(r RoundRecorder) HubOption {
	return func(h *Hub) { h.recorder = r }
}

func WithRecordTimeout(d time.Duration) HubOption {
	return func(h *Hub) { h.recordTimeout = d }
}

// WithClock overrides the clock used to timestamp price samples and rounds.
func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

// WithSession replaces the default session.
func WithSession(s *Session) HubOption {
	return func(h *Hub) { h.session = s }
}

func NewHub(chart *game.Chart, log logrus.FieldLogger, opts ...HubOption) *Hub {
	h := &Hub{
		log:           log,
		chart:         chart,
		inbound:       make(chan Envelope, 256),
		resized:       make(chan struct{}, 1),
		commands:      make(chan func()),
		recordTimeout: config.RecordTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.session == nil {
		h.session = NewSession(WithSessionClock(h.now))
	}
	chart.OnFinalize(func(c game.Candle) {
		h.roundCandles = append(h.roundCandles, c)
	})

	h.storeView()
	h.storeFrame(chart.Frame())
	return h
}

// Deliver queues a server message for the loop.
func (h *Hub) Deliver(ctx context.Context, env Envelope) error {
	select {
	case h.inbound <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes messages until ctx is cancelled, then waits for pending
// round recordings.
func (h *Hub) Run(ctx context.Context) error {
	unsubscribe := h.chart.Viewport().OnResize(func(_, _ float64) {
		select {
		case h.resized <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()
	defer h.recording.Wait()

	h.publish()

	for {
		select {
		case <-ctx.Done():
			return nil

		case env := <-h.inbound:
			h.handle(env)

		case <-h.resized:
			h.publish()

		case cmd := <-h.commands:
			cmd()
		}
	}
}

func (h *Hub) handle(env Envelope) {
	events, err := h.session.Handle(env)
	if err != nil {
		h.log.Warnf("⚠️  Dropping %s message: %v", env.Type, err)
		return
	}

	redraw := false
	for _, ev := range events {
		switch e := ev.(type) {
		case RoundStarted:
			h.chart.Reset()
			h.roundCandles = nil
			redraw = true
			h.log.Infof("🎮 Round %s started (%s)", e.RoundID, e.Symbol)

		case PriceUpdate:
			if h.chart.Ingest(e.Price, h.now()) {
				redraw = true
			} else {
				h.log.Debugf("Ignoring price %v at tick %d", e.Price, e.Tick)
			}

		case RoundEnded:
			h.log.Infof("🏁 Round %s ended after %d candles", e.RoundID, len(h.roundCandles))
			h.record(h.roundRecord(e))
			redraw = true
		}
	}

	h.storeView()
	if redraw {
		h.publish()
	}
}

// roundRecord collects the finalized candles of the round plus the one still
// in progress, sealed for the archive. The chart itself is left untouched.
func (h *Hub) roundRecord(e RoundEnded) RoundRecord {
	candles := make([]CandleRecord, 0, len(h.roundCandles)+1)
	for _, c := range h.roundCandles {
		candles = append(candles, candleRecord(c))
	}
	if c, ok := h.chart.InProgress(); ok {
		candles = append(candles, candleRecord(c))
	}
	return RoundRecord{
		RoundID:     e.RoundID,
		Symbol:      e.Symbol,
		Candles:     candles,
		Leaderboard: e.Leaderboard,
		StartedAt:   e.StartedAt,
		EndedAt:     e.EndedAt,
	}
}

func candleRecord(c game.Candle) CandleRecord {
	return CandleRecord{Open: c.Open, High: c.High, Low: c.Low, Close: c.Close, StartTime: c.StartTime}
}

func (h *Hub) record(round RoundRecord) {
	if h.recorder == nil {
		return
	}
	h.recording.Add(1)
	go func() {
		defer h.recording.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.recordTimeout)
		defer cancel()

		if err := h.recorder.RecordRound(ctx, round); err != nil {
			h.log.Errorf("❌ Failed to record round %s: %v", round.RoundID, err)
			return
		}
		h.log.Infof("💾 Recorded round %s (%d candles)", round.RoundID, len(round.Candles))
	}()
}

func (h *Hub) publish() {
	frame := h.chart.Frame()
	h.storeFrame(frame)
	for _, p := range h.publishers {
		p.Publish(frame)
	}
}

func (h *Hub) storeFrame(f game.Frame) { h.frame.Store(&f) }

func (h *Hub) storeView() {
	v := h.session.View()
	h.view.Store(&v)
}

// Frame returns the most recently laid out frame.
func (h *Hub) Frame() game.Frame { return *h.frame.Load() }

// Session returns the latest session snapshot.
func (h *Hub) Session() SessionView { return *h.view.Load() }

// ==============================================================================
// OUTBOUND
// ==============================================================================

// Act sends a player action if the round is running.
func (h *Hub) Act(ctx context.Context, playerID, action string) error {
	return h.exec(ctx, func() error {
		msg, err := h.session.Act(playerID, action)
		if err != nil {
			return err
		}
		return h.send(MsgPlayerAction, msg)
	})
}

// Join asks the server to set up a game for the given players.
func (h *Hub) Join(ctx context.Context, names []string) error {
	return h.exec(ctx, func() error {
		return h.send(MsgJoinGame, JoinGame{PlayerNames: names, NumPlayers: len(names)})
	})
}

// StartGame asks the server to start a round on the given stock.
func (h *Hub) StartGame(ctx context.Context, symbol string) error {
	return h.exec(ctx, func() error {
		if h.session.Phase() == PhaseRunning {
			return ErrAlreadyRunning
		}
		return h.send(MsgStartGame, StartGame{StockA: symbol})
	})
}

// RequestState asks the server for a fresh snapshot.
func (h *Hub) RequestState(ctx context.Context) error {
	return h.exec(ctx, func() error {
		return h.send(MsgGetGameState, nil)
	})
}

func (h *Hub) send(msgType string, data any) error {
	if h.sender == nil {
		return ErrNoSender
	}
	return h.sender.Send(msgType, data)
}

// exec runs fn on the loop goroutine and waits for its result.
func (h *Hub) exec(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case h.commands <- func() { done <- fn() }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
