package game

import "time"

// Options configures a Chart.
type Options struct {
	Interval    time.Duration
	Capacity    int
	PadFraction float64
	Epsilon     float64
	GridLines   int
}

// DefaultOptions returns the chart settings the game uses out of the box.
func DefaultOptions() Options {
	return Options{
		Interval:    DefaultInterval,
		Capacity:    DefaultCapacity,
		PadFraction: DefaultPadFraction,
		Epsilon:     DefaultEpsilon,
		GridLines:   DefaultGridLines,
	}
}

// Chart ties the aggregator, the history window and the scale together.
// The in-progress candle lives in the aggregator, finalized ones in the
// window; they are only combined when a display set is requested.
//
// A Chart is owned by a single event loop and is not safe for concurrent use.
// Hand out Frames, never the Chart itself.
type Chart struct {
	opts       Options
	aggregator *CandleAggregator
	history    *HistoryWindow
	viewport   Viewport
	lastPrice  float64
	observers  []func(Candle)
}

// NewChart builds a chart drawing into vp. Capacity follows NewHistoryWindow.
func NewChart(opts Options, vp Viewport) *Chart {
	if opts.GridLines < 0 {
		opts.GridLines = 0
	}

	history := NewHistoryWindow(opts.Capacity)
	opts.Capacity = history.Cap()

	c := &Chart{
		opts:     opts,
		history:  history,
		viewport: vp,
	}
	c.aggregator = NewCandleAggregator(opts.Interval, c.finalize)
	return c
}

func (c *Chart) finalize(candle Candle) {
	c.history.Push(candle)
	for _, fn := range c.observers {
		fn(candle)
	}
}

// OnFinalize registers fn to be called with every sealed candle, after it
// has been pushed into history.
func (c *Chart) OnFinalize(fn func(Candle)) {
	c.observers = append(c.observers, fn)
}

// Options returns the chart configuration.
func (c *Chart) Options() Options {
	return c.opts
}

// Viewport returns the surface the chart lays out into.
func (c *Chart) Viewport() Viewport {
	return c.viewport
}

// Ingest feeds one price sample. It reports false when the sample was ignored.
func (c *Chart) Ingest(price float64, now time.Time) bool {
	if !c.aggregator.Ingest(price, now) {
		return false
	}
	c.lastPrice = price
	return true
}

// Reset starts a new round: history becomes capacity-1 placeholders and the
// in-progress candle is discarded. Calling it repeatedly yields the same state.
func (c *Chart) Reset() {
	c.history.Reset()
	c.aggregator.Reset()
	c.lastPrice = 0
}

// CurrentPrice is the last accepted sample, 0 before any.
func (c *Chart) CurrentPrice() float64 {
	return c.lastPrice
}

// InProgress returns the candle still being built.
func (c *Chart) InProgress() (Candle, bool) {
	return c.aggregator.Current()
}

// History returns a copy of the finalized candles.
func (c *Chart) History() []Candle {
	return c.history.Candles()
}

// DisplaySet is history followed by the in-progress candle, if any.
func (c *Chart) DisplaySet() []Candle {
	display := c.history.Candles()
	if cur, ok := c.aggregator.Current(); ok {
		display = append(display, cur)
	}
	return display
}

// Visible is the display set without placeholders.
func (c *Chart) Visible() []Candle {
	return VisibleCandles(c.DisplaySet())
}

// Scale derives the price scale from the visible candles.
func (c *Chart) Scale() (Scale, bool) {
	return NewScale(c.Visible(), c.opts.PadFraction, c.opts.Epsilon)
}

// Slots is the number of horizontal positions a frame reserves: the full
// history plus the in-progress candle.
func (c *Chart) Slots() int {
	return c.history.Cap() + 1
}

// Frame lays out the current display set in the viewport.
func (c *Chart) Frame() Frame {
	var width, height float64
	if c.viewport != nil {
		width, height = c.viewport.Size()
	}

	display := c.DisplaySet()
	scale, ok := NewScale(VisibleCandles(display), c.opts.PadFraction, c.opts.Epsilon)
	if !ok {
		return EmptyFrame(display, width, height, c.Slots())
	}
	return Layout(display, scale, width, height, c.Slots(), c.opts.GridLines, c.lastPrice)
}
