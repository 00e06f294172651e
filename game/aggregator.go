package game

import "time"

// DefaultInterval is the wall-clock width of one candle.
const DefaultInterval = 500 * time.Millisecond

// CandleAggregator turns a stream of price samples into fixed-interval
// candles. Interval boundaries are driven by sample arrival: an idle gap longer
// than the interval still finalizes exactly one candle, nothing is backfilled.
//
// Not safe for concurrent use; the owning event loop serializes access.
type CandleAggregator struct {
	interval   time.Duration
	current    *Candle
	groupStart time.Time
	onFinalize func(Candle)
}

// NewCandleAggregator creates an aggregator that calls onFinalize with every
// candle it seals. A non-positive interval falls back to DefaultInterval.
func NewCandleAggregator(interval time.Duration, onFinalize func(Candle)) *CandleAggregator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &CandleAggregator{
		interval:   interval,
		onFinalize: onFinalize,
	}
}

// Interval returns the candle width.
func (a *CandleAggregator) Interval() time.Duration {
	return a.interval
}

// Ingest attributes one sample to the in-progress candle, sealing it first
// when the interval has elapsed. Invalid prices are dropped and Ingest reports
// false.
func (a *CandleAggregator) Ingest(price float64, now time.Time) bool {
	if !validPrice(price) {
		return false
	}

	if a.current == nil {
		a.start(price, now)
		return true
	}

	if now.Sub(a.groupStart) >= a.interval {
		sealed := *a.current
		sealed.Complete = true
		a.current = nil
		if a.onFinalize != nil {
			a.onFinalize(sealed)
		}
		a.start(price, now)
		return true
	}

	a.current.update(price)
	return true
}

func (a *CandleAggregator) start(price float64, now time.Time) {
	a.current = newCandle(price, now.UnixMilli())
	a.groupStart = now
}

// Current returns a copy of the in-progress candle.
func (a *CandleAggregator) Current() (Candle, bool) {
	if a.current == nil {
		return Candle{}, false
	}
	return *a.current, true
}

// Reset drops the in-progress candle and its interval start without emitting it.
func (a *CandleAggregator) Reset() {
	a.current = nil
	a.groupStart = time.Time{}
}
