package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func priced(p float64) Candle {
	return Candle{Open: p, High: p, Low: p, Close: p, Complete: true}
}

func TestHistoryWindow_KeepsMostRecent(t *testing.T) {
	w := NewHistoryWindow(3)

	for i := 1; i <= 7; i++ {
		w.Push(priced(float64(i)))
		assert.LessOrEqual(t, w.Len(), 3)
	}

	assert.Equal(t, []Candle{priced(5), priced(6), priced(7)}, w.Candles())
}

func TestHistoryWindow_UnderCapacity(t *testing.T) {
	w := NewHistoryWindow(5)
	w.Push(priced(1))
	w.Push(priced(2))

	assert.Equal(t, 2, w.Len())
	assert.Equal(t, []Candle{priced(1), priced(2)}, w.Candles())
}

func TestHistoryWindow_Reset(t *testing.T) {
	w := NewHistoryWindow(30)
	w.Push(priced(1))
	w.Reset()

	assert.Equal(t, 29, w.Len())
	for _, c := range w.Candles() {
		assert.Equal(t, Placeholder(), c)
	}
}

func TestHistoryWindow_ResetIsIdempotent(t *testing.T) {
	once := NewHistoryWindow(4)
	once.Push(priced(1))
	once.Reset()

	twice := NewHistoryWindow(4)
	twice.Push(priced(1))
	twice.Reset()
	twice.Reset()

	assert.Equal(t, once.Candles(), twice.Candles())
}

func TestHistoryWindow_PushAfterResetEvictsPlaceholders(t *testing.T) {
	w := NewHistoryWindow(3)
	w.Reset()
	w.Push(priced(1))
	w.Push(priced(2))

	assert.Equal(t, []Candle{Placeholder(), priced(1), priced(2)}, w.Candles())
}

func TestHistoryWindow_CandlesIsACopy(t *testing.T) {
	w := NewHistoryWindow(2)
	w.Push(priced(1))

	got := w.Candles()
	got[0].Close = 99

	assert.Equal(t, 1.0, w.Candles()[0].Close)
}

func TestHistoryWindow_MinimumCapacity(t *testing.T) {
	w := NewHistoryWindow(0)
	assert.Equal(t, 1, w.Cap())

	w.Reset()
	assert.Equal(t, 0, w.Len())
}
