package game

import "math"

// Candle is one OHLC bucket of the live chart.
// Invisible candles are zero-valued placeholders inserted on reset so the
// timeline keeps its width; they carry no prices and are never drawn.
type Candle struct {
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	StartTime int64   `json:"startTime"`
	Complete  bool    `json:"isComplete"`
	Invisible bool    `json:"invisible"`
}

// Placeholder returns an invisible candle.
func Placeholder() Candle {
	return Candle{Invisible: true}
}

func newCandle(price float64, startMs int64) *Candle {
	return &Candle{
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		StartTime: startMs,
	}
}

func (c *Candle) update(price float64) {
	c.High = math.Max(c.High, price)
	c.Low = math.Min(c.Low, price)
	c.Close = price
}

// Rising reports whether the candle closed at or above its open.
func (c Candle) Rising() bool {
	return c.Close >= c.Open
}

// Valid reports whether a visible candle satisfies low <= open, close <= high.
// Placeholders are always valid.
func (c Candle) Valid() bool {
	if c.Invisible {
		return true
	}
	return c.Low <= c.Open && c.Open <= c.High &&
		c.Low <= c.Close && c.Close <= c.High
}

// VisibleCandles filters out placeholders, keeping order.
func VisibleCandles(display []Candle) []Candle {
	visible := make([]Candle, 0, len(display))
	for _, c := range display {
		if !c.Invisible {
			visible = append(visible, c)
		}
	}
	return visible
}

// validPrice rejects the samples a live feed sends before it has data:
// zero, negative and non-finite prices.
func validPrice(price float64) bool {
	return price > 0 && !math.IsInf(price, 0) && !math.IsNaN(price)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
