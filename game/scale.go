package game

import "math"

const (
	// DefaultPadFraction is the share of the price range added above and below.
	DefaultPadFraction = 0.1

	// DefaultEpsilon is the padding used when every visible price is equal.
	DefaultEpsilon = 1e-6
)

// Scale is the price domain of one draw pass. It is a pure function of the
// visible candles and holds no history.
type Scale struct {
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
	Padding  float64 `json:"padding"`
}

// NewScale derives the scale from visible candles. It reports false when there
// is nothing to scale. Placeholders are ignored even if passed in.
func NewScale(visible []Candle, padFraction, epsilon float64) (Scale, bool) {
	if epsilon <= 0 || !finite(epsilon) {
		epsilon = DefaultEpsilon
	}
	if padFraction < 0 || !finite(padFraction) {
		padFraction = 0
	}

	minPrice, maxPrice := math.Inf(1), math.Inf(-1)
	found := false
	for _, c := range visible {
		if c.Invisible {
			continue
		}
		found = true
		minPrice = math.Min(minPrice, c.Low)
		maxPrice = math.Max(maxPrice, c.High)
	}
	if !found {
		return Scale{}, false
	}

	s := Scale{MinPrice: minPrice, MaxPrice: maxPrice}
	rng := maxPrice - minPrice
	s.Padding = rng * padFraction
	if rng == 0 {
		s.Padding = epsilon
	}
	return s, true
}

// Range is MaxPrice - MinPrice, without padding.
func (s Scale) Range() float64 {
	return s.MaxPrice - s.MinPrice
}

// Span is the padded price domain covered by the viewport height.
func (s Scale) Span() float64 {
	return s.Range() + 2*s.Padding
}

// Position maps a price to a vertical coordinate; higher prices map to smaller
// values. The result may be non-finite for degenerate scales and must be
// checked by the caller.
func (s Scale) Position(price, height float64) float64 {
	return height - ((price-s.MinPrice+s.Padding)/s.Span())*height
}

// Price is the inverse of Position.
func (s Scale) Price(y, height float64) float64 {
	return s.MinPrice - s.Padding + (height-y)/height*s.Span()
}
