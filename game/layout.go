package game

// DefaultGridLines is the number of horizontal price lines in a frame.
const DefaultGridLines = 5

// bodyRatio is the share of a slot a candle body occupies.
const bodyRatio = 0.7

// CandleShape is one drawable candle: body and wick in viewport coordinates.
type CandleShape struct {
	Index      int     `json:"index"` // position in the display set
	Slot       int     `json:"slot"`
	X          float64 `json:"x"` // slot centre
	Width      float64 `json:"width"`
	BodyTop    float64 `json:"bodyTop"`
	BodyBottom float64 `json:"bodyBottom"`
	WickTop    float64 `json:"wickTop"`
	WickBottom float64 `json:"wickBottom"`
	Rising     bool    `json:"rising"`
	Candle     Candle  `json:"candle"`
}

// GridLine is a horizontal price guide.
type GridLine struct {
	Y     float64 `json:"y"`
	Price float64 `json:"price"`
}

// Frame is a read-only snapshot of everything one draw pass needs.
type Frame struct {
	Width        float64       `json:"width"`
	Height       float64       `json:"height"`
	Slots        int           `json:"slots"`
	Scale        *Scale        `json:"scale,omitempty"`
	Candles      []CandleShape `json:"candles"`
	Grid         []GridLine    `json:"grid"`
	CurrentPrice float64       `json:"currentPrice"`
	CurrentY     *float64      `json:"currentY,omitempty"`
	Placeholders int           `json:"placeholders"`
	Skipped      int           `json:"skipped"`
	Empty        bool          `json:"empty"`
}

// Layout positions the display set in a width x height viewport with a fixed
// number of slots. Candles are right-aligned so the newest one always sits in
// the last slot; when there are more candles than slots the oldest are left
// out. Elements whose coordinates come out non-finite are skipped and counted.
func Layout(display []Candle, scale Scale, width, height float64, slots, gridLines int, currentPrice float64) Frame {
	if slots < 1 {
		slots = 1
	}

	f := Frame{
		Width:        width,
		Height:       height,
		Slots:        slots,
		Candles:      make([]CandleShape, 0, len(display)),
		Grid:         make([]GridLine, 0, gridLines),
		CurrentPrice: currentPrice,
	}
	sc := scale
	f.Scale = &sc

	first := 0
	if len(display) > slots {
		first = len(display) - slots
	}
	offset := slots - (len(display) - first)
	slotWidth := width / float64(slots)

	for i := first; i < len(display); i++ {
		c := display[i]
		if c.Invisible {
			f.Placeholders++
			continue
		}

		slot := offset + i - first
		shape := CandleShape{
			Index:      i,
			Slot:       slot,
			X:          (float64(slot) + 0.5) * slotWidth,
			Width:      slotWidth * bodyRatio,
			BodyTop:    scale.Position(max(c.Open, c.Close), height),
			BodyBottom: scale.Position(min(c.Open, c.Close), height),
			WickTop:    scale.Position(c.High, height),
			WickBottom: scale.Position(c.Low, height),
			Rising:     c.Rising(),
			Candle:     c,
		}
		if !finite(shape.X, shape.Width, shape.BodyTop, shape.BodyBottom, shape.WickTop, shape.WickBottom) {
			f.Skipped++
			continue
		}
		f.Candles = append(f.Candles, shape)
	}

	for k := 0; k < gridLines; k++ {
		var frac float64
		if gridLines > 1 {
			frac = float64(k) / float64(gridLines-1)
		} else {
			frac = 0.5
		}
		y := frac * height
		price := scale.Price(y, height)
		if !finite(y, price) {
			f.Skipped++
			continue
		}
		f.Grid = append(f.Grid, GridLine{Y: y, Price: price})
	}

	if validPrice(currentPrice) {
		if y := scale.Position(currentPrice, height); finite(y) {
			f.CurrentY = &y
		}
	}

	return f
}

// EmptyFrame is what a draw pass gets when there is nothing visible to scale.
func EmptyFrame(display []Candle, width, height float64, slots int) Frame {
	f := Frame{
		Width:   width,
		Height:  height,
		Slots:   slots,
		Candles: []CandleShape{},
		Grid:    []GridLine{},
		Empty:   true,
	}
	for _, c := range display {
		if c.Invisible {
			f.Placeholders++
		}
	}
	return f
}
