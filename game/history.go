package game

// DefaultCapacity is the number of finalized candles kept on screen.
const DefaultCapacity = 30

// HistoryWindow is a bounded FIFO of finalized candles in chronological order.
type HistoryWindow struct {
	capacity int
	candles  []Candle
}

// NewHistoryWindow creates an empty window. Capacity below one is raised to one.
func NewHistoryWindow(capacity int) *HistoryWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &HistoryWindow{
		capacity: capacity,
		candles:  make([]Candle, 0, capacity+1),
	}
}

// Push appends a candle and evicts the oldest entries beyond capacity.
func (w *HistoryWindow) Push(c Candle) {
	w.candles = append(w.candles, c)
	if over := len(w.candles) - w.capacity; over > 0 {
		n := copy(w.candles, w.candles[over:])
		w.candles = w.candles[:n]
	}
}

// Reset replaces the history with capacity-1 placeholders, leaving exactly one
// slot for the first candle of the next round.
func (w *HistoryWindow) Reset() {
	w.candles = w.candles[:0]
	for i := 0; i < w.capacity-1; i++ {
		w.candles = append(w.candles, Placeholder())
	}
}

// Len returns the number of stored entries, placeholders included.
func (w *HistoryWindow) Len() int {
	return len(w.candles)
}

// Cap returns the window capacity.
func (w *HistoryWindow) Cap() int {
	return w.capacity
}

// Candles returns a copy of the stored entries, oldest first.
func (w *HistoryWindow) Candles() []Candle {
	out := make([]Candle, len(w.candles))
	copy(out, w.candles)
	return out
}
