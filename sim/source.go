package sim

import (
	"fmt"
	"path/filepath"
	"sync"

	"goLangClient/crypto"
)

// StockSource provides the series a round replays.
type StockSource interface {
	Available() ([]string, error)
	Load(symbol string) (Series, error)
}

// DirSource serves <dir>/<symbol>.csv files, caching what it has loaded.
type DirSource struct {
	Dir string

	mu     sync.Mutex
	loaded map[string]Series
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir, loaded: make(map[string]Series)}
}

func (d *DirSource) Available() ([]string, error) {
	return AvailableStocks(d.Dir)
}

func (d *DirSource) Load(symbol string) (Series, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s, ok := d.loaded[symbol]; ok {
		return s, nil
	}
	if symbol != filepath.Base(symbol) {
		return Series{}, fmt.Errorf("%w: %s", ErrStockNotFound, symbol)
	}
	s, err := LoadSeries(filepath.Join(d.Dir, symbol+".csv"))
	if err != nil {
		return Series{}, err
	}
	d.loaded[symbol] = s
	return s, nil
}

// WalkSource generates a random walk for every load. With Seed set every walk
// is the same; otherwise each load draws a new committed seed and hands it to
// OnSeed so the round can be replayed later.
type WalkSource struct {
	Ticks  int
	Seed   string
	OnSeed func(crypto.RoundSeed)
}

func (w WalkSource) Available() ([]string, error) {
	return []string{"SIM"}, nil
}

func (w WalkSource) Load(symbol string) (Series, error) {
	seed := w.Seed
	if seed == "" {
		rs, err := crypto.NewRoundSeed()
		if err != nil {
			return Series{}, err
		}
		if w.OnSeed != nil {
			w.OnSeed(rs)
		}
		seed = rs.Seed
	}
	s := RandomWalk(seed, w.Ticks)
	if symbol != "" {
		s.Symbol = symbol
	}
	return s, nil
}
