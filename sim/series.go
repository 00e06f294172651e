package sim

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// AI actions as they appear in stock files.
const (
	ActionBuy  = "Buy"
	ActionSell = "Sell"
	ActionHold = "Hold"
)

var ErrStockNotFound = errors.New("stock data not found")

type Tick struct {
	Price  float64
	Action string
}

// Series is the price path a round replays.
type Series struct {
	Symbol string
	Ticks  []Tick
}

func (s Series) Len() int { return len(s.Ticks) }

// At returns tick i, clamped to the last tick once the series runs out.
func (s Series) At(i int) Tick {
	if len(s.Ticks) == 0 {
		return Tick{}
	}
	if i >= len(s.Ticks) {
		i = len(s.Ticks) - 1
	}
	if i < 0 {
		i = 0
	}
	return s.Ticks[i]
}

func (s Series) Prices() []float64 {
	prices := make([]float64, len(s.Ticks))
	for i, t := range s.Ticks {
		prices[i] = t.Price
	}
	return prices
}

// LoadSeries reads a stock CSV. A header with a price column is required; an
// action column is optional. Rows whose price does not parse to a finite
// number are skipped.
func LoadSeries(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Series{}, fmt.Errorf("%w: %s", ErrStockNotFound, path)
		}
		return Series{}, err
	}
	defer f.Close()

	symbol := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	series, err := ReadSeries(f)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", symbol, err)
	}
	series.Symbol = symbol
	return series, nil
}

func ReadSeries(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Series{}, fmt.Errorf("read header: %w", err)
	}

	priceCol, actionCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "price":
			priceCol = i
		case "action":
			actionCol = i
		}
	}
	if priceCol < 0 {
		return Series{}, errors.New("missing required column 'price'")
	}

	var series Series
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, err
		}
		if priceCol >= len(record) {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[priceCol]), 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		tick := Tick{Price: price, Action: ActionHold}
		if actionCol >= 0 && actionCol < len(record) {
			tick.Action = strings.TrimSpace(record[actionCol])
		}
		series.Ticks = append(series.Ticks, tick)
	}

	if len(series.Ticks) == 0 {
		return Series{}, errors.New("no price rows")
	}
	return series, nil
}

// LoadPrices returns just the price column of a stock CSV.
func LoadPrices(path string) ([]float64, error) {
	series, err := LoadSeries(path)
	if err != nil {
		return nil, err
	}
	return series.Prices(), nil
}

// AvailableStocks lists the symbols of the *.csv files in dir, sorted.
func AvailableStocks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var stocks []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		stocks = append(stocks, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(stocks)
	return stocks, nil
}
