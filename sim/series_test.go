package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadSeries(t *testing.T) {
	series, err := ReadSeries(strings.NewReader("price,action,networth\n100.5,Buy,10000\nbad,Sell,1\n101,Sell,10050\nNaN,Hold,1\n"))
	require.NoError(t, err)

	assert.Equal(t, []Tick{{Price: 100.5, Action: ActionBuy}, {Price: 101, Action: ActionSell}}, series.Ticks)
}

func TestReadSeries_PriceOnly(t *testing.T) {
	series, err := ReadSeries(strings.NewReader("Price\n1\n2\n"))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, series.Prices())
	assert.Equal(t, ActionHold, series.Ticks[0].Action)
}

func TestReadSeries_Errors(t *testing.T) {
	_, err := ReadSeries(strings.NewReader("close,action\n1,Buy\n"))
	assert.ErrorContains(t, err, "price")

	_, err = ReadSeries(strings.NewReader("price\nx\n"))
	assert.Error(t, err)

	_, err = ReadSeries(strings.NewReader(""))
	assert.Error(t, err)
}

func TestSeriesAtClamps(t *testing.T) {
	series := Series{Ticks: []Tick{{Price: 1}, {Price: 2}}}

	assert.Equal(t, 1.0, series.At(-3).Price)
	assert.Equal(t, 2.0, series.At(1).Price)
	assert.Equal(t, 2.0, series.At(50).Price)
	assert.Equal(t, Tick{}, Series{}.At(0))
}

func TestLoadPricesAndAvailableStocks(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "MSFT.csv", "price\n10\n11\n")
	writeFile(t, dir, "AAPL.csv", "price\n5\n")
	writeFile(t, dir, "notes.txt", "ignore me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755))

	prices, err := LoadPrices(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11}, prices)

	series, err := LoadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", series.Symbol)

	stocks, err := AvailableStocks(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, stocks)

	_, err = LoadPrices(filepath.Join(dir, "NOPE.csv"))
	assert.ErrorIs(t, err, ErrStockNotFound)
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AAPL.csv", "price\n5\n6\n")
	src := NewDirSource(dir)

	series, err := src.Load("AAPL")
	require.NoError(t, err)
	assert.Equal(t, 2, series.Len())

	_, err = src.Load("../AAPL")
	assert.ErrorIs(t, err, ErrStockNotFound)
}
