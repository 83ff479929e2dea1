package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/internal/services/symbols"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	bars map[string]models.Series
}

func (f *fakeRemote) Name() string { return "fake" }

func (f *fakeRemote) Fetch(_ context.Context, symbol string, _, _ time.Time) (models.Series, error) {
	s, ok := f.bars[symbol]
	if !ok {
		return nil, errors.New("no data")
	}
	return s, nil
}

type memStore struct {
	saved map[string]int
}

func (m *memStore) Name() string                 { return "mem" }
func (m *memStore) Health(context.Context) error { return nil }

func (m *memStore) Fetch(context.Context, string, time.Time, time.Time) (models.Series, error) {
	return nil, nil
}

func (m *memStore) SaveBars(_ context.Context, symbol string, series models.Series) error {
	m.saved[symbol] += len(series)
	return nil
}

func series(n int) models.Series {
	out := make(models.Series, n)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Bar{Date: day.AddDate(0, 0, i), Open: 10, High: 11, Low: 9, Close: 10, Volume: 100}
	}
	return out
}

func TestSelectSymbols(t *testing.T) {
	norm := symbols.NewNormalizer("", []string{"THYAO", "GARAN"})

	assert.Equal(t, []string{"THYAO", "GARAN"}, selectSymbols(nil, norm))
	assert.Equal(t, []string{"akbnk", "tcell", "ISCTR"}, selectSymbols([]string{"akbnk, tcell", " ", "ISCTR"}, norm))
}

func TestBackfill(t *testing.T) {
	norm := symbols.NewNormalizer("", nil)
	remote := &fakeRemote{bars: map[string]models.Series{
		"THYAO.IS": series(5),
		"GARAN.IS": series(3),
	}}
	store := &memStore{saved: map[string]int{}}
	var out bytes.Buffer

	err := backfill(context.Background(), remote, store, norm, []string{"thyao", "GARAN", "MISSING", ""}, 30, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 symbols")
	assert.Contains(t, err.Error(), "MISSING: no data")
	assert.Contains(t, err.Error(), "symbol is required")

	assert.Equal(t, map[string]int{"THYAO.IS": 5, "GARAN.IS": 3}, store.saved)
	assert.Contains(t, out.String(), "saved 8 bars for 2 symbols")
}

func TestBackfillAllSucceed(t *testing.T) {
	norm := symbols.NewNormalizer("", nil)
	remote := &fakeRemote{bars: map[string]models.Series{"AKBNK.IS": series(2)}}
	store := &memStore{saved: map[string]int{}}

	require.NoError(t, backfill(context.Background(), remote, store, norm, []string{"AKBNK"}, 10, io.Discard))
	assert.Equal(t, 2, store.saved["AKBNK.IS"])
}

func TestPrintSummary(t *testing.T) {
	results := []*models.Analysis{{
		Symbol:       "THYAO",
		CurrentPrice: 271.5,
		Signals: models.AggregateSignal{
			Overall:  models.SignalBuy,
			Strength: 0.57,
			Buy:      4,
			Sell:     1,
			Neutral:  2,
		},
	}}
	failures := map[string]error{"zzz": errors.New("boom"), "aaa": errors.New("bad")}

	var out bytes.Buffer
	require.NoError(t, printSummary(&out, results, failures))

	text := out.String()
	assert.Contains(t, text, "SYMBOL")
	assert.Contains(t, text, "THYAO")
	assert.Contains(t, text, "271.50")
	assert.Contains(t, text, "BUY")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("AAA")), bytes.Index(out.Bytes(), []byte("ZZZ")))
}
