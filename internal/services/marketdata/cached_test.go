package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinSignal/internal/domain/models"
	"FinSignal/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProvider struct{ mock.Mock }

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Fetch(ctx context.Context, symbol string, start, end time.Time) (models.Series, error) {
	args := m.Called(ctx, symbol, start, end)
	s, _ := args.Get(0).(models.Series)
	return s, args.Error(1)
}

type mockStore struct {
	mockProvider
}

func (m *mockStore) SaveBars(ctx context.Context, symbol string, s models.Series) error {
	return m.Called(ctx, symbol, s).Error(0)
}

func (m *mockStore) Health(ctx context.Context) error { return nil }

type recordingMetrics struct {
	latencies int
	errors    []string
}

func (r *recordingMetrics) RecordAnalysis(string, models.Signal)        {}
func (r *recordingMetrics) RecordError(stage string)                    { r.errors = append(r.errors, stage) }
func (r *recordingMetrics) RecordLastPrice(string, float64)             {}
func (r *recordingMetrics) RecordProviderLatency(string, time.Duration) { r.latencies++ }

func sampleSeries() models.Series {
	return models.Series{
		{Date: d(2024, 3, 1), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
		{Date: d(2024, 3, 4), Open: 10.5, High: 12, Low: 10, Close: 11.5, Volume: 120},
	}
}

func TestCachedServesSecondFetchFromCache(t *testing.T) {
	mc := cache.NewMemoryCache(cache.MemoryConfig{})
	defer mc.Close()

	inner := &mockProvider{}
	start, end := d(2024, 2, 1), d(2024, 3, 5)
	inner.On("Fetch", mock.Anything, "THYAO.IS", start, end).Return(sampleSeries(), nil).Once()

	m := &recordingMetrics{}
	c := NewCached(inner, mc, time.Minute, WithMetrics(m))

	first, err := c.Fetch(context.Background(), "THYAO.IS", start, end)
	require.NoError(t, err)
	second, err := c.Fetch(context.Background(), "THYAO.IS", start, end)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, sampleSeries(), second)
	assert.Equal(t, 1, m.latencies)
	inner.AssertExpectations(t)
}

func TestCachedDoesNotCacheEmptyOrErrors(t *testing.T) {
	mc := cache.NewMemoryCache(cache.MemoryConfig{})
	defer mc.Close()

	inner := &mockProvider{}
	start, end := d(2024, 2, 1), d(2024, 3, 5)
	inner.On("Fetch", mock.Anything, "NEW.IS", start, end).Return(models.Series{}, nil).Twice()
	inner.On("Fetch", mock.Anything, "BAD.IS", start, end).Return(nil, errors.New("boom")).Once()

	m := &recordingMetrics{}
	c := NewCached(inner, mc, time.Minute, WithMetrics(m))

	for i := 0; i < 2; i++ {
		s, err := c.Fetch(context.Background(), "NEW.IS", start, end)
		require.NoError(t, err)
		assert.Empty(t, s)
	}
	_, err := c.Fetch(context.Background(), "BAD.IS", start, end)
	assert.Error(t, err)
	assert.Equal(t, []string{"provider_mock"}, m.errors)
	inner.AssertExpectations(t)
}

func TestCachedWritesThroughToStore(t *testing.T) {
	inner := &mockProvider{}
	store := &mockStore{}
	start, end := d(2024, 2, 1), d(2024, 3, 5)
	inner.On("Fetch", mock.Anything, "THYAO.IS", start, end).Return(sampleSeries(), nil)
	store.On("SaveBars", mock.Anything, "THYAO.IS", sampleSeries()).Return(errors.New("clickhouse down"))

	c := NewCached(inner, nil, time.Minute, WithStore(store))
	s, err := c.Fetch(context.Background(), "THYAO.IS", start, end)

	require.NoError(t, err, "store failures are logged, not returned")
	assert.Len(t, s, 2)
	store.AssertExpectations(t)
}
