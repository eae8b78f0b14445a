package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/statmill/weekcast/internal/config"
	"github.com/statmill/weekcast/internal/forecast"
	"github.com/statmill/weekcast/internal/models"
)

func newDigestTestService(store DigestStore) *DigestService {
	return NewDigestService(store, config.TelegramConfig{
		DigestInterval: "168h",
	}, testForecastConfig())
}

// TestDigestService_BuildDigest checks per-series entries carry the latest
// value, next-week forecasts, and rolling accuracy, with empty series
// reported as undefined rather than skipped.
func TestDigestService_BuildDigest(t *testing.T) {
	store := &MockSeriesStore{}
	ds := newDigestTestService(store)

	summaries := []models.SeriesSummary{
		{Series: models.Series{ID: "id-1", Slug: "store-visits", Name: "Store Visits", Unit: "visits"}},
		{Series: models.Series{ID: "id-2", Slug: "new-series", Name: "New Series"}},
	}
	store.On("ListSeries", mock.Anything).Return(summaries, nil)
	store.On("GetObservations", mock.Anything, "id-1").Return(linearObservations("id-1", 20), nil)
	store.On("GetObservations", mock.Anything, "id-2").Return([]models.Observation{}, nil)

	entries, err := ds.BuildDigest(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	populated := entries[0]
	assert.Equal(t, "store-visits", populated.Slug)
	require.True(t, populated.Latest.Valid)
	assert.InDelta(t, 138.0, populated.Latest.Float64, 1e-9)
	require.True(t, populated.NextSMA.Valid)
	assert.InDelta(t, 131.0, populated.NextSMA.Float64, 1e-9)
	assert.True(t, populated.NextHW.Valid)
	assert.True(t, populated.MAPESMA.Finite())
	assert.True(t, populated.MAPEHW.Finite())

	empty := entries[1]
	assert.Equal(t, "new-series", empty.Slug)
	assert.False(t, empty.Latest.Valid)
	assert.False(t, empty.NextSMA.Valid)
	assert.False(t, empty.NextHW.Valid)
	assert.False(t, empty.MAPESMA.Valid)
}

// TestDigestService_SendDigest_NotConfigured checks sending without a bot
// token reports an error instead of panicking.
func TestDigestService_SendDigest_NotConfigured(t *testing.T) {
	store := &MockSeriesStore{}
	ds := newDigestTestService(store)

	err := ds.SendDigest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram bot not initialized")
}

// TestDigestService_FormatDigestMessage checks the markdown layout and the
// undefined placeholders.
func TestDigestService_FormatDigestMessage(t *testing.T) {
	store := &MockSeriesStore{}
	ds := newDigestTestService(store)

	entries := []DigestEntry{
		{
			Slug:    "store-visits",
			Name:    "Store Visits",
			Unit:    "visits",
			Latest:  forecast.Defined(100),
			NextSMA: forecast.Defined(101),
			NextHW:  forecast.Defined(104),
			MAPESMA: forecast.Defined(3.2),
			MAPEHW:  forecast.Defined(2.1),
		},
		{
			Slug:    "new-series",
			Name:    "New Series",
			Latest:  forecast.Undefined(),
			NextSMA: forecast.Undefined(),
			NextHW:  forecast.Undefined(),
			MAPESMA: forecast.Undefined(),
			MAPEHW:  forecast.Undefined(),
		},
	}

	message := ds.formatDigestMessage(entries)
	assert.Contains(t, message, "Weekly Forecast Digest")
	assert.Contains(t, message, "Covering 2 series")
	assert.Contains(t, message, "*Store Visits (visits)*")
	assert.Contains(t, message, "104.00 (HW)")
	assert.Contains(t, message, "3.2% (SMA)")
	assert.Contains(t, message, "n/a")
	assert.Contains(t, message, "window 8, period 52")
}

func TestDigestService_FormatDigestMessage_Empty(t *testing.T) {
	store := &MockSeriesStore{}
	ds := newDigestTestService(store)

	message := ds.formatDigestMessage(nil)
	assert.Contains(t, message, "No series tracked yet")
}

// TestTrendEmoji checks the arrow selection around the one percent band.
func TestTrendEmoji(t *testing.T) {
	tests := []struct {
		name   string
		latest forecast.Value
		next   forecast.Value
		want   string
	}{
		{name: "rising", latest: forecast.Defined(100), next: forecast.Defined(104), want: "↗️"},
		{name: "falling", latest: forecast.Defined(100), next: forecast.Defined(96), want: "↘️"},
		{name: "flat within band", latest: forecast.Defined(100), next: forecast.Defined(100.5), want: "➡️"},
		{name: "undefined latest", latest: forecast.Undefined(), next: forecast.Defined(104), want: "➡️"},
		{name: "undefined next", latest: forecast.Defined(100), next: forecast.Undefined(), want: "➡️"},
		{name: "zero latest", latest: forecast.Defined(0), next: forecast.Defined(5), want: "➡️"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trendEmoji(tt.latest, tt.next))
		})
	}
}

// TestDigestService_StartStop checks the loop declines to start without a
// bot and that Stop is idempotent.
func TestDigestService_StartStop(t *testing.T) {
	store := &MockSeriesStore{}
	ds := newDigestTestService(store)

	ds.Start(context.Background())
	ds.Stop()
	ds.Stop()
}
