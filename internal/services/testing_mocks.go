package services

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/statmill/weekcast/internal/models"
)

// MockSeriesStore implements SeriesStore, DigestStore, and SeriesCounter for
// testing within the services package
type MockSeriesStore struct {
	mock.Mock
}

func (m *MockSeriesStore) GetSeriesBySlug(ctx context.Context, slug string) (*models.Series, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Series), args.Error(1)
}

func (m *MockSeriesStore) ListSeries(ctx context.Context) ([]models.SeriesSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SeriesSummary), args.Error(1)
}

func (m *MockSeriesStore) GetObservations(ctx context.Context, seriesID string) ([]models.Observation, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Observation), args.Error(1)
}

func (m *MockSeriesStore) UpsertSeries(ctx context.Context, slug, name, unit string) (*models.Series, error) {
	args := m.Called(ctx, slug, name, unit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Series), args.Error(1)
}

func (m *MockSeriesStore) InsertObservations(ctx context.Context, seriesID string, observations []models.Observation) (int64, error) {
	args := m.Called(ctx, seriesID, observations)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeriesStore) CountSeries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeriesStore) DeleteAllSeries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockForecastCache implements ForecastCache for testing within the services
// package
type MockForecastCache struct {
	mock.Mock
}

func (m *MockForecastCache) Key(slug, fingerprint string) string {
	args := m.Called(slug, fingerprint)
	return args.String(0)
}

func (m *MockForecastCache) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(json.RawMessage), args.Bool(1)
}

func (m *MockForecastCache) Set(ctx context.Context, key string, payload json.RawMessage) {
	m.Called(ctx, key, payload)
}

func (m *MockForecastCache) Invalidate(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}
