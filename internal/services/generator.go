package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/statmill/weekcast/internal/config"
	"github.com/statmill/weekcast/internal/models"
)

// SeriesWriter is the slice of the repository the generator needs.
type SeriesWriter interface {
	CountSeries(ctx context.Context) (int64, error)
	UpsertSeries(ctx context.Context, slug, name, unit string) (*models.Series, error)
	InsertObservations(ctx context.Context, seriesID string, observations []models.Observation) (int64, error)
	DeleteAllSeries(ctx context.Context) (int64, error)
}

// seriesProfile describes the shape of one synthetic weekly series: a linear
// trend plus a yearly sine cycle plus Gaussian noise.
type seriesProfile struct {
	slug  string
	unit  string
	base  float64
	slope float64
	amp   float64
	phase float64
	noise float64
}

var defaultProfiles = []seriesProfile{
	{slug: "store-visits", unit: "visits", base: 12400, slope: 14, amp: 1900, phase: 0, noise: 320},
	{slug: "support-tickets", unit: "tickets", base: 640, slope: -0.6, amp: 85, phase: 1.3, noise: 22},
	{slug: "energy-consumption", unit: "kwh", base: 53000, slope: 40, amp: 9500, phase: 3.7, noise: 1100},
	{slug: "warehouse-shipments", unit: "pallets", base: 870, slope: 2.1, amp: 140, phase: 5.2, noise: 36},
}

var titleCaser = cases.Title(language.English)

// GeneratorService seeds deterministic synthetic weekly series so a fresh
// deployment has data to forecast.
type GeneratorService struct {
	store  SeriesWriter
	seed   int64
	weeks  int
	logger *logrus.Logger
}

// NewGeneratorService creates a generator over the given store.
func NewGeneratorService(store SeriesWriter, cfg config.GeneratorConfig, logger *logrus.Logger) *GeneratorService {
	weeks := cfg.Weeks
	if weeks < 2 {
		weeks = 104
	}
	return &GeneratorService{
		store:  store,
		seed:   cfg.Seed,
		weeks:  weeks,
		logger: logger,
	}
}

// SeedDefaults populates the default demo series when the database is empty.
// A database that already holds series is left untouched.
func (g *GeneratorService) SeedDefaults(ctx context.Context) error {
	count, err := g.store.CountSeries(ctx)
	if err != nil {
		return fmt.Errorf("failed to count series: %w", err)
	}
	if count > 0 {
		g.logger.WithField("series_count", count).Debug("Series already present, skipping seed")
		return nil
	}
	return g.seedAll(ctx)
}

// Reseed wipes every series and observation and seeds the defaults again.
func (g *GeneratorService) Reseed(ctx context.Context) error {
	deleted, err := g.store.DeleteAllSeries(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	g.logger.WithField("deleted", deleted).Info("Cleared existing series")
	return g.seedAll(ctx)
}

func (g *GeneratorService) seedAll(ctx context.Context) error {
	for _, profile := range defaultProfiles {
		if err := g.seedOne(ctx, profile); err != nil {
			return err
		}
	}
	return nil
}

func (g *GeneratorService) seedOne(ctx context.Context, profile seriesProfile) error {
	series, err := g.store.UpsertSeries(ctx, profile.slug, DisplayName(profile.slug), profile.unit)
	if err != nil {
		return fmt.Errorf("failed to upsert series %s: %w", profile.slug, err)
	}

	observations := g.Generate(series.ID, profile, time.Now())
	written, err := g.store.InsertObservations(ctx, series.ID, observations)
	if err != nil {
		return fmt.Errorf("failed to insert observations for %s: %w", profile.slug, err)
	}

	g.logger.WithFields(logrus.Fields{
		"series":       profile.slug,
		"observations": written,
	}).Info("Seeded synthetic series")
	return nil
}

// Generate builds the configured number of weekly observations for one
// profile, ending at the most recent Monday. The same seed always yields the
// same values for a given slug.
func (g *GeneratorService) Generate(seriesID string, profile seriesProfile, now time.Time) []models.Observation {
	rng := rand.New(rand.NewSource(g.seed ^ int64(slugHash(profile.slug))))

	start := MostRecentMonday(now).AddDate(0, 0, -7*(g.weeks-1))
	observations := make([]models.Observation, 0, g.weeks)
	for t := 0; t < g.weeks; t++ {
		value := profile.base +
			profile.slope*float64(t) +
			profile.amp*math.Sin(2*math.Pi*float64(t)/52+profile.phase) +
			profile.noise*rng.NormFloat64()
		if value < 0 {
			value = 0
		}
		observations = append(observations, models.Observation{
			SeriesID:  seriesID,
			WeekStart: start.AddDate(0, 0, 7*t),
			Value:     decimal.NewFromFloat(value).Round(2),
		})
	}
	return observations
}

// MostRecentMonday returns the Monday on or before now, at midnight UTC.
func MostRecentMonday(now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// DisplayName turns a slug like "store-visits" into "Store Visits".
func DisplayName(slug string) string {
	return titleCaser.String(strings.ReplaceAll(slug, "-", " "))
}

func slugHash(slug string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(slug))
	return h.Sum32()
}
