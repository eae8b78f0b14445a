package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/statmill/weekcast/internal/models"
)

// ErrSeriesNotFound is returned when a lookup by slug matches no series.
var ErrSeriesNotFound = errors.New("series not found")

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// ObservationRepository handles database operations for weekly series and
// their observations.
type ObservationRepository struct {
	pool DatabasePool
}

// NewObservationRepository creates a new observation repository.
//
// Parameters:
//
//	pool: The database connection pool.
//
// Returns:
//
//	*ObservationRepository: The initialized repository.
func NewObservationRepository(pool DatabasePool) *ObservationRepository {
	return &ObservationRepository{
		pool: pool,
	}
}

// EnsureSchema creates the series and observations tables if they do not
// exist. It is idempotent and safe to run on every startup.
//
// Parameters:
//
//	ctx: Context.
//
// Returns:
//
//	error: Error if the schema statements fail.
func (r *ObservationRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS series (
			id         UUID PRIMARY KEY,
			slug       TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			unit       TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS observations (
			series_id  UUID NOT NULL REFERENCES series(id) ON DELETE CASCADE,
			week_start DATE NOT NULL,
			value      NUMERIC(20,8) NOT NULL,
			PRIMARY KEY (series_id, week_start)
		)`,
	}

	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertSeries inserts a series or updates its display fields when the slug
// already exists.
//
// Parameters:
//
//	ctx: Context.
//	slug: Stable series identifier used in URLs.
//	name: Human-readable series name.
//	unit: Unit label for chart axes.
//
// Returns:
//
//	*models.Series: The stored series, with its existing ID on conflict.
//	error: Error if operation fails.
func (r *ObservationRepository) UpsertSeries(ctx context.Context, slug, name, unit string) (*models.Series, error) {
	query := `
		INSERT INTO series (id, slug, name, unit)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (slug)
		DO UPDATE SET
			name = EXCLUDED.name,
			unit = EXCLUDED.unit
		RETURNING id, slug, name, unit, created_at
	`

	var series models.Series
	err := r.pool.QueryRow(ctx, query, uuid.New().String(), slug, name, unit).Scan(
		&series.ID,
		&series.Slug,
		&series.Name,
		&series.Unit,
		&series.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert series: %w", err)
	}

	return &series, nil
}

// GetSeriesBySlug fetches one series by its slug.
//
// Parameters:
//
//	ctx: Context.
//	slug: Series identifier.
//
// Returns:
//
//	*models.Series: The series.
//	error: ErrSeriesNotFound when no series matches, or the query error.
func (r *ObservationRepository) GetSeriesBySlug(ctx context.Context, slug string) (*models.Series, error) {
	query := `
		SELECT id, slug, name, unit, created_at
		FROM series
		WHERE slug = $1
	`

	var series models.Series
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&series.ID,
		&series.Slug,
		&series.Name,
		&series.Unit,
		&series.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to get series %s: %w", slug, err)
	}

	return &series, nil
}

// ListSeries returns all series with their observation spans, newest first.
//
// Parameters:
//
//	ctx: Context.
//
// Returns:
//
//	[]models.SeriesSummary: Series with observation counts and week range.
//	error: Error if retrieval fails.
func (r *ObservationRepository) ListSeries(ctx context.Context) ([]models.SeriesSummary, error) {
	query := `
		SELECT s.id, s.slug, s.name, s.unit, s.created_at,
			COUNT(o.week_start), MIN(o.week_start), MAX(o.week_start)
		FROM series s
		LEFT JOIN observations o ON o.series_id = s.id
		GROUP BY s.id, s.slug, s.name, s.unit, s.created_at
		ORDER BY s.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer rows.Close()

	var summaries []models.SeriesSummary
	for rows.Next() {
		var summary models.SeriesSummary
		err := rows.Scan(
			&summary.ID,
			&summary.Slug,
			&summary.Name,
			&summary.Unit,
			&summary.CreatedAt,
			&summary.ObservationCount,
			&summary.FirstWeek,
			&summary.LastWeek,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series: %w", err)
	}

	return summaries, nil
}

// InsertObservations upserts a batch of weekly values for one series.
// Re-submitted weeks overwrite the stored value.
//
// Parameters:
//
//	ctx: Context.
//	seriesID: Owning series ID.
//	observations: Weekly values to store.
//
// Returns:
//
//	int64: Number of rows written.
//	error: Error if any insert fails.
func (r *ObservationRepository) InsertObservations(ctx context.Context, seriesID string, observations []models.Observation) (int64, error) {
	query := `
		INSERT INTO observations (series_id, week_start, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (series_id, week_start)
		DO UPDATE SET value = EXCLUDED.value
	`

	var written int64
	for _, obs := range observations {
		result, err := r.pool.Exec(ctx, query, seriesID, obs.WeekStart, obs.Value)
		if err != nil {
			return written, fmt.Errorf("failed to insert observation at %s: %w", obs.WeekStart.Format("2006-01-02"), err)
		}
		written += result.RowsAffected()
	}

	return written, nil
}

// GetObservations returns every observation of a series in week order.
//
// Parameters:
//
//	ctx: Context.
//	seriesID: Owning series ID.
//
// Returns:
//
//	[]models.Observation: Observations ordered by week_start ascending.
//	error: Error if retrieval fails.
func (r *ObservationRepository) GetObservations(ctx context.Context, seriesID string) ([]models.Observation, error) {
	query := `
		SELECT series_id, week_start, value
		FROM observations
		WHERE series_id = $1
		ORDER BY week_start ASC
	`

	rows, err := r.pool.Query(ctx, query, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to get observations: %w", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var obs models.Observation
		if err := rows.Scan(&obs.SeriesID, &obs.WeekStart, &obs.Value); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		observations = append(observations, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating observations: %w", err)
	}

	return observations, nil
}

// CountSeries returns the number of stored series.
//
// Parameters:
//
//	ctx: Context.
//
// Returns:
//
//	int64: Series count.
//	error: Error if the count fails.
func (r *ObservationRepository) CountSeries(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM series`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count series: %w", err)
	}
	return count, nil
}

// DeleteAllSeries removes every series and, via cascade, its observations.
//
// Parameters:
//
//	ctx: Context.
//
// Returns:
//
//	int64: Number of series removed.
//	error: Error if the delete fails.
func (r *ObservationRepository) DeleteAllSeries(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM series`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete series: %w", err)
	}
	return result.RowsAffected(), nil
}

// LatestWeek returns the most recent observation week of a series, or nil
// when the series has no observations.
//
// Parameters:
//
//	ctx: Context.
//	seriesID: Owning series ID.
//
// Returns:
//
//	*time.Time: Latest week start, nil when empty.
//	error: Error if the query fails.
func (r *ObservationRepository) LatestWeek(ctx context.Context, seriesID string) (*time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(week_start) FROM observations WHERE series_id = $1`, seriesID).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest week: %w", err)
	}
	return latest, nil
}
