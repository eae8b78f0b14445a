package database

import (
	"context"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracedPool_Exec(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err, "Failed to create mock pool")
	defer mockPool.Close()

	mockPool.ExpectExec(`UPDATE series SET name = \$1 WHERE slug = \$2`).
		WithArgs("Store Visits", "store-visits").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	pool := NewTracedPool(mockPool)
	tag, err := pool.Exec(context.Background(),
		"UPDATE series SET name = $1 WHERE slug = $2", "Store Visits", "store-visits")

	assert.NoError(t, err)
	assert.Equal(t, int64(1), tag.RowsAffected())
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestTracedPool_ExecError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err, "Failed to create mock pool")
	defer mockPool.Close()

	mockPool.ExpectExec(`DELETE FROM observations`).
		WillReturnError(assert.AnError)

	pool := NewTracedPool(mockPool)
	_, err = pool.Exec(context.Background(), "DELETE FROM observations")

	assert.Error(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestTracedPool_Query(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err, "Failed to create mock pool")
	defer mockPool.Close()

	rows := pgxmock.NewRows([]string{"slug"}).
		AddRow("store-visits").
		AddRow("support-tickets")
	mockPool.ExpectQuery(`SELECT slug FROM series`).WillReturnRows(rows)

	pool := NewTracedPool(mockPool)
	result, err := pool.Query(context.Background(), "SELECT slug FROM series")
	require.NoError(t, err)
	defer result.Close()

	var slugs []string
	for result.Next() {
		var slug string
		require.NoError(t, result.Scan(&slug))
		slugs = append(slugs, slug)
	}

	assert.Equal(t, []string{"store-visits", "support-tickets"}, slugs)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestTracedPool_QueryError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err, "Failed to create mock pool")
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT slug FROM series`).WillReturnError(assert.AnError)

	pool := NewTracedPool(mockPool)
	rows, err := pool.Query(context.Background(), "SELECT slug FROM series")

	assert.Error(t, err)
	assert.Nil(t, rows)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestTracedPool_QueryRow(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err, "Failed to create mock pool")
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT COUNT\(\*\) FROM series`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))

	pool := NewTracedPool(mockPool)
	row := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM series")

	var count int64
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestTracedPool_SatisfiesRepository(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err, "Failed to create mock pool")
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT COUNT\(\*\) FROM series`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	repo := NewObservationRepository(NewTracedPool(mockPool))
	count, err := repo.CountSeries(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestStatementOperation(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"SELECT slug FROM series", "select"},
		{"  INSERT INTO observations VALUES ($1)", "insert"},
		{"update series set name = $1", "update"},
		{"", "statement"},
		{"   ", "statement"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statementOperation(tt.sql))
	}
}

func TestTruncateStatement(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateStatement(short))

	long := "INSERT INTO observations VALUES " + strings.Repeat("($1, $2, $3),", 200)
	truncated := truncateStatement(long)
	assert.Len(t, truncated, maxTracedStatementLen)
	assert.True(t, strings.HasPrefix(long, truncated))
}
