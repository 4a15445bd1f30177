package geocache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/canvass-cli/pkg/geocode"
)

func TestPostgres_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS geocode_cache").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	st := NewPostgresWithPool(mock, 0)
	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetHit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT latitude, longitude, source, accuracy, formatted_address, matched").
		WithArgs("abc123", 30).
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude", "source", "accuracy", "formatted_address", "matched"}).
			AddRow(33.15, -96.82, "geocodio", "rooftop", "6101 Frisco Square Blvd", true))

	st := NewPostgresWithPool(mock, 30*24*time.Hour)
	got, ok, err := st.Get(context.Background(), "abc123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Matched)
	assert.InDelta(t, 33.15, got.Latitude, 1e-9)
	assert.Equal(t, "geocodio", got.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT latitude").
		WithArgs("missing", 0).
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude", "source", "accuracy", "formatted_address", "matched"}))

	st := NewPostgresWithPool(mock, 0)
	got, ok, err := st.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestPostgres_GetError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT latitude").
		WithArgs("k", 0).
		WillReturnError(errors.New("connection lost"))

	_, _, err = NewPostgresWithPool(mock, 0).Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection lost")
}

func TestPostgres_Put(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO geocode_cache").
		WithArgs("k", 33.0, -96.0, "google", "rooftop", "", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	st := NewPostgresWithPool(mock, 0)
	err = st.Put(context.Background(), "k", &geocode.Result{
		Latitude: 33, Longitude: -96, Source: "google", Accuracy: "rooftop", Matched: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Prune(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM geocode_cache").
		WithArgs(7).
		WillReturnResult(pgxmock.NewResult("DELETE", 12))

	n, err := NewPostgresWithPool(mock, 7*24*time.Hour).Prune(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PruneWithoutTTL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := NewPostgresWithPool(mock, 0).Prune(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
