package geocache

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/canvass-cli/pkg/geocode"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore is a shared Store backed by Postgres, for teams running
// several canvass machines against one cache.
type PostgresStore struct {
	pool    Pool
	ttlDays int
}

// NewPostgres connects to connString and returns a PostgresStore.
func NewPostgres(ctx context.Context, connString string, ttl time.Duration) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: postgres parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: postgres create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "geocache: postgres ping")
	}
	return NewPostgresWithPool(pool, ttl), nil
}

// NewPostgresWithPool wraps an existing pool.
func NewPostgresWithPool(pool Pool, ttl time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, ttlDays: int(ttl / (24 * time.Hour))}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash      TEXT PRIMARY KEY,
	latitude          DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude         DOUBLE PRECISION NOT NULL DEFAULT 0,
	source            TEXT NOT NULL DEFAULT '',
	accuracy          TEXT NOT NULL DEFAULT '',
	formatted_address TEXT NOT NULL DEFAULT '',
	matched           BOOLEAN NOT NULL DEFAULT false,
	cached_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_cached_at ON geocode_cache(cached_at);
`

// Migrate creates the cache table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "geocache: postgres migrate")
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Get implements geocode.Cache.
func (s *PostgresStore) Get(ctx context.Context, key string) (*geocode.Result, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT latitude, longitude, source, accuracy, formatted_address, matched
		FROM geocode_cache
		WHERE address_hash = $1 AND ($2 = 0 OR cached_at > now() - make_interval(days => $2))`,
		key, s.ttlDays,
	)

	var r geocode.Result
	if err := row.Scan(&r.Latitude, &r.Longitude, &r.Source, &r.Accuracy, &r.FormattedAddress, &r.Matched); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "geocache: postgres get")
	}
	return &r, true, nil
}

// Put implements geocode.Cache.
func (s *PostgresStore) Put(ctx context.Context, key string, r *geocode.Result) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, source, accuracy, formatted_address, matched, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			source = EXCLUDED.source,
			accuracy = EXCLUDED.accuracy,
			formatted_address = EXCLUDED.formatted_address,
			matched = EXCLUDED.matched,
			cached_at = now()`,
		key, r.Latitude, r.Longitude, r.Source, r.Accuracy, r.FormattedAddress, r.Matched,
	)
	return eris.Wrap(err, "geocache: postgres put")
}

// Prune deletes entries older than the TTL. It is a no-op without a TTL.
func (s *PostgresStore) Prune(ctx context.Context) (int64, error) {
	if s.ttlDays <= 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM geocode_cache WHERE cached_at < now() - make_interval(days => $1)`,
		s.ttlDays,
	)
	if err != nil {
		return 0, eris.Wrap(err, "geocache: postgres prune")
	}
	return tag.RowsAffected(), nil
}
