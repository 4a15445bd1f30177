package geocache

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/canvass-cli/pkg/geocode"
)

// SQLiteStore is a file-backed Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// sqlitePragmas are applied by the driver to every pooled connection.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// NewSQLite opens the cache database at path. A zero ttl keeps entries forever.
func NewSQLite(path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, eris.Wrap(err, "geocache: sqlite open")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, eris.Wrapf(err, "geocache: sqlite connect %s", path)
	}
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

func sqliteDSN(path string) string {
	q := url.Values{"_pragma": sqlitePragmas}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash      TEXT PRIMARY KEY,
	latitude          REAL NOT NULL DEFAULT 0,
	longitude         REAL NOT NULL DEFAULT 0,
	source            TEXT NOT NULL DEFAULT '',
	accuracy          TEXT NOT NULL DEFAULT '',
	formatted_address TEXT NOT NULL DEFAULT '',
	matched           INTEGER NOT NULL DEFAULT 0,
	cached_at         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_cached_at ON geocode_cache(cached_at);
`

// Migrate creates the cache table.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "geocache: sqlite migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// cutoff returns the oldest cached_at still considered fresh.
func (s *SQLiteStore) cutoff() int64 {
	if s.ttl <= 0 {
		return 0
	}
	return s.now().Add(-s.ttl).Unix()
}

// Get implements geocode.Cache.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*geocode.Result, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT latitude, longitude, source, accuracy, formatted_address, matched
		FROM geocode_cache
		WHERE address_hash = ? AND cached_at >= ?`,
		key, s.cutoff(),
	)

	var r geocode.Result
	if err := row.Scan(&r.Latitude, &r.Longitude, &r.Source, &r.Accuracy, &r.FormattedAddress, &r.Matched); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "geocache: sqlite get")
	}
	return &r, true, nil
}

// Put implements geocode.Cache.
func (s *SQLiteStore) Put(ctx context.Context, key string, r *geocode.Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, source, accuracy, formatted_address, matched, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			source = excluded.source,
			accuracy = excluded.accuracy,
			formatted_address = excluded.formatted_address,
			matched = excluded.matched,
			cached_at = excluded.cached_at`,
		key, r.Latitude, r.Longitude, r.Source, r.Accuracy, r.FormattedAddress, r.Matched, s.now().Unix(),
	)
	return eris.Wrap(err, "geocache: sqlite put")
}

// Prune deletes entries older than the TTL. It is a no-op without a TTL.
func (s *SQLiteStore) Prune(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE cached_at < ?`, s.cutoff())
	if err != nil {
		return 0, eris.Wrap(err, "geocache: sqlite prune")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "geocache: sqlite rows affected")
	}
	return n, nil
}
