// Package geocache persists geocoding results between runs so re-sorting a
// territory does not re-query the provider.
package geocache

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/canvass-cli/pkg/geocode"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// Store is a geocode.Cache with lifecycle and maintenance operations.
type Store interface {
	geocode.Cache
	Migrate(ctx context.Context) error
	Prune(ctx context.Context) (int64, error)
	Close() error
}

// Options selects and configures a Store.
type Options struct {
	Driver      string
	Path        string // sqlite file
	DatabaseURL string // postgres DSN
	TTL         time.Duration
}

// Open creates and migrates the Store named by opts.Driver. It returns
// (nil, nil) for DriverNone.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		st  Store
		err error
	)
	switch opts.Driver {
	case DriverNone, "":
		return nil, nil
	case DriverSQLite:
		path := opts.Path
		if path == "" {
			path = "geocode-cache.db"
		}
		st, err = NewSQLite(path, opts.TTL)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, eris.New("geocache: postgres driver requires cache.database_url")
		}
		st, err = NewPostgres(ctx, opts.DatabaseURL, opts.TTL)
	default:
		return nil, eris.Errorf("geocache: unknown driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
