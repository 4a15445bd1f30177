// Package canvass turns an address list into a walkable canvass order:
// enrich with coordinates, group by street, classify street orientation,
// and sort.
package canvass

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/canvass-cli/internal/model"
	"github.com/sells-group/canvass-cli/pkg/geocode"
)

// EnrichOptions configures an Enricher.
type EnrichOptions struct {
	Territory model.Territory

	// StampAll applies the territory labels and default tags to records that
	// already had coordinates. When false only geocoded records are stamped.
	StampAll bool

	// Concurrency bounds in-flight geocoding requests. Values below 1 mean 1.
	Concurrency int
}

// EnrichStats counts what an enrichment pass did.
type EnrichStats struct {
	Attempted int
	Geocoded  int
	Unmatched int
	Failed    int
}

// Enricher fills missing coordinates through a geocode.Client.
type Enricher struct {
	client geocode.Client
	opts   EnrichOptions
}

// NewEnricher creates an Enricher. client may be nil, in which case every
// lookup counts as failed.
func NewEnricher(client geocode.Client, opts EnrichOptions) *Enricher {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Enricher{client: client, opts: opts}
}

// Enrich geocodes every record missing a latitude or longitude, in place.
// Lookup failures are logged and leave the record's coordinates untouched;
// only context cancellation is returned as an error.
func (e *Enricher) Enrich(ctx context.Context, records []model.AddressRecord) (EnrichStats, error) {
	var attempted, geocoded, unmatched, failed atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i := range records {
		rec := &records[i]
		if rec.HasCoordinates() {
			if e.opts.StampAll {
				rec.Stamp(e.opts.Territory)
			}
			continue
		}

		attempted.Add(1)
		g.Go(func() error {
			zap.L().Debug("geocoding address", zap.Int("row", rec.Index+1), zap.String("street", rec.Street))

			switch ok, err := e.geocode(gCtx, rec); {
			case err != nil:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				zap.L().Warn("geocode failed",
					zap.Int("row", rec.Index+1),
					zap.String("address", rec.FullAddress()),
					zap.Error(err),
				)
			case !ok:
				unmatched.Add(1)
				zap.L().Warn("geocode returned no match",
					zap.Int("row", rec.Index+1),
					zap.String("address", rec.FullAddress()),
				)
			default:
				geocoded.Add(1)
			}

			rec.Stamp(e.opts.Territory)
			return nil
		})
	}

	err := g.Wait()
	stats := EnrichStats{
		Attempted: int(attempted.Load()),
		Geocoded:  int(geocoded.Load()),
		Unmatched: int(unmatched.Load()),
		Failed:    int(failed.Load()),
	}
	return stats, err
}

// geocode looks up rec and, on a match, overwrites both coordinate fields.
func (e *Enricher) geocode(ctx context.Context, rec *model.AddressRecord) (bool, error) {
	if e.client == nil {
		return false, errNoGeocoder
	}

	res, err := e.client.Geocode(ctx, geocode.AddressInput{
		HouseNumber: rec.HouseNumber,
		Street:      rec.Street,
		City:        rec.City,
		State:       rec.State,
		ZipCode:     rec.ZIPCode,
	})
	if err != nil {
		return false, err
	}
	if res == nil || !res.Matched {
		return false, nil
	}

	rec.Latitude = strconv.FormatFloat(res.Latitude, 'f', -1, 64)
	rec.Longitude = strconv.FormatFloat(res.Longitude, 'f', -1, 64)
	return true, nil
}
