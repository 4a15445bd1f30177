package geocode

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Cascade tries providers in order and returns the first match.
type Cascade struct {
	providers []Provider
}

// NewCascade creates a Cascade over the given providers.
func NewCascade(providers ...Provider) *Cascade {
	return &Cascade{providers: providers}
}

// Geocode implements Client. A provider error falls through to the next
// provider; the combined error is returned only when no provider answered.
func (c *Cascade) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	var errs error
	answered := false
	for _, p := range c.providers {
		res, err := p.Geocode(ctx, addr)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			zap.L().Debug("geocode: provider failed",
				zap.String("provider", p.Name()),
				zap.String("address", addr.OneLine()),
				zap.Error(err),
			)
			errs = multierr.Append(errs, err)
			continue
		}
		answered = true
		if res.Matched {
			return res, nil
		}
	}

	if !answered && errs != nil {
		return nil, errs
	}
	return &Result{Matched: false}, nil
}
