package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/sells-group/canvass-cli/internal/resilience"
)

// GeocodioBaseURL is the versioned Geocodio API root.
const GeocodioBaseURL = "https://api.geocod.io/v1.7"

type geocodioResponse struct {
	Results []geocodioResult `json:"results"`
	Error   string           `json:"error"`
}

type geocodioResult struct {
	FormattedAddress string `json:"formatted_address"`
	Location         struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	AccuracyType string `json:"accuracy_type"`
}

// Geocodio geocodes addresses with the Geocodio forward geocoding API.
type Geocodio struct {
	apiKey string
	opts   httpOptions
}

var _ Provider = (*Geocodio)(nil)

// NewGeocodio creates a Geocodio provider for the given API key.
func NewGeocodio(apiKey string, opts ...Option) *Geocodio {
	return &Geocodio{apiKey: apiKey, opts: newHTTPOptions(GeocodioBaseURL, opts)}
}

// Name implements Provider.
func (g *Geocodio) Name() string { return "geocodio" }

// Geocode implements Client. The first result wins; an empty result set is
// an unmatched Result, not an error.
func (g *Geocodio) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	if g.apiKey == "" {
		return nil, eris.New("geocode: geocodio api key not configured")
	}

	p := g.opts.policy
	if p.OnRetry == nil {
		p.OnRetry = resilience.LogRetries(g.Name())
	}
	return resilience.Guard(ctx, g.opts.breaker, func(ctx context.Context) (*Result, error) {
		return resilience.Retry(ctx, p, func(ctx context.Context) (*Result, error) {
			return g.lookup(ctx, addr)
		})
	})
}

func (g *Geocodio) lookup(ctx context.Context, addr AddressInput) (*Result, error) {
	if err := g.opts.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: geocodio rate limit")
	}

	params := url.Values{
		"q":       {addr.OneLine()},
		"api_key": {g.apiKey},
	}
	reqURL := g.opts.baseURL + "/geocode?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: geocodio build request")
	}

	resp, err := g.opts.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: geocodio request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: geocodio read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr geocodioResponse
		_ = json.Unmarshal(body, &apiErr)
		return nil, eris.Wrapf(&resilience.StatusError{Service: g.Name(), StatusCode: resp.StatusCode},
			"geocode: geocodio %q", apiErr.Error)
	}

	var parsed geocodioResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geocode: geocodio parse response")
	}

	if len(parsed.Results) == 0 {
		return &Result{Matched: false, Source: g.Name()}, nil
	}

	first := parsed.Results[0]
	return &Result{
		Latitude:         first.Location.Lat,
		Longitude:        first.Location.Lng,
		Source:           g.Name(),
		Accuracy:         first.AccuracyType,
		FormattedAddress: first.FormattedAddress,
		Matched:          true,
	}, nil
}
