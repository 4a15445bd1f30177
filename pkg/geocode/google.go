package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/canvass-cli/internal/resilience"
)

// GoogleBaseURL is the Google Geocoding API JSON endpoint.
const GoogleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results      []googleResult `json:"results"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
	FormattedAddress string `json:"formatted_address"`
}

// Google geocodes addresses with the Google Geocoding API.
type Google struct {
	apiKey string
	opts   httpOptions
}

var _ Provider = (*Google)(nil)

// NewGoogle creates a Google provider for the given API key.
func NewGoogle(apiKey string, opts ...Option) *Google {
	return &Google{apiKey: apiKey, opts: newHTTPOptions(GoogleBaseURL, opts)}
}

// Name implements Provider.
func (g *Google) Name() string { return "google" }

// Geocode implements Client.
func (g *Google) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	if g.apiKey == "" {
		return nil, eris.New("geocode: google api key not configured")
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

func (g *Google) lookup(ctx context.Context, addr AddressInput) (*Result, error) {
	if err := g.opts.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: google rate limit")
	}

	params := url.Values{
		"address": {addr.OneLine()},
		"key":     {g.apiKey},
	}
	reqURL := g.opts.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google build request")
	}

	resp, err := g.opts.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrap(&resilience.StatusError{Service: g.Name(), StatusCode: resp.StatusCode}, "geocode: google")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: google read body")
	}

	var googleResp googleGeocodeResponse
	if err := json.Unmarshal(body, &googleResp); err != nil {
		return nil, eris.Wrap(err, "geocode: google parse response")
	}

	switch googleResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return &Result{Matched: false, Source: g.Name()}, nil
	case "OVER_QUERY_LIMIT":
		return nil, eris.Wrap(&resilience.StatusError{Service: g.Name(), StatusCode: http.StatusTooManyRequests}, "geocode: google over query limit")
	default:
		return nil, eris.Errorf("geocode: google status %s: %s", googleResp.Status, googleResp.ErrorMessage)
	}

	if len(googleResp.Results) == 0 {
		return &Result{Matched: false, Source: g.Name()}, nil
	}

	result := googleResp.Results[0]
	return &Result{
		Latitude:         result.Geometry.Location.Lat,
		Longitude:        result.Geometry.Location.Lng,
		Source:           g.Name(),
		Accuracy:         googleLocationTypeToAccuracy(result.Geometry.LocationType),
		FormattedAddress: result.FormattedAddress,
		Matched:          true,
	}, nil
}

// googleLocationTypeToAccuracy maps Google's location_type onto the
// accuracy labels Geocodio uses.
func googleLocationTypeToAccuracy(locType string) string {
	switch strings.ToUpper(locType) {
	case "ROOFTOP":
		return "rooftop"
	case "RANGE_INTERPOLATED":
		return "range_interpolation"
	case "GEOMETRIC_CENTER":
		return "street_center"
	default:
		return "approximate"
	}
}
