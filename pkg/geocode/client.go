// Package geocode resolves free-text street addresses to coordinates via
// Geocodio (primary) and Google (optional fallback).
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sells-group/canvass-cli/internal/resilience"
)

// Client geocodes a single address.
type Client interface {
	Geocode(ctx context.Context, addr AddressInput) (*Result, error)
}

// Provider is a Client backed by one upstream API.
type Provider interface {
	Client
	Name() string
}

// AddressInput is the address to geocode.
type AddressInput struct {
	HouseNumber string
	Street      string
	City        string
	State       string
	ZipCode     string
}

// OneLine renders the address as "{number} {street}, {city}, {state}, {zip}".
func (a AddressInput) OneLine() string {
	return strings.TrimSpace(a.HouseNumber + " " + a.Street + ", " + a.City + ", " + a.State + ", " + a.ZipCode)
}

// Result is the outcome of a lookup. Matched is false when the provider
// answered but found nothing.
type Result struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Source           string  `json:"source"`
	Accuracy         string  `json:"accuracy,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Matched          bool    `json:"matched"`
}

// Option configures an HTTP provider.
type Option func(*httpOptions)

type httpOptions struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	policy     resilience.Policy
	breaker    *resilience.Breaker
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *httpOptions) {
		o.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *httpOptions) {
		if d > 0 {
			o.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit caps requests per second. Non-positive values disable the limit.
func WithRateLimit(rps float64) Option {
	return func(o *httpOptions) {
		if rps <= 0 {
			o.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
	}
}

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(u string) Option {
	return func(o *httpOptions) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRetryPolicy sets how transient failures are retried.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(o *httpOptions) {
		o.policy = p
	}
}

// WithBreaker guards the provider with b. Calls made while b is open fail
// fast with resilience.ErrBreakerOpen.
func WithBreaker(b *resilience.Breaker) Option {
	return func(o *httpOptions) {
		o.breaker = b
	}
}

func newHTTPOptions(defaultBaseURL string, opts []Option) httpOptions {
	o := httpOptions{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
		baseURL:    defaultBaseURL,
		policy:     resilience.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
