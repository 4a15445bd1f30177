package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/resilience"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// testOpts points a provider at srv with no rate limit and fast retries.
func testOpts(srv *httptest.Server) []Option {
	return []Option{
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithRateLimit(0),
		WithRetryPolicy(resilience.Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}),
	}
}

// jsonServer serves body with the given status and counts requests.
func jsonServer(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// stubProvider is a Provider with a canned answer.
type stubProvider struct {
	name   string
	result *Result
	err    error
	calls  atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Geocode(context.Context, AddressInput) (*Result, error) {
	s.calls.Add(1)
	return s.result, s.err
}

// memCache is an in-memory Cache.
type memCache struct {
	mu     sync.Mutex
	items  map[string]*Result
	getErr error
	putErr error
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string]*Result)}
}

func (m *memCache) Get(_ context.Context, key string) (*Result, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	r, ok := m.items[key]
	return r, ok, nil
}

func (m *memCache) Put(_ context.Context, key string, r *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.items[key] = r
	return nil
}
