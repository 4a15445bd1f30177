package canvass

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/model"
	"github.com/sells-group/canvass-cli/pkg/geocode"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func addr(index int, number, street, lat, lng string) model.AddressRecord {
	return model.AddressRecord{
		HouseNumber: number,
		Street:      street,
		City:        "Frisco",
		State:       "TX",
		ZIPCode:     "75034",
		Latitude:    lat,
		Longitude:   lng,
		Index:       index,
	}
}

// prepare runs validation and classification the way the pipeline does.
func prepare(records []model.AddressRecord) []StreetGroup {
	ParseCoordinates(records)
	groups := GroupByStreet(records)
	Classify(records, groups)
	return groups
}

func indices(records []model.AddressRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Index
	}
	return out
}

// fakeGeocoder answers from a table keyed by street name. Streets mapped to
// nil are unmatched; streets in fail return an error.
type fakeGeocoder struct {
	mu      sync.Mutex
	results map[string]*geocode.Result
	fail    map[string]error
	calls   []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, a geocode.AddressInput) (*geocode.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, a.OneLine())
	f.mu.Unlock()

	if err, ok := f.fail[a.Street]; ok {
		return nil, err
	}
	if r, ok := f.results[a.Street]; ok && r != nil {
		return r, nil
	}
	return &geocode.Result{Matched: false}, nil
}

func (f *fakeGeocoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}
