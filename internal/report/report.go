// Package report describes the outcome of a sort run.
package report

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/canvass-cli/internal/model"
)

// Enrichment counts geocoding outcomes.
type Enrichment struct {
	Attempted int `yaml:"attempted"`
	Geocoded  int `yaml:"geocoded"`
	Unmatched int `yaml:"unmatched"`
	Failed    int `yaml:"failed"`
}

// Issue is a record that could not be placed by its coordinates.
type Issue struct {
	Row    int    `yaml:"row"`
	Street string `yaml:"street"`
	Reason string `yaml:"reason"`
}

// Extent is a latitude/longitude bounding box.
type Extent struct {
	MinLat float64 `yaml:"min_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLat float64 `yaml:"max_lat"`
	MaxLng float64 `yaml:"max_lng"`
}

// Street summarizes one street group.
type Street struct {
	Key         string            `yaml:"key"`
	Orientation model.Orientation `yaml:"orientation"`
	Addresses   int               `yaml:"addresses"`
	Located     int               `yaml:"located"`
	LatVariance float64           `yaml:"lat_variance"`
	LngVariance float64           `yaml:"lng_variance"`
	Extent      *Extent           `yaml:"extent,omitempty"`
}

// Summary is the result of one sort run.
type Summary struct {
	RunID      string          `yaml:"run_id"`
	Input      string          `yaml:"input"`
	Output     string          `yaml:"output"`
	Territory  model.Territory `yaml:"territory"`
	StartedAt  time.Time       `yaml:"started_at"`
	Duration   time.Duration   `yaml:"duration"`
	Records    int             `yaml:"records"`
	Enrichment Enrichment      `yaml:"enrichment"`
	Invalid    []Issue         `yaml:"invalid_coordinates,omitempty"`
	Streets    []Street        `yaml:"streets"`
}

// New starts a summary for input with a fresh run id.
func New(input string) *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		Input:     input,
		StartedAt: time.Now().UTC(),
	}
}

// Finish records the run duration.
func (s *Summary) Finish() {
	s.Duration = time.Since(s.StartedAt).Round(time.Millisecond)
}

// Orientations counts streets per orientation.
func (s *Summary) Orientations() map[model.Orientation]int {
	counts := make(map[model.Orientation]int, 2)
	for _, st := range s.Streets {
		counts[st.Orientation]++
	}
	return counts
}

// Log writes the summary to the global logger.
func (s *Summary) Log() {
	o := s.Orientations()
	zap.L().Info("sort complete",
		zap.String("run_id", s.RunID),
		zap.String("input", s.Input),
		zap.String("output", s.Output),
		zap.String("territory_type", s.Territory.Type),
		zap.String("territory_number", s.Territory.Number),
		zap.Int("records", s.Records),
		zap.Int("streets", len(s.Streets)),
		zap.Int("east_west", o[model.EastWest]),
		zap.Int("north_south", o[model.NorthSouth]),
		zap.Int("geocoded", s.Enrichment.Geocoded),
		zap.Int("geocode_unmatched", s.Enrichment.Unmatched),
		zap.Int("geocode_failed", s.Enrichment.Failed),
		zap.Int("invalid_coordinates", len(s.Invalid)),
		zap.Duration("duration", s.Duration),
	)
}

// WriteFile writes the summary as YAML.
func (s *Summary) WriteFile(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "report: marshal summary")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", path)
	}
	return nil
}
