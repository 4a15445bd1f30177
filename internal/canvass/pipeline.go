package canvass

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/addrfile"
	"github.com/sells-group/canvass-cli/internal/model"
	"github.com/sells-group/canvass-cli/internal/report"
	"github.com/sells-group/canvass-cli/internal/territory"
	"github.com/sells-group/canvass-cli/pkg/geocode"
)

// Options configures a Pipeline.
type Options struct {
	// Territory overrides the labels parsed from the input file name, per field.
	Territory model.Territory

	StampAll    bool
	Concurrency int

	// Strict fails the run when any record has unusable coordinates.
	Strict bool

	// OutputPath overrides the default "<input>-sorted.csv".
	OutputPath string
}

// Pipeline runs a single address list from input file to sorted output.
type Pipeline struct {
	geocoder geocode.Client
	opts     Options
}

// NewPipeline creates a Pipeline. geocoder may be nil when every input row
// is expected to carry coordinates.
func NewPipeline(geocoder geocode.Client, opts Options) *Pipeline {
	return &Pipeline{geocoder: geocoder, opts: opts}
}

// Run reads inputPath, enriches, classifies and sorts its records, and
// writes the sorted CSV.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*report.Summary, error) {
	sum := report.New(inputPath)
	sum.Territory = territory.Resolve(inputPath, p.opts.Territory)

	records, err := addrfile.ReadFile(inputPath)
	if err != nil {
		return nil, err
	}
	sum.Records = len(records)
	zap.L().Info("loaded address list",
		zap.String("input", inputPath),
		zap.Int("records", len(records)),
	)

	enricher := NewEnricher(p.geocoder, EnrichOptions{
		Territory:   sum.Territory,
		StampAll:    p.opts.StampAll,
		Concurrency: p.opts.Concurrency,
	})
	stats, err := enricher.Enrich(ctx, records)
	if err != nil {
		return nil, eris.Wrap(err, "canvass: enrich")
	}
	sum.Enrichment = report.Enrichment(stats)

	issues := ParseCoordinates(records)
	for _, is := range issues {
		sum.Invalid = append(sum.Invalid, report.Issue(is))
	}
	if p.opts.Strict && len(issues) > 0 {
		return nil, eris.Errorf("canvass: %d records with unusable coordinates (rows %s)", len(issues), issueRows(issues))
	}

	groups := GroupByStreet(records)
	Classify(records, groups)
	sum.Streets = streetSummaries(records, groups)

	Sort(records)

	out := p.opts.OutputPath
	if out == "" {
		out = addrfile.OutputPath(inputPath)
	}
	if err := addrfile.WriteFile(out, records); err != nil {
		return nil, err
	}
	sum.Output = out
	sum.Finish()
	return sum, nil
}

func streetSummaries(records []model.AddressRecord, groups []StreetGroup) []report.Street {
	out := make([]report.Street, 0, len(groups))
	for _, g := range groups {
		st := report.Street{
			Key:         g.Key,
			Orientation: g.Orientation,
			Addresses:   len(g.Members),
			Located:     g.Valid,
			LatVariance: g.LatVariance,
			LngVariance: g.LngVariance,
		}
		if g.Extent != nil {
			st.Extent = &report.Extent{
				MinLat: g.Extent.Min(1),
				MinLng: g.Extent.Min(0),
				MaxLat: g.Extent.Max(1),
				MaxLng: g.Extent.Max(0),
			}
		}
		out = append(out, st)
	}
	return out
}

func issueRows(issues []CoordinateIssue) string {
	const maxListed = 10
	rows := make([]string, 0, min(len(issues), maxListed))
	for i, is := range issues {
		if i == maxListed {
			rows = append(rows, "...")
			break
		}
		rows = append(rows, strconv.Itoa(is.Row))
	}
	return strings.Join(rows, ", ")
}
