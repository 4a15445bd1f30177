package canvass

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/canvass-cli/internal/model"
	"github.com/sells-group/canvass-cli/pkg/geocode"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readOutput(t *testing.T, path string) []map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	header := rows[0]
	var out []map[string]string
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, h := range header {
			m[h] = row[i]
		}
		out = append(out, m)
	}
	return out
}

func TestPipeline_EndToEnd(t *testing.T) {
	input := writeInput(t, "Zone A 12.csv",
		"House Number,Street,City,State,ZIP Code,Latitude,Longitude,Last Name,Phone Number\n"+
			"103,Main,Frisco,TX,75034,30.001,-96.0,Jones,555-0101\n"+
			"101,Main,Frisco,TX,75034,30.0,-96.0,Smith,555-0100\n")

	sum, err := NewPipeline(nil, Options{StampAll: true}).Run(context.Background(), input)
	require.NoError(t, err)

	wantOut := filepath.Join(filepath.Dir(input), "Zone A 12-sorted.csv")
	assert.Equal(t, wantOut, sum.Output)
	assert.Equal(t, model.Territory{Type: "Zone A", Number: "12"}, sum.Territory)
	assert.Equal(t, 2, sum.Records)
	require.Len(t, sum.Streets, 1)
	assert.Equal(t, model.NorthSouth, sum.Streets[0].Orientation)
	require.NotNil(t, sum.Streets[0].Extent)
	assert.Equal(t, 30.001, sum.Streets[0].Extent.MaxLat)

	rows := readOutput(t, wantOut)
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]string{
		"Territory Type":   "Zone A",
		"Territory Number": "12",
		"Location Type":    "House",
		"Status":           "Unknown",
		"Latitude":         "30.0",
		"Longitude":        "-96.0",
		"Address":          "101 Main, Frisco, TX, 75034",
		"Number":           "101",
		"Street":           "Main",
		"City":             "Frisco",
		"County":           "",
		"State":            "TX",
		"ZIP Code":         "75034",
		"Last Name":        "Smith",
		"First Name":       "",
		"County Name":      "",
		"Phone Number":     "555-0100",
		"Orientation":      "North-South",
	}, rows[0])
	assert.Equal(t, "103", rows[1]["Number"])
	assert.Equal(t, "30.001", rows[1]["Latitude"])
	assert.Equal(t, "North-South", rows[1]["Orientation"])
}

func TestPipeline_GeocodeFailureStillWritesOthers(t *testing.T) {
	input := writeInput(t, "Route 7.csv",
		"HouseNumber,Street,City,State,ZIPCode,Latitude,Longitude\n"+
			"1,Main,Frisco,TX,75034,,\n"+
			"2,Oak,Frisco,TX,75034,,\n"+
			"3,Elm,Frisco,TX,75034,33.1,-96.8\n")

	geo := &fakeGeocoder{
		results: map[string]*geocode.Result{"Oak": {Latitude: 33.2, Longitude: -96.7, Matched: true}},
		fail:    map[string]error{"Main": errors.New("geocodio returned status 500")},
	}
	out := filepath.Join(t.TempDir(), "sorted.csv")

	sum, err := NewPipeline(geo, Options{StampAll: true, OutputPath: out}).Run(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Enrichment.Failed)
	assert.Equal(t, 1, sum.Enrichment.Geocoded)
	require.Len(t, sum.Invalid, 1)
	assert.Equal(t, 1, sum.Invalid[0].Row)

	rows := readOutput(t, out)
	require.Len(t, rows, 3)

	numbers := []string{rows[0]["Number"], rows[1]["Number"], rows[2]["Number"]}
	assert.ElementsMatch(t, []string{"1", "2", "3"}, numbers)
	for _, r := range rows {
		assert.Equal(t, "Route", r["Territory Type"])
		assert.Equal(t, "7", r["Territory Number"])
	}
}

func TestPipeline_TerritoryOverride(t *testing.T) {
	input := writeInput(t, "Zone A 12.csv",
		"HouseNumber,Street,City,State,ZIPCode,Latitude,Longitude\n"+
			"1,Main,Frisco,TX,75034,33.1,-96.8\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	sum, err := NewPipeline(nil, Options{
		Territory:  model.Territory{Number: "99"},
		StampAll:   true,
		OutputPath: out,
	}).Run(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, model.Territory{Type: "Zone A", Number: "99"}, sum.Territory)

	rows := readOutput(t, out)
	assert.Equal(t, "99", rows[0]["Territory Number"])
}

func TestPipeline_Strict(t *testing.T) {
	input := writeInput(t, "Zone 1.csv",
		"HouseNumber,Street,City,State,ZIPCode,Latitude,Longitude\n"+
			"1,Main,Frisco,TX,75034,north,-96.8\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	_, err := NewPipeline(nil, Options{Strict: true, OutputPath: out}).Run(context.Background(), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rows 1")
	assert.NoFileExists(t, out)
}

func TestPipeline_MissingInput(t *testing.T) {
	_, err := NewPipeline(nil, Options{}).Run(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPipeline_UnwritableOutput(t *testing.T) {
	input := writeInput(t, "Zone 1.csv",
		"HouseNumber,Street,City,State,ZIPCode,Latitude,Longitude\n"+
			"1,Main,Frisco,TX,75034,33.1,-96.8\n")

	_, err := NewPipeline(nil, Options{
		OutputPath: filepath.Join(t.TempDir(), "missing", "out.csv"),
	}).Run(context.Background(), input)
	assert.Error(t, err)
}

func TestIssueRows(t *testing.T) {
	var issues []CoordinateIssue
	for i := 1; i <= 12; i++ {
		issues = append(issues, CoordinateIssue{Row: i})
	}
	assert.Equal(t, "1, 2, 3, 4, 5, 6, 7, 8, 9, 10, ...", issueRows(issues))
	assert.Equal(t, "4", issueRows([]CoordinateIssue{{Row: 4}}))
}
