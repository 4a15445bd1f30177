package canvass

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/canvass-cli/internal/model"
)

// CoordinateIssue describes a record whose coordinates cannot be used.
type CoordinateIssue struct {
	Row    int    `yaml:"row"`
	Street string `yaml:"street"`
	Reason string `yaml:"reason"`
}

// ParseCoordinates parses every record's coordinate text into Lat/Lng and
// sets CoordsValid. Records that are missing, non-numeric, non-finite, or out
// of range are reported and logged; they stay in the list but are left out
// of variance math.
func ParseCoordinates(records []model.AddressRecord) []CoordinateIssue {
	var issues []CoordinateIssue
	for i := range records {
		rec := &records[i]
		lat, latReason := parseCoordinate(rec.Latitude, 90)
		lng, lngReason := parseCoordinate(rec.Longitude, 180)

		rec.Lat, rec.Lng = lat, lng
		rec.CoordsValid = latReason == "" && lngReason == ""
		if rec.CoordsValid {
			continue
		}

		reason := "latitude " + latReason
		if latReason == "" {
			reason = "longitude " + lngReason
		}

		issue := CoordinateIssue{Row: rec.Index + 1, Street: StreetKey(rec), Reason: reason}
		issues = append(issues, issue)
		zap.L().Warn("unusable coordinates; excluded from orientation",
			zap.Int("row", issue.Row),
			zap.String("street", issue.Street),
			zap.String("latitude", rec.Latitude),
			zap.String("longitude", rec.Longitude),
			zap.String("reason", issue.Reason),
		)
	}
	return issues
}

// parseCoordinate returns the parsed value, or a non-empty reason when the
// text is not a finite number within ±limit.
func parseCoordinate(s string, limit float64) (float64, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "missing"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, "not a number"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "not finite"
	}
	if math.Abs(v) > limit {
		return 0, "out of range"
	}
	return v, ""
}
