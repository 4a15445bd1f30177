package canvass

import (
	"strings"

	"github.com/twpayne/go-geom"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/canvass-cli/internal/model"
)

// StreetKey is the grouping key for a record: pre-directional, street,
// suffix and post-directional joined by single spaces, with empty parts and
// extra whitespace dropped. "N  Main St " and "N Main St" share a key.
func StreetKey(r *model.AddressRecord) string {
	return strings.Join(strings.Fields(r.PreDirectional+" "+r.Street+" "+r.StreetSuffix+" "+r.PostDirectional), " ")
}

// StreetGroup is the set of records sharing a StreetKey.
type StreetGroup struct {
	Key         string
	Members     []int // indices into the record slice, in input order
	Valid       int   // members with usable coordinates
	LatVariance float64
	LngVariance float64
	Orientation model.Orientation
	// Extent is the bounding box of valid members (X=longitude, Y=latitude);
	// nil when no member has usable coordinates.
	Extent *geom.Bounds
}

// GroupByStreet groups records by StreetKey, in order of first appearance.
func GroupByStreet(records []model.AddressRecord) []StreetGroup {
	var groups []StreetGroup
	pos := make(map[string]int)
	for i := range records {
		key := StreetKey(&records[i])
		idx, ok := pos[key]
		if !ok {
			idx = len(groups)
			pos[key] = idx
			groups = append(groups, StreetGroup{Key: key})
		}
		groups[idx].Members = append(groups[idx].Members, i)
	}
	return groups
}

// Orient classifies a street from the variance of its coordinates. Ties,
// including single-address streets, are East-West.
func Orient(latVariance, lngVariance float64) model.Orientation {
	if latVariance > lngVariance {
		return model.NorthSouth
	}
	return model.EastWest
}

// Classify computes each group's population variances over members with
// valid coordinates and assigns the resulting orientation to the group and
// to every member record. ParseCoordinates must have run first.
func Classify(records []model.AddressRecord, groups []StreetGroup) {
	for gi := range groups {
		g := &groups[gi]

		lats := make([]float64, 0, len(g.Members))
		lngs := make([]float64, 0, len(g.Members))
		flat := make([]float64, 0, 2*len(g.Members))
		for _, i := range g.Members {
			r := &records[i]
			if !r.CoordsValid {
				continue
			}
			lats = append(lats, r.Lat)
			lngs = append(lngs, r.Lng)
			flat = append(flat, r.Lng, r.Lat)
		}

		g.Valid = len(lats)
		g.LatVariance, g.LngVariance = 0, 0
		if g.Valid >= 2 {
			g.LatVariance = stat.PopVariance(lats, nil)
			g.LngVariance = stat.PopVariance(lngs, nil)
		}
		g.Extent = nil
		if g.Valid > 0 {
			g.Extent = geom.NewMultiPointFlat(geom.XY, flat).Bounds()
		}

		g.Orientation = Orient(g.LatVariance, g.LngVariance)
		for _, i := range g.Members {
			records[i].Orientation = g.Orientation
		}
	}
}
