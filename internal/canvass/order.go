package canvass

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/sells-group/canvass-cli/internal/model"
)

// streetRank places a street among streets of the same orientation.
type streetRank struct {
	axisMean float64
	hasAxis  bool
}

// axis returns the coordinate a street of orientation o is walked along.
func axis(r *model.AddressRecord, o model.Orientation) (primary, secondary float64) {
	if o == model.NorthSouth {
		return r.Lng, r.Lat
	}
	return r.Lat, r.Lng
}

// Sort orders classified records for canvassing, in place:
//
//  1. orientation label ascending ("East-West" before "North-South");
//  2. streets of one orientation by their mean axis value descending
//     (latitude for East-West, longitude for North-South), streets with no
//     usable coordinates last, then by street key;
//  3. within a street, records by axis value ascending, unusable
//     coordinates last;
//  4. the other axis, house number, full address, and input row.
//
// Alternating direction between steps 2 and 3 gives the serpentine walk.
// Every step compares a fixed key, so the result is a strict total order and
// does not depend on input order.
func Sort(records []model.AddressRecord) {
	ranks := rankStreets(records)
	slices.SortStableFunc(records, func(a, b model.AddressRecord) int {
		return compare(&a, &b, StreetKey(&a), StreetKey(&b), ranks)
	})
}

func rankStreets(records []model.AddressRecord) map[string]streetRank {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range records {
		r := &records[i]
		key := StreetKey(r)
		if _, ok := counts[key]; !ok {
			counts[key] = 0
		}
		if !r.CoordsValid {
			continue
		}
		v, _ := axis(r, r.Orientation)
		sums[key] += v
		counts[key]++
	}

	ranks := make(map[string]streetRank, len(counts))
	for key, n := range counts {
		if n == 0 {
			ranks[key] = streetRank{}
			continue
		}
		ranks[key] = streetRank{axisMean: sums[key] / float64(n), hasAxis: true}
	}
	return ranks
}

func compare(a, b *model.AddressRecord, ka, kb string, ranks map[string]streetRank) int {
	if c := cmp.Compare(a.Orientation, b.Orientation); c != 0 {
		return c
	}

	if ka != kb {
		ra, rb := ranks[ka], ranks[kb]
		if ra.hasAxis != rb.hasAxis {
			if ra.hasAxis {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(rb.axisMean, ra.axisMean); c != 0 {
			return c
		}
		return strings.Compare(ka, kb)
	}

	if a.CoordsValid != b.CoordsValid {
		if a.CoordsValid {
			return -1
		}
		return 1
	}
	if a.CoordsValid {
		ap, as := axis(a, a.Orientation)
		bp, bs := axis(b, b.Orientation)
		if c := cmp.Compare(ap, bp); c != 0 {
			return c
		}
		if c := cmp.Compare(as, bs); c != 0 {
			return c
		}
	}

	if c := compareHouseNumbers(a.HouseNumber, b.HouseNumber); c != 0 {
		return c
	}
	if c := strings.Compare(a.FullAddress(), b.FullAddress()); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// compareHouseNumbers compares numerically when both parse as integers.
func compareHouseNumbers(a, b string) int {
	ai, aerr := strconv.Atoi(strings.TrimSpace(a))
	bi, berr := strconv.Atoi(strings.TrimSpace(b))
	if aerr == nil && berr == nil {
		if c := cmp.Compare(ai, bi); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}
