package addrfile

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/canvass-cli/internal/model"
)

// outputRow is the fixed output schema, in column order.
type outputRow struct {
	TerritoryType   string `csv:"Territory Type"`
	TerritoryNumber string `csv:"Territory Number"`
	LocationType    string `csv:"Location Type"`
	Status          string `csv:"Status"`
	Latitude        string `csv:"Latitude"`
	Longitude       string `csv:"Longitude"`
	Address         string `csv:"Address"`
	Number          string `csv:"Number"`
	Street          string `csv:"Street"`
	City            string `csv:"City"`
	County          string `csv:"County"`
	State           string `csv:"State"`
	ZIPCode         string `csv:"ZIP Code"`
	LastName        string `csv:"Last Name"`
	FirstName       string `csv:"First Name"`
	CountyName      string `csv:"County Name"`
	PhoneNumber     string `csv:"Phone Number"`
	Orientation     string `csv:"Orientation"`
}

func toOutputRow(r *model.AddressRecord) outputRow {
	return outputRow{
		TerritoryType:   r.TerritoryType,
		TerritoryNumber: r.TerritoryNumber,
		LocationType:    r.LocationType,
		Status:          r.Status,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Address:         r.Address,
		Number:          r.HouseNumber,
		Street:          r.Street,
		City:            r.City,
		County:          r.County,
		State:           r.State,
		ZIPCode:         r.ZIPCode,
		LastName:        r.LastName,
		FirstName:       r.FirstName,
		CountyName:      r.CountyName,
		PhoneNumber:     r.PhoneNumber,
		Orientation:     string(r.Orientation),
	}
}

// OutputPath returns "<dir>/<base>-sorted.csv" for an input path.
func OutputPath(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(input), base+"-sorted.csv")
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, records []model.AddressRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "addrfile: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "addrfile: close %s", path)
		}
	}()

	return Write(f, records)
}

// Write encodes records in the fixed output schema. The header is written
// even when records is empty.
func Write(w io.Writer, records []model.AddressRecord) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(outputRow{}); err != nil {
		return eris.Wrap(err, "addrfile: write header")
	}
	for i := range records {
		if err := enc.Encode(toOutputRow(&records[i])); err != nil {
			return eris.Wrapf(err, "addrfile: write row %d", i+1)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "addrfile: flush")
}
