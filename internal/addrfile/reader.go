// Package addrfile reads canvass address lists and writes the sorted,
// fixed-schema output CSV.
package addrfile

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/sells-group/canvass-cli/internal/model"
)

// RequiredColumns must be present (after header normalization).
var RequiredColumns = []string{"HouseNumber", "Street", "City", "State", "ZIPCode"}

// NormalizeHeader removes every whitespace character, so "ZIP Code" and
// " House Number" become "ZIPCode" and "HouseNumber".
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(h), "")
}

// NewUTF8Reader strips a leading UTF-8 byte order mark, as written by Excel.
func NewUTF8Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadFile reads all address records from the CSV at path.
func ReadFile(path string) ([]model.AddressRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "addrfile: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	records, err := Read(f)
	if err != nil {
		return nil, eris.Wrapf(err, "addrfile: read %s", path)
	}
	return records, nil
}

// Read decodes address records from r. Rows keep their input order and
// Index is set to the zero-based row position.
func Read(r io.Reader) ([]model.AddressRecord, error) {
	cr := csv.NewReader(NewUTF8Reader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, eris.New("addrfile: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "addrfile: read header")
	}

	for i, h := range header {
		header[i] = NormalizeHeader(h)
	}
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, eris.Errorf("addrfile: missing required columns: %s", strings.Join(missing, ", "))
	}

	dec, err := csvutil.NewDecoder(&paddedReader{r: cr, width: len(header)}, header...)
	if err != nil {
		return nil, eris.Wrap(err, "addrfile: build decoder")
	}

	var records []model.AddressRecord
	for {
		var rec model.AddressRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "addrfile: decode row %d", len(records)+1)
		}
		rec.Index = len(records)
		records = append(records, rec)
	}
	return records, nil
}

// paddedReader fills short rows with empty fields up to width, so a row
// with trailing columns omitted decodes with those fields unset. Extra
// fields are kept and rejected by the decoder.
type paddedReader struct {
	r     *csv.Reader
	width int
}

func (p *paddedReader) Read() ([]string, error) {
	rec, err := p.r.Read()
	if err != nil {
		return rec, err
	}
	for len(rec) < p.width {
		rec = append(rec, "")
	}
	return rec, nil
}

func missingColumns(header []string) []string {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
