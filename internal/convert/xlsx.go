package convert

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/canvass-cli/internal/addrfile"
)

// SheetName is the sheet written by CSVToXLSX.
const SheetName = "Sheet1"

// CSVToXLSX writes the CSV at src as a one-sheet workbook at dst. Every
// cell, header included, is stored as a string.
func CSVToXLSX(src, dst string) error {
	rows, err := readCSV(src)
	if err != nil {
		return err
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "convert: add sheet")
	}
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}

	if err := f.Save(dst); err != nil {
		return eris.Wrapf(err, "convert: save %s", dst)
	}
	return nil
}

// XLSXToCSV writes the first sheet of the workbook at src as UTF-8 CSV at dst.
func XLSXToCSV(src, dst string) (err error) {
	rows, err := readFirstSheet(src)
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return eris.Wrapf(err, "convert: create %s", dst)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "convert: close %s", dst)
		}
	}()

	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		return eris.Wrapf(err, "convert: write %s", dst)
	}
	return nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	rows, err := parseCSV(addrfile.NewUTF8Reader(f))
	if err != nil {
		return nil, eris.Wrapf(err, "convert: read %s", path)
	}
	return rows, nil
}

func parseCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

func readFirstSheet(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("convert: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, rowToStrings(row))
	}
	return rows, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
