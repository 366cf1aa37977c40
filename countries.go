/*
Copyright © 2019 the InMAP authors.
This file is part of gpwgrid.

gpwgrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

gpwgrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with gpwgrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package gpwgrid

import (
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	godbf "github.com/LindsayBradford/go-dbf/godbf"
	shp "github.com/jonas-p/go-shp"
	"github.com/tealeg/xlsx"
)

// Country is an entry in the national identifier lookup table.
type Country struct {
	// ID is the identifier used in the identifier grid.
	ID int

	ISO3 string
	Name string

	// UNCode is the UN statistics division country code.
	UNCode int
}

// Names of the country table fields. They are matched case-insensitively.
const (
	countryIDField   = "VALUE"
	countryISO3Field = "ISO3V10"
	countryNameField = "COUNTRYENG"
	countryUNField   = "UNSDCODE"
)

var countryFields = []string{countryIDField, countryISO3Field, countryNameField, countryUNField}

// LoadCountries reads the country lookup table from the given file. The
// format is chosen by extension: .dbf (dBASE), .shp (the attribute table
// of a shapefile), .xlsx (first sheet) or .csv/.tsv. Each format must
// have VALUE, ISO3V10, COUNTRYENG and UNSDCODE columns.
func LoadCountries(filename string) ([]Country, error) {
	var (
		cs  []Country
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".dbf":
		cs, err = loadCountriesDBF(filename)
	case ".shp":
		cs, err = loadCountriesShapefile(filename)
	case ".xlsx":
		cs, err = loadCountriesExcel(filename)
	case ".csv", ".tsv":
		var f *os.File
		f, err = os.Open(filename)
		if err != nil {
			break
		}
		comma := ','
		if ext == ".tsv" {
			comma = '\t'
		}
		cs, err = ReadCountries(f, comma)
		f.Close()
	default:
		return nil, fmt.Errorf("gpwgrid.LoadCountries: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("gpwgrid.LoadCountries: %s: %v", filename, err)
	}
	return cs, nil
}

// ReadCountries reads a delimited country table with a header row.
func ReadCountries(r io.Reader, comma rune) ([]Country, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("empty country table")
	}
	return countriesFromRows(recs[0], recs[1:])
}

// countriesFromRows converts table rows to countries using the column
// positions given by header.
func countriesFromRows(header []string, rows [][]string) ([]Country, error) {
	cols, err := fieldColumns(header)
	if err != nil {
		return nil, err
	}
	var o []Country
	for i, row := range rows {
		vals := make([]string, len(cols))
		empty := true
		for k, c := range cols {
			if c < len(row) {
				vals[k] = cleanField(row[c])
			}
			if vals[k] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		c, err := newCountry(vals)
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", i+2, err)
		}
		o = append(o, c)
	}
	return o, nil
}

// fieldColumns returns the position in header of each of countryFields.
func fieldColumns(header []string) ([]int, error) {
	cols := make([]int, len(countryFields))
	for k, name := range countryFields {
		cols[k] = -1
		for i, h := range header {
			if strings.EqualFold(cleanField(h), name) {
				cols[k] = i
				break
			}
		}
		if cols[k] < 0 {
			return nil, fmt.Errorf("missing field %s", name)
		}
	}
	return cols, nil
}

// cleanField removes the space and NUL padding of fixed-width fields.
func cleanField(s string) string {
	return strings.Trim(s, " \t\r\n\x00")
}

// newCountry creates a country from values in the order of countryFields.
func newCountry(vals []string) (Country, error) {
	id, err := parseCode(vals[0])
	if err != nil {
		return Country{}, fmt.Errorf("%s: %v", countryIDField, err)
	}
	c := Country{
		ID:   id,
		ISO3: vals[1],
		Name: strings.ReplaceAll(vals[2], "\t", " "),
	}
	if vals[3] != "" {
		c.UNCode, err = parseCode(vals[3])
		if err != nil {
			return Country{}, fmt.Errorf("%s: %v", countryUNField, err)
		}
	}
	return c, nil
}

// parseCode parses an integer code, which numeric table fields sometimes
// store with a fractional part.
func parseCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%s is not an integer", s)
	}
	return int(f), nil
}

// dbfEOF terminates a dBASE table. Some writers, go-shp among them,
// leave it off.
const dbfEOF = 0x1A

func loadCountriesDBF(filename string) ([]Country, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	t, err := godbf.NewFromByteArray(terminateDBF(b), "UTF8")
	if err != nil {
		return nil, fmt.Errorf("gpwgrid: reading %s: %v", filename, err)
	}
	var header []string
	for _, fd := range t.Fields() {
		header = append(header, fd.Name())
	}
	rows := make([][]string, t.NumberOfRecords())
	for i := range rows {
		row := make([]string, len(header))
		for j, name := range header {
			row[j], err = t.FieldValueByName(i, name)
			if err != nil {
				return nil, err
			}
		}
		rows[i] = row
	}
	return countriesFromRows(header, rows)
}

// terminateDBF appends the end-of-file marker to a dBASE table whose
// length is exactly its header plus its records.
func terminateDBF(b []byte) []byte {
	if len(b) < 12 {
		return b
	}
	nRecords := int(binary.LittleEndian.Uint32(b[4:8]))
	headerLen := int(binary.LittleEndian.Uint16(b[8:10]))
	recordLen := int(binary.LittleEndian.Uint16(b[10:12]))
	if len(b) == headerLen+nRecords*recordLen {
		return append(b, dbfEOF)
	}
	return b
}

func loadCountriesShapefile(filename string) ([]Country, error) {
	r, err := shp.Open(filename)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	fields := r.Fields()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.String()
	}
	var rows [][]string
	for r.Next() {
		n, _ := r.Shape()
		row := make([]string, len(fields))
		for j := range fields {
			row[j] = r.ReadAttribute(n, j)
		}
		rows = append(rows, row)
	}
	return countriesFromRows(header, rows)
}

func loadCountriesExcel(filename string) ([]Country, error) {
	rows, err := excelRows(filename)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty country table")
	}
	return countriesFromRows(rows[0], rows[1:])
}

// excelRows returns the cell text of the first sheet of an Excel file.
func excelRows(filename string) ([][]string, error) {
	f, err := xlsx.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", filename)
	}
	var o [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		r := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			if c != nil {
				r[j] = strings.TrimSpace(c.Value)
			}
		}
		o = append(o, r)
	}
	return o, nil
}
