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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// UNRecord is a UN reference population figure for one country.
type UNRecord struct {
	Name       string
	Code       int
	Population float64
}

// UNReferenceYear is the year column expected in UN population tables.
const UNReferenceYear = "2000"

// unThousands converts UN table values, given in thousands, to persons.
const unThousands = 1000

// LoadUNPopulation reads a UN reference population table from a .tsv
// file or from the first sheet of an .xlsx file. The result is keyed by
// UN country code.
func LoadUNPopulation(filename, year string) (map[int]UNRecord, error) {
	var (
		o   map[int]UNRecord
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		var rows [][]string
		rows, err = excelRows(filename)
		if err == nil {
			o, err = unFromRows(rows, year)
		}
	case ".tsv", ".txt":
		var f *os.File
		f, err = os.Open(filename)
		if err != nil {
			break
		}
		o, err = ReadUNPopulation(f, year)
		f.Close()
	default:
		return nil, fmt.Errorf("gpwgrid.LoadUNPopulation: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("gpwgrid.LoadUNPopulation: %s: %v", filename, err)
	}
	return o, nil
}

// ReadUNPopulation reads a tab-separated UN reference population table.
// The header row must have "Country code" in the second column and year
// in the third; each following row holds a country name, its UN code and
// its population in thousands.
func ReadUNPopulation(r io.Reader, year string) (map[int]UNRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return unFromRows(rows, year)
}

func unFromRows(rows [][]string, year string) (map[int]UNRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty UN population table")
	}
	h := rows[0]
	if len(h) < 3 || strings.TrimSpace(h[1]) != "Country code" || strings.TrimSpace(h[2]) != year {
		return nil, fmt.Errorf("invalid header in UN population table: want columns \"Country code\" and %q", year)
	}
	o := make(map[int]UNRecord, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: want 3 columns, have %d", i+2, len(row))
		}
		code, err := parseCode(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: country code: %v", i+2, err)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: population: %v", i+2, err)
		}
		o[code] = UNRecord{
			Name:       strings.TrimSpace(row[0]),
			Code:       code,
			Population: p * unThousands,
		}
	}
	return o, nil
}
