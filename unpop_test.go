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
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tealeg/xlsx"
)

const testUNTable = "Country\tCountry code\t2000\n" +
	"United States of America\t840\t282496.31\n" +
	"Canada\t124\t30667.365\n" +
	"\n" +
	"Malta\t470\t390\n"

var testUN = map[int]UNRecord{
	840: {Name: "United States of America", Code: 840, Population: 282496310},
	124: {Name: "Canada", Code: 124, Population: 30667365},
	470: {Name: "Malta", Code: 470, Population: 390000},
}

func TestReadUNPopulation(t *testing.T) {
	un, err := ReadUNPopulation(strings.NewReader(testUNTable), UNReferenceYear)
	if err != nil {
		t.Fatal(err)
	}
	if len(un) != len(testUN) {
		t.Fatalf("have %d records, want %d", len(un), len(testUN))
	}
	for code, want := range testUN {
		have, ok := un[code]
		if !ok {
			t.Errorf("missing code %d", code)
			continue
		}
		if have.Name != want.Name || have.Code != want.Code || different(have.Population, want.Population, 1e-9) {
			t.Errorf("code %d: have %+v, want %+v", code, have, want)
		}
	}
}

func TestReadUNPopulationErrors(t *testing.T) {
	for _, test := range []struct {
		name, table, year string
	}{
		{name: "year", table: testUNTable, year: "2005"},
		{name: "header", table: "Country\tCode\t2000\nCanada\t124\t1\n", year: "2000"},
		{name: "short header", table: "Country\tCountry code\n", year: "2000"},
		{name: "short row", table: "Country\tCountry code\t2000\nCanada\t124\n", year: "2000"},
		{name: "bad population", table: "Country\tCountry code\t2000\nCanada\t124\tmany\n", year: "2000"},
		{name: "empty", table: "", year: "2000"},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ReadUNPopulation(strings.NewReader(test.table), test.year); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadUNPopulation(t *testing.T) {
	dir := t.TempDir()

	t.Run("tsv", func(t *testing.T) {
		f := filepath.Join(dir, "un.txt")
		if err := os.WriteFile(f, []byte(testUNTable), 0644); err != nil {
			t.Fatal(err)
		}
		un, err := LoadUNPopulation(f, UNReferenceYear)
		if err != nil {
			t.Fatal(err)
		}
		if len(un) != 3 {
			t.Errorf("have %d records, want 3", len(un))
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		f := filepath.Join(dir, "un.xlsx")
		x := xlsx.NewFile()
		sheet, err := x.AddSheet("2000")
		if err != nil {
			t.Fatal(err)
		}
		for _, vals := range [][]string{
			{"Country", "Country code", "2000"},
			{"Canada", "124", "30667.365"},
		} {
			row := sheet.AddRow()
			for _, v := range vals {
				row.AddCell().SetString(v)
			}
		}
		if err := x.Save(f); err != nil {
			t.Fatal(err)
		}
		un, err := LoadUNPopulation(f, UNReferenceYear)
		if err != nil {
			t.Fatal(err)
		}
		want := map[int]UNRecord{124: {Name: "Canada", Code: 124, Population: 30667365}}
		if len(un) != 1 || un[124].Name != "Canada" || different(un[124].Population, want[124].Population, 1e-9) {
			t.Errorf("have %+v, want %+v", un, want)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		if _, err := LoadUNPopulation(filepath.Join(dir, "un.csv"), UNReferenceYear); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestReadUNPopulationDuplicate(t *testing.T) {
	table := "Country\tCountry code\t2000\nOld\t124\t1\nNew\t124\t2\n"
	un, err := ReadUNPopulation(strings.NewReader(table), UNReferenceYear)
	if err != nil {
		t.Fatal(err)
	}
	want := map[int]UNRecord{124: {Name: "New", Code: 124, Population: 2000}}
	if !reflect.DeepEqual(un, want) {
		t.Errorf("have %+v, want %+v", un, want)
	}
}
