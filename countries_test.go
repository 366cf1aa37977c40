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

	shp "github.com/jonas-p/go-shp"
	"github.com/kr/pretty"
	"github.com/tealeg/xlsx"
)

var testCountries = []Country{
	{ID: 840, ISO3: "USA", Name: "United States", UNCode: 840},
	{ID: 124, ISO3: "CAN", Name: "Canada", UNCode: 124},
	{ID: 134, ISO3: "MLT", Name: "Malta", UNCode: 470},
}

func checkCountries(t *testing.T, have []Country) {
	t.Helper()
	if !reflect.DeepEqual(have, testCountries) {
		for _, d := range pretty.Diff(have, testCountries) {
			t.Error(d)
		}
	}
}

func TestReadCountries(t *testing.T) {
	const table = `value,extra,iso3v10,countryeng,unsdcode
840,x,USA,United States,840
124,y,CAN,Canada,124.0
,,,,
134,z,MLT,"Malta",470
`
	cs, err := ReadCountries(strings.NewReader(table), ',')
	if err != nil {
		t.Fatal(err)
	}
	checkCountries(t, cs)
}

func TestReadCountriesErrors(t *testing.T) {
	for _, test := range []struct {
		name, table string
	}{
		{name: "missing field", table: "VALUE,ISO3V10,COUNTRYENG\n1,USA,United States\n"},
		{name: "bad id", table: "VALUE,ISO3V10,COUNTRYENG,UNSDCODE\nx,USA,United States,840\n"},
		{name: "fractional id", table: "VALUE,ISO3V10,COUNTRYENG,UNSDCODE\n1.5,USA,United States,840\n"},
		{name: "empty", table: ""},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ReadCountries(strings.NewReader(test.table), ','); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadCountriesTSV(t *testing.T) {
	f := filepath.Join(t.TempDir(), "countries.tsv")
	table := "VALUE\tISO3V10\tCOUNTRYENG\tUNSDCODE\n" +
		"840\tUSA\tUnited States\t840\n" +
		"124\tCAN\tCanada\t124\n" +
		"134\tMLT\tMalta\t470\n"
	if err := os.WriteFile(f, []byte(table), 0644); err != nil {
		t.Fatal(err)
	}
	cs, err := LoadCountries(f)
	if err != nil {
		t.Fatal(err)
	}
	checkCountries(t, cs)
}

func TestLoadCountriesExcel(t *testing.T) {
	f := filepath.Join(t.TempDir(), "countries.xlsx")
	x := xlsx.NewFile()
	sheet, err := x.AddSheet("bndsg")
	if err != nil {
		t.Fatal(err)
	}
	addRow := func(vals ...string) {
		row := sheet.AddRow()
		for _, v := range vals {
			row.AddCell().SetString(v)
		}
	}
	addRow("VALUE", "ISO3V10", "COUNTRYENG", "UNSDCODE")
	for _, c := range testCountries {
		row := sheet.AddRow()
		row.AddCell().SetInt(c.ID)
		row.AddCell().SetString(c.ISO3)
		row.AddCell().SetString(c.Name)
		row.AddCell().SetInt(c.UNCode)
	}
	if err := x.Save(f); err != nil {
		t.Fatal(err)
	}
	cs, err := LoadCountries(f)
	if err != nil {
		t.Fatal(err)
	}
	checkCountries(t, cs)
}

// writeCountryShapefile writes testCountries as the attribute table of
// a point shapefile and returns the path of the .shp file.
func writeCountryShapefile(t *testing.T) string {
	f := filepath.Join(t.TempDir(), "bndsg.shp")
	w, err := shp.Create(f, shp.POINT)
	if err != nil {
		t.Fatal(err)
	}
	err = w.SetFields([]shp.Field{
		shp.NumberField("VALUE", 10),
		shp.StringField("ISO3V10", 3),
		shp.StringField("COUNTRYENG", 40),
		shp.NumberField("UNSDCODE", 10),
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range testCountries {
		row := int(w.Write(&shp.Point{X: float64(i), Y: float64(i)}))
		for j, v := range []interface{}{c.ID, c.ISO3, c.Name, c.UNCode} {
			if err := w.WriteAttribute(row, j, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	w.Close()
	// go-shp names the attribute table "<base>dbf".
	base := strings.TrimSuffix(f, ".shp")
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestLoadCountriesShapefile(t *testing.T) {
	f := writeCountryShapefile(t)
	t.Run("shp", func(t *testing.T) {
		cs, err := LoadCountries(f)
		if err != nil {
			t.Fatal(err)
		}
		checkCountries(t, cs)
	})
	t.Run("dbf", func(t *testing.T) {
		cs, err := LoadCountries(strings.TrimSuffix(f, ".shp") + ".dbf")
		if err != nil {
			t.Fatal(err)
		}
		checkCountries(t, cs)
	})
}

func TestTerminateDBF(t *testing.T) {
	f := writeCountryShapefile(t)
	b, err := os.ReadFile(strings.TrimSuffix(f, ".shp") + ".dbf")
	if err != nil {
		t.Fatal(err)
	}
	n := len(b)
	if b[n-1] == dbfEOF {
		n--
	}
	bare := b[:n:n]
	have := terminateDBF(bare)
	if len(have) != n+1 || have[n] != dbfEOF {
		t.Errorf("unterminated table: length %d, want %d ending in %#x", len(have), n+1, dbfEOF)
	}
	if have := terminateDBF(have); len(have) != n+1 {
		t.Errorf("terminated table: length %d, want %d", len(have), n+1)
	}
	if have := terminateDBF(bare[:5]); len(have) != 5 {
		t.Errorf("short table: length %d, want 5", len(have))
	}

	for name, data := range map[string][]byte{
		"bare.dbf":       bare,
		"terminated.dbf": append(append([]byte{}, bare...), dbfEOF),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := os.WriteFile(path, data, 0644); err != nil {
				t.Fatal(err)
			}
			cs, err := LoadCountries(path)
			if err != nil {
				t.Fatal(err)
			}
			checkCountries(t, cs)
		})
	}
	t.Run("truncated", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "truncated.dbf")
		if err := os.WriteFile(path, bare[:n-7], 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadCountries(path); err == nil {
			t.Error("truncated table should fail")
		}
	})
}

func TestLoadCountriesUnsupported(t *testing.T) {
	_, err := LoadCountries("countries.json")
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("have %v, want unsupported file type error", err)
	}
}

func TestParseCode(t *testing.T) {
	for _, test := range []struct {
		s    string
		want int
		err  bool
	}{
		{s: "840", want: 840},
		{s: " 12 ", want: 12},
		{s: "12.0", want: 12},
		{s: "12.5", err: true},
		{s: "abc", err: true},
	} {
		t.Run(test.s, func(t *testing.T) {
			have, err := parseCode(test.s)
			if (err != nil) != test.err {
				t.Fatalf("err = %v", err)
			}
			if have != test.want {
				t.Errorf("have %d, want %d", have, test.want)
			}
		})
	}
}
