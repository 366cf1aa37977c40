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
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// newRawGrid returns a raw grid with square cells spanning 360° with the
// given dimensions and southern edge, with values from fill.
func newRawGrid(cols, rows int, yll, noData float64, fill func(r, c int) float64) *RawGrid {
	g := &RawGrid{
		Header: RasterHeader{
			Cols:      cols,
			Rows:      rows,
			XLLCorner: -180,
			YLLCorner: yll,
			CellSize:  360 / float64(cols),
			NoData:    noData,
		},
		Data: make([]float64, cols*rows),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.Data[r*cols+c] = fill(r, c)
		}
	}
	return g
}

// asciiText formats g as an ESRI ASCII grid.
func asciiText(g *RawGrid) string {
	var b strings.Builder
	h := g.Header
	fmt.Fprintf(&b, "ncols         %d\n", h.Cols)
	fmt.Fprintf(&b, "nrows         %d\n", h.Rows)
	fmt.Fprintf(&b, "xllcorner     %g\n", h.XLLCorner)
	fmt.Fprintf(&b, "yllcorner     %g\n", h.YLLCorner)
	fmt.Fprintf(&b, "cellsize      %.12f\n", h.CellSize)
	fmt.Fprintf(&b, "NODATA_value  %g\n", h.NoData)
	for r := 0; r < h.Rows; r++ {
		for c, v := range g.Row(r) {
			if c > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestReadASCIIGrid(t *testing.T) {
	in := testHeader + "1 2 3 4 5 6 7 8\n\n9 10 11 12 -9999 14 15 16\n"
	g, err := ReadASCIIGrid(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Data) != 16 {
		t.Fatalf("have %d values, want 16", len(g.Data))
	}
	want := []float64{9, 10, 11, 12, -9999, 14, 15, 16}
	if !reflect.DeepEqual(g.Row(1), want) {
		t.Errorf("row 1 = %v, want %v", g.Row(1), want)
	}
}

func TestReadASCIIGridErrors(t *testing.T) {
	tests := []struct {
		name, in string
	}{
		{name: "short row", in: testHeader + "1 2 3 4 5 6 7\n9 10 11 12 13 14 15 16\n"},
		{name: "long row", in: testHeader + "1 2 3 4 5 6 7 8 9\n9 10 11 12 13 14 15 16\n"},
		{name: "missing row", in: testHeader + "1 2 3 4 5 6 7 8\n"},
		{name: "not a number", in: testHeader + "1 2 3 4 5 6 7 x\n9 10 11 12 13 14 15 16\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ReadASCIIGrid(strings.NewReader(test.in)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReadASCIIGridNoFinalNewline(t *testing.T) {
	in := testHeader + "1 2 3 4 5 6 7 8\n9 10 11 12 13 14 15 16"
	g, err := ReadASCIIGrid(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if v := g.Data[15]; v != 16 {
		t.Errorf("last value = %g, want 16", v)
	}
}

func TestDecodeASCIIGridGzip(t *testing.T) {
	raw := newRawGrid(8, 3, -45, -9999, func(r, c int) float64 { return float64(r*10 + c) })
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(asciiText(raw))); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	g, err := DecodeASCIIGrid(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(g.Data, raw.Data) {
		t.Errorf("have %v, want %v", g.Data, raw.Data)
	}
	if g.Header.Cols != 8 || g.Header.Rows != 3 || g.Header.YLLCorner != -45 {
		t.Errorf("header = %+v", g.Header)
	}
}

func TestOpenASCIIGrid(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "grid.asc")
	if err := os.WriteFile(plain, []byte(testHeader+"1 2 3 4 5 6 7 8\n9 10 11 12 13 14 15 16\n"), 0644); err != nil {
		t.Fatal(err)
	}
	g, err := OpenASCIIGrid(plain)
	if err != nil {
		t.Fatal(err)
	}
	if g.Data[8] != 9 {
		t.Errorf("value = %g, want 9", g.Data[8])
	}

	bad := filepath.Join(dir, "bad.asc")
	in := strings.Replace(testHeader, "yllcorner     -90", "yllcorner     5", 1)
	if err := os.WriteFile(bad, []byte(in), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = OpenASCIIGrid(bad)
	var herr *HeaderError
	if !errors.As(err, &herr) {
		t.Errorf("error %v is not a *HeaderError", err)
	}

	if _, err := OpenASCIIGrid(filepath.Join(dir, "missing.asc")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
