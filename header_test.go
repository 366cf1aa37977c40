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
	"bufio"
	"errors"
	"strings"
	"testing"
)

const testHeader = `ncols         8
nrows         2
xllcorner     -180
yllcorner     -90
cellsize      45
NODATA_value  -9999
`

func TestParseHeader(t *testing.T) {
	h, err := ParseHeader(bufio.NewReader(strings.NewReader(testHeader)))
	if err != nil {
		t.Fatal(err)
	}
	want := RasterHeader{Cols: 8, Rows: 2, XLLCorner: -180, YLLCorner: -90, CellSize: 45, NoData: -9999}
	if h != want {
		t.Errorf("have %+v, want %+v", h, want)
	}
	if err := h.Check(); err != nil {
		t.Error(err)
	}
}

func TestParseHeaderCRLF(t *testing.T) {
	in := strings.Replace(testHeader, "\n", "\r\n", -1)
	h, err := ParseHeader(bufio.NewReader(strings.NewReader(in)))
	if err != nil {
		t.Fatal(err)
	}
	if h.NoData != -9999 {
		t.Errorf("NoData = %g", h.NoData)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name, in string
		line     int
		field    string
	}{
		{
			name:  "order",
			in:    strings.Replace(strings.Replace(testHeader, "ncols ", "tmp ", 1), "nrows ", "ncols ", 1),
			line:  1,
			field: "ncols",
		},
		{
			name:  "ncols not integer",
			in:    strings.Replace(testHeader, "ncols         8", "ncols         8.5", 1),
			line:  1,
			field: "ncols",
		},
		{
			name:  "xllcorner",
			in:    strings.Replace(testHeader, "-180", "-179", 1),
			line:  3,
			field: "xllcorner",
		},
		{
			name:  "yllcorner zero",
			in:    strings.Replace(testHeader, "yllcorner     -90", "yllcorner     0", 1),
			line:  4,
			field: "yllcorner",
		},
		{
			name:  "yllcorner positive",
			in:    strings.Replace(testHeader, "yllcorner     -90", "yllcorner     10", 1),
			line:  4,
			field: "yllcorner",
		},
		{
			name:  "cellsize without value",
			in:    strings.Replace(testHeader, "cellsize      45", "cellsize", 1),
			line:  5,
			field: "cellsize",
		},
		{
			name:  "misnamed NODATA",
			in:    strings.Replace(testHeader, "NODATA_value", "nodata_value", 1),
			line:  6,
			field: "NODATA_value",
		},
		{
			name:  "truncated",
			in:    "ncols 8\nnrows 2\nxllcorner -180\n",
			line:  4,
			field: "yllcorner",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseHeader(bufio.NewReader(strings.NewReader(test.in)))
			var herr *HeaderError
			if !errors.As(err, &herr) {
				t.Fatalf("error %v is not a *HeaderError", err)
			}
			if herr.Line != test.line || herr.Field != test.field {
				t.Errorf("error at line %d (%s), want line %d (%s)", herr.Line, herr.Field, test.line, test.field)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		h    RasterHeader
		ok   bool
	}{
		{
			name: "full globe",
			h:    RasterHeader{Cols: 8, Rows: 4, XLLCorner: -180, YLLCorner: -90, CellSize: 45},
			ok:   true,
		},
		{
			name: "GPWv3 band",
			h:    RasterHeader{Cols: 8640, Rows: 3432, XLLCorner: -180, YLLCorner: -58, CellSize: 0.0416666666667},
			ok:   true,
		},
		{
			name: "odd columns",
			h:    RasterHeader{Cols: 9, Rows: 2, XLLCorner: -180, YLLCorner: -90, CellSize: 40},
		},
		{
			name: "cellsize mismatch",
			h:    RasterHeader{Cols: 8, Rows: 2, XLLCorner: -180, YLLCorner: -90, CellSize: 40},
		},
		{
			name: "too many rows",
			h:    RasterHeader{Cols: 8, Rows: 5, XLLCorner: -180, YLLCorner: -90, CellSize: 45},
		},
		{
			name: "beyond north pole",
			h:    RasterHeader{Cols: 8, Rows: 4, XLLCorner: -180, YLLCorner: -45, CellSize: 45},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.h.Check()
			if test.ok {
				if err != nil {
					t.Error(err)
				}
				return
			}
			var gerr *GridError
			if !errors.As(err, &gerr) {
				t.Errorf("error %v is not a *GridError", err)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	h := RasterHeader{Cols: 8, Rows: 2, XLLCorner: -180, YLLCorner: -90, CellSize: 45}
	b := h.Bounds()
	if b.Min.X != -180 || b.Max.X != 180 || b.Min.Y != -90 || b.Max.Y != 0 {
		t.Errorf("bounds = %+v", b)
	}
}
