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
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
)

// headerFields are the names of the six header lines of an ASCII grid,
// in the order in which they must appear.
var headerFields = [...]string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize", "NODATA_value"}

// edgeTolerance is the distance in degrees by which a grid may overshoot
// the edge of the globe because of floating point error in its header.
const edgeTolerance = 1e-6

// globe is the extent of the full-globe coordinate frame.
var globe = geom.Bounds{
	Min: geom.Point{X: -180, Y: -90},
	Max: geom.Point{X: 180, Y: 90},
}

// RasterHeader holds the header fields of an ASCII grid file.
type RasterHeader struct {
	Cols, Rows int
	XLLCorner  float64 // western edge; must be -180
	YLLCorner  float64 // southern edge; must be negative
	CellSize   float64 // degrees, as written in the file
	NoData     float64 // sentinel for cells without data
}

// HeaderError is returned when a header line is missing, misnamed, out of
// order or violates the coordinate conventions.
type HeaderError struct {
	Line   int
	Field  string
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("gpwgrid: invalid header line %d (%s): %s", e.Line, e.Field, e.Reason)
}

// GridError is returned when a header is well formed but does not describe
// a band of a global grid with square cells.
type GridError struct {
	Header RasterHeader
	Reason string
}

func (e *GridError) Error() string {
	return fmt.Sprintf("gpwgrid: grid %dx%d is not a global grid: %s", e.Header.Cols, e.Header.Rows, e.Reason)
}

// NativeCellSize returns the cell size implied by the number of columns,
// assuming the grid spans 360°.
func (h RasterHeader) NativeCellSize() float64 { return 360 / float64(h.Cols) }

// Top returns the latitude of the northern edge of the grid.
func (h RasterHeader) Top() float64 {
	return h.YLLCorner + float64(h.Rows)*h.NativeCellSize()
}

// Bounds returns the geographic extent covered by the grid.
func (h RasterHeader) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: h.XLLCorner, Y: h.YLLCorner},
		Max: geom.Point{X: h.XLLCorner + float64(h.Cols)*h.NativeCellSize(), Y: h.Top()},
	}
}

// Check makes sure that h describes a latitude band of a global grid:
// an even number of columns, a cell size consistent with 360/Cols and a
// band that lies within [-90, 90].
func (h RasterHeader) Check() error {
	if h.Cols <= 0 || h.Rows <= 0 {
		return &GridError{Header: h, Reason: "ncols and nrows must be positive"}
	}
	if h.Cols%2 != 0 {
		return &GridError{Header: h, Reason: "ncols must be even so that the latitude axis has ncols/2 cells"}
	}
	cs := h.NativeCellSize()
	if math.Abs(h.CellSize-cs) > edgeTolerance*cs {
		return &GridError{Header: h, Reason: fmt.Sprintf("cellsize %g does not match 360/ncols = %g", h.CellSize, cs)}
	}
	if h.Rows > h.Cols/2 {
		return &GridError{Header: h, Reason: fmt.Sprintf("nrows %d exceeds ncols/2 = %d", h.Rows, h.Cols/2)}
	}
	ext := globe.Copy()
	ext.Extend(h.Bounds())
	if ext.Min.Y < globe.Min.Y-edgeTolerance || ext.Max.Y > globe.Max.Y+edgeTolerance {
		return &GridError{Header: h, Reason: fmt.Sprintf("latitude band [%g, %g] extends beyond the poles", h.YLLCorner, h.Top())}
	}
	return nil
}

// ParseHeader reads the six header lines of an ASCII grid from r.
// The lines must appear in the order ncols, nrows, xllcorner, yllcorner,
// cellsize, NODATA_value; xllcorner must be -180 and yllcorner must be
// negative. The value of each line is its last whitespace-separated token.
func ParseHeader(r *bufio.Reader) (RasterHeader, error) {
	var h RasterHeader
	for i, name := range headerFields {
		line := i + 1
		text, err := readLine(r)
		if err != nil && text == "" {
			if err == io.EOF {
				return h, &HeaderError{Line: line, Field: name, Reason: "missing"}
			}
			return h, fmt.Errorf("gpwgrid: reading header: %v", err)
		}
		fields := strings.Fields(text)
		if len(fields) < 2 || fields[0] != name {
			return h, &HeaderError{Line: line, Field: name, Reason: fmt.Sprintf("does not start with %q", name)}
		}
		value := fields[len(fields)-1]
		switch name {
		case "ncols", "nrows":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return h, &HeaderError{Line: line, Field: name, Reason: fmt.Sprintf("%q is not a positive integer", value)}
			}
			if name == "ncols" {
				h.Cols = n
			} else {
				h.Rows = n
			}
		default:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return h, &HeaderError{Line: line, Field: name, Reason: fmt.Sprintf("%q is not a number", value)}
			}
			switch name {
			case "xllcorner":
				if v != -180 {
					return h, &HeaderError{Line: line, Field: name, Reason: fmt.Sprintf("must be -180 but is %g", v)}
				}
				h.XLLCorner = v
			case "yllcorner":
				if v >= 0 {
					return h, &HeaderError{Line: line, Field: name, Reason: fmt.Sprintf("must be negative but is %g", v)}
				}
				h.YLLCorner = v
			case "cellsize":
				h.CellSize = v
			case "NODATA_value":
				h.NoData = v
			}
		}
	}
	return h, nil
}

// readLine returns the next line of r without its line terminator.
// A final line without a terminator is returned together with io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	s, err := r.ReadString('\n')
	return strings.TrimRight(s, "\r\n"), err
}
