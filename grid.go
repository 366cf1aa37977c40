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
	"math"

	"github.com/ctessum/sparse"
)

// Grid is a raster aligned to the full-globe equirectangular frame.
// Latitudes are cell centres in descending order starting just below
// 90°N; longitudes are cell centres in ascending order starting just east
// of 180°W. Grids are not modified after they are built.
type Grid struct {
	// Values holds the cell values, with shape [lat, lon].
	Values *sparse.DenseArray

	// Valid reports for each cell (row-major) whether it holds data.
	Valid []bool

	Lats, Lons []float64

	// CellSize is the size of a cell in degrees.
	CellSize float64

	// BandStart and BandStop are the latitude indices (in this grid's
	// resolution) of the band covered by the source data. They are not
	// clipped to the latitude axis.
	BandStart, BandStop int

	// Header is the header of the ASCII grid this grid was derived from.
	// It is the zero value for grids read back from netCDF files.
	Header RasterHeader
}

// newGrid returns a global grid with the given cell size where every cell
// is invalid.
func newGrid(cellSize float64) *Grid {
	nlat := int(math.Round(180 / cellSize))
	nlon := int(math.Round(360 / cellSize))
	return &Grid{
		Values:   sparse.ZerosDense(nlat, nlon),
		Valid:    make([]bool, nlat*nlon),
		Lats:     latitudes(nlat, cellSize),
		Lons:     longitudes(nlon, cellSize),
		CellSize: cellSize,
	}
}

func latitudes(n int, cellSize float64) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = 90 - cellSize/2 - float64(i)*cellSize
	}
	return o
}

func longitudes(n int, cellSize float64) []float64 {
	o := make([]float64, n)
	for j := range o {
		o[j] = -180 + cellSize/2 + float64(j)*cellSize
	}
	return o
}

// Shape returns the number of latitude and longitude cells in g.
func (g *Grid) Shape() (nlat, nlon int) {
	return len(g.Lats), len(g.Lons)
}

// At returns the value of the cell at latitude index i and longitude
// index j and whether the cell holds data.
func (g *Grid) At(i, j int) (float64, bool) {
	k := i*len(g.Lons) + j
	if !g.Valid[k] {
		return 0, false
	}
	return g.Values.Elements[k], true
}

func (g *Grid) set(i, j int, v float64) {
	k := i*len(g.Lons) + j
	g.Values.Elements[k] = v
	g.Valid[k] = true
}

// ValidCount returns the number of cells that hold data.
func (g *Grid) ValidCount() int {
	var n int
	for _, ok := range g.Valid {
		if ok {
			n++
		}
	}
	return n
}

// Sum returns the sum of the values of all valid cells.
func (g *Grid) Sum() float64 {
	var s float64
	for k, ok := range g.Valid {
		if ok {
			s += g.Values.Elements[k]
		}
	}
	return s
}

// bandIndices locates the latitude band of the grid described by h
// within a global latitude axis with the given cell size. The -1
// converts between the edge and cell-centre conventions.
func bandIndices(h RasterHeader, cellSize float64) (start, stop int) {
	top := h.YLLCorner + float64(h.Rows)*h.NativeCellSize()
	start = int(math.Round((90-top)/cellSize - 1))
	stop = int(math.Round((90-h.YLLCorner)/cellSize - 1))
	return start, stop
}

// clampIndex limits i to [0, n].
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
