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

import "fmt"

// Place maps raw onto a global grid at the native resolution of raw
// (360/ncols degrees, ncols/2 latitude cells). Raw row r is copied into
// latitude row BandStart+r with longitudes aligned one to one. Rows
// outside the band and cells equal to the NODATA value are invalid.
// Raw rows whose position falls outside the latitude axis are dropped.
func Place(raw *RawGrid) (*Grid, error) {
	h := raw.Header
	if err := h.Check(); err != nil {
		return nil, err
	}
	if len(raw.Data) != h.Rows*h.Cols {
		return nil, fmt.Errorf("gpwgrid: grid has %d values but the header specifies %dx%d", len(raw.Data), h.Cols, h.Rows)
	}
	cs := h.NativeCellSize()
	g := newGrid(cs)
	g.Header = h
	g.BandStart, g.BandStop = bandIndices(h, cs)

	nlat, _ := g.Shape()
	for r := 0; r < h.Rows; r++ {
		i := g.BandStart + r
		if i < 0 || i >= nlat || i >= g.BandStop {
			continue
		}
		for j, v := range raw.Row(r) {
			if v == h.NoData {
				continue
			}
			g.set(i, j, v)
		}
	}
	return g, nil
}
