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
	"fmt"
	"math"
)

// HalfDegree is the cell size of the coarse grids written alongside the
// native-resolution grids.
const HalfDegree = 0.5

// SmallTerritoryCode is the national identifier of a territory too small
// to win a land-majority vote in a coarse cell. Coarse cells where it is
// the most frequent code are assigned to it as long as less than
// smallTerritoryLimit of the block is ocean.
const SmallTerritoryCode = 134

const (
	majorityLimit       = 0.5
	smallTerritoryLimit = 0.9
)

// Rule specifies how the native cells in a block are combined into a
// coarse cell.
type Rule int

const (
	// Categorical assigns the most frequent code in the block if
	// enough of the block holds data. It is used for identifier grids.
	Categorical Rule = iota

	// Additive assigns the sum of the valid values in the block. Every
	// coarse cell produced by this rule is valid. It is used for
	// measure grids such as population counts.
	Additive
)

func (r Rule) String() string {
	switch r {
	case Categorical:
		return "categorical"
	case Additive:
		return "additive"
	default:
		return fmt.Sprintf("Rule(%d)", int(r))
	}
}

// ResolutionError is returned when the native grid cannot be reduced to
// the requested cell size by an integer factor.
type ResolutionError struct {
	NativeCols int
	CellSize   float64
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("gpwgrid: %d native columns cannot be reduced to %g° cells by an integer factor", e.NativeCols, e.CellSize)
}

// Downsample reduces the placed grid g to the given cell size. Each
// coarse cell is computed from the dv×dv block of native cells it covers,
// where dv is the ratio of the native column count to the coarse column
// count. Only native rows inside the data band of g are read. progress,
// which may be nil, is called once per coarse row.
//
// Coarse row i reads native rows from g.BandStart+(i-out.BandStart)*dv,
// which is offset from the i*dv block when the two bands do not align
// (by 11 native rows for the GPWv3 grids). Existing 0.5° products depend
// on this alignment.
func Downsample(g *Grid, rule Rule, cellSize float64, progress Progress) (*Grid, error) {
	nlat, nlon := g.Shape()
	if g.Header.Cols != nlon {
		return nil, fmt.Errorf("gpwgrid: Downsample requires a grid produced by Place")
	}
	if rule != Categorical && rule != Additive {
		return nil, fmt.Errorf("gpwgrid: invalid downsampling rule %v", rule)
	}
	if !(cellSize > 0) || cellSize > 360 {
		return nil, &ResolutionError{NativeCols: nlon, CellSize: cellSize}
	}
	coarseCols := int(math.Round(360 / cellSize))
	if coarseCols > nlon || nlon%coarseCols != 0 || math.Abs(360/float64(coarseCols)-cellSize) > edgeTolerance {
		return nil, &ResolutionError{NativeCols: nlon, CellSize: cellSize}
	}
	dv := nlon / coarseCols

	out := newGrid(cellSize)
	out.Header = g.Header
	out.BandStart, out.BandStop = bandIndices(g.Header, cellSize)
	clat, clon := out.Shape()

	if rule == Additive {
		for k := range out.Valid {
			out.Valid[k] = true
		}
	}

	// Native rows that hold placed data.
	lo := clampIndex(g.BandStart, nlat)
	hi := clampIndex(g.BandStop, nlat)

	start := clampIndex(out.BandStart, clat)
	stop := clampIndex(out.BandStop, clat)
	counts := make(map[int]int)
	for i := start; i < stop; i++ {
		r0 := g.BandStart + (i-out.BandStart)*dv
		for j := 0; j < clon; j++ {
			c0 := j * dv
			switch rule {
			case Categorical:
				clear(counts)
				valid := 0
				for r := r0; r < r0+dv; r++ {
					if r < lo || r >= hi {
						continue
					}
					for c := c0; c < c0+dv; c++ {
						v, ok := g.At(r, c)
						if !ok {
							continue
						}
						counts[int(v)]++
						valid++
					}
				}
				if valid == 0 {
					continue
				}
				mode := modeOf(counts)
				invalidFraction := float64(dv*dv-valid) / float64(dv*dv)
				if invalidFraction < majorityLimit ||
					(mode == SmallTerritoryCode && invalidFraction < smallTerritoryLimit) {
					out.set(i, j, float64(mode))
				}
			case Additive:
				var sum float64
				for r := r0; r < r0+dv; r++ {
					if r < lo || r >= hi {
						continue
					}
					for c := c0; c < c0+dv; c++ {
						if v, ok := g.At(r, c); ok {
							sum += v
						}
					}
				}
				out.set(i, j, sum)
			}
		}
		progress.report(i-start+1, stop-start)
	}
	return out, nil
}

// modeOf returns the most frequent code, preferring the lowest code
// among equally frequent ones.
func modeOf(counts map[int]int) int {
	var mode, best int
	first := true
	for code, n := range counts {
		if first || n > best || (n == best && code < mode) {
			mode, best = code, n
			first = false
		}
	}
	return mode
}
