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
	"sort"
)

// CoordinateMismatchError is returned when two grids that should share
// coordinates do not.
type CoordinateMismatchError struct {
	// Axis is "lat" or "lon".
	Axis string

	// Index is the first position at which the coordinates differ, or -1
	// if the axes have different lengths.
	Index int
}

func (e *CoordinateMismatchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("gpwgrid: %s coordinates have different lengths", e.Axis)
	}
	return fmt.Sprintf("gpwgrid: %s coordinates differ at index %d", e.Axis, e.Index)
}

func checkCoordinates(a, b *Grid) error {
	if i, ok := sameAxis(a.Lats, b.Lats); !ok {
		return &CoordinateMismatchError{Axis: "lat", Index: i}
	}
	if i, ok := sameAxis(a.Lons, b.Lons); !ok {
		return &CoordinateMismatchError{Axis: "lon", Index: i}
	}
	return nil
}

// sameAxis reports whether a and b are identical. If they are not, it
// also returns the first index at which they differ, or -1 if their
// lengths differ.
func sameAxis(a, b []float64) (int, bool) {
	if len(a) != len(b) {
		return -1, false
	}
	for i := range a {
		if a[i] != b[i] {
			return i, false
		}
	}
	return 0, true
}

// AggregationResult holds the measure totals of a set of regions.
type AggregationResult struct {
	Regions []string
	Totals  []float64

	// ExcludedMass is the total measure in cells whose identifier
	// belongs to no region, ExcludedCells is the number of those cells
	// and ExcludedByCode breaks ExcludedMass down by identifier.
	ExcludedMass   float64
	ExcludedCells  int
	ExcludedByCode map[int]float64
}

// Excluded returns the identifiers that were excluded from the totals,
// in ascending order.
func (r *AggregationResult) Excluded() []int {
	o := make([]int, 0, len(r.ExcludedByCode))
	for c := range r.ExcludedByCode {
		o = append(o, c)
	}
	sort.Ints(o)
	return o
}

// Aggregate sums measure over the cells of each region in m, using ids to
// find the identifier of each cell. The two grids must have identical
// coordinates. Cells with no identifier are skipped and cells whose
// identifier is not in any region are reported as excluded.
func Aggregate(ids, measure *Grid, m *RegionMapping) (*AggregationResult, error) {
	if err := checkCoordinates(ids, measure); err != nil {
		return nil, err
	}
	r := &AggregationResult{
		Regions:        m.Names(),
		Totals:         make([]float64, len(m.Regions)),
		ExcludedByCode: make(map[int]float64),
	}
	for k, ok := range ids.Valid {
		if !ok {
			continue
		}
		code := int(ids.Values.Elements[k])
		var v float64
		if measure.Valid[k] {
			v = measure.Values.Elements[k]
		}
		i := m.RegionIndex(code)
		if i == Unmapped {
			r.ExcludedMass += v
			r.ExcludedCells++
			r.ExcludedByCode[code] += v
			continue
		}
		r.Totals[i] += v
	}
	return r, nil
}

// AggregateByCode sums measure over the cells of each identifier in ids.
// The two grids must have identical coordinates.
func AggregateByCode(ids, measure *Grid) (map[int]float64, error) {
	if err := checkCoordinates(ids, measure); err != nil {
		return nil, err
	}
	o := make(map[int]float64)
	for k, ok := range ids.Valid {
		if !ok {
			continue
		}
		code := int(ids.Values.Elements[k])
		if measure.Valid[k] {
			o[code] += measure.Values.Elements[k]
		} else if _, ok := o[code]; !ok {
			o[code] = 0
		}
	}
	return o, nil
}
