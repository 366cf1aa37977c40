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
	"sort"
	"strconv"
)

// comparisonHeader is the first line of a comparison table.
const comparisonHeader = "iso3v10\tname\tunsdcode\tUN name\tUN population\tSEDAC 1/2° population\tSEDAC 2.5' population\n"

// ComparisonRow compares the gridded population of one country with its
// UN reference population.
type ComparisonRow struct {
	Country Country

	// UN is nil if there is no UN figure for the country.
	UN *UNRecord

	// Coarse and Native are the gridded population totals at 0.5° and
	// at the native resolution.
	Coarse, Native float64
}

// Comparison is a table of ComparisonRows sorted by descending native
// resolution population.
type Comparison struct {
	Rows []ComparisonRow
}

// NewComparison combines the country table, the UN reference figures and
// the per-identifier totals at both resolutions. There is one row per
// ISO3 code; if several countries share a code the last one is used.
func NewComparison(countries []Country, un map[int]UNRecord, coarse, native map[int]float64) *Comparison {
	byISO := make(map[string]ComparisonRow, len(countries))
	for _, c := range countries {
		row := ComparisonRow{
			Country: c,
			Coarse:  coarse[c.ID],
			Native:  native[c.ID],
		}
		if rec, ok := un[c.UNCode]; ok {
			rec := rec
			row.UN = &rec
		}
		byISO[c.ISO3] = row
	}
	cmp := &Comparison{Rows: make([]ComparisonRow, 0, len(byISO))}
	for _, row := range byISO {
		cmp.Rows = append(cmp.Rows, row)
	}
	sort.Slice(cmp.Rows, func(i, j int) bool {
		a, b := cmp.Rows[i], cmp.Rows[j]
		if a.Native != b.Native {
			return a.Native > b.Native
		}
		return a.Country.ISO3 < b.Country.ISO3
	})
	return cmp
}

// WriteTSV writes the comparison as a tab-separated table.
func (c *Comparison) WriteTSV(w io.Writer) error {
	b := bufio.NewWriter(w)
	if _, err := b.WriteString(comparisonHeader); err != nil {
		return fmt.Errorf("gpwgrid: writing comparison: %v", err)
	}
	for _, r := range c.Rows {
		fmt.Fprintf(b, "%s\t%s\t%d\t", r.Country.ISO3, r.Country.Name, r.Country.UNCode)
		if r.UN == nil {
			b.WriteString("<missing>\t\t")
		} else {
			fmt.Fprintf(b, "%s\t%s\t", r.UN.Name, formatFloat(r.UN.Population))
		}
		fmt.Fprintf(b, "%s\t%s\n", formatFloat(r.Coarse), formatFloat(r.Native))
	}
	if err := b.Flush(); err != nil {
		return fmt.Errorf("gpwgrid: writing comparison: %v", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
