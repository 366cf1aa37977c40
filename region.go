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
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Region is a named group of countries.
type Region struct {
	Name string

	// Members holds the ISO3 codes of the countries in the region.
	Members map[string]bool
}

// LoadRegions reads region definitions from r. Each line holds a region
// name followed by the ISO3 codes of its members, separated by tabs.
func LoadRegions(r io.Reader) ([]Region, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var regions []Region
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gpwgrid.LoadRegions: %v", err)
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("gpwgrid.LoadRegions: line %d: missing region name", line)
		}
		reg := Region{Name: name, Members: make(map[string]bool)}
		for _, code := range rec[1:] {
			code = strings.TrimSpace(code)
			if code != "" {
				reg.Members[code] = true
			}
		}
		regions = append(regions, reg)
	}
	return regions, nil
}

// Unmapped is the region index of identifiers that belong to no region.
const Unmapped = -1

// RegionMapping maps national identifiers to regions.
type RegionMapping struct {
	Regions []Region
	index   map[int]int
}

// NewRegionMapping assigns each country to the first region that lists
// its ISO3 code. Countries that no region lists are unmapped.
func NewRegionMapping(regions []Region, countries []Country) *RegionMapping {
	m := &RegionMapping{
		Regions: regions,
		index:   make(map[int]int, len(countries)),
	}
	for _, c := range countries {
		m.index[c.ID] = Unmapped
		for i, reg := range regions {
			if reg.Members[c.ISO3] {
				m.index[c.ID] = i
				break
			}
		}
	}
	return m
}

// RegionIndex returns the index in m.Regions of the region that the
// given identifier belongs to, or Unmapped.
func (m *RegionMapping) RegionIndex(id int) int {
	if i, ok := m.index[id]; ok {
		return i
	}
	return Unmapped
}

// Names returns the region names in order.
func (m *RegionMapping) Names() []string {
	o := make([]string, len(m.Regions))
	for i, r := range m.Regions {
		o[i] = r.Name
	}
	return o
}
