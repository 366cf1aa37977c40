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
	"reflect"
	"strings"
	"testing"
)

func TestLoadRegions(t *testing.T) {
	in := "Western Europe\tFRA\tDEU\tBEL\nEast Asia\tCHN\t\tJPN \n\nOceania\n"
	regions, err := LoadRegions(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []Region{
		{Name: "Western Europe", Members: map[string]bool{"FRA": true, "DEU": true, "BEL": true}},
		{Name: "East Asia", Members: map[string]bool{"CHN": true, "JPN": true}},
		{Name: "Oceania", Members: map[string]bool{}},
	}
	if !reflect.DeepEqual(regions, want) {
		t.Errorf("have %+v, want %+v", regions, want)
	}
}

func TestLoadRegionsMissingName(t *testing.T) {
	if _, err := LoadRegions(strings.NewReader("Europe\tFRA\n\tDEU\n")); err == nil {
		t.Error("expected an error")
	}
}

func TestRegionMapping(t *testing.T) {
	regions := []Region{
		{Name: "A", Members: map[string]bool{"FRA": true}},
		{Name: "B", Members: map[string]bool{"FRA": true, "DEU": true}},
	}
	countries := []Country{
		{ID: 250, ISO3: "FRA"},
		{ID: 276, ISO3: "DEU"},
		{ID: 724, ISO3: "ESP"},
	}
	m := NewRegionMapping(regions, countries)
	tests := []struct {
		id, want int
	}{
		{id: 250, want: 0},
		{id: 276, want: 1},
		{id: 724, want: Unmapped},
		{id: 1, want: Unmapped},
	}
	for _, test := range tests {
		if i := m.RegionIndex(test.id); i != test.want {
			t.Errorf("RegionIndex(%d) = %d, want %d", test.id, i, test.want)
		}
	}
	if !reflect.DeepEqual(m.Names(), []string{"A", "B"}) {
		t.Errorf("names = %v", m.Names())
	}
}
