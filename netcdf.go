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
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/gpwgrid/internal/hash"
)

// Kind specifies what a grid holds.
type Kind int

const (
	// Identifier grids hold national identifiers.
	Identifier Kind = iota

	// Measure grids hold population counts.
	Measure
)

// Rule returns the downsampling rule for grids of kind k.
func (k Kind) Rule() Rule {
	if k == Identifier {
		return Categorical
	}
	return Additive
}

// Variable returns the description of the netCDF variable that stores
// grids of kind k.
func (k Kind) Variable() Variable {
	if k == Identifier {
		return GlbndsVariable
	}
	return PcountVariable
}

func (k Kind) String() string {
	switch k {
	case Identifier:
		return "identifiers"
	case Measure:
		return "measures"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Variable describes a netCDF data variable.
type Variable struct {
	Name         string
	LongName     string
	Units        string
	StandardName string

	// Integer specifies whether the variable is stored as 4-byte
	// integers rather than 4-byte floats.
	Integer bool

	// FillValue is the value stored in invalid cells. If it is NaN,
	// the NODATA value of the source grid is used.
	FillValue float64
}

// GlbndsVariable stores national identifier grids.
var GlbndsVariable = Variable{
	Name:         "glbnds",
	LongName:     "Raster representation of nation-states of year 2000 (SEDAC GPWv3)",
	Units:        "GPWv3 bndsg ids",
	StandardName: "National boundaries",
	Integer:      true,
	FillValue:    math.NaN(),
}

// PcountVariable stores population count grids.
var PcountVariable = Variable{
	Name:         "pcount",
	LongName:     "Population counts in 2000 adjusted to match UN totals (SEDAC GPWv3)",
	Units:        "persons",
	StandardName: "population",
	FillValue:    1e20,
}

// Suffixes of the native and half-degree output files.
const (
	NativeSuffix     = "_25.nc"
	HalfDegreeSuffix = "_half.nc"
)

// WriteNetCDF writes g to w as a COARDS netCDF file holding the variable
// v. source is recorded in the file's global attributes.
func WriteNetCDF(w cdf.ReaderWriterAt, g *Grid, v Variable, source string) error {
	nlat, nlon := g.Shape()
	fill := v.FillValue
	if math.IsNaN(fill) {
		fill = g.Header.NoData
	}

	h := cdf.NewHeader([]string{"lat", "lon"}, []int{nlat, nlon})
	h.AddAttribute("", "title", v.LongName)
	h.AddAttribute("", "source", source)
	h.AddAttribute("", "Conventions", "COARDS")
	h.AddAttribute("", "header_digest", hash.Digest(g.Header))

	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "standard_name", "latitude")
	h.AddAttribute("lat", "long_name", "latitude")
	h.AddAttribute("lat", "axis", "Y")
	h.AddAttribute("lat", "units", "degrees_north")

	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddAttribute("lon", "standard_name", "longitude")
	h.AddAttribute("lon", "long_name", "longitude")
	h.AddAttribute("lon", "axis", "X")
	h.AddAttribute("lon", "units", "degrees_east")

	dims := []string{"lat", "lon"}
	var data interface{}
	if v.Integer {
		h.AddVariable(v.Name, dims, []int32{0})
		h.AddAttribute(v.Name, "_FillValue", []int32{int32(fill)})
		d := make([]int32, nlat*nlon)
		for k, e := range g.Values.Elements {
			if g.Valid[k] {
				d[k] = int32(e)
			} else {
				d[k] = int32(fill)
			}
		}
		data = d
	} else {
		h.AddVariable(v.Name, dims, []float32{0})
		h.AddAttribute(v.Name, "_FillValue", []float32{float32(fill)})
		d := make([]float32, nlat*nlon)
		for k, e := range g.Values.Elements {
			if g.Valid[k] {
				d[k] = float32(e)
			} else {
				d[k] = float32(fill)
			}
		}
		data = d
	}
	h.AddAttribute(v.Name, "long_name", v.LongName)
	h.AddAttribute(v.Name, "units", v.Units)
	h.AddAttribute(v.Name, "standard_name", v.StandardName)
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("gpwgrid: creating netCDF file: %v", err)
	}
	for _, vd := range []struct {
		name string
		data interface{}
	}{
		{name: "lat", data: g.Lats},
		{name: "lon", data: g.Lons},
		{name: v.Name, data: data},
	} {
		end := f.Header.Lengths(vd.name)
		begin := make([]int, len(end))
		if _, err := f.Writer(vd.name, begin, end).Write(vd.data); err != nil {
			return fmt.Errorf("gpwgrid: writing netCDF variable %s: %v", vd.name, err)
		}
	}
	if ff, ok := w.(*os.File); ok {
		if err := cdf.UpdateNumRecs(ff); err != nil {
			return fmt.Errorf("gpwgrid: writing netCDF file: %v", err)
		}
	}
	return nil
}

// ReadNetCDF reads the [lat, lon] variable name and its coordinates from
// a netCDF file written by WriteNetCDF. Cells equal to the variable's fill
// value are invalid. The returned grid has no band or header information.
func ReadNetCDF(r cdf.ReaderWriterAt, name string) (*Grid, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("gpwgrid.ReadNetCDF: %v", err)
	}
	dims := f.Header.Dimensions(name)
	if len(dims) != 2 || dims[0] != "lat" || dims[1] != "lon" {
		return nil, fmt.Errorf("gpwgrid.ReadNetCDF: variable %s must have dimensions [lat lon] but has %v", name, dims)
	}
	lats, err := readFloats(f, "lat")
	if err != nil {
		return nil, err
	}
	lons, err := readFloats(f, "lon")
	if err != nil {
		return nil, err
	}
	data, err := readFloats(f, name)
	if err != nil {
		return nil, err
	}
	if len(data) != len(lats)*len(lons) {
		return nil, fmt.Errorf("gpwgrid.ReadNetCDF: variable %s has %d values; want %d", name, len(data), len(lats)*len(lons))
	}
	fill, err := fillValue(f.Header, name)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		Values: sparse.ZerosDense(len(lats), len(lons)),
		Valid:  make([]bool, len(data)),
		Lats:   lats,
		Lons:   lons,
	}
	if len(lons) > 0 {
		g.CellSize = 360 / float64(len(lons))
	}
	for k, v := range data {
		if v != fill {
			g.Values.Elements[k] = v
			g.Valid[k] = true
		}
	}
	return g, nil
}

// readFloats reads a numeric variable as float64 values.
func readFloats(f *cdf.File, v string) ([]float64, error) {
	n := 1
	for _, l := range f.Header.Lengths(v) {
		n *= l
	}
	buf := f.Header.ZeroValue(v, n)
	if buf == nil {
		return nil, fmt.Errorf("gpwgrid.ReadNetCDF: no variable %s", v)
	}
	if _, err := f.Reader(v, nil, nil).Read(buf); err != nil {
		return nil, fmt.Errorf("gpwgrid.ReadNetCDF: reading %s: %v", v, err)
	}
	switch d := buf.(type) {
	case []float64:
		return d, nil
	case []float32:
		o := make([]float64, len(d))
		for i, x := range d {
			o[i] = float64(x)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(d))
		for i, x := range d {
			o[i] = float64(x)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(d))
		for i, x := range d {
			o[i] = float64(x)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("gpwgrid.ReadNetCDF: variable %s has unsupported type %T", v, buf)
	}
}

func fillValue(h *cdf.Header, v string) (float64, error) {
	switch f := h.FillValue(v).(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	case int32:
		return float64(f), nil
	case int16:
		return float64(f), nil
	case int8:
		return float64(f), nil
	case uint8:
		return float64(f), nil
	default:
		return 0, fmt.Errorf("gpwgrid.ReadNetCDF: invalid fill value type %T for %s", f, v)
	}
}
