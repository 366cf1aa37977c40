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
	"image"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PreviewOptions control how a grid is rendered by Preview.
type PreviewOptions struct {
	// Stride is the number of grid cells along each axis per pixel.
	// Values less than one are treated as one.
	Stride int

	// Log specifies whether values are coloured on a log(1+x) scale.
	Log bool
}

// Preview renders g as an image with one pixel per Stride×Stride cells,
// north up. Each pixel takes the colour of the top left cell of its block;
// invalid cells are transparent. The returned color map spans the
// (possibly log-scaled) range of the valid values and can be passed
// to WriteLegend.
func Preview(g *Grid, o PreviewOptions) (image.Image, palette.ColorMap, error) {
	s := o.Stride
	if s < 1 {
		s = 1
	}
	nlat, nlon := g.Shape()
	scale := func(v float64) float64 { return v }
	if o.Log {
		scale = func(v float64) float64 { return math.Log1p(math.Max(v, 0)) }
	}

	min, max := math.Inf(1), math.Inf(-1)
	for k, ok := range g.Valid {
		if !ok {
			continue
		}
		v := scale(g.Values.Elements[k])
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if math.IsInf(min, 1) {
		min, max = 0, 1
	}
	if max <= min {
		max = min + 1
	}
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(min)
	cm.SetMax(max)

	w, h := (nlon+s-1)/s, (nlat+s-1)/s
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v, ok := g.At(y*s, x*s)
			if !ok {
				continue
			}
			c, err := cm.At(scale(v))
			if err != nil {
				if err != palette.ErrOverflow && err != palette.ErrUnderflow {
					return nil, nil, fmt.Errorf("gpwgrid: preview: %v", err)
				}
				c = color.Black
			}
			img.Set(x, y, c)
		}
	}
	return img, cm, nil
}

// WriteLegend draws a color bar for cm with the given axis label and
// writes it to w as a PNG image.
func WriteLegend(w io.Writer, cm palette.ColorMap, label string) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("gpwgrid: legend: %v", err)
	}
	p.Add(&plotter.ColorBar{ColorMap: cm})
	p.HideY()
	p.X.Padding = 0
	p.X.Label.Text = label

	img := vgimg.New(vg.Points(300), vg.Points(60))
	p.Draw(draw.New(img))
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("gpwgrid: writing legend: %v", err)
	}
	return nil
}
