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

package gpwutil

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/ctessum/cdf"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gpwgrid"
)

// Preview renders the variable v of the netCDF file input as a PNG image
// written to output. If v is empty, whichever of the identifier and
// population count variables the file holds is rendered. If legend is
// not empty, a color bar is written to it.
func Preview(ctx context.Context, input, v, output, legend string, o gpwgrid.PreviewOptions, log logrus.FieldLogger) error {
	if input == "" {
		return fmt.Errorf("gpwgrid: Preview.Input must be specified")
	}
	local, err := maybeDownload(ctx, input, log)
	if err != nil {
		return err
	}
	f, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("gpwgrid: %v", err)
	}
	defer f.Close()
	if v == "" {
		if v, err = gridVariable(f); err != nil {
			return fmt.Errorf("gpwgrid: %s: %v", input, err)
		}
	}
	g, err := gpwgrid.ReadNetCDF(f, v)
	if err != nil {
		return fmt.Errorf("gpwgrid: reading %s: %v", input, err)
	}
	img, cm, err := gpwgrid.Preview(g, o)
	if err != nil {
		return err
	}

	u := &uploader{log: log}
	defer u.cleanup()
	out, err := u.maybeUpload(output)
	if err != nil {
		return err
	}
	w, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("gpwgrid: creating preview: %v", err)
	}
	if err := png.Encode(w, img); err != nil {
		w.Close()
		return fmt.Errorf("gpwgrid: writing preview: %v", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gpwgrid: writing preview: %v", err)
	}
	log.WithFields(logrus.Fields{
		"file":     output,
		"variable": v,
		"width":    img.Bounds().Dx(),
		"height":   img.Bounds().Dy(),
	}).Info("wrote preview")

	if legend != "" {
		out, err := u.maybeUpload(legend)
		if err != nil {
			return err
		}
		w, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("gpwgrid: creating legend: %v", err)
		}
		label := v
		if o.Log {
			label = "log(1 + " + v + ")"
		}
		if err := gpwgrid.WriteLegend(w, cm, label); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("gpwgrid: writing legend: %v", err)
		}
	}
	return u.upload(ctx)
}

// gridVariable returns the name of the grid variable in f.
func gridVariable(f *os.File) (string, error) {
	nc, err := cdf.Open(f)
	if err != nil {
		return "", err
	}
	for _, v := range nc.Header.Variables() {
		if v == gpwgrid.GlbndsVariable.Name || v == gpwgrid.PcountVariable.Name {
			return v, nil
		}
	}
	return "", fmt.Errorf("no %s or %s variable", gpwgrid.GlbndsVariable.Name, gpwgrid.PcountVariable.Name)
}
