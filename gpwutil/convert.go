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
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gpwgrid"
)

// Convert reads the ASCII grid at input, places it on the global grid
// and writes it at its native resolution to output + "_25.nc" and
// downsampled to cellSize to output + "_half.nc". Both grids are computed
// before anything is written. source is recorded in the output files;
// if it is empty the base name of input is used.
func Convert(ctx context.Context, kind gpwgrid.Kind, input, output string, cellSize float64, source string, log logrus.FieldLogger) error {
	if input == "" {
		return fmt.Errorf("gpwgrid: Convert.Input must be specified")
	}
	if output == "" {
		return fmt.Errorf("gpwgrid: Convert.Output must be specified")
	}
	if source == "" {
		source = path.Base(input)
	}
	log = log.WithField("kind", kind.String())

	local, err := maybeDownload(ctx, input, log)
	if err != nil {
		return err
	}
	log.WithField("file", local).Info("reading ASCII grid")
	raw, err := gpwgrid.OpenASCIIGrid(local)
	if err != nil {
		return fmt.Errorf("gpwgrid: reading %s: %v", input, err)
	}
	h := raw.Header
	log.WithFields(logrus.Fields{
		"ncols":    h.Cols,
		"nrows":    h.Rows,
		"cellsize": h.CellSize,
	}).Info("placing grid")
	native, err := gpwgrid.Place(raw)
	if err != nil {
		return err
	}

	log.WithField("cellsize", cellSize).Info("downsampling grid")
	coarse, err := gpwgrid.Downsample(native, kind.Rule(), cellSize,
		progressLogger(log, "downsampling"))
	if err != nil {
		return err
	}

	u := &uploader{log: log}
	defer u.cleanup()
	v := kind.Variable()
	for _, out := range []struct {
		g    *gpwgrid.Grid
		file string
	}{
		{g: native, file: output + gpwgrid.NativeSuffix},
		{g: coarse, file: output + gpwgrid.HalfDegreeSuffix},
	} {
		local, err := u.maybeUpload(out.file)
		if err != nil {
			return err
		}
		if err := writeNetCDF(local, out.g, v, source); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"file":  out.file,
			"valid": out.g.ValidCount(),
			"sum":   out.g.Sum(),
		}).Info("wrote grid")
	}
	return u.upload(ctx)
}

func writeNetCDF(filename string, g *gpwgrid.Grid, v gpwgrid.Variable, source string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("gpwgrid: creating output file: %v", err)
	}
	if err := gpwgrid.WriteNetCDF(f, g, v, source); err != nil {
		f.Close()
		return fmt.Errorf("gpwgrid: writing %s: %v", filename, err)
	}
	return f.Close()
}

// readNetCDF reads variable v from the netCDF file at the given path,
// which may be a URL.
func readNetCDF(ctx context.Context, p, v string, log logrus.FieldLogger) (*gpwgrid.Grid, error) {
	local, err := maybeDownload(ctx, p, log)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("gpwgrid: %v", err)
	}
	defer f.Close()
	g, err := gpwgrid.ReadNetCDF(f, v)
	if err != nil {
		return nil, fmt.Errorf("gpwgrid: reading %s: %v", p, err)
	}
	return g, nil
}

// progressLogger returns a gpwgrid.Progress that logs every 5% of
// progress.
func progressLogger(log logrus.FieldLogger, msg string) gpwgrid.Progress {
	last := -5
	return func(done, total int) {
		if total <= 0 {
			return
		}
		pct := done * 100 / total
		if pct/5 == last/5 && done != total {
			return
		}
		last = pct
		log.WithField("percent", pct).Debug(msg)
	}
}
