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

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gpwgrid"
)

// Compare sums the population of each country at both resolutions written
// by Convert, using the grids with base names ids and measures, and writes
// a table comparing the totals with the UN reference population in
// unPopulation to output.
func Compare(ctx context.Context, ids, measures, countries, unPopulation, year, output string, log logrus.FieldLogger) error {
	for name, v := range map[string]string{
		"Compare.Identifiers":  ids,
		"Compare.Measures":     measures,
		"Countries":            countries,
		"Compare.UNPopulation": unPopulation,
		"Compare.Output":       output,
	} {
		if v == "" {
			return fmt.Errorf("gpwgrid: %s must be specified", name)
		}
	}
	cs, err := loadCountries(ctx, countries, log)
	if err != nil {
		return err
	}
	localUN, err := maybeDownload(ctx, unPopulation, log)
	if err != nil {
		return err
	}
	un, err := gpwgrid.LoadUNPopulation(localUN, year)
	if err != nil {
		return err
	}

	totals := make(map[string]map[int]float64)
	for _, suffix := range []string{gpwgrid.HalfDegreeSuffix, gpwgrid.NativeSuffix} {
		log.WithField("resolution", suffix).Info("summing population by country")
		idGrid, err := readNetCDF(ctx, ids+suffix, gpwgrid.GlbndsVariable.Name, log)
		if err != nil {
			return err
		}
		mGrid, err := readNetCDF(ctx, measures+suffix, gpwgrid.PcountVariable.Name, log)
		if err != nil {
			return err
		}
		totals[suffix], err = gpwgrid.AggregateByCode(idGrid, mGrid)
		if err != nil {
			return err
		}
	}
	c := gpwgrid.NewComparison(cs, un, totals[gpwgrid.HalfDegreeSuffix], totals[gpwgrid.NativeSuffix])

	u := &uploader{log: log}
	defer u.cleanup()
	local, err := u.maybeUpload(output)
	if err != nil {
		return err
	}
	f, err := os.Create(local)
	if err != nil {
		return fmt.Errorf("gpwgrid: creating comparison table: %v", err)
	}
	if err := c.WriteTSV(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("gpwgrid: writing comparison table: %v", err)
	}
	log.WithFields(logrus.Fields{
		"file":      output,
		"countries": len(c.Rows),
	}).Info("wrote comparison table")
	return u.upload(ctx)
}
