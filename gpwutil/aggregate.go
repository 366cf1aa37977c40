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
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gpwgrid"
	"gonum.org/v1/gonum/floats"
)

// Report is the TOML report written by the aggregate command.
type Report struct {
	Identifiers string `toml:"identifiers"`
	Measures    string `toml:"measures"`

	// Total is the sum of the region totals.
	Total float64 `toml:"total"`

	Regions []RegionTotal `toml:"regions"`

	ExcludedMass  float64         `toml:"excluded_mass"`
	ExcludedCells int             `toml:"excluded_cells"`
	Excluded      []ExcludedTotal `toml:"excluded"`
}

// RegionTotal is the total measure of a region.
type RegionTotal struct {
	Name  string  `toml:"name"`
	Total float64 `toml:"total"`
}

// ExcludedTotal is the measure of an identifier that belongs to no region.
type ExcludedTotal struct {
	ID    int     `toml:"id"`
	Total float64 `toml:"total"`
}

// Aggregate sums the population count grid in the netCDF file measures
// over the regions defined in the regions file, finding the country of
// each cell from the national identifier grid in the netCDF file ids and
// the country table. The region totals are written to w, one
// "name: total" line per region. If report is not empty, a TOML
// report is also written to it.
func Aggregate(ctx context.Context, ids, measures, regions, countries, report string, w io.Writer, log logrus.FieldLogger) (*gpwgrid.AggregationResult, error) {
	for name, v := range map[string]string{
		"Aggregate.Identifiers": ids,
		"Aggregate.Measures":    measures,
		"Regions":               regions,
		"Countries":             countries,
	} {
		if v == "" {
			return nil, fmt.Errorf("gpwgrid: %s must be specified", name)
		}
	}
	log.WithField("file", regions).Info("loading regions")
	regs, err := loadRegions(ctx, regions, log)
	if err != nil {
		return nil, err
	}
	log.WithField("file", countries).Info("loading countries")
	cs, err := loadCountries(ctx, countries, log)
	if err != nil {
		return nil, err
	}
	m := gpwgrid.NewRegionMapping(regs, cs)

	log.Info("loading grids")
	idGrid, err := readNetCDF(ctx, ids, gpwgrid.GlbndsVariable.Name, log)
	if err != nil {
		return nil, err
	}
	mGrid, err := readNetCDF(ctx, measures, gpwgrid.PcountVariable.Name, log)
	if err != nil {
		return nil, err
	}
	r, err := gpwgrid.Aggregate(idGrid, mGrid, m)
	if err != nil {
		return nil, err
	}
	if r.ExcludedCells > 0 {
		log.WithFields(logrus.Fields{
			"cells":       r.ExcludedCells,
			"population":  r.ExcludedMass,
			"identifiers": r.Excluded(),
		}).Warn("population excluded from all regions")
	}

	for i, name := range r.Regions {
		if _, err := fmt.Fprintf(w, "%s: %v\n", name, r.Totals[i]); err != nil {
			return nil, fmt.Errorf("gpwgrid: writing results: %v", err)
		}
	}
	if report == "" {
		return r, nil
	}
	rep := newReport(ids, measures, r)
	u := &uploader{log: log}
	defer u.cleanup()
	local, err := u.maybeUpload(report)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(local)
	if err != nil {
		return nil, fmt.Errorf("gpwgrid: creating report: %v", err)
	}
	if err := toml.NewEncoder(f).Encode(rep); err != nil {
		f.Close()
		return nil, fmt.Errorf("gpwgrid: writing report: %v", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("gpwgrid: writing report: %v", err)
	}
	return r, u.upload(ctx)
}

func newReport(ids, measures string, r *gpwgrid.AggregationResult) *Report {
	rep := &Report{
		Identifiers:   ids,
		Measures:      measures,
		Total:         floats.Sum(r.Totals),
		ExcludedMass:  r.ExcludedMass,
		ExcludedCells: r.ExcludedCells,
	}
	for i, name := range r.Regions {
		rep.Regions = append(rep.Regions, RegionTotal{Name: name, Total: r.Totals[i]})
	}
	for _, id := range r.Excluded() {
		rep.Excluded = append(rep.Excluded, ExcludedTotal{ID: id, Total: r.ExcludedByCode[id]})
	}
	return rep
}

func loadRegions(ctx context.Context, p string, log logrus.FieldLogger) ([]gpwgrid.Region, error) {
	local, err := maybeDownload(ctx, p, log)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("gpwgrid: %v", err)
	}
	defer f.Close()
	return gpwgrid.LoadRegions(f)
}

func loadCountries(ctx context.Context, p string, log logrus.FieldLogger) ([]gpwgrid.Country, error) {
	local, err := maybeDownload(ctx, p, log)
	if err != nil {
		return nil, err
	}
	return gpwgrid.LoadCountries(local)
}
