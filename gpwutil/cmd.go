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

// Package gpwutil contains the command-line interface of gpwgrid.
package gpwutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gpwgrid"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by the commands.
var Log = logrus.New()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to gpwgrid.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum severity of log messages:
              one of debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Convert.Input",
			usage: `
              Convert.Input is the path to the ESRI ASCII grid to convert.
              It may be gzip compressed. It can be a local file, an
              http(s) URL or a blob storage URL (gs://, s3:// or file://).`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.PersistentFlags()},
		},
		{
			name: "Convert.Output",
			usage: `
              Convert.Output is the base name of the output files. The
              native resolution grid is written to Convert.Output + "_25.nc"
              and the downsampled grid to Convert.Output + "_half.nc".
              It can be a local path or a blob storage URL.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.PersistentFlags()},
		},
		{
			name: "Convert.CellSize",
			usage: `
              Convert.CellSize is the cell size in degrees of the
              downsampled grid. The number of native grid columns must be
              an integer multiple of 360 / Convert.CellSize.`,
			defaultVal: gpwgrid.HalfDegree,
			flagsets:   []*pflag.FlagSet{convertCmd.PersistentFlags()},
		},
		{
			name: "Convert.Source",
			usage: `
              Convert.Source is recorded as the source attribute of the
              output files. The default is the base name of the input file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.PersistentFlags()},
		},
		{
			name: "Regions",
			usage: `
              Regions is the path to a tab-separated file where each line
              holds a region name followed by the ISO3 codes of its member
              countries.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Countries",
			usage: `
              Countries is the path to the table of national identifiers
              (.dbf, .shp, .xlsx, .csv or .tsv) with VALUE, ISO3V10,
              COUNTRYENG and UNSDCODE fields.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags(), compareCmd.Flags()},
		},
		{
			name: "Aggregate.Identifiers",
			usage: `
              Aggregate.Identifiers is the path to the netCDF file holding
              the national identifier grid.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.Measures",
			usage: `
              Aggregate.Measures is the path to the netCDF file holding the
              population count grid. It must have the same coordinates as
              Aggregate.Identifiers.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Aggregate.Report",
			usage: `
              Aggregate.Report is an optional path where a TOML report of
              the region totals and of the population excluded from all
              regions is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{aggregateCmd.Flags()},
		},
		{
			name: "Compare.Identifiers",
			usage: `
              Compare.Identifiers is the base name of the national
              identifier grids written by 'convert identifiers'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "Compare.Measures",
			usage: `
              Compare.Measures is the base name of the population count
              grids written by 'convert measures'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "Compare.UNPopulation",
			usage: `
              Compare.UNPopulation is the path to the UN reference
              population table (.tsv or .xlsx), in thousands of persons.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "Compare.Year",
			usage: `
              Compare.Year is the heading of the population column in the
              UN reference population table.`,
			defaultVal: gpwgrid.UNReferenceYear,
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "Compare.Output",
			usage: `
              Compare.Output is the path where the comparison table is
              written.`,
			defaultVal: "population_comparison.tsv",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "Preview.Input",
			usage: `
              Preview.Input is the path to the netCDF file to render.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{previewCmd.Flags()},
		},
		{
			name: "Preview.Variable",
			usage: `
              Preview.Variable is the variable to render. The default is
              whichever of glbnds and pcount the file holds.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{previewCmd.Flags()},
		},
		{
			name: "Preview.Output",
			usage: `
              Preview.Output is the path of the PNG image to write.`,
			defaultVal: "preview.png",
			flagsets:   []*pflag.FlagSet{previewCmd.Flags()},
		},
		{
			name: "Preview.Legend",
			usage: `
              Preview.Legend is an optional path where a PNG color bar
              is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{previewCmd.Flags()},
		},
		{
			name: "Preview.Stride",
			usage: `
              Preview.Stride is the number of grid cells per image pixel
              along each axis.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{previewCmd.Flags()},
		},
		{
			name: "Preview.Log",
			usage: `
              Preview.Log specifies whether colors are assigned on a
              logarithmic scale.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{previewCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GPWGRID")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(convertCmd)
	convertCmd.AddCommand(convertIdentifiersCmd)
	convertCmd.AddCommand(convertMeasuresCmd)
	Root.AddCommand(aggregateCmd)
	Root.AddCommand(compareCmd)
	Root.AddCommand(previewCmd)

	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gpwgrid: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("gpwgrid: %v", err)
	}
	Log.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gpwgrid",
	Short: "Converts gridded world population data.",
	Long: `gpwgrid converts the national identifier and population count grids of
the Gridded Population of the World (GPWv3) dataset from ESRI ASCII grids to
netCDF files at their native resolution and at 0.5°, aggregates population
into regions, and compares gridded country totals with UN figures.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GPWGRID_var' where 'var' is the
name of the variable to be set, with dots replaced by underscores.
Paths may contain environment variables.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of gpwgrid.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("gpwgrid v%s\n", gpwgrid.Version)
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an ASCII grid to netCDF.",
	Long: `convert converts an ESRI ASCII grid to netCDF files at the native
resolution and at a coarser resolution. Use the subcommands specified below to
choose what kind of grid is converted.`,
	DisableAutoGenTag: true,
}

var convertIdentifiersCmd = &cobra.Command{
	Use:   "identifiers",
	Short: "Convert a national identifier grid.",
	Long: `identifiers converts a national identifier grid. Coarse cells are
assigned the most common identifier among the native cells they cover, as long
as most of those cells are land.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(gpwgrid.Identifier)
	},
	DisableAutoGenTag: true,
}

var convertMeasuresCmd = &cobra.Command{
	Use:   "measures",
	Short: "Convert a population count grid.",
	Long: `measures converts a population count grid. Coarse cells are
assigned the sum of the native cells they cover.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(gpwgrid.Measure)
	},
	DisableAutoGenTag: true,
}

func runConvert(kind gpwgrid.Kind) error {
	cellSize, err := cast.ToFloat64E(Cfg.Get("Convert.CellSize"))
	if err != nil {
		return fmt.Errorf("gpwgrid: invalid Convert.CellSize: %v", err)
	}
	return Convert(context.TODO(), kind,
		expandPath(Cfg.GetString("Convert.Input")),
		expandPath(Cfg.GetString("Convert.Output")),
		cellSize, Cfg.GetString("Convert.Source"), Log)
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Sum population by region.",
	Long: `aggregate sums the population in a population count grid over the
regions defined in the Regions file, using a national identifier grid with the
same coordinates to find the country of each cell. Population in countries that
do not belong to any region is reported separately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := Aggregate(context.TODO(),
			expandPath(Cfg.GetString("Aggregate.Identifiers")),
			expandPath(Cfg.GetString("Aggregate.Measures")),
			expandPath(Cfg.GetString("Regions")),
			expandPath(Cfg.GetString("Countries")),
			expandPath(Cfg.GetString("Aggregate.Report")),
			cmd.OutOrStdout(), Log)
		return err
	},
	DisableAutoGenTag: true,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare country totals with UN figures.",
	Long: `compare sums the population of each country at both resolutions
written by 'convert' and writes a table comparing the totals with UN reference
figures, sorted by decreasing native resolution population.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Compare(context.TODO(),
			expandPath(Cfg.GetString("Compare.Identifiers")),
			expandPath(Cfg.GetString("Compare.Measures")),
			expandPath(Cfg.GetString("Countries")),
			expandPath(Cfg.GetString("Compare.UNPopulation")),
			Cfg.GetString("Compare.Year"),
			expandPath(Cfg.GetString("Compare.Output")),
			Log)
	},
	DisableAutoGenTag: true,
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a netCDF grid as an image.",
	Long: `preview renders a grid written by 'convert' as a PNG image with
an optional color bar legend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stride, err := cast.ToIntE(Cfg.Get("Preview.Stride"))
		if err != nil {
			return fmt.Errorf("gpwgrid: invalid Preview.Stride: %v", err)
		}
		return Preview(context.TODO(),
			expandPath(Cfg.GetString("Preview.Input")),
			Cfg.GetString("Preview.Variable"),
			expandPath(Cfg.GetString("Preview.Output")),
			expandPath(Cfg.GetString("Preview.Legend")),
			gpwgrid.PreviewOptions{Stride: stride, Log: Cfg.GetBool("Preview.Log")},
			Log)
	},
	DisableAutoGenTag: true,
}

func expandPath(p string) string {
	return os.ExpandEnv(p)
}
