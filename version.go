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

// Package gpwgrid converts gridded world population and national
// boundary data from the ESRI ASCII grids distributed with SEDAC GPWv3
// into netCDF rasters at the native resolution and at 0.5°, and
// aggregates the population into regions.
package gpwgrid

// Version is the version of this software.
const Version = "0.3.0"
