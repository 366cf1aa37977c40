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

// Command gpwgrid is a command-line interface for converting and
// aggregating gridded world population data.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/gpwgrid/gpwutil"
)

func main() {
	if err := gpwutil.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
