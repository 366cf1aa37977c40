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

// Package hash computes short content digests that identify the inputs
// an output file was derived from.
package hash

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Digest returns a hexadecimal digest of values. Values are gob encoded
// where possible; values that gob cannot encode, such as structs
// without exported fields, are printed with spew instead.
func Digest(values ...interface{}) string {
	h := fnv.New64a()
	for _, v := range values {
		write(h, v)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func write(h hash.Hash64, v interface{}) {
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(v); err == nil {
		h.Write(b.Bytes())
		return
	}
	printer.Fprintf(h, "%#v", v)
}
