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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// RawGrid is the content of an ASCII grid file: its header and its values
// in row-major order, with rows ordered from north to south as stored.
type RawGrid struct {
	Header RasterHeader
	Data   []float64
}

// Row returns row r (0 is the northernmost row) of the raw grid.
func (g *RawGrid) Row(r int) []float64 {
	return g.Data[r*g.Header.Cols : (r+1)*g.Header.Cols]
}

// ReadASCIIGrid reads an uncompressed ASCII grid from r.
// The header is validated before any data are read.
func ReadASCIIGrid(r io.Reader) (*RawGrid, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 1<<20)
	}
	h, err := ParseHeader(br)
	if err != nil {
		return nil, err
	}
	if err = h.Check(); err != nil {
		return nil, err
	}
	g := &RawGrid{
		Header: h,
		Data:   make([]float64, 0, h.Rows*h.Cols),
	}
	for row := 0; row < h.Rows; {
		text, err := readLine(br)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("gpwgrid: reading grid row %d: %v", row, err)
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			if err == io.EOF {
				return nil, fmt.Errorf("gpwgrid: grid ends after %d of %d rows", row, h.Rows)
			}
			continue // blank line
		}
		if len(fields) != h.Cols {
			return nil, fmt.Errorf("gpwgrid: grid row %d has %d values but ncols is %d", row, len(fields), h.Cols)
		}
		for j, f := range fields {
			v, perr := strconv.ParseFloat(f, 64)
			if perr != nil {
				return nil, fmt.Errorf("gpwgrid: grid row %d, column %d: %v", row, j, perr)
			}
			g.Data = append(g.Data, v)
		}
		row++
		if err == io.EOF && row < h.Rows {
			return nil, fmt.Errorf("gpwgrid: grid ends after %d of %d rows", row, h.Rows)
		}
	}
	return g, nil
}

// OpenASCIIGrid reads the ASCII grid in the named file, which may be
// gzip-compressed.
func OpenASCIIGrid(filename string) (*RawGrid, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("gpwgrid: opening grid file: %v", err)
	}
	defer f.Close()
	return DecodeASCIIGrid(f)
}

// DecodeASCIIGrid reads an ASCII grid from r, decompressing it first if
// it starts with the gzip magic number.
func DecodeASCIIGrid(r io.Reader) (*RawGrid, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gpwgrid: opening gzip stream: %v", err)
		}
		defer gz.Close()
		return ReadASCIIGrid(gz)
	}
	return ReadASCIIGrid(br)
}
