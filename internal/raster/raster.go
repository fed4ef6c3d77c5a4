package raster

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is the panic value used by Get and Set when the addressed
// sample lies outside the raster bounds.
var ErrOutOfRange = errors.New("raster: coordinates out of range")

// ErrRaggedRows indicates that FromRows received rows of differing lengths.
var ErrRaggedRows = errors.New("raster: all rows must have the same length")

// Raster is a rectangular grid of integer samples stored in row-major order.
//
// The zero value is an empty 0x0 raster. Sample value 0 is background;
// any nonzero value is foreground. Rasters own their storage: Clone and
// Padded always allocate, and no function in this module shares sample
// slices between rasters.
type Raster struct {
	width  int
	height int
	pix    []int
}

// NewRaster creates a raster of the given dimensions with all samples zero.
// Dimensions of zero are allowed and produce an empty raster.
func NewRaster(width, height int) *Raster {
	if width < 0 || height < 0 {
		panic(fmt.Errorf("raster: negative dimensions %dx%d", width, height))
	}
	return &Raster{
		width:  width,
		height: height,
		pix:    make([]int, width*height),
	}
}

// FromRows builds a raster from a row-major slice of rows. Every row must
// have the same length; a zero-row input yields an empty raster.
func FromRows(rows [][]int) (*Raster, error) {
	if len(rows) == 0 {
		return NewRaster(0, 0), nil
	}

	width := len(rows[0])
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d", ErrRaggedRows, i, len(row), width)
		}
	}

	r := NewRaster(width, len(rows))
	for i, row := range rows {
		copy(r.pix[i*width:(i+1)*width], row)
	}
	return r, nil
}

// Width returns the number of columns.
func (r *Raster) Width() int { return r.width }

// Height returns the number of rows.
func (r *Raster) Height() int { return r.height }

// Size returns the total number of samples.
func (r *Raster) Size() int { return r.width * r.height }

// In reports whether (row, col) addresses a sample inside the raster.
func (r *Raster) In(row, col int) bool {
	return row >= 0 && row < r.height && col >= 0 && col < r.width
}

// Get returns the sample at (row, col). It panics with ErrOutOfRange when
// the coordinates fall outside the raster.
func (r *Raster) Get(row, col int) int {
	if !r.In(row, col) {
		panic(ErrOutOfRange)
	}
	return r.pix[row*r.width+col]
}

// Set stores a sample at (row, col). It panics with ErrOutOfRange when
// the coordinates fall outside the raster.
func (r *Raster) Set(row, col, value int) {
	if !r.In(row, col) {
		panic(ErrOutOfRange)
	}
	r.pix[row*r.width+col] = value
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	out := NewRaster(r.width, r.height)
	copy(out.pix, r.pix)
	return out
}

// Padded returns a copy of the raster surrounded by a background frame of
// the given thickness. The original samples start at (border, border).
func (r *Raster) Padded(border int) *Raster {
	if border < 0 {
		panic(fmt.Errorf("raster: negative border %d", border))
	}
	out := NewRaster(r.width+2*border, r.height+2*border)
	for row := 0; row < r.height; row++ {
		src := r.pix[row*r.width : (row+1)*r.width]
		dstStart := (row+border)*out.width + border
		copy(out.pix[dstStart:dstStart+r.width], src)
	}
	return out
}

// Interior returns a copy of the raster with a frame of the given thickness
// stripped from every side. It is the inverse of Padded for the same border.
func (r *Raster) Interior(border int) *Raster {
	if border < 0 || 2*border > r.width || 2*border > r.height {
		panic(fmt.Errorf("raster: cannot strip border %d from %dx%d raster", border, r.width, r.height))
	}
	out := NewRaster(r.width-2*border, r.height-2*border)
	for row := 0; row < out.height; row++ {
		srcStart := (row+border)*r.width + border
		copy(out.pix[row*out.width:(row+1)*out.width], r.pix[srcStart:srcStart+out.width])
	}
	return out
}

// Equal reports whether two rasters have identical dimensions and samples.
func (r *Raster) Equal(other *Raster) bool {
	if r.width != other.width || r.height != other.height {
		return false
	}
	for i, v := range r.pix {
		if v != other.pix[i] {
			return false
		}
	}
	return true
}
