// Package raster provides the integer raster container and image
// preprocessing operations that feed the topology algorithms.
//
// A Raster is a rectangular grid of int samples addressed as (row, col),
// with (0,0) at the top-left corner. Rows increase downward and columns
// increase rightward, matching the scan order of the topology package.
// Background is always sample value 0; any nonzero value is foreground.
//
// The package also bridges between standard Go image.Image values and
// rasters: decoded images can be converted to binary rasters with a fixed
// or Otsu-selected threshold, and contrast can be enhanced beforehand with
// CLAHE (Contrast Limited Adaptive Histogram Equalization).
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Raster values are plain
// data with no internal locking; concurrent mutation of the same Raster
// must be synchronized by the caller. All conversion functions allocate
// fresh output and never retain their inputs.
//
// # Error Handling
//
// Get and Set panic with ErrOutOfRange when addressed outside the raster
// bounds; use In to probe first. Conversion and enhancement functions
// return errors for invalid parameters or encoding failures.
package raster
