// Package topology extracts the topological structure of binary rasters.
//
// Two families of operations are provided:
//
//   - ExtractContours walks the boundaries of every foreground region with
//     a border-following state machine and returns a tree of contours. The
//     tree distinguishes outer borders (foreground seen from enclosing
//     background) from hole borders (background enclosed by foreground)
//     and records their nesting.
//
//   - LabelComponents and LabelComponentsTwoPass partition foreground
//     pixels into connected components under 4- or 8-connectivity. The
//     expansion variant grows each component with a breadth-first frontier;
//     the two-pass variant assigns provisional labels in raster order and
//     resolves label equivalences with a disjoint-set structure. Both
//     produce the same partition for the same input and connectivity.
//
// All operations are pure: they copy the input raster on entry, never
// mutate the caller's data, and return freshly allocated results. Calls
// are independent and safe to run concurrently on different inputs.
//
// # Coordinate System
//
// Pixels are addressed as (row, col) with (0,0) at the top-left corner.
// Compass directions are indexed 0..7 clockwise starting at North, so
// North points toward smaller rows and East toward larger columns.
package topology
