package topology

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-topology-mcp/internal/raster"
)

// ErrConnectivity indicates an unknown connectivity selector.
var ErrConnectivity = errors.New("topology: unknown connectivity")

// Connectivity selects which neighbor offsets count as adjacent when
// grouping same-value pixels.
type Connectivity int

const (
	// Connectivity4 considers the orthogonal neighbors: N, E, S, W.
	Connectivity4 Connectivity = iota
	// Connectivity8 additionally considers the diagonal neighbors.
	Connectivity8
)

func (c Connectivity) String() string {
	switch c {
	case Connectivity4:
		return "4-connectivity"
	case Connectivity8:
		return "8-connectivity"
	default:
		return fmt.Sprintf("Connectivity(%d)", int(c))
	}
}

// offsets returns the neighbor deltas for the connectivity as {dRow, dCol}
// pairs.
func (c Connectivity) offsets() ([][2]int, error) {
	switch c {
	case Connectivity4:
		return [][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}, nil
	case Connectivity8:
		return [][2]int{
			{-1, -1}, {-1, 0}, {-1, 1},
			{0, -1}, {0, 1},
			{1, -1}, {1, 0}, {1, 1},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrConnectivity, int(c))
	}
}

// LabelComponents partitions the foreground of a raster into connected
// components by frontier expansion.
//
// Background is sample value 0. Any two foreground pixels belong to the
// same component iff they are connected by a path of equal-valued pixels
// under the chosen connectivity, so rasters holding several distinct
// foreground values are labeled per value.
//
// The returned label raster has the input's dimensions with background 0
// and components numbered 1..count in raster-scan discovery order. The
// input is copied on entry and never modified. An empty raster yields an
// empty label raster and zero count.
func LabelComponents(img *raster.Raster, conn Connectivity) (*raster.Raster, int, error) {
	offsets, err := conn.offsets()
	if err != nil {
		return nil, 0, err
	}
	if img.Size() == 0 {
		return raster.NewRaster(img.Width(), img.Height()), 0, nil
	}

	// One-cell background frame removes per-neighbor bounds checks.
	work := img.Padded(1)
	labels := raster.NewRaster(work.Width(), work.Height())

	current := 1
	for row := 1; row <= img.Height(); row++ {
		for col := 1; col <= img.Width(); col++ {
			if work.Get(row, col) != 0 && labels.Get(row, col) == 0 {
				expandComponent(work, labels, Point{Row: row, Col: col}, current, offsets)
				current++
			}
		}
	}

	return labels.Interior(1), current - 1, nil
}

// expandComponent grows one component from seed with a breadth-first
// frontier, consuming (zeroing) visited cells on the working copy and
// recording their label.
func expandComponent(work, labels *raster.Raster, seed Point, label int, offsets [][2]int) {
	value := work.Get(seed.Row, seed.Col)
	work.Set(seed.Row, seed.Col, 0)
	labels.Set(seed.Row, seed.Col, label)

	queue := []Point{seed}
	for qi := 0; qi < len(queue); qi++ {
		p := queue[qi]
		for _, d := range offsets {
			n := Point{Row: p.Row + d[0], Col: p.Col + d[1]}
			if work.Get(n.Row, n.Col) == value {
				work.Set(n.Row, n.Col, 0)
				labels.Set(n.Row, n.Col, label)
				queue = append(queue, n)
			}
		}
	}
}

// LabelComponentsTwoPass partitions the foreground of a raster into
// connected components with a raster-scan labeling pass followed by
// equivalence-class resolution.
//
// The first pass assigns a fresh provisional label to every foreground
// pixel with no already-visited same-value neighbor (north row and west,
// per connectivity) and otherwise reuses the smallest neighboring label,
// recording all labels observed at that pixel as equivalent. The
// equivalence relation is resolved with a disjoint-set structure; each
// class keeps its smallest member as canonical label and the second pass
// rewrites the raster accordingly.
//
// The induced partition is identical to LabelComponents for the same input
// and connectivity; the raw label numbers may differ and need not be
// contiguous. The count is the number of equivalence classes.
func LabelComponentsTwoPass(img *raster.Raster, conn Connectivity) (*raster.Raster, int, error) {
	if conn != Connectivity4 && conn != Connectivity8 {
		return nil, 0, fmt.Errorf("%w: %d", ErrConnectivity, int(conn))
	}
	if img.Size() == 0 {
		return raster.NewRaster(img.Width(), img.Height()), 0, nil
	}

	work := img.Padded(1)
	labels := raster.NewRaster(work.Width(), work.Height())

	uf := newUnionFind()
	uf.add() // element 0 is unused: labels start at 1

	next := 1
	neighborLabels := make([]int, 0, 4)

	for row := 1; row <= img.Height(); row++ {
		for col := 1; col <= img.Width(); col++ {
			value := work.Get(row, col)
			if value == 0 {
				continue
			}

			neighborLabels = neighborLabels[:0]
			if conn == Connectivity8 {
				for dc := -1; dc <= 1; dc++ {
					if work.Get(row-1, col+dc) == value && labels.Get(row-1, col+dc) != 0 {
						neighborLabels = append(neighborLabels, labels.Get(row-1, col+dc))
					}
				}
			} else {
				if work.Get(row-1, col) == value && labels.Get(row-1, col) != 0 {
					neighborLabels = append(neighborLabels, labels.Get(row-1, col))
				}
			}
			if work.Get(row, col-1) == value && labels.Get(row, col-1) != 0 {
				neighborLabels = append(neighborLabels, labels.Get(row, col-1))
			}

			if len(neighborLabels) == 0 {
				uf.add()
				labels.Set(row, col, next)
				next++
				continue
			}

			smallest := neighborLabels[0]
			for _, l := range neighborLabels[1:] {
				if l < smallest {
					smallest = l
				}
			}
			labels.Set(row, col, smallest)
			for _, l := range neighborLabels {
				uf.union(smallest, l)
			}
		}
	}

	// Canonical label of a class is its smallest member.
	canonical := make([]int, next)
	classes := 0
	for l := 1; l < next; l++ {
		root := uf.find(l)
		if canonical[root] == 0 {
			canonical[root] = l
			classes++
		}
	}

	for row := 1; row <= img.Height(); row++ {
		for col := 1; col <= img.Width(); col++ {
			if l := labels.Get(row, col); l != 0 {
				labels.Set(row, col, canonical[uf.find(l)])
			}
		}
	}

	return labels.Interior(1), classes, nil
}
