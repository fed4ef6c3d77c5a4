package topology

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-topology-mcp/internal/raster"
)

// ErrTraceAborted wraps a border walk that hit an internal invariant
// breach. The offending contour is discarded and the scan continues; the
// error reports which start pixel was affected.
var ErrTraceAborted = errors.New("topology: contour trace aborted")

// ExtractContours extracts the nested contour tree of a binary raster.
//
// The input is copied on entry; any nonzero sample is treated as
// foreground value 1, so thresholded images using 255 for foreground can
// be passed directly. The caller's raster is never modified.
//
// The scan follows the classic border-following scheme: the raster is
// visited in row-major order, every unclaimed border pixel opens a new
// contour classified as outer (background to its west) or hole
// (background to its east), and a wall-follower walk collects the
// boundary. Visited boundary pixels are stamped with signed border ids on
// the working copy, which both prevents re-tracing and lets later starts
// resolve which contour encloses them.
//
// The returned tree always has exactly one background root whose
// transitive children are all detected contours. Outer contours nest under
// the root or other outer contours; hole contours nest under the root or
// an outer contour. An empty raster yields a tree with only the root.
//
// A trace that breaches the walk invariant is rolled back: its partial
// contour is removed from the tree and scanning resumes at the next pixel.
// Such faults are reported in the returned error (one ErrTraceAborted per
// discarded candidate, joined), alongside the otherwise complete tree.
func ExtractContours(img *raster.Raster) (*ContourTree, error) {
	tree := newContourTree()
	if img.Size() == 0 {
		return tree, nil
	}

	height := img.Height()
	width := img.Width()

	// Working copy with foreground coerced to exactly 1.
	work := raster.NewRaster(width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if img.Get(row, col) != 0 {
				work.Set(row, col, 1)
			}
		}
	}

	nbd := 1  // newest border id; 1 is the background frame
	lnbd := 1 // last referenced border id, reset per row

	borderMap := map[int]int{1: tree.Root()}
	var faults []error

	for row := 0; row < height; row++ {
		lnbd = 1

		for col := 0; col < width; col++ {
			fji := work.Get(row, col)

			isOuter := fji == 1 && (col == 0 || work.Get(row, col-1) == 0)
			isHole := !isOuter && fji >= 1 && (col == width-1 || work.Get(row, col+1) == 0)

			if isOuter || isHole {
				seed := Point{Row: row, Col: col}
				from := seed
				var kind ContourKind
				var parent int

				if isOuter {
					nbd++
					from.Col--
					kind = ContourOuter

					prime := resolveBorder(tree, borderMap, lnbd)
					switch tree.Node(prime).Kind {
					case ContourOuter:
						parent = tree.Node(prime).Parent
					default:
						parent = prime
					}
				} else {
					nbd++
					if fji > 1 {
						lnbd = fji
					}
					from.Col++
					kind = ContourHole

					prime := resolveBorder(tree, borderMap, lnbd)
					switch tree.Node(prime).Kind {
					case ContourOuter:
						parent = prime
					case ContourHole:
						parent = tree.Node(prime).Parent
					default:
						parent = prime
					}
				}

				id := tree.add(kind, parent)
				if err := walkBorder(work, tree, id, seed, from, nbd); err != nil {
					tree.discard(id)
					faults = append(faults, fmt.Errorf("%w: %s start at (%d,%d): %v", ErrTraceAborted, kind, row, col, err))
				} else {
					if len(tree.Node(id).Points) == 0 {
						tree.Node(id).Points = append(tree.Node(id).Points, seed)
						work.Set(row, col, -nbd)
					}
					borderMap[nbd] = id
				}
			}

			if fji != 0 && fji != 1 {
				lnbd = abs(fji)
			}
		}
	}

	return tree, errors.Join(faults...)
}

// resolveBorder maps a border id back to its contour node. A rolled-back
// border leaves its id unmapped; such references fall back to the root.
func resolveBorder(tree *ContourTree, borderMap map[int]int, id int) int {
	if node, ok := borderMap[id]; ok {
		return node
	}
	return tree.Root()
}

// walkBorder is swapped out by tests that need a border walk to fail; the
// scan itself always goes through followBorder.
var walkBorder = followBorder

// followBorder walks the boundary of a region starting at seed, appending
// every visited pixel to the contour and stamping the working raster with
// the border id. from is the background neighbor whose discovery opened
// the border; the walk terminates when it re-enters the seed through the
// same relationship it started with.
func followBorder(work *raster.Raster, tree *ContourTree, id int, seed, from Point, nbd int) error {
	dir, err := DirectionBetween(seed, from)
	if err != nil {
		return err
	}

	// Probe clockwise from just past the opening direction for the first
	// active neighbor. No hit means an isolated single-pixel contour.
	first := Point{Row: -1, Col: -1}
	found := false
	for trace := dir.Clockwise(); trace != dir; trace = trace.Clockwise() {
		if p, ok := trace.ActiveNeighbor(work, seed); ok {
			first = p
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	prev := first
	current := seed
	var checked [numDirections]bool

	for {
		dir, err = DirectionBetween(current, prev)
		if err != nil {
			return err
		}

		for i := range checked {
			checked[i] = false
		}

		// Scan counter-clockwise starting just past the direction back to
		// the previous pixel; remember which probes saw background.
		var next Point
		for trace := dir.CounterClockwise(); ; trace = trace.CounterClockwise() {
			if p, ok := trace.ActiveNeighbor(work, current); ok {
				next = p
				break
			}
			checked[trace] = true
		}

		addContourPoint(work, tree.Node(id), current, &checked, nbd)

		if next == seed && current == first {
			return nil
		}

		prev = current
		current = next
	}
}

// addContourPoint records a visited boundary pixel and stamps the working
// raster: pixels whose east neighbor crosses into background carry the
// negated border id, other freshly visited pixels the positive id.
func addContourPoint(work *raster.Raster, c *Contour, p Point, checked *[numDirections]bool, nbd int) {
	c.Points = append(c.Points, p)

	if crossesEastBorder(work, checked, p) {
		work.Set(p.Row, p.Col, -nbd)
	} else if work.Get(p.Row, p.Col) == 1 {
		work.Set(p.Row, p.Col, nbd)
	}
}

// crossesEastBorder reports whether the walk found background directly
// east of p, either past the raster edge or through an east probe that
// came up empty.
func crossesEastBorder(work *raster.Raster, checked *[numDirections]bool, p Point) bool {
	if work.Get(p.Row, p.Col) == 0 {
		return false
	}
	return p.Col == work.Width()-1 || checked[East]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
