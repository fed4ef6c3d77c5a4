package topology

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ironsheep/image-topology-mcp/internal/raster"
)

func mustRaster(t *testing.T, rows [][]int) *raster.Raster {
	t.Helper()
	r, err := raster.FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	return r
}

func TestExtractContoursEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		img  *raster.Raster
	}{
		{"zero size", raster.NewRaster(0, 0)},
		{"all background", raster.NewRaster(6, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := ExtractContours(tt.img)
			if err != nil {
				t.Fatalf("ExtractContours failed: %v", err)
			}
			if tree.Len() != 1 {
				t.Errorf("tree has %d nodes, want only the root", tree.Len())
			}
			if root := tree.Node(tree.Root()); root.Kind != ContourBackground || len(root.Children) != 0 {
				t.Errorf("root = %+v, want childless background node", root)
			}
		})
	}
}

func TestExtractContoursSinglePixel(t *testing.T) {
	img := mustRaster(t, [][]int{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	})

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if tree.Len() != 2 {
		t.Fatalf("tree has %d nodes, want root plus one contour", tree.Len())
	}

	c := tree.Node(1)
	if c.Kind != ContourOuter {
		t.Errorf("contour kind = %v, want %v", c.Kind, ContourOuter)
	}
	if c.Parent != tree.Root() {
		t.Errorf("contour parent = %d, want root", c.Parent)
	}
	// An isolated pixel degenerates to a one-point contour.
	if want := []Point{{Row: 1, Col: 1}}; !reflect.DeepEqual(c.Points, want) {
		t.Errorf("contour points = %v, want %v", c.Points, want)
	}
}

func TestExtractContoursIsolatedPixels(t *testing.T) {
	img := mustRaster(t, [][]int{
		{1, 0, 1, 0, 1},
	})

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if got := tree.Count(ContourOuter); got != 3 {
		t.Fatalf("outer count = %d, want 3", got)
	}

	wantSeeds := []Point{{Row: 0, Col: 0}, {Row: 0, Col: 2}, {Row: 0, Col: 4}}
	for i, id := range tree.Node(tree.Root()).Children {
		c := tree.Node(id)
		if len(c.Points) != 1 || c.Points[0] != wantSeeds[i] {
			t.Errorf("contour %d points = %v, want [%v]", i, c.Points, wantSeeds[i])
		}
	}
}

func TestExtractContoursSolidBlock(t *testing.T) {
	img := mustRaster(t, [][]int{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	})

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if tree.Count(ContourOuter) != 1 || tree.Count(ContourHole) != 0 {
		t.Fatalf("counts = %d outer, %d hole; want 1, 0",
			tree.Count(ContourOuter), tree.Count(ContourHole))
	}

	// The walk follows the boundary counter-clockwise from the top-left
	// pixel; the interior pixel is never visited.
	want := []Point{
		{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1},
	}
	if got := tree.Node(1).Points; !reflect.DeepEqual(got, want) {
		t.Errorf("boundary = %v, want %v", got, want)
	}
}

func TestExtractContoursSingleColumn(t *testing.T) {
	img := mustRaster(t, [][]int{
		{1},
		{1},
		{1},
	})

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if tree.Count(ContourOuter) != 1 {
		t.Fatalf("outer count = %d, want 1", tree.Count(ContourOuter))
	}

	// A one-pixel-wide column is walked down and back up, so the middle
	// pixel appears on both sides of the turn.
	want := []Point{{0, 0}, {1, 0}, {2, 0}, {1, 0}}
	if got := tree.Node(1).Points; !reflect.DeepEqual(got, want) {
		t.Errorf("boundary = %v, want %v", got, want)
	}
}

func TestExtractContoursFullFrame(t *testing.T) {
	// Foreground touching every image edge.
	img := mustRaster(t, [][]int{
		{1, 1},
		{1, 1},
	})

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if tree.Count(ContourOuter) != 1 || tree.Count(ContourHole) != 0 {
		t.Fatalf("counts = %d outer, %d hole; want 1, 0",
			tree.Count(ContourOuter), tree.Count(ContourHole))
	}

	want := []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if got := tree.Node(1).Points; !reflect.DeepEqual(got, want) {
		t.Errorf("boundary = %v, want %v", got, want)
	}
}

func TestExtractContoursAnnulus(t *testing.T) {
	img := mustRaster(t, [][]int{
		{0, 0, 0, 0, 0},
		{0, 1, 1, 1, 0},
		{0, 1, 0, 1, 0},
		{0, 1, 1, 1, 0},
		{0, 0, 0, 0, 0},
	})

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if tree.Len() != 3 {
		t.Fatalf("tree has %d nodes, want root, outer and hole", tree.Len())
	}

	outer := tree.Node(1)
	if outer.Kind != ContourOuter || outer.Parent != tree.Root() {
		t.Fatalf("first contour = kind %v parent %d, want outer under root", outer.Kind, outer.Parent)
	}
	wantOuter := []Point{
		{1, 1}, {2, 1}, {3, 1}, {3, 2}, {3, 3}, {2, 3}, {1, 3}, {1, 2},
	}
	if !reflect.DeepEqual(outer.Points, wantOuter) {
		t.Errorf("outer boundary = %v, want %v", outer.Points, wantOuter)
	}

	hole := tree.Node(2)
	if hole.Kind != ContourHole || hole.Parent != 1 {
		t.Fatalf("second contour = kind %v parent %d, want hole under the outer", hole.Kind, hole.Parent)
	}
	// The hole border visits the four pixels facing the enclosed pixel.
	wantHole := []Point{{2, 1}, {1, 2}, {2, 3}, {3, 2}}
	if !reflect.DeepEqual(hole.Points, wantHole) {
		t.Errorf("hole boundary = %v, want %v", hole.Points, wantHole)
	}
}

func TestExtractContoursNestedComponent(t *testing.T) {
	// A ring enclosing a background moat which in turn encloses a single
	// pixel: outer -> hole -> outer nesting.
	img := mustRaster(t, [][]int{
		{0, 0, 0, 0, 0, 0, 0},
		{0, 1, 1, 1, 1, 1, 0},
		{0, 1, 0, 0, 0, 1, 0},
		{0, 1, 0, 1, 0, 1, 0},
		{0, 1, 0, 0, 0, 1, 0},
		{0, 1, 1, 1, 1, 1, 0},
		{0, 0, 0, 0, 0, 0, 0},
	})

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if tree.Len() != 4 {
		t.Fatalf("tree has %d nodes, want 4", tree.Len())
	}

	ring := tree.Node(1)
	moat := tree.Node(2)
	inner := tree.Node(3)

	if ring.Kind != ContourOuter || ring.Parent != tree.Root() {
		t.Errorf("ring = kind %v parent %d, want outer under root", ring.Kind, ring.Parent)
	}
	if moat.Kind != ContourHole || moat.Parent != 1 {
		t.Errorf("moat = kind %v parent %d, want hole under ring", moat.Kind, moat.Parent)
	}
	if inner.Kind != ContourOuter || inner.Parent != 2 {
		t.Errorf("inner = kind %v parent %d, want outer under moat", inner.Kind, inner.Parent)
	}
	if want := []Point{{Row: 3, Col: 3}}; !reflect.DeepEqual(inner.Points, want) {
		t.Errorf("inner points = %v, want %v", inner.Points, want)
	}
}

// mixedShapesRows is a pair of irregular blobs: the top one encloses one
// background region, the bottom one encloses two.
func mixedShapesRows() [][]int {
	return [][]int{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 1, 1, 0, 0, 1, 0, 0, 0},
		{0, 1, 1, 1, 1, 1, 1, 0, 0, 0},
		{0, 0, 0, 1, 1, 1, 1, 1, 0, 0},
		{0, 0, 1, 0, 0, 1, 0, 0, 1, 0},
		{0, 0, 1, 0, 0, 0, 1, 0, 0, 0},
		{0, 0, 0, 1, 1, 1, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 1, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 1, 1, 1, 1, 0, 0, 0, 0},
		{0, 0, 1, 0, 0, 0, 1, 0, 0, 0},
		{0, 0, 1, 0, 1, 1, 0, 1, 0, 0},
		{0, 0, 0, 1, 0, 0, 1, 0, 0, 0},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
}

func TestExtractContoursMixedShapes(t *testing.T) {
	rows := mixedShapesRows()
	img := mustRaster(t, rows)

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}

	if got := tree.Count(ContourOuter); got != 2 {
		t.Errorf("outer count = %d, want 2", got)
	}
	if got := tree.Count(ContourHole); got != 3 {
		t.Errorf("hole count = %d, want 3", got)
	}

	tree.Walk(func(id int, c *Contour) bool {
		switch c.Kind {
		case ContourOuter:
			if id != tree.Root() && tree.Node(c.Parent).Kind == ContourOuter {
				t.Errorf("outer contour %d nested directly under another outer", id)
			}
		case ContourHole:
			if tree.Node(c.Parent).Kind != ContourOuter {
				t.Errorf("hole contour %d has %v parent, want outer", id, tree.Node(c.Parent).Kind)
			}
		}

		// Every traced point must be a foreground pixel of the input.
		for _, p := range c.Points {
			if rows[p.Row][p.Col] == 0 {
				t.Errorf("contour %d visits background pixel %v", id, p)
			}
		}
		return true
	})

	// Both blobs sit in the surrounding background.
	for _, id := range tree.Node(tree.Root()).Children {
		if tree.Node(id).Kind != ContourOuter {
			t.Errorf("root child %d is %v, want outer", id, tree.Node(id).Kind)
		}
	}
}

func TestExtractContoursDeterministic(t *testing.T) {
	img := mustRaster(t, mixedShapesRows())

	first, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	second, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed on second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two extractions of the same raster produced different trees")
	}
}

func TestExtractContoursInputUntouched(t *testing.T) {
	// Foreground is any nonzero sample; the caller's raster must survive
	// extraction unchanged.
	img := mustRaster(t, [][]int{
		{0, 0, 0, 0},
		{0, 255, 255, 0},
		{0, 255, 255, 0},
		{0, 0, 0, 0},
	})
	backup := img.Clone()

	tree, err := ExtractContours(img)
	if err != nil {
		t.Fatalf("ExtractContours failed: %v", err)
	}
	if tree.Count(ContourOuter) != 1 {
		t.Errorf("outer count = %d, want 1", tree.Count(ContourOuter))
	}
	if !img.Equal(backup) {
		t.Error("input raster was modified during extraction")
	}
}

func TestExtractContoursDiscardsFailedTrace(t *testing.T) {
	// A walk that breaches its invariant must cost only its own contour:
	// the partial node is rolled back and the scan picks up the remaining
	// starts. Well-formed rasters never reach this state, so the failure
	// is injected through the walk hook.
	defer func() { walkBorder = followBorder }()
	walkBorder = func(work *raster.Raster, tree *ContourTree, id int, seed, from Point, nbd int) error {
		if seed == (Point{Row: 0, Col: 0}) {
			return ErrSamePoint
		}
		return followBorder(work, tree, id, seed, from, nbd)
	}

	img := mustRaster(t, [][]int{
		{1, 0, 1},
	})

	tree, err := ExtractContours(img)
	if !errors.Is(err, ErrTraceAborted) {
		t.Fatalf("error = %v, want ErrTraceAborted", err)
	}
	if !strings.Contains(err.Error(), "(0,0)") {
		t.Errorf("error %q does not name the failed start", err)
	}

	// Only the surviving contour remains; the discarded candidate left no
	// node behind.
	if tree.Len() != 2 {
		t.Fatalf("tree has %d nodes, want root plus the surviving contour", tree.Len())
	}
	root := tree.Node(tree.Root())
	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children))
	}

	survivor := tree.Node(root.Children[0])
	if survivor.Kind != ContourOuter {
		t.Errorf("survivor kind = %v, want outer", survivor.Kind)
	}
	want := []Point{{Row: 0, Col: 2}}
	if !reflect.DeepEqual(survivor.Points, want) {
		t.Errorf("survivor points = %v, want %v", survivor.Points, want)
	}
}
