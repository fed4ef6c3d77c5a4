package topology

// ContourKind classifies a contour node within the tree.
type ContourKind int

const (
	// ContourBackground marks the implicit root of every contour tree,
	// representing the background frame around the image. Exactly one
	// such node exists per tree and it carries no points.
	ContourBackground ContourKind = iota

	// ContourOuter is the boundary of a foreground region as seen from
	// the enclosing background.
	ContourOuter

	// ContourHole is the boundary of a background region fully enclosed
	// by foreground.
	ContourHole
)

func (k ContourKind) String() string {
	switch k {
	case ContourBackground:
		return "background"
	case ContourOuter:
		return "outer"
	case ContourHole:
		return "hole"
	default:
		return "unknown"
	}
}

// NoParent is the parent id of the root node.
const NoParent = -1

// Contour is one node of a contour tree. Nodes live in the tree's arena
// and reference each other by integer id: Parent is a lookup-only
// back-reference, Children are owned in raster-scan discovery order.
type Contour struct {
	// Kind classifies the node.
	Kind ContourKind `json:"kind"`

	// Points is the traced boundary in walk order. A contour whose walk
	// degenerated to a single pixel holds just its seed point. The root
	// has no points.
	Points []Point `json:"points"`

	// Parent is the id of the enclosing contour, NoParent for the root.
	Parent int `json:"parent"`

	// Children are the ids of directly nested contours, ordered by
	// raster-scan discovery.
	Children []int `json:"children"`
}

// ContourTree is an arena of contour nodes. Node id 0 is always the
// background root; every other node is reachable from it through Children.
type ContourTree struct {
	nodes []Contour
}

// newContourTree creates a tree holding only the background root.
func newContourTree() *ContourTree {
	return &ContourTree{
		nodes: []Contour{{Kind: ContourBackground, Parent: NoParent}},
	}
}

// Root returns the id of the background root node.
func (t *ContourTree) Root() int { return 0 }

// Len returns the number of nodes in the tree, root included.
func (t *ContourTree) Len() int { return len(t.nodes) }

// Node returns the node with the given id. The returned pointer stays
// valid for the lifetime of the tree; ids are never reused.
func (t *ContourTree) Node(id int) *Contour {
	return &t.nodes[id]
}

// Walk visits every node reachable from the root in depth-first order,
// children in discovery order, root first. Traversal stops early when fn
// returns false.
func (t *ContourTree) Walk(fn func(id int, c *Contour) bool) {
	stack := []int{t.Root()}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &t.nodes[id]
		if !fn(id, node) {
			return
		}
		// Push children reversed so the first child is visited first.
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
}

// Count returns the number of non-root contours of the given kind.
func (t *ContourTree) Count(kind ContourKind) int {
	n := 0
	for id := 1; id < len(t.nodes); id++ {
		if t.nodes[id].Kind == kind {
			n++
		}
	}
	return n
}

// add appends a node of the given kind under parent and returns its id.
func (t *ContourTree) add(kind ContourKind, parent int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, Contour{Kind: kind, Parent: parent})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// discard rolls back the most recently added node: it is unlinked from its
// parent and dropped from the arena. Only the newest node may be discarded,
// which keeps ids dense.
func (t *ContourTree) discard(id int) {
	if id != len(t.nodes)-1 {
		panic("topology: discard of non-newest contour")
	}
	parent := t.nodes[id].Parent
	children := t.nodes[parent].Children
	t.nodes[parent].Children = children[:len(children)-1]
	t.nodes = t.nodes[:id]
}
