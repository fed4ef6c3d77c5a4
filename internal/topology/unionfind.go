package topology

// unionFind is a disjoint-set forest with path compression and union by
// size, used to resolve provisional label equivalences in the two-pass
// labeler. Elements are added one at a time and indexed from 0.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind() *unionFind {
	return &unionFind{}
}

// add creates a new singleton set and returns its element index.
func (u *unionFind) add() int {
	x := len(u.parent)
	u.parent = append(u.parent, x)
	u.size = append(u.size, 1)
	return x
}

// find returns the representative of x's set, compressing the path.
func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

// union merges the sets containing a and b.
func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}
