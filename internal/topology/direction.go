package topology

import (
	"errors"
	"fmt"

	"github.com/ironsheep/image-topology-mcp/internal/raster"
)

// ErrSamePoint indicates that a compass direction was requested between
// two identical points. During border following this is an internal
// invariant breach: it cannot occur for well-formed binary input.
var ErrSamePoint = errors.New("topology: no direction between identical points")

// Point is a pixel coordinate: Row increases downward, Col rightward.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Direction is one of the 8 compass directions, indexed 0..7 clockwise
// starting at North. Rotation is plain modular arithmetic; Direction
// values carry no state beyond the index.
type Direction int

// Compass directions in clockwise order.
const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest

	numDirections = 8
)

// Row/col offsets per direction, indexed by Direction.
var (
	dirRow = [numDirections]int{-1, -1, 0, 1, 1, 1, 0, -1}
	dirCol = [numDirections]int{0, 1, 1, 1, 0, -1, -1, -1}
)

var directionNames = [numDirections]string{
	"north", "north-east", "east", "south-east",
	"south", "south-west", "west", "north-west",
}

func (d Direction) String() string {
	if d < 0 || d >= numDirections {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Clockwise returns the next direction rotating clockwise.
func (d Direction) Clockwise() Direction {
	return (d + 1) % numDirections
}

// CounterClockwise returns the next direction rotating counter-clockwise.
func (d Direction) CounterClockwise() Direction {
	return (d + numDirections - 1) % numDirections
}

// Offset returns the row and column deltas of one step in this direction.
func (d Direction) Offset() (dRow, dCol int) {
	return dirRow[d], dirCol[d]
}

// Next returns the point one step away from p in this direction.
func (d Direction) Next(p Point) Point {
	return Point{Row: p.Row + dirRow[d], Col: p.Col + dirCol[d]}
}

// ActiveNeighbor probes the neighbor of p in this direction and returns it
// when it lies inside the raster and holds a foreground (nonzero) sample.
func (d Direction) ActiveNeighbor(img *raster.Raster, p Point) (Point, bool) {
	n := d.Next(p)
	if !img.In(n.Row, n.Col) || img.Get(n.Row, n.Col) == 0 {
		return Point{}, false
	}
	return n, true
}

// DirectionBetween returns the compass direction of the vector from one
// point to another, restricted to the 8 adjacent offsets: any displacement
// collapses to its octant. It fails with ErrSamePoint when from == to.
func DirectionBetween(from, to Point) (Direction, error) {
	if from == to {
		return 0, ErrSamePoint
	}

	switch {
	case from.Row == to.Row:
		if from.Col < to.Col {
			return East, nil
		}
		return West, nil
	case from.Row < to.Row:
		switch {
		case from.Col == to.Col:
			return South, nil
		case from.Col < to.Col:
			return SouthEast, nil
		default:
			return SouthWest, nil
		}
	default:
		switch {
		case from.Col == to.Col:
			return North, nil
		case from.Col < to.Col:
			return NorthEast, nil
		default:
			return NorthWest, nil
		}
	}
}
