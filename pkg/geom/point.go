package geom

import "fmt"

// Point is a grid slot coordinate.
type Point struct {
	X, Y, Z int
}

// Invalid is the point used for "not placed". Its coordinates are negative so
// it never falls within a grid.
var Invalid = Point{X: -1, Y: -1, Z: -1}

// Pt is shorthand for Point{X: x, Y: y, Z: z}.
func Pt(x, y, z int) Point { return Point{X: x, Y: y, Z: z} }

// IsValid reports whether p holds a placed (non-negative) coordinate.
func (p Point) IsValid() bool { return p.X >= 0 && p.Y >= 0 && p.Z >= 0 }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z} }

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z} }

// String formats the point as "x,y,z".
func (p Point) String() string { return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z) }
