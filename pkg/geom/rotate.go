package geom

// RotateMode is one of the eight square orientations.
type RotateMode uint8

const (
	R0 RotateMode = iota
	R90
	R180
	R270
	MX
	MXR90
	MY
	MYR90

	// RotateCount is the number of orientations.
	RotateCount = 8
)

var rotateNames = [RotateCount]string{"R0", "R90", "R180", "R270", "MX", "MXR90", "MY", "MYR90"}

// String returns the conventional orientation name.
func (r RotateMode) String() string {
	if int(r) < RotateCount {
		return rotateNames[r]
	}
	return "undefined"
}

// Apply rotates the offset (dx, dy) about the origin.
func (r RotateMode) Apply(dx, dy int) (int, int) {
	switch r {
	case R90:
		return -dy, dx
	case R180:
		return -dx, -dy
	case R270:
		return dy, -dx
	case MX:
		return dx, -dy
	case MXR90:
		return dy, dx
	case MY:
		return -dx, dy
	case MYR90:
		return -dy, -dx
	}
	return dx, dy
}

// Transform maps points anchored at From onto To under Rotate.
type Transform struct {
	From   Point
	To     Point
	Rotate RotateMode
}

// Apply returns the image of p. The XY offset from From is rotated and added
// to To; the Z offset is kept as is.
func (t Transform) Apply(p Point) Point {
	d := p.Sub(t.From)
	dx, dy := t.Rotate.Apply(d.X, d.Y)
	return Point{X: t.To.X + dx, Y: t.To.Y + dy, Z: t.To.Z + d.Z}
}
