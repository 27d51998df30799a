package geom

import (
	"fmt"
	"strings"
)

// Side names one orthogonal neighbour of a grid tile.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideLower
	SideUpper

	// SideUndefined is returned for anything that is not one of the four sides.
	SideUndefined Side = -1
)

// Sides lists the four sides in their canonical order.
var Sides = [4]Side{SideLeft, SideRight, SideLower, SideUpper}

var sideNames = map[Side]string{
	SideLeft:  "left",
	SideRight: "right",
	SideLower: "lower",
	SideUpper: "upper",
}

// IsValid reports whether s is one of the four sides.
func (s Side) IsValid() bool { return s >= SideLeft && s <= SideUpper }

// String returns the lower-case side name.
func (s Side) String() string {
	if name, ok := sideNames[s]; ok {
		return name
	}
	return "undefined"
}

// Step returns the unit offset taken when walking from a tile to its
// neighbour on side s.
func (s Side) Step() (dx, dy int) {
	switch s {
	case SideLeft:
		return -1, 0
	case SideRight:
		return 1, 0
	case SideLower:
		return 0, -1
	case SideUpper:
		return 0, 1
	}
	return 0, 0
}

// AntiSide returns the opposite of s: left and right swap, lower and upper
// swap. Any other value yields SideUndefined.
func AntiSide(s Side) Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	case SideLower:
		return SideUpper
	case SideUpper:
		return SideLower
	}
	return SideUndefined
}

// ParseSide parses a side name. It accepts the canonical names plus the
// common aliases "bottom"/"top" and "west"/"east"/"south"/"north".
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "west":
		return SideLeft, nil
	case "right", "east":
		return SideRight, nil
	case "lower", "bottom", "south":
		return SideLower, nil
	case "upper", "top", "north":
		return SideUpper, nil
	}
	return SideUndefined, fmt.Errorf("invalid side: %q (must be one of: left, right, lower, upper)", s)
}
