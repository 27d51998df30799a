package relplace

import (
	"math/bits"

	"github.com/matzehuels/relplace/pkg/geom"
)

// RotateMask holds one bit per orientation that has not been tried yet.
type RotateMask uint8

// NewRotateMask returns a mask with every orientation untried, or only R0
// when rotation is disabled.
func NewRotateMask(rotateEnable bool) RotateMask {
	if rotateEnable {
		return RotateMask(0xff)
	}
	return RotateMask(1 << geom.R0)
}

// Has reports whether r is still untried.
func (m RotateMask) Has(r geom.RotateMode) bool { return m&(1<<r) != 0 }

// Clear marks r as tried.
func (m *RotateMask) Clear(r geom.RotateMode) { *m &^= 1 << r }

// Valid reports whether any orientation is left.
func (m RotateMask) Valid() bool { return m != 0 }

// Count returns the number of untried orientations.
func (m RotateMask) Count() int { return bits.OnesCount8(uint8(m)) }

type rotateKey struct {
	origin geom.Point
	node   int
}

// RotateMaskMap remembers which orientations were tried for each
// (origin, representative node) pair during initial placement.
type RotateMaskMap map[rotateKey]RotateMask

// TryOnce reports whether (origin, node, rotate) has not been tried yet and
// marks it as tried. A false result means the candidate is a repeat.
func (mm RotateMaskMap) TryOnce(origin geom.Point, node int, rotate geom.RotateMode, rotateEnable bool) bool {
	key := rotateKey{origin: origin, node: node}
	mask, found := mm[key]
	if found && !mask.Has(rotate) {
		return false
	}
	if !found {
		mask = NewRotateMask(rotateEnable)
	}
	mask.Clear(rotate)
	mm[key] = mask
	return true
}
