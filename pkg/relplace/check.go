package relplace

import (
	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
)

// Check reports every macro whose blocks in f do not form the declared
// shape under an allowed orientation. It reads f only and leaves the
// engine's binding and node points untouched.
func (e *Engine) Check(f *fabric.Fabric) error {
	var errs []error
	for mi, m := range e.macros {
		if m.IsEmpty() {
			continue
		}
		actual := make([]geom.Point, m.Len())
		complete := true
		for i, n := range m.nodes {
			id, ok := f.BlockByName(n.blockName)
			if !ok {
				errs = append(errs, missingBlock(n.blockName))
				complete = false
				break
			}
			if !f.Blocks[id].Placed() {
				errs = append(errs, errors.New(errors.ErrCodeInvalidConstraint,
					"block %q of macro %d is not placed", n.blockName, mi))
				complete = false
				break
			}
			actual[i] = f.Blocks[id].Point()
		}
		if !complete {
			continue
		}
		if !e.matchesShape(m, actual) {
			errs = append(errs, errors.New(errors.ErrCodeInvalidConstraint,
				"macro %d is not placed as declared (reference block %q at %s)", mi, m.nodes[0].blockName, actual[0]))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) matchesShape(m *RelativeMacro, actual []geom.Point) bool {
	c := m.clone()
	for r := range geom.RotateMode(geom.RotateCount) {
		if r != geom.R0 && !e.cfg.RotateEnable {
			break
		}
		c.Set(0, actual[0], r)
		match := true
		for i, n := range c.nodes {
			if n.point != actual[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
