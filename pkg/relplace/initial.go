package relplace

import (
	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
)

// InitialPlace binds the engine to f and finds a legal origin and rotation
// for every non-empty macro, writing the accepted placements into f.
//
// A run fails as soon as one macro exhausts its budget of MaxMacroRetries
// attempts per node, or when a macro node's type has no free cell left.
// Failed runs are retried from a fresh Reset up to MaxPlaceRetries times.
// When every run fails the fabric is Reset once more and a
// PLACEMENT_EXHAUSTED error is returned; there is no partial placement.
func (e *Engine) InitialPlace(f *fabric.Fabric) error {
	maxPlace := max(e.cfg.MaxPlaceRetries, 1)

	var lastErr error
	for attempt := 1; attempt <= maxPlace; attempt++ {
		if err := e.Reset(f); err != nil {
			return err
		}
		lastErr = e.placeMacros()
		if lastErr == nil {
			return nil
		}
		e.logger.Warn("failed initial relative placement", "err", errors.UserMessage(lastErr))
		if attempt < maxPlace {
			e.logger.Info("retrying initial relative macro placement", "attempt", attempt, "of", maxPlace)
			e.hooks.OnPlaceRetry(attempt, maxPlace)
		}
	}

	if err := e.Reset(f); err != nil {
		return err
	}
	e.logger.Error("failed to find initial placement based on relative placement constraints")
	return errors.Wrap(errors.ErrCodePlacementExhausted, lastErr, "initial placement failed after %d attempts", maxPlace)
}

func (e *Engine) placeMacros() error {
	for i, m := range e.macros {
		if m.IsEmpty() {
			continue
		}
		if err := e.placeMacro(i, m); err != nil {
			return err
		}
	}
	return nil
}

// placeMacro searches for a legal (node, origin, rotate) candidate for m and
// commits the first one found. Repeated candidates are skipped without
// consuming budget.
func (e *Engine) placeMacro(index int, m *RelativeMacro) error {
	clear(e.initialMasks)

	budget := e.cfg.MaxMacroRetries * m.Len()
	repeats := 0
	for tries := 0; tries < budget; {
		node := e.rng.IntN(m.Len())
		ref := m.nodes[node]
		origin, ok := e.randomOrigin(ref)
		if !ok {
			return errors.New(errors.ErrCodePlacementExhausted,
				"could not place block %q, no free locations of type %q", ref.blockName, typeName(ref.deviceType))
		}
		rotate := e.randomRotate()

		if !e.initialMasks.TryOnce(origin, node, rotate, e.cfg.RotateEnable) {
			if repeats++; repeats >= maxUntriedDraws {
				repeats = 0
				tries++
			}
			continue
		}
		repeats = 0
		tries++

		if !e.isOpen(m, node, origin, rotate) {
			e.logger.Debug("failed relative macro placement",
				"macro", index, "block", ref.blockName, "origin", origin, "rotate", rotate)
			continue
		}

		m.Set(node, origin, rotate)
		e.commitMacro(m)
		e.logger.Debug("placed relative macro",
			"macro", index, "block", ref.blockName, "origin", origin, "rotate", rotate, "attempts", tries)
		e.hooks.OnMacroPlaced(index, m.Len(), tries)
		return nil
	}
	return errors.New(errors.ErrCodePlacementExhausted,
		"relative macro %d (%d blocks) not placed after %d attempts", index, m.Len(), budget)
}

// randomOrigin draws a free cell of ref's type from the host pool. After
// originDraws misses it scans the pool for the first free cell. With
// rotation disabled the chosen pool entry is consumed.
func (e *Engine) randomOrigin(ref *RelativeNode) (geom.Point, bool) {
	t := ref.deviceType
	free := e.view.FreeCount(t)
	if free <= 0 {
		e.logger.Error("initial relative placement failed", "block", ref.blockName, "type", typeName(t))
		return geom.Invalid, false
	}

	pos := -1
	for range originDraws {
		i := e.rng.IntN(free)
		if e.view.IsEmpty(e.view.LegalPos(t, i)) {
			pos = i
			break
		}
	}
	if pos < 0 {
		e.logger.Warn("failed initial relative macro placement after random tries, scanning all free locations",
			"block", ref.blockName, "tries", originDraws)
		for i := range free {
			if e.view.IsEmpty(e.view.LegalPos(t, i)) {
				pos = i
				break
			}
		}
	}
	if pos < 0 {
		e.logger.Error("initial relative placement failed, no free locations",
			"block", ref.blockName, "type", typeName(t))
		return geom.Invalid, false
	}

	origin := e.view.LegalPos(t, pos)
	if !e.cfg.RotateEnable {
		e.view.RemoveLegalPos(t, pos)
	}
	return origin, true
}

// isOpen reports whether placing node at origin under rotate puts every node
// of m on an empty cell of its own type.
func (e *Engine) isOpen(m *RelativeMacro, node int, origin geom.Point, rotate geom.RotateMode) bool {
	candidate := m.clone()
	candidate.Set(node, origin, rotate)
	seen := make(map[geom.Point]bool, candidate.Len())
	for _, n := range candidate.nodes {
		if seen[n.point] || !e.view.IsOpen(n.point, n.deviceType) {
			return false
		}
		seen[n.point] = true
	}
	return true
}

// commitMacro writes every node point of m into the host grid.
func (e *Engine) commitMacro(m *RelativeMacro) {
	for _, n := range m.nodes {
		e.view.Occupy(n.point, e.byName[n.blockName].deviceIndex)
	}
}

func typeName(t *fabric.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.Name
}
