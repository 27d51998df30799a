package relplace

import (
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
)

// RelativeMove is one elementary block move of a legalized swap.
type RelativeMove struct {
	Macro     Index // Macro of the moving block, NoIndex for a single block
	From, To  geom.Point
	FromEmpty bool // From holds no block once the swap is applied
	ToEmpty   bool // To held no block before the swap
}

// IsCandidate reports whether a swap between from and to touches a block
// of a non-empty macro. Swaps of single blocks and empty cells are left to
// the host.
func (e *Engine) IsCandidate(from, to geom.Point) bool {
	return e.isMacroPoint(from) || e.isMacroPoint(to)
}

func (e *Engine) isMacroPoint(p geom.Point) bool {
	b, ok := e.blockAt(p)
	if !ok || !b.HasMacro() {
		return false
	}
	return !e.macros[b.macro.Int()].IsEmpty()
}

// Place expands the proposed swap of the cells from and to into a move
// list that keeps every affected macro rigid.
//
// On success the host block array already holds the new locations, the
// moves are appended to ba and Place returns true; the host then either
// commits ba to its grid or reverts the block locations. On failure
// nothing is modified and Place returns false, which is the common
// outcome.
func (e *Engine) Place(from, to geom.Point, ba *fabric.BlocksAffected) bool {
	if !e.view.Bound() || !e.IsCandidate(from, to) {
		return false
	}

	// A previous swap may have been rejected by the host, so the cached
	// node points cannot be trusted.
	e.resyncMacros()

	moves, ok := e.searchSwap(from, to)
	if !ok {
		e.hooks.OnSwap(false, 0)
		return false
	}
	for _, mv := range moves {
		e.applyMove(mv, ba)
	}
	e.hooks.OnSwap(true, len(moves))
	return true
}

// resyncMacros reloads every node point from the host block array.
func (e *Engine) resyncMacros() {
	for _, m := range e.macros {
		for _, n := range m.nodes {
			n.point = geom.Invalid
			if rb, ok := e.byName[n.blockName]; ok {
				n.point = e.view.BlockPoint(rb.deviceIndex)
			}
		}
	}
}

// searchSwap tries random untried rotations for the from->to half and,
// for each one that is available, random untried rotations for the
// to->from half until the two halves fit together.
func (e *Engine) searchSwap(from, to geom.Point) ([]RelativeMove, bool) {
	e.toMask = NewRotateMask(e.cfg.RotateEnable)
	for e.toMask.Valid() {
		toRotate := e.randomRotate()
		if !e.toMask.Has(toRotate) {
			continue
		}
		e.toMask.Clear(toRotate)

		fromTo, ok := e.transform(from, to, toRotate)
		if !ok {
			continue
		}

		e.fromMask = NewRotateMask(e.cfg.RotateEnable)
		for e.fromMask.Valid() {
			fromRotate := e.randomRotate()
			if !e.fromMask.Has(fromRotate) {
				continue
			}
			e.fromMask.Clear(fromRotate)

			toFrom, ok := e.transform(to, from, fromRotate)
			if !ok || !distinctTargets(fromTo, toFrom) {
				continue
			}
			moves := make([]RelativeMove, 0, len(fromTo)+len(toFrom))
			moves = append(moves, fromTo...)
			moves = append(moves, toFrom...)
			updateEmptyFlags(moves)
			return moves, true
		}
	}
	return nil, false
}

// transform maps the macro holding fromOrigin (or the single cell
// fromOrigin) onto toOrigin under rotate and classifies every destination.
// It reports false when any destination is unusable.
func (e *Engine) transform(fromOrigin, toOrigin geom.Point, rotate geom.RotateMode) ([]RelativeMove, bool) {
	fromMacro := e.macroAt(fromOrigin)
	toMacro := e.macroAt(toOrigin)

	points := []geom.Point{fromOrigin}
	if i, ok := fromMacro.Get(); ok {
		points = e.macros[i].Points()
	}

	tr := geom.Transform{From: fromOrigin, To: toOrigin, Rotate: rotate}
	moves := make([]RelativeMove, 0, 2*len(points))
	for _, fp := range points {
		tp := tr.Apply(fp)
		if !e.view.InGrid(tp) {
			return nil, false
		}
		if fromMacro == toMacro {
			return nil, false
		}
		if e.view.Type(fp) != e.view.Type(tp) {
			return nil, false
		}
		if e.view.IsEmpty(fp) {
			continue
		}
		if e.view.IsEmpty(tp) {
			moves = append(moves, RelativeMove{Macro: fromMacro, From: fp, To: tp})
			continue
		}

		if fb, ok := e.blockAt(fp); !ok || !fb.HasMacro() {
			continue
		}
		tb, ok := e.blockAt(tp)
		switch {
		case !ok || !tb.HasMacro():
			// A single block trades places with the macro node.
			moves = append(moves,
				RelativeMove{Macro: fromMacro, From: fp, To: tp},
				RelativeMove{Macro: NoIndex, From: tp, To: fp})
		case tb.macro == toMacro:
			// The mirror move comes from the other half of the swap.
			moves = append(moves, RelativeMove{Macro: fromMacro, From: fp, To: tp})
		default:
			return nil, false
		}
	}
	return moves, true
}

// distinctTargets reports whether no move of b shares a destination with a
// move of a.
func distinctTargets(a, b []RelativeMove) bool {
	for _, mb := range b {
		for _, ma := range a {
			if mb.To == ma.To {
				return false
			}
		}
	}
	return true
}

// updateEmptyFlags recomputes the empty flags over the combined list. The
// two halves may use different rotations, so a cell vacated by one move is
// only empty if no other move lands on it.
func updateEmptyFlags(moves []RelativeMove) {
	for i := range moves {
		fromEmpty, toEmpty := true, true
		for _, other := range moves {
			if other.To == moves[i].From {
				fromEmpty = false
			}
			if other.From == moves[i].To {
				toEmpty = false
			}
		}
		moves[i].FromEmpty = fromEmpty
		moves[i].ToEmpty = toEmpty
	}
}

// applyMove records mv for the host and updates the moving block's
// location and node point. The grid is not written, so every lookup by
// point still sees the pre-swap state.
func (e *Engine) applyMove(mv RelativeMove, ba *fabric.BlocksAffected) {
	id, ok := e.view.BlockIndex(mv.From)
	if !ok {
		return
	}
	if b, ok := e.blockAt(mv.From); ok && b.HasMacro() {
		e.nodeOf(b).point = mv.To
	}
	e.view.MoveBlock(id, mv.To)
	ba.Moved = append(ba.Moved, fabric.MovedBlock{
		Block:     id,
		Old:       mv.From,
		New:       mv.To,
		ToEmpty:   mv.ToEmpty,
		FromEmpty: mv.FromEmpty,
	})
}
