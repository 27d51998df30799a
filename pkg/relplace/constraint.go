package relplace

import (
	"fmt"
	"strings"

	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/geom"
)

// DecideAntiSide returns the opposite of side: left and right swap, lower
// and upper swap, anything else is undefined.
func DecideAntiSide(side geom.Side) geom.Side { return geom.AntiSide(side) }

// AddSideConstraint declares that block to lies on side of block from.
//
// Depending on which blocks already belong to a macro the constraint starts
// a new macro, extends an existing one, is accepted as redundant, or merges
// two macros. A constraint that names an unknown block fails with
// MISSING_BLOCK_NAME; one that conflicts with existing links or would stack
// two blocks on one relative cell fails with INVALID_CONSTRAINT. A failed
// constraint leaves the registry unchanged.
func (e *Engine) AddSideConstraint(from, to string, side geom.Side) error {
	return e.addSideConstraint(from, to, side, NoIndex)
}

// addSideConstraint is AddSideConstraint with an optional target macro for
// the two-new-nodes case, used while merging.
func (e *Engine) addSideConstraint(fromName, toName string, side geom.Side, target Index) error {
	fromBlock, ok := e.byName[fromName]
	if !ok {
		return missingBlock(fromName)
	}
	toBlock, ok := e.byName[toName]
	if !ok {
		return missingBlock(toName)
	}
	if !side.IsValid() {
		return invalidConstraint(fromName, toName, side, "undefined side")
	}
	if fromName == toName {
		return invalidConstraint(fromName, toName, side, "a block cannot be placed relative to itself")
	}
	antiSide := DecideAntiSide(side)

	switch {
	case !fromBlock.HasMacro() && !toBlock.HasMacro():
		e.newSideConstraint(fromBlock, toBlock, side, target)
		return nil

	case fromBlock.HasMacro() && !toBlock.HasMacro():
		if err := e.extendMacro(fromBlock, toBlock, side); err != nil {
			return invalidConstraint(fromName, toName, side, "%s", errors.UserMessage(err))
		}
		return nil

	case !fromBlock.HasMacro() && toBlock.HasMacro():
		if err := e.extendMacro(toBlock, fromBlock, antiSide); err != nil {
			return invalidConstraint(fromName, toName, side, "%s", errors.UserMessage(err))
		}
		return nil

	case fromBlock.macro == toBlock.macro:
		macro := e.macros[fromBlock.macro.Int()]
		fromNode, toNode := fromBlock.node.Int(), toBlock.node.Int()
		if macro.SideIndex(fromNode, side) == toBlock.node && macro.SideIndex(toNode, antiSide) == fromBlock.node {
			return nil
		}
		if other, ok := macro.SideIndex(fromNode, side).Get(); ok {
			return invalidConstraint(fromName, toName, side,
				"constraint already exists between %q and %q", fromName, macro.Node(other).blockName)
		}
		return invalidConstraint(fromName, toName, side, "both blocks already belong to the same macro")
	}

	return e.joinMacros(fromBlock, toBlock, side)
}

// newSideConstraint creates two linked nodes, in a new macro or in target.
func (e *Engine) newSideConstraint(fromBlock, toBlock *RelativeBlock, side geom.Side, target Index) {
	macroIndex, ok := target.Get()
	if !ok {
		e.macros = append(e.macros, &RelativeMacro{})
		macroIndex = len(e.macros) - 1
	}
	macro := e.macros[macroIndex]

	fromNode := macro.add(fromBlock.name)
	toNode := macro.add(toBlock.name)
	macro.nodes[fromNode].deviceType = fromBlock.deviceType
	macro.nodes[toNode].deviceType = toBlock.deviceType
	macro.link(fromNode, toNode, side)

	fromBlock.setMembership(macroIndex, fromNode)
	toBlock.setMembership(macroIndex, toNode)
}

// extendMacro adds block as a new node on side of existing's node.
func (e *Engine) extendMacro(existing, block *RelativeBlock, side geom.Side) error {
	macroIndex := existing.macro.Int()
	macro := e.macros[macroIndex]
	node := existing.node.Int()

	if other, ok := macro.SideIndex(node, side).Get(); ok {
		return errors.New(errors.ErrCodeInvalidConstraint, "constraint already exists between %q and %q",
			existing.name, macro.Node(other).blockName)
	}
	offs := macro.offsets(node)
	dx, dy := side.Step()
	if other, taken := offs[[2]int{dx, dy}]; taken {
		return errors.New(errors.ErrCodeInvalidConstraint, "side %s of %q is already the cell of %q",
			side, existing.name, macro.Node(other).blockName)
	}

	added := macro.add(block.name)
	macro.nodes[added].deviceType = block.deviceType
	macro.link(node, added, side)
	block.setMembership(macroIndex, added)
	return nil
}

// joinMacros validates a constraint between two different macros and
// merges them.
func (e *Engine) joinMacros(fromBlock, toBlock *RelativeBlock, side geom.Side) error {
	fromMacro := e.macros[fromBlock.macro.Int()]
	toMacro := e.macros[toBlock.macro.Int()]
	fromNode, toNode := fromBlock.node.Int(), toBlock.node.Int()
	antiSide := DecideAntiSide(side)

	var conflicts []string
	if other, ok := fromMacro.SideIndex(fromNode, side).Get(); ok {
		conflicts = append(conflicts, fmt.Sprintf("constraint already exists between %q and %q", fromBlock.name, fromMacro.Node(other).blockName))
	}
	if other, ok := toMacro.SideIndex(toNode, antiSide).Get(); ok {
		conflicts = append(conflicts, fmt.Sprintf("constraint already exists between %q and %q", toBlock.name, toMacro.Node(other).blockName))
	}
	if len(conflicts) > 0 {
		return invalidConstraint(fromBlock.name, toBlock.name, side, "%s", strings.Join(conflicts, "; "))
	}

	fromOffs := fromMacro.offsets(fromNode)
	sx, sy := side.Step()
	for off, i := range toMacro.offsets(toNode) {
		if j, taken := fromOffs[[2]int{off[0] + sx, off[1] + sy}]; taken {
			return invalidConstraint(fromBlock.name, toBlock.name, side,
				"%q would share a cell with %q", toMacro.Node(i).blockName, fromMacro.Node(j).blockName)
		}
	}

	return e.mergeMacros(fromBlock, toBlock, side)
}

// mergeMacros moves every node of toBlock's macro into fromBlock's macro,
// links the two blocks on side and clears the emptied macro.
//
// Nodes are not copied. Every link of the old macro is re-issued through
// addSideConstraint by block name, visiting the old macro breadth-first from
// node 0 so that each re-issued pair after the first touches a node already
// moved and the moved nodes stay one connected piece.
func (e *Engine) mergeMacros(fromBlock, toBlock *RelativeBlock, side geom.Side) error {
	fromIndex := fromBlock.macro.Int()
	toMacro := e.macros[toBlock.macro.Int()]

	for _, n := range toMacro.nodes {
		e.byName[n.blockName].clearMembership()
	}

	var errs []error
	toMacro.walk(0, func(i, _, _ int) {
		n := toMacro.nodes[i]
		for _, s := range geom.Sides {
			j, ok := n.sides[s].Get()
			if !ok {
				continue
			}
			if err := e.addSideConstraint(n.blockName, toMacro.nodes[j].blockName, s, IndexOf(fromIndex)); err != nil {
				errs = append(errs, err)
			}
		}
	})
	if len(errs) > 0 {
		return errors.Wrap(errors.ErrCodeInternal, errors.Join(errs...), "merging macros of %q and %q", fromBlock.name, toBlock.name)
	}

	e.macros[fromIndex].link(fromBlock.node.Int(), toBlock.node.Int(), side)
	toMacro.Clear()
	return nil
}

func missingBlock(name string) error {
	return errors.New(errors.ErrCodeMissingBlockName, "block %q was not found in the block list", name)
}

func invalidConstraint(from, to string, side geom.Side, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConstraint, "ignoring constraint from %q to %q on side %s: %s",
		from, to, side, fmt.Sprintf(format, args...))
}
