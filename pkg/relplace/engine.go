package relplace

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
	"github.com/matzehuels/relplace/pkg/observability"
)

// Engine is a relative placement session. The host owns the engine and
// binds it to one fabric at a time through Reset or InitialPlace.
//
// An Engine must be used by a single goroutine. Every call runs to
// completion and none of them lock.
type Engine struct {
	logger *log.Logger
	rng    *rand.Rand
	hooks  observability.EngineHooks

	cfg    Config
	blocks []*RelativeBlock
	byName map[string]*RelativeBlock
	macros []*RelativeMacro

	view GridView

	// initialMasks dedups (origin, node, rotate) candidates of the macro
	// being placed by InitialPlace.
	initialMasks RotateMaskMap
	// fromMask and toMask track the rotations tried by Place.
	fromMask, toMask RotateMask
}

// New creates an engine with no blocks.
func New(opts Options) *Engine {
	hooks := opts.Hooks
	if hooks == nil {
		hooks = observability.Engine()
	}
	e := &Engine{
		logger:       newLogger(opts),
		rng:          newRand(opts),
		hooks:        hooks,
		byName:       make(map[string]*RelativeBlock),
		initialMasks: make(RotateMaskMap),
	}
	e.cfg.SetDefaults()
	return e
}

// Configure replaces the registry with blocks and applies their relative
// constraints in order.
//
// Constraints are applied best-effort: a failing constraint is logged and
// dropped and the remaining ones are still applied. The returned error
// joins every failure, so Configure fails if any constraint did.
func (e *Engine) Configure(cfg Config, blocks []BlockSpec) error {
	cfg.SetDefaults()
	e.cfg = cfg
	e.blocks = make([]*RelativeBlock, 0, len(blocks))
	e.byName = make(map[string]*RelativeBlock, len(blocks))
	e.macros = nil

	var errs []error
	for _, b := range blocks {
		if _, dup := e.byName[b.Name]; dup {
			errs = append(errs, errors.New(errors.ErrCodeInvalidDesign, "duplicate block %q in block list", b.Name))
			continue
		}
		rb := newRelativeBlock(b.Name)
		e.blocks = append(e.blocks, rb)
		e.byName[b.Name] = rb
	}

	for _, b := range blocks {
		for _, r := range b.Relative {
			err := e.AddSideConstraint(b.Name, r.Name, r.Side)
			if err == nil {
				continue
			}
			e.logger.Error("invalid relative placement constraint",
				"from", b.Name, "to", r.Name, "side", r.Side, "err", errors.UserMessage(err))
			e.hooks.OnConstraintRejected(b.Name, r.Name, r.Side.String(), err)
			errs = append(errs, err)
		}
	}

	e.logger.Debug("configured relative placement",
		"blocks", len(e.blocks), "macros", e.MacroCount(), "rotate", cfg.RotateEnable)
	return errors.Join(errs...)
}

// Rejected returns how many declared constraints the error returned by
// Configure rejected. Each rejection counts once, however many causes it
// names.
func Rejected(err error) int {
	n := 0
	for _, e := range errors.Split(err) {
		if errors.Is(e, errors.ErrCodeInvalidConstraint) || errors.Is(e, errors.ErrCodeMissingBlockName) {
			n++
		}
	}
	return n
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// Reset binds the engine to f, restores the pristine free-location pools,
// clears every movable block from the grid and re-derives block indices
// and node types. Every registered block must exist in f.
func (e *Engine) Reset(f *fabric.Fabric) error {
	if f == nil {
		return errors.New(errors.ErrCodeNotBound, "reset without a fabric")
	}
	e.view.bind(f)
	e.view.Reset()

	var errs []error
	for _, rb := range e.blocks {
		id, ok := f.BlockByName(rb.name)
		if !ok {
			err := missingBlock(rb.name)
			e.logger.Error("block missing from host block array", "block", rb.name, "err", errors.UserMessage(err))
			errs = append(errs, err)
			rb.deviceIndex, rb.deviceType = -1, nil
			continue
		}
		rb.deviceIndex = id
		rb.deviceType = f.Blocks[id].Type
		if rb.HasMacro() && f.Blocks[id].Fixed {
			errs = append(errs, errors.New(errors.ErrCodeInvalidConstraint,
				"block %q is fixed and cannot belong to a relative macro", rb.name))
		}
	}

	for _, m := range e.macros {
		for _, n := range m.nodes {
			n.point = geom.Invalid
			n.deviceType = nil
			if rb, ok := e.byName[n.blockName]; ok {
				n.deviceType = rb.deviceType
			}
		}
	}
	return errors.Join(errs...)
}

// IsValid reports whether at least one non-empty macro exists. Hosts may
// skip the engine entirely otherwise.
func (e *Engine) IsValid() bool {
	for _, m := range e.macros {
		if !m.IsEmpty() {
			return true
		}
	}
	return false
}

// Block returns the registered block with the given name.
func (e *Engine) Block(name string) (*RelativeBlock, bool) {
	b, ok := e.byName[name]
	return b, ok
}

// Blocks returns every registered block in registration order.
func (e *Engine) Blocks() []*RelativeBlock { return e.blocks }

// Macro returns macro i, which may be empty after a merge.
func (e *Engine) Macro(i int) *RelativeMacro { return e.macros[i] }

// Macros returns every macro slot, empty ones included.
func (e *Engine) Macros() []*RelativeMacro { return e.macros }

// MacroCount returns the number of non-empty macros.
func (e *Engine) MacroCount() int {
	n := 0
	for _, m := range e.macros {
		if !m.IsEmpty() {
			n++
		}
	}
	return n
}

// View returns the engine's grid view.
func (e *Engine) View() *GridView { return &e.view }

// SideIndex returns the node index linked on side of the named block's
// node.
func (e *Engine) SideIndex(name string, side geom.Side) Index {
	b, ok := e.byName[name]
	if !ok || !b.HasMacro() {
		return NoIndex
	}
	return e.macros[b.macro.Int()].SideIndex(b.node.Int(), side)
}

// nodeOf returns the macro node of a registered block.
func (e *Engine) nodeOf(b *RelativeBlock) *RelativeNode {
	return e.macros[b.macro.Int()].nodes[b.node.Int()]
}

// blockAt returns the registered block held at p, if any.
func (e *Engine) blockAt(p geom.Point) (*RelativeBlock, bool) {
	name, ok := e.view.BlockName(p)
	if !ok {
		return nil, false
	}
	return e.Block(name)
}

// macroAt returns the macro index of the block held at p.
func (e *Engine) macroAt(p geom.Point) Index {
	if b, ok := e.blockAt(p); ok {
		return b.macro
	}
	return NoIndex
}

func (e *Engine) randomRotate() geom.RotateMode {
	if !e.cfg.RotateEnable {
		return geom.R0
	}
	return geom.RotateMode(e.rng.IntN(geom.RotateCount))
}
