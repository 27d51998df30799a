package relplace

import (
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relplace/pkg/geom"
	"github.com/matzehuels/relplace/pkg/observability"
)

// Default values for Config and Options.
const (
	DefaultSeed            uint64 = 42
	DefaultMaxPlaceRetries        = 5
	DefaultMaxMacroRetries        = 100
)

// maxUntriedDraws bounds consecutive repeat draws during initial placement.
// Hitting it counts as one budgeted attempt, so a macro whose candidates are
// all tried still runs out of budget.
const maxUntriedDraws = 1024

// originDraws is the number of random pool draws before falling back to a
// linear scan for a free origin.
const originDraws = 64

// Options configures an Engine.
type Options struct {
	// Logger receives engine diagnostics. Nil discards them.
	Logger *log.Logger

	// Rand drives every random choice. When nil a PCG source seeded from
	// Seed is used.
	Rand *rand.Rand

	// Seed seeds the default source. Zero means DefaultSeed.
	Seed uint64

	// Hooks receives engine events. Nil uses observability.Engine().
	Hooks observability.EngineHooks
}

// Config holds the placement options passed to Configure.
type Config struct {
	RotateEnable    bool // Allow the eight orientations, not just R0
	MaxPlaceRetries int  // Full InitialPlace attempts, at least 1
	MaxMacroRetries int  // Budgeted attempts per macro node
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.MaxPlaceRetries <= 0 {
		c.MaxPlaceRetries = DefaultMaxPlaceRetries
	}
	if c.MaxMacroRetries <= 0 {
		c.MaxMacroRetries = DefaultMaxMacroRetries
	}
}

// Relative declares that block Name lies on Side of the declaring block.
type Relative struct {
	Name string
	Side geom.Side
}

// BlockSpec is one block of the host's block list with its relative
// placement constraints.
type BlockSpec struct {
	Name     string
	Relative []Relative
}

func newRand(opts Options) *rand.Rand {
	if opts.Rand != nil {
		return opts.Rand
	}
	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func newLogger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}
