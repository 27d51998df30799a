// Package pipeline runs relative placement end to end for the CLI and for
// regression runs.
//
// # Architecture
//
// A run consists of five stages:
//
//  1. Load: read and validate a design file, build the host fabric
//  2. Configure: turn the declared relative constraints into macros
//  3. Initial place: put every macro on the grid as a rigid unit
//  4. Fill: place the remaining blocks on random free slots
//  5. Exercise: drive random swap proposals through the legalizer the way
//     an annealer would, accepting or rejecting each legal proposal
//
// The result is verified (grid consistency and macro shapes) and captured
// as an [io.Placement] that can be exported or cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    DesignPath: "counter.toml",
//	    Swaps:      1000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.ExportJSON(result.Placement, "counter.placement.json")
//
// [io.Placement]: github.com/matzehuels/relplace/pkg/io.Placement
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relplace/pkg/cache"
	"github.com/matzehuels/relplace/pkg/design"
	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/fabric"
	pio "github.com/matzehuels/relplace/pkg/io"
	"github.com/matzehuels/relplace/pkg/relplace"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = relplace.DefaultSeed

	// DefaultAcceptRate is the share of legal swap proposals the exercise
	// commits. The rest are reverted.
	DefaultAcceptRate = 0.5

	// DefaultParallel bounds concurrent runs in RunSeeds.
	DefaultParallel = 4
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a placement run.
// Zero engine fields fall back to the values stored in the design file.
type Options struct {
	DesignPath string `json:"design_path"`

	// Engine options; zero keeps the design's value
	Rotate          bool   `json:"rotate,omitempty"`
	MaxPlaceRetries int    `json:"max_place_retries,omitempty"`
	MaxMacroRetries int    `json:"max_macro_retries,omitempty"`
	Seed            uint64 `json:"seed,omitempty"`

	// Exercise options
	Swaps      int     `json:"swaps,omitempty"`
	AcceptRate float64 `json:"accept_rate,omitempty"`

	// Strict fails the run when any declared constraint is rejected.
	Strict bool `json:"strict,omitempty"`

	// Refresh bypasses the cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a placement run.
type Result struct {
	// RunID uniquely identifies the run in logs and exports.
	RunID string

	// Design is the loaded design description.
	Design *design.Design

	// DesignHash is the content hash of the design file.
	DesignHash string

	// Fabric holds the final block locations.
	Fabric *fabric.Fabric

	// Engine is the configured engine, bound to Fabric.
	Engine *relplace.Engine

	// Placement is the exportable snapshot of Fabric.
	Placement *pio.Placement

	// ConstraintErrors holds the joined constraint rejections, if any.
	ConstraintErrors error

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the placement came from the cache.
	CacheHit bool
}

// Stats contains run statistics.
type Stats struct {
	Blocks      int
	Constraints int
	Rejected    int
	Macros      int
	MacroBlocks int
	Exercise    ExerciseStats

	LoadTime     time.Duration
	PlaceTime    time.Duration
	ExerciseTime time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults applies defaults to zero fields. Engine options are resolved
// against the design later, in Config.
func (o *Options) SetDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.AcceptRate == 0 {
		o.AcceptRate = DefaultAcceptRate
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option ranges.
func (o *Options) Validate() error {
	if o.DesignPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "design path is required")
	}
	if err := errors.ValidateDesignPath(o.DesignPath); err != nil {
		return err
	}
	if err := errors.ValidateRetryBudget("max place retries", o.MaxPlaceRetries); err != nil {
		return err
	}
	if err := errors.ValidateRetryBudget("max macro retries", o.MaxMacroRetries); err != nil {
		return err
	}
	if o.Swaps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "swaps must not be negative (got %d)", o.Swaps)
	}
	if o.AcceptRate < 0 || o.AcceptRate > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "accept rate must be within [0, 1] (got %g)", o.AcceptRate)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults, then validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Config merges the engine options over the design's stored configuration.
func (o *Options) Config(d *design.Design) relplace.Config {
	cfg := d.Config()
	if o.Rotate {
		cfg.RotateEnable = true
	}
	if o.MaxPlaceRetries > 0 {
		cfg.MaxPlaceRetries = o.MaxPlaceRetries
	}
	if o.MaxMacroRetries > 0 {
		cfg.MaxMacroRetries = o.MaxMacroRetries
	}
	return cfg
}

// PlacementKeyOpts returns cache key options for a run over d.
func (o *Options) PlacementKeyOpts(d *design.Design) cache.PlacementKeyOpts {
	cfg := o.Config(d)
	return cache.PlacementKeyOpts{
		Seed:            o.Seed,
		Rotate:          cfg.RotateEnable,
		MaxPlaceRetries: cfg.MaxPlaceRetries,
		MaxMacroRetries: cfg.MaxMacroRetries,
		Swaps:           o.Swaps,
		AcceptRate:      o.AcceptRate,
	}
}
