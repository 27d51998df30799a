package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/relplace/pkg/cache"
	"github.com/matzehuels/relplace/pkg/design"
	"github.com/matzehuels/relplace/pkg/errors"
	pio "github.com/matzehuels/relplace/pkg/io"
	"github.com/matzehuels/relplace/pkg/observability"
	"github.com/matzehuels/relplace/pkg/relplace"
)

// fillSeedMix separates the host's random stream from the engine's.
const fillSeedMix = 0x9e3779b97f4a7c15

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different options; every run builds its own fabric and engine.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → place → exercise pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	d, hash, err := LoadDesign(ctx, opts.DesignPath)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)
	r.Logger.Info("loaded design",
		"name", d.Name,
		"blocks", len(d.Blocks),
		"constraints", d.ConstraintCount(),
		"duration", loadTime)

	result, err := r.Prepare(d, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime

	key := r.Keyer.PlacementKey(hash, opts.PlacementKeyOpts(d))
	if !opts.Refresh && r.restore(ctx, result, key) {
		r.Logger.Info("using cached placement", "run", result.RunID)
		return result, nil
	}

	if err := r.Place(ctx, result, opts); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pio.WriteJSON(result.Placement, &buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLPlacement); err == nil {
			observability.Cache().OnCacheSet(ctx, "placement", buf.Len())
		}
	}
	return result, nil
}

// Prepare builds the fabric and configures a fresh engine for d. Rejected
// constraints are logged and kept in Result.ConstraintErrors; in strict
// mode they fail the run.
func (r *Runner) Prepare(d *design.Design, hash string, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	f, specs, err := d.Build()
	if err != nil {
		return nil, err
	}
	e := relplace.New(relplace.Options{
		Logger: opts.Logger,
		Seed:   opts.Seed,
	})

	result := &Result{
		RunID:      uuid.NewString(),
		Design:     d,
		DesignHash: hash,
		Fabric:     f,
		Engine:     e,
	}
	result.Stats.Blocks = len(f.Blocks)
	result.Stats.Constraints = d.ConstraintCount()

	if err := e.Configure(opts.Config(d), specs); err != nil {
		if opts.Strict {
			return nil, err
		}
		result.ConstraintErrors = err
		result.Stats.Rejected = relplace.Rejected(err)
		opts.Logger.Warn("ignored relative placement constraints", "rejected", result.Stats.Rejected)
	}
	for _, m := range e.Macros() {
		if !m.IsEmpty() {
			result.Stats.Macros++
			result.Stats.MacroBlocks += m.Len()
		}
	}
	return result, nil
}

// Place runs initial placement, fills in the remaining blocks, runs the
// swap exercise and verifies the outcome.
func (r *Runner) Place(ctx context.Context, result *Result, opts Options) error {
	r.applyLogger(&opts)
	opts.SetDefaults()
	hooks := observability.Pipeline()
	e, f := result.Engine, result.Fabric

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^fillSeedMix))
	placeStart := time.Now()
	hooks.OnInitialPlaceStart(ctx, result.Stats.Macros)
	err := e.InitialPlace(f)
	if err == nil {
		err = f.PlaceUnconstrained(rng, nil)
	}
	result.Stats.PlaceTime = time.Since(placeStart)
	hooks.OnInitialPlaceComplete(ctx, result.Stats.Macros, result.Stats.PlaceTime, err)
	if err != nil {
		return err
	}
	r.Logger.Info("placed design",
		"macros", result.Stats.Macros,
		"blocks", f.Placed(),
		"duration", result.Stats.PlaceTime)

	exerciseStart := time.Now()
	result.Stats.Exercise, err = Exercise(ctx, e, f, rng, opts.Swaps, opts.AcceptRate)
	result.Stats.ExerciseTime = time.Since(exerciseStart)
	hooks.OnExerciseComplete(ctx, result.Stats.Exercise.Proposed, result.Stats.Exercise.Accepted, result.Stats.ExerciseTime, err)
	if err != nil {
		return fmt.Errorf("exercise: %w", err)
	}
	if opts.Swaps > 0 {
		r.Logger.Info("ran swap exercise",
			"proposed", result.Stats.Exercise.Proposed,
			"legal", result.Stats.Exercise.Legal,
			"accepted", result.Stats.Exercise.Accepted,
			"duration", result.Stats.ExerciseTime)
	}

	if err := errors.Join(f.Verify(), e.Check(f)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "placement failed verification")
	}
	result.Placement = snapshot(result, opts.Seed)
	return nil
}

// restore applies a cached placement to result's fabric. It reports false
// when the entry is missing or no longer matches the design.
func (r *Runner) restore(ctx context.Context, result *Result, key string) bool {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "placement")
		return false
	}
	p, err := pio.ReadJSON(bytes.NewReader(data))
	if err == nil {
		err = p.Apply(result.Fabric)
	}
	if err == nil {
		err = errors.Join(result.Fabric.Verify(), result.Engine.Check(result.Fabric))
	}
	if err != nil {
		r.Logger.Debug("ignoring unusable cached placement", "err", err)
		hooks.OnCacheMiss(ctx, "placement")
		return false
	}
	hooks.OnCacheHit(ctx, "placement")
	result.RunID = p.RunID
	result.Placement = p
	result.CacheHit = true
	return true
}

// snapshot captures the fabric of result for export.
func snapshot(result *Result, seed uint64) *pio.Placement {
	p := pio.FromFabric(result.Fabric)
	p.RunID = result.RunID
	p.Design = result.Design.Name
	p.Seed = seed
	for _, m := range result.Engine.Macros() {
		if m.IsEmpty() {
			continue
		}
		names := make([]string, m.Len())
		for i := range names {
			names[i] = m.Node(i).BlockName()
		}
		p.Macros = append(p.Macros, names)
	}
	return p
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
