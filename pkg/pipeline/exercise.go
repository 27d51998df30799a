package pipeline

import (
	"context"
	"math/rand/v2"

	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
	"github.com/matzehuels/relplace/pkg/relplace"
)

// ctxCheckInterval is how many proposals run between context checks.
const ctxCheckInterval = 1024

// ExerciseStats counts the outcomes of a swap exercise.
type ExerciseStats struct {
	Proposed   int // Random swap proposals drawn
	Candidates int // Proposals touching a macro
	Legal      int // Candidates the legalizer expanded
	Accepted   int // Legal proposals committed
	Moves      int // Block moves committed
}

// Exercise draws `swaps` random swap proposals and passes them to the engine
// the way an annealer would. Proposals that touch no macro are skipped, as
// the host handles those itself. Each legal proposal is committed with
// probability acceptRate and reverted otherwise.
func Exercise(ctx context.Context, e *relplace.Engine, f *fabric.Fabric, rng *rand.Rand, swaps int, acceptRate float64) (ExerciseStats, error) {
	var stats ExerciseStats
	var ba fabric.BlocksAffected
	for i := range swaps {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
		stats.Proposed++

		from, to := randomSlot(f, rng), randomSlot(f, rng)
		if !e.IsCandidate(from, to) {
			continue
		}
		stats.Candidates++

		ba.Reset()
		if !e.Place(from, to, &ba) {
			continue
		}
		stats.Legal++
		if rng.Float64() < acceptRate {
			f.Commit(&ba)
			stats.Accepted++
			stats.Moves += ba.Len()
		} else {
			f.Revert(&ba)
		}
	}
	return stats, nil
}

// randomSlot draws a tile uniformly and then one of its slots.
func randomSlot(f *fabric.Fabric, rng *rand.Rand) geom.Point {
	x, y := rng.IntN(f.Nx), rng.IntN(f.Ny)
	z := 0
	if n := len(f.Grid[x][y].Blocks); n > 1 {
		z = rng.IntN(n)
	}
	return geom.Pt(x, y, z)
}
