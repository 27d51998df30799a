package fabric

import (
	"math/rand/v2"

	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/geom"
)

// BuildLegalPositions rebuilds the per-type free-location pools from the
// grid. Every slot of every typed tile is listed in x, y, z order, except
// slots already held by fixed blocks.
func (f *Fabric) BuildLegalPositions() {
	f.LegalPos = make([][]geom.Point, len(f.Types))
	f.FreeLocations = make([]int, len(f.Types))
	for x := 0; x < f.Nx; x++ {
		for y := 0; y < f.Ny; y++ {
			tile := &f.Grid[x][y]
			if tile.Type == nil {
				continue
			}
			for z, id := range tile.Blocks {
				if id != Empty && f.Blocks[id].Fixed {
					continue
				}
				t := tile.Type.Index
				f.LegalPos[t] = append(f.LegalPos[t], geom.Pt(x, y, z))
			}
		}
	}
	for t := range f.LegalPos {
		f.FreeLocations[t] = len(f.LegalPos[t])
	}
	f.pristine = clonePools(f.LegalPos)
}

// SnapshotLegalPositions records the current pools as the ones
// RestoreLegalPositions brings back. Hosts that fill LegalPos themselves
// call it once the pools are complete.
func (f *Fabric) SnapshotLegalPositions() {
	pools := make([][]geom.Point, len(f.LegalPos))
	for t, pos := range f.LegalPos {
		n := len(pos)
		if t < len(f.FreeLocations) {
			n = f.FreeLocations[t]
		}
		pools[t] = append([]geom.Point(nil), pos[:n]...)
	}
	f.pristine = pools
}

// RestoreLegalPositions resets every pool to its recorded pristine state,
// entry for entry. Without a recorded state the current pools are taken as
// pristine first.
func (f *Fabric) RestoreLegalPositions() {
	if f.pristine == nil {
		f.SnapshotLegalPositions()
	}
	if len(f.LegalPos) != len(f.pristine) {
		f.LegalPos = make([][]geom.Point, len(f.pristine))
	}
	if len(f.FreeLocations) != len(f.pristine) {
		f.FreeLocations = make([]int, len(f.pristine))
	}
	for t, pos := range f.pristine {
		f.LegalPos[t] = append(f.LegalPos[t][:0], pos...)
		f.FreeLocations[t] = len(pos)
	}
}

func clonePools(pools [][]geom.Point) [][]geom.Point {
	if pools == nil {
		return nil
	}
	out := make([][]geom.Point, len(pools))
	for t, pos := range pools {
		out[t] = append([]geom.Point(nil), pos...)
	}
	return out
}

// RemoveLegalPos drops entry i of type t's pool by moving the last live
// entry into its place.
func (f *Fabric) RemoveLegalPos(t, i int) {
	last := f.FreeLocations[t] - 1
	f.LegalPos[t][i] = f.LegalPos[t][last]
	f.FreeLocations[t] = last
}

// PlaceUnconstrained places every unplaced block for which skip returns
// false on a random free slot of its type. Pool entries are consumed as
// they are drawn, whether they turn out to be free or not.
func (f *Fabric) PlaceUnconstrained(rng *rand.Rand, skip func(id int) bool) error {
	for id := range f.Blocks {
		b := &f.Blocks[id]
		if b.Placed() || (skip != nil && skip(id)) {
			continue
		}
		t := b.Type.Index
		placed := false
		for f.FreeLocations[t] > 0 {
			i := rng.IntN(f.FreeLocations[t])
			p := f.LegalPos[t][i]
			f.RemoveLegalPos(t, i)
			if f.BlockAt(p) != Empty {
				continue
			}
			if err := f.PlaceBlock(id, p); err != nil {
				return err
			}
			placed = true
			break
		}
		if !placed {
			return errors.New(errors.ErrCodePlacementExhausted, "no free locations of type %q for block %q", b.Type.Name, b.Name)
		}
	}
	return nil
}
