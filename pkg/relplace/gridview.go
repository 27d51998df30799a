package relplace

import (
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
)

// GridView is the engine's borrowed, non-owning window onto a host fabric.
// Queries outside the grid report "not present" instead of failing, which
// the legalizer relies on for border checks.
type GridView struct {
	f *fabric.Fabric
}

// bind attaches the view to f. The pristine pools live on the fabric, so
// rebinding to a fabric used before restores its own pools.
func (g *GridView) bind(f *fabric.Fabric) { g.f = f }

// Bound reports whether the view is attached to a fabric.
func (g *GridView) Bound() bool { return g.f != nil }

// Fabric returns the bound fabric.
func (g *GridView) Fabric() *fabric.Fabric { return g.f }

// Reset restores the pristine free-location pools, empties every slot not
// held by a fixed block and marks every movable block unplaced.
func (g *GridView) Reset() {
	f := g.f
	if f == nil {
		return
	}
	f.RestoreLegalPositions()

	for x := 0; x < f.Nx; x++ {
		for y := 0; y < f.Ny; y++ {
			tile := &f.Grid[x][y]
			for z := range tile.Blocks {
				tile.Blocks[z] = fabric.Empty
			}
			tile.Usage = 0
		}
	}
	for id := range f.Blocks {
		b := &f.Blocks[id]
		if !b.Fixed {
			b.SetPoint(geom.Invalid)
			continue
		}
		if p := b.Point(); f.InGrid(p) {
			f.Grid[p.X][p.Y].Blocks[p.Z] = id
			f.Grid[p.X][p.Y].Usage++
		}
	}
}

// InGrid reports whether p addresses an existing slot.
func (g *GridView) InGrid(p geom.Point) bool { return g.f != nil && g.f.InGrid(p) }

// Type returns the device type at p, or nil.
func (g *GridView) Type(p geom.Point) *fabric.Type {
	if !g.InGrid(p) {
		return nil
	}
	return g.f.Grid[p.X][p.Y].Type
}

// IsEmpty reports whether p is inside the grid and holds no block.
func (g *GridView) IsEmpty(p geom.Point) bool {
	return g.InGrid(p) && g.f.Grid[p.X][p.Y].Blocks[p.Z] == fabric.Empty
}

// IsOpen reports whether p is empty and of type t.
func (g *GridView) IsOpen(p geom.Point, t *fabric.Type) bool {
	return g.IsEmpty(p) && g.f.Grid[p.X][p.Y].Type == t
}

// BlockIndex returns the block held at p.
func (g *GridView) BlockIndex(p geom.Point) (int, bool) {
	if !g.InGrid(p) {
		return fabric.Empty, false
	}
	id := g.f.Grid[p.X][p.Y].Blocks[p.Z]
	return id, id != fabric.Empty
}

// BlockName returns the name of the block held at p.
func (g *GridView) BlockName(p geom.Point) (string, bool) {
	id, ok := g.BlockIndex(p)
	if !ok {
		return "", false
	}
	return g.f.Blocks[id].Name, true
}

// BlockPoint returns the host's location for block id.
func (g *GridView) BlockPoint(id int) geom.Point {
	if g.f == nil || id < 0 || id >= len(g.f.Blocks) {
		return geom.Invalid
	}
	return g.f.Blocks[id].Point()
}

// Occupy writes block id into slot p and updates the block's location.
func (g *GridView) Occupy(p geom.Point, id int) {
	tile := &g.f.Grid[p.X][p.Y]
	if tile.Blocks[p.Z] == fabric.Empty {
		tile.Usage++
	}
	tile.Blocks[p.Z] = id
	g.f.Blocks[id].SetPoint(p)
}

// MoveBlock updates only the host block array location of block id.
func (g *GridView) MoveBlock(id int, p geom.Point) { g.f.Blocks[id].SetPoint(p) }

// FreeCount returns the number of live pool entries for type t.
func (g *GridView) FreeCount(t *fabric.Type) int {
	if g.f == nil || t == nil || t.Index >= len(g.f.FreeLocations) {
		return 0
	}
	return g.f.FreeLocations[t.Index]
}

// LegalPos returns pool entry i of type t.
func (g *GridView) LegalPos(t *fabric.Type, i int) geom.Point { return g.f.LegalPos[t.Index][i] }

// RemoveLegalPos drops pool entry i of type t by swapping in the last live
// entry.
func (g *GridView) RemoveLegalPos(t *fabric.Type, i int) { g.f.RemoveLegalPos(t.Index, i) }
