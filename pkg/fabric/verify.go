package fabric

import (
	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/geom"
)

// Verify checks that the grid and the block array agree: every placed
// block sits in a type-matching slot that names it, every occupied slot
// names a block located there, and tile usage counts occupied slots.
func (f *Fabric) Verify() error {
	var errs []error
	for id := range f.Blocks {
		b := &f.Blocks[id]
		if !b.Placed() {
			continue
		}
		p := b.Point()
		if !f.InGrid(p) {
			errs = append(errs, errors.New(errors.ErrCodeGridOutOfRange, "block %q at %s is outside the grid", b.Name, p))
			continue
		}
		tile := &f.Grid[p.X][p.Y]
		if tile.Type != b.Type {
			errs = append(errs, errors.New(errors.ErrCodeInternal, "block %q at %s sits on a tile of another type", b.Name, p))
		}
		if got := tile.Blocks[p.Z]; got != id {
			errs = append(errs, errors.New(errors.ErrCodeInternal, "block %q at %s but slot holds %d", b.Name, p, got))
		}
	}
	for x := 0; x < f.Nx; x++ {
		for y := 0; y < f.Ny; y++ {
			tile := &f.Grid[x][y]
			used := 0
			for z, id := range tile.Blocks {
				if id == Empty {
					continue
				}
				used++
				if id < 0 || id >= len(f.Blocks) {
					errs = append(errs, errors.New(errors.ErrCodeInternal, "slot %s holds unknown block %d", geom.Pt(x, y, z), id))
					continue
				}
				if p := f.Blocks[id].Point(); p != geom.Pt(x, y, z) {
					errs = append(errs, errors.New(errors.ErrCodeInternal, "slot %s holds %q located at %s", geom.Pt(x, y, z), f.Blocks[id].Name, p))
				}
			}
			if used != tile.Usage {
				errs = append(errs, errors.New(errors.ErrCodeInternal, "tile (%d,%d) usage %d, %d slots occupied", x, y, tile.Usage, used))
			}
		}
	}
	return errors.Join(errs...)
}

// Placed returns the number of blocks with a location.
func (f *Fabric) Placed() int {
	n := 0
	for i := range f.Blocks {
		if f.Blocks[i].Placed() {
			n++
		}
	}
	return n
}
