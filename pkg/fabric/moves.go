package fabric

import "github.com/matzehuels/relplace/pkg/geom"

// MovedBlock records one block relocation of a proposed swap.
type MovedBlock struct {
	Block     int        // Index into Fabric.Blocks
	Old, New  geom.Point // Location before and after the move
	ToEmpty   bool       // New was empty before the swap
	FromEmpty bool       // Old is empty after the swap
}

// BlocksAffected collects the moves of one proposed swap.
type BlocksAffected struct {
	Moved []MovedBlock
}

// Reset empties the move list, keeping its storage.
func (ba *BlocksAffected) Reset() { ba.Moved = ba.Moved[:0] }

// Len returns the number of moved blocks.
func (ba *BlocksAffected) Len() int { return len(ba.Moved) }

// Commit folds an accepted move list into the grid. Block coordinates are
// expected to already hold the new locations.
func (f *Fabric) Commit(ba *BlocksAffected) {
	for _, m := range ba.Moved {
		if !m.FromEmpty {
			continue
		}
		tile := &f.Grid[m.Old.X][m.Old.Y]
		if tile.Blocks[m.Old.Z] == m.Block {
			tile.Blocks[m.Old.Z] = Empty
			tile.Usage--
		}
	}
	for _, m := range ba.Moved {
		tile := &f.Grid[m.New.X][m.New.Y]
		if m.ToEmpty {
			tile.Usage++
		}
		tile.Blocks[m.New.Z] = m.Block
		f.Blocks[m.Block].SetPoint(m.New)
	}
}

// Revert restores the block coordinates of a rejected move list. The grid
// itself is untouched until Commit, so nothing else needs undoing.
func (f *Fabric) Revert(ba *BlocksAffected) {
	for i := len(ba.Moved) - 1; i >= 0; i-- {
		m := ba.Moved[i]
		f.Blocks[m.Block].SetPoint(m.Old)
	}
}
