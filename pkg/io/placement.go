package io

import (
	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
)

// FormatVersion is written into every export and checked on import.
const FormatVersion = 1

// Placement is the exported result of a placement run.
type Placement struct {
	Version int     `json:"version"`
	RunID   string  `json:"run_id,omitempty"`
	Design  string  `json:"design,omitempty"`
	Seed    uint64  `json:"seed,omitempty"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Blocks  []Block `json:"blocks"`

	// Macros lists the block names of every non-empty macro, in node order.
	Macros [][]string `json:"macros,omitempty"`
}

// Block is one placed (or unplaced) block.
type Block struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
	Fixed bool   `json:"fixed,omitempty"`
}

// FromFabric captures the current block locations of f.
func FromFabric(f *fabric.Fabric) *Placement {
	p := &Placement{
		Version: FormatVersion,
		Width:   f.Nx,
		Height:  f.Ny,
		Blocks:  make([]Block, len(f.Blocks)),
	}
	for i := range f.Blocks {
		b := &f.Blocks[i]
		p.Blocks[i] = Block{Name: b.Name, X: b.X, Y: b.Y, Z: b.Z, Fixed: b.Fixed}
		if b.Type != nil {
			p.Blocks[i].Type = b.Type.Name
		}
	}
	return p
}

// Apply moves the blocks of f to the locations recorded in p. Blocks of f
// that p does not mention keep their location; blocks recorded as
// unplaced are removed from the grid. Every problem is reported and
// nothing is applied unless all blocks can be placed.
func (p *Placement) Apply(f *fabric.Fabric) error {
	if p.Width != f.Nx || p.Height != f.Ny {
		return errors.New(errors.ErrCodeInvalidDesign,
			"placement is for a %dx%d grid, design has %dx%d", p.Width, p.Height, f.Nx, f.Ny)
	}

	var errs []error
	ids := make([]int, len(p.Blocks))
	for i, b := range p.Blocks {
		id, ok := f.BlockByName(b.Name)
		if !ok {
			errs = append(errs, errors.New(errors.ErrCodeMissingBlockName, "block %q not in design", b.Name))
			continue
		}
		if t := f.Blocks[id].Type; t == nil || t.Name != b.Type {
			errs = append(errs, errors.New(errors.ErrCodeInvalidDesign, "block %q: type %q does not match design", b.Name, b.Type))
			continue
		}
		ids[i] = id
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	trial := f.Clone()
	for _, id := range ids {
		trial.UnplaceBlock(id)
	}
	for i, b := range p.Blocks {
		pt := geom.Pt(b.X, b.Y, b.Z)
		if !pt.IsValid() {
			continue
		}
		if err := trial.PlaceBlock(ids[i], pt); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	for _, id := range ids {
		f.UnplaceBlock(id)
	}
	for i, b := range p.Blocks {
		if pt := geom.Pt(b.X, b.Y, b.Z); pt.IsValid() {
			if err := f.PlaceBlock(ids[i], pt); err != nil {
				return err
			}
		}
	}
	return nil
}
