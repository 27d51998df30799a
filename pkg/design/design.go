package design

import (
	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
	"github.com/matzehuels/relplace/pkg/relplace"
)

// Design is a decoded design description.
type Design struct {
	Name      string     `toml:"name" yaml:"name" json:"name,omitempty"`
	Grid      Grid       `toml:"grid" yaml:"grid" json:"grid"`
	Types     []TypeDef  `toml:"types" yaml:"types" json:"types"`
	Regions   []Region   `toml:"regions" yaml:"regions" json:"regions,omitempty"`
	Placement Placement  `toml:"placement" yaml:"placement" json:"placement,omitempty"`
	Blocks    []BlockDef `toml:"blocks" yaml:"blocks" json:"blocks"`
}

// Grid sizes the device. DefaultType, when set, fills every tile before
// regions are applied.
type Grid struct {
	Width       int    `toml:"width" yaml:"width" json:"width"`
	Height      int    `toml:"height" yaml:"height" json:"height"`
	DefaultType string `toml:"default_type" yaml:"default_type" json:"default_type,omitempty"`
}

// TypeDef is one device type.
type TypeDef struct {
	Name     string `toml:"name" yaml:"name" json:"name"`
	Capacity int    `toml:"capacity" yaml:"capacity" json:"capacity"`
}

// Region assigns Type to the inclusive tile rectangle (X0,Y0)-(X1,Y1).
type Region struct {
	Type string `toml:"type" yaml:"type" json:"type"`
	X0   int    `toml:"x0" yaml:"x0" json:"x0"`
	Y0   int    `toml:"y0" yaml:"y0" json:"y0"`
	X1   int    `toml:"x1" yaml:"x1" json:"x1"`
	Y1   int    `toml:"y1" yaml:"y1" json:"y1"`
}

// Placement carries engine options stored with the design.
type Placement struct {
	Rotate          bool `toml:"rotate" yaml:"rotate" json:"rotate,omitempty"`
	MaxPlaceRetries int  `toml:"max_place_retries" yaml:"max_place_retries" json:"max_place_retries,omitempty"`
	MaxMacroRetries int  `toml:"max_macro_retries" yaml:"max_macro_retries" json:"max_macro_retries,omitempty"`
}

// BlockDef is one block of the design.
type BlockDef struct {
	Name     string        `toml:"name" yaml:"name" json:"name"`
	Type     string        `toml:"type" yaml:"type" json:"type"`
	Fixed    *Location     `toml:"fixed" yaml:"fixed" json:"fixed,omitempty"`
	Relative []RelativeDef `toml:"relative" yaml:"relative" json:"relative,omitempty"`
}

// Location is a fixed block location.
type Location struct {
	X int `toml:"x" yaml:"x" json:"x"`
	Y int `toml:"y" yaml:"y" json:"y"`
	Z int `toml:"z" yaml:"z" json:"z,omitempty"`
}

// RelativeDef declares that Block lies on Side of the enclosing block.
type RelativeDef struct {
	Block string `toml:"block" yaml:"block" json:"block"`
	Side  string `toml:"side" yaml:"side" json:"side"`
}

// Config returns the engine configuration stored with the design.
func (d *Design) Config() relplace.Config {
	cfg := relplace.Config{
		RotateEnable:    d.Placement.Rotate,
		MaxPlaceRetries: d.Placement.MaxPlaceRetries,
		MaxMacroRetries: d.Placement.MaxMacroRetries,
	}
	cfg.SetDefaults()
	return cfg
}

// ConstraintCount returns the number of declared relative constraints.
func (d *Design) ConstraintCount() int {
	n := 0
	for _, b := range d.Blocks {
		n += len(b.Relative)
	}
	return n
}

// Validate checks the cross references a schema cannot express: type
// names, block name uniqueness, region bounds, fixed locations and side
// names. Every problem is reported.
func (d *Design) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, errors.New(errors.ErrCodeInvalidDesign, format, args...))
	}

	types := make(map[string]int, len(d.Types))
	for _, t := range d.Types {
		if err := errors.ValidateBlockName(t.Name); err != nil {
			fail("type name: %s", errors.UserMessage(err))
			continue
		}
		if _, dup := types[t.Name]; dup {
			fail("duplicate type %q", t.Name)
		}
		if t.Capacity <= 0 {
			fail("type %q: capacity must be positive", t.Name)
		}
		types[t.Name] = t.Capacity
	}

	if d.Grid.Width <= 0 || d.Grid.Height <= 0 {
		fail("grid must be at least 1x1 (got %dx%d)", d.Grid.Width, d.Grid.Height)
	}
	if dt := d.Grid.DefaultType; dt != "" {
		if _, ok := types[dt]; !ok {
			fail("grid: unknown default type %q", dt)
		}
	}
	for i, r := range d.Regions {
		if _, ok := types[r.Type]; !ok {
			fail("region %d: unknown type %q", i, r.Type)
		}
		if r.X0 > r.X1 || r.Y0 > r.Y1 || r.X1 >= d.Grid.Width || r.Y1 >= d.Grid.Height {
			errs = append(errs, errors.New(errors.ErrCodeGridOutOfRange,
				"region %d: rectangle (%d,%d)-(%d,%d) outside %dx%d grid",
				i, r.X0, r.Y0, r.X1, r.Y1, d.Grid.Width, d.Grid.Height))
		}
	}

	names := make(map[string]bool, len(d.Blocks))
	for _, b := range d.Blocks {
		if err := errors.ValidateBlockName(b.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		if names[b.Name] {
			fail("duplicate block %q", b.Name)
		}
		names[b.Name] = true
		capacity, ok := types[b.Type]
		if !ok {
			errs = append(errs, errors.New(errors.ErrCodeMissingType, "block %q: unknown type %q", b.Name, b.Type))
		}
		if b.Fixed != nil {
			l := b.Fixed
			if l.X < 0 || l.Y < 0 || l.Z < 0 || l.X >= d.Grid.Width || l.Y >= d.Grid.Height || (ok && l.Z >= capacity) {
				errs = append(errs, errors.New(errors.ErrCodeGridOutOfRange,
					"block %q: fixed location %d,%d,%d outside grid", b.Name, l.X, l.Y, l.Z))
			}
		}
		for _, r := range b.Relative {
			if _, err := geom.ParseSide(r.Side); err != nil {
				fail("block %q: %v", b.Name, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Build creates the host fabric and the engine block list. Fixed blocks
// are placed and excluded from the free-location pools; every other block
// starts unplaced.
//
// Relative constraints naming blocks that do not exist are passed through
// unchanged: the engine reports them as MISSING_BLOCK_NAME and keeps going.
func (d *Design) Build() (*fabric.Fabric, []relplace.BlockSpec, error) {
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}

	types := make([]fabric.Type, len(d.Types))
	for i, t := range d.Types {
		types[i] = fabric.Type{Name: t.Name, Capacity: t.Capacity}
	}
	f, err := fabric.New(d.Grid.Width, d.Grid.Height, types)
	if err != nil {
		return nil, nil, err
	}
	if d.Grid.DefaultType != "" {
		t, _ := f.TypeByName(d.Grid.DefaultType)
		if err := f.FillRect(0, 0, d.Grid.Width-1, d.Grid.Height-1, t); err != nil {
			return nil, nil, err
		}
	}
	for _, r := range d.Regions {
		t, _ := f.TypeByName(r.Type)
		if err := f.FillRect(r.X0, r.Y0, r.X1, r.Y1, t); err != nil {
			return nil, nil, err
		}
	}

	specs := make([]relplace.BlockSpec, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		t, _ := f.TypeByName(b.Type)
		id, err := f.AddBlock(b.Name, t)
		if err != nil {
			return nil, nil, err
		}
		if b.Fixed != nil {
			if err := f.PlaceBlock(id, geom.Pt(b.Fixed.X, b.Fixed.Y, b.Fixed.Z)); err != nil {
				return nil, nil, err
			}
			f.Blocks[id].Fixed = true
		}

		spec := relplace.BlockSpec{Name: b.Name}
		for _, r := range b.Relative {
			side, _ := geom.ParseSide(r.Side)
			spec.Relative = append(spec.Relative, relplace.Relative{Name: r.Block, Side: side})
		}
		specs = append(specs, spec)
	}

	f.BuildLegalPositions()
	return f, specs, nil
}
