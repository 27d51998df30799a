package fabric

import (
	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/geom"
)

// Empty marks a free tile slot.
const Empty = -1

// Type is one entry of the device type table.
type Type struct {
	Index    int    // Position in Fabric.Types
	Name     string // Type name, e.g. "clb" or "io"
	Capacity int    // Occupancy slots per tile of this type
}

// Tile is one grid cell.
type Tile struct {
	Type   *Type // nil for cells with no resource
	Blocks []int // Block index per slot, Empty when free
	Usage  int   // Number of occupied slots
}

// Block is one entry of the host block array.
type Block struct {
	Name    string
	Type    *Type
	X, Y, Z int  // Current location, -1 when unplaced
	Fixed   bool // Preplaced blocks never move
}

// Point returns the block location.
func (b *Block) Point() geom.Point { return geom.Pt(b.X, b.Y, b.Z) }

// SetPoint updates the block location fields.
func (b *Block) SetPoint(p geom.Point) { b.X, b.Y, b.Z = p.X, p.Y, p.Z }

// Placed reports whether the block has a location.
func (b *Block) Placed() bool { return b.Point().IsValid() }

// Fabric is the host's device grid plus block array.
type Fabric struct {
	Nx, Ny int
	Grid   [][]Tile // Indexed [x][y]
	Blocks []Block
	Types  []Type

	// FreeLocations[t] is the number of live entries at the front of
	// LegalPos[t]. Entries beyond it have been consumed.
	FreeLocations []int
	LegalPos      [][]geom.Point

	// pristine holds the pools as BuildLegalPositions left them.
	pristine [][]geom.Point

	byName map[string]int
}

// New creates an nx by ny fabric with no typed tiles and an empty block
// array. Type indices are assigned from their position in types.
func New(nx, ny int, types []Type) (*Fabric, error) {
	if nx <= 0 || ny <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "fabric dimensions must be positive (got %dx%d)", nx, ny)
	}
	f := &Fabric{
		Nx:     nx,
		Ny:     ny,
		Types:  make([]Type, len(types)),
		byName: make(map[string]int),
	}
	for i, t := range types {
		if t.Capacity <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "type %q: capacity must be positive", t.Name)
		}
		t.Index = i
		f.Types[i] = t
	}
	f.Grid = make([][]Tile, nx)
	for x := range f.Grid {
		f.Grid[x] = make([]Tile, ny)
	}
	return f, nil
}

// TypeByName looks up a type by name.
func (f *Fabric) TypeByName(name string) (*Type, bool) {
	for i := range f.Types {
		if f.Types[i].Name == name {
			return &f.Types[i], true
		}
	}
	return nil, false
}

// SetTile assigns a type to the tile at (x, y) and clears its slots.
func (f *Fabric) SetTile(x, y int, t *Type) error {
	if x < 0 || x >= f.Nx || y < 0 || y >= f.Ny {
		return errors.New(errors.ErrCodeGridOutOfRange, "tile (%d,%d) outside %dx%d grid", x, y, f.Nx, f.Ny)
	}
	tile := &f.Grid[x][y]
	tile.Type = t
	tile.Usage = 0
	tile.Blocks = nil
	if t != nil {
		tile.Blocks = make([]int, t.Capacity)
		for z := range tile.Blocks {
			tile.Blocks[z] = Empty
		}
	}
	return nil
}

// FillRect assigns t to every tile of the rectangle [x0,x1] x [y0,y1].
func (f *Fabric) FillRect(x0, y0, x1, y1 int, t *Type) error {
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			if err := f.SetTile(x, y, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddBlock appends an unplaced block and returns its index.
func (f *Fabric) AddBlock(name string, t *Type) (int, error) {
	if err := errors.ValidateBlockName(name); err != nil {
		return -1, err
	}
	if t == nil {
		return -1, errors.New(errors.ErrCodeMissingType, "block %q has no type", name)
	}
	if _, dup := f.byName[name]; dup {
		return -1, errors.New(errors.ErrCodeInvalidDesign, "duplicate block %q", name)
	}
	f.Blocks = append(f.Blocks, Block{Name: name, Type: t, X: -1, Y: -1, Z: -1})
	id := len(f.Blocks) - 1
	f.byName[name] = id
	return id, nil
}

// BlockByName returns the index of the named block.
func (f *Fabric) BlockByName(name string) (int, bool) {
	if f.byName == nil {
		f.reindex()
	}
	id, ok := f.byName[name]
	return id, ok
}

func (f *Fabric) reindex() {
	f.byName = make(map[string]int, len(f.Blocks))
	for i := range f.Blocks {
		f.byName[f.Blocks[i].Name] = i
	}
}

// InGrid reports whether p addresses an existing slot.
func (f *Fabric) InGrid(p geom.Point) bool {
	if p.X < 0 || p.X >= f.Nx || p.Y < 0 || p.Y >= f.Ny || p.Z < 0 {
		return false
	}
	return p.Z < len(f.Grid[p.X][p.Y].Blocks)
}

// Tile returns the tile holding p, or nil when p is outside the grid.
func (f *Fabric) Tile(p geom.Point) *Tile {
	if p.X < 0 || p.X >= f.Nx || p.Y < 0 || p.Y >= f.Ny {
		return nil
	}
	return &f.Grid[p.X][p.Y]
}

// BlockAt returns the block index stored at p, or Empty.
func (f *Fabric) BlockAt(p geom.Point) int {
	if !f.InGrid(p) {
		return Empty
	}
	return f.Grid[p.X][p.Y].Blocks[p.Z]
}

// PlaceBlock puts block id at p. The slot must be free and type-matching.
func (f *Fabric) PlaceBlock(id int, p geom.Point) error {
	if id < 0 || id >= len(f.Blocks) {
		return errors.New(errors.ErrCodeInvalidInput, "block index %d out of range", id)
	}
	b := &f.Blocks[id]
	if !f.InGrid(p) {
		return errors.New(errors.ErrCodeGridOutOfRange, "block %q: location %s outside grid", b.Name, p)
	}
	tile := &f.Grid[p.X][p.Y]
	if tile.Type != b.Type {
		return errors.New(errors.ErrCodeInvalidDesign, "block %q: type %s does not match tile type at %s", b.Name, b.Type.Name, p)
	}
	if occ := tile.Blocks[p.Z]; occ != Empty && occ != id {
		return errors.New(errors.ErrCodeInvalidDesign, "block %q: location %s already holds %q", b.Name, p, f.Blocks[occ].Name)
	}
	if b.Placed() {
		f.UnplaceBlock(id)
	}
	tile.Blocks[p.Z] = id
	tile.Usage++
	b.SetPoint(p)
	return nil
}

// UnplaceBlock removes block id from the grid.
func (f *Fabric) UnplaceBlock(id int) {
	b := &f.Blocks[id]
	p := b.Point()
	if f.InGrid(p) && f.Grid[p.X][p.Y].Blocks[p.Z] == id {
		f.Grid[p.X][p.Y].Blocks[p.Z] = Empty
		f.Grid[p.X][p.Y].Usage--
	}
	b.SetPoint(geom.Invalid)
}

// Clone returns a deep copy of the fabric. Type pointers in the copy refer
// to the copy's own type table.
func (f *Fabric) Clone() *Fabric {
	c := &Fabric{
		Nx:            f.Nx,
		Ny:            f.Ny,
		Types:         append([]Type(nil), f.Types...),
		Blocks:        append([]Block(nil), f.Blocks...),
		FreeLocations: append([]int(nil), f.FreeLocations...),
		LegalPos:      make([][]geom.Point, len(f.LegalPos)),
	}
	remap := func(t *Type) *Type {
		if t == nil {
			return nil
		}
		return &c.Types[t.Index]
	}
	for i := range c.Blocks {
		c.Blocks[i].Type = remap(c.Blocks[i].Type)
	}
	for i, pos := range f.LegalPos {
		c.LegalPos[i] = append([]geom.Point(nil), pos...)
	}
	c.pristine = clonePools(f.pristine)
	c.Grid = make([][]Tile, f.Nx)
	for x := range f.Grid {
		c.Grid[x] = make([]Tile, f.Ny)
		for y, tile := range f.Grid[x] {
			c.Grid[x][y] = Tile{
				Type:   remap(tile.Type),
				Blocks: append([]int(nil), tile.Blocks...),
				Usage:  tile.Usage,
			}
		}
	}
	c.reindex()
	return c
}
