package fabric_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
)

// newUniform builds an nx by ny fabric of "clb" tiles with the given capacity.
func newUniform(t *testing.T, nx, ny, capacity int) *fabric.Fabric {
	t.Helper()
	f, err := fabric.New(nx, ny, []fabric.Type{{Name: "clb", Capacity: capacity}})
	require.NoError(t, err)
	clb, ok := f.TypeByName("clb")
	require.True(t, ok)
	require.NoError(t, f.FillRect(0, 0, nx-1, ny-1, clb))
	return f
}

func addBlocks(t *testing.T, f *fabric.Fabric, names ...string) {
	t.Helper()
	clb, _ := f.TypeByName("clb")
	for _, n := range names {
		_, err := f.AddBlock(n, clb)
		require.NoError(t, err)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := fabric.New(0, 3, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = fabric.New(2, 2, []fabric.Type{{Name: "clb"}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestSetTileOutOfRange(t *testing.T) {
	f := newUniform(t, 2, 2, 1)
	clb, _ := f.TypeByName("clb")
	err := f.SetTile(2, 0, clb)
	assert.True(t, errors.Is(err, errors.ErrCodeGridOutOfRange))
}

func TestAddBlock(t *testing.T) {
	f := newUniform(t, 2, 2, 1)
	addBlocks(t, f, "a")

	id, ok := f.BlockByName("a")
	require.True(t, ok)
	assert.Equal(t, 0, id)
	assert.False(t, f.Blocks[id].Placed())

	clb, _ := f.TypeByName("clb")
	_, err := f.AddBlock("a", clb)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDesign), "duplicate name")

	_, err = f.AddBlock("b", nil)
	assert.True(t, errors.Is(err, errors.ErrCodeMissingType))
}

func TestPlaceAndUnplace(t *testing.T) {
	f := newUniform(t, 3, 3, 2)
	addBlocks(t, f, "a", "b")

	require.NoError(t, f.PlaceBlock(0, geom.Pt(1, 1, 0)))
	require.NoError(t, f.PlaceBlock(1, geom.Pt(1, 1, 1)))
	assert.Equal(t, 2, f.Grid[1][1].Usage)
	assert.Equal(t, 0, f.BlockAt(geom.Pt(1, 1, 0)))

	err := f.PlaceBlock(1, geom.Pt(1, 1, 0))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDesign), "occupied slot")

	err = f.PlaceBlock(1, geom.Pt(1, 1, 2))
	assert.True(t, errors.Is(err, errors.ErrCodeGridOutOfRange), "z beyond capacity")

	// Moving a placed block frees its old slot.
	require.NoError(t, f.PlaceBlock(0, geom.Pt(2, 2, 0)))
	assert.Equal(t, fabric.Empty, f.BlockAt(geom.Pt(1, 1, 0)))
	assert.Equal(t, 1, f.Grid[1][1].Usage)
	require.NoError(t, f.Verify())

	f.UnplaceBlock(1)
	assert.Equal(t, 0, f.Grid[1][1].Usage)
	assert.Equal(t, 1, f.Placed())
	require.NoError(t, f.Verify())
}

func TestBlockAtOutsideGrid(t *testing.T) {
	f := newUniform(t, 2, 2, 1)
	for _, p := range []geom.Point{geom.Pt(-1, 0, 0), geom.Pt(0, 2, 0), geom.Pt(0, 0, 1), geom.Invalid} {
		assert.False(t, f.InGrid(p), "InGrid(%s)", p)
		assert.Equal(t, fabric.Empty, f.BlockAt(p), "BlockAt(%s)", p)
	}
	assert.Nil(t, f.Tile(geom.Pt(5, 5, 0)))
}

func TestBuildLegalPositionsSkipsFixed(t *testing.T) {
	f := newUniform(t, 2, 2, 1)
	addBlocks(t, f, "pad")
	f.Blocks[0].Fixed = true
	require.NoError(t, f.PlaceBlock(0, geom.Pt(0, 0, 0)))

	f.BuildLegalPositions()
	require.Len(t, f.FreeLocations, 1)
	assert.Equal(t, 3, f.FreeLocations[0])
	assert.NotContains(t, f.LegalPos[0], geom.Pt(0, 0, 0))
	assert.Equal(t, geom.Pt(0, 1, 0), f.LegalPos[0][0], "x-major order")
}

func TestRemoveLegalPos(t *testing.T) {
	f := newUniform(t, 3, 1, 1)
	f.BuildLegalPositions()

	f.RemoveLegalPos(0, 0)
	assert.Equal(t, 2, f.FreeLocations[0])
	assert.Equal(t, geom.Pt(2, 0, 0), f.LegalPos[0][0], "last entry swapped in")
	assert.Equal(t, geom.Pt(1, 0, 0), f.LegalPos[0][1])
}

func TestRestoreLegalPositions(t *testing.T) {
	f := newUniform(t, 3, 1, 1)
	f.BuildLegalPositions()
	want := append([]geom.Point(nil), f.LegalPos[0]...)

	f.RemoveLegalPos(0, 0)
	f.RemoveLegalPos(0, 0)
	c := f.Clone()
	f.RestoreLegalPositions()
	assert.Equal(t, []int{3}, f.FreeLocations)
	assert.Equal(t, want, f.LegalPos[0])

	// The clone keeps its drained pool but restores to the same pristine state.
	assert.Equal(t, []int{1}, c.FreeLocations)
	c.RestoreLegalPositions()
	assert.Equal(t, want, c.LegalPos[0])
}

func TestRestoreLegalPositionsWithoutBuild(t *testing.T) {
	f := newUniform(t, 2, 1, 1)
	f.LegalPos = [][]geom.Point{{geom.Pt(1, 0, 0), geom.Pt(0, 0, 0)}}
	f.FreeLocations = []int{2}
	f.SnapshotLegalPositions()

	f.RemoveLegalPos(0, 0)
	f.RestoreLegalPositions()
	assert.Equal(t, []int{2}, f.FreeLocations)
	assert.Equal(t, []geom.Point{geom.Pt(1, 0, 0), geom.Pt(0, 0, 0)}, f.LegalPos[0])
}

func TestPlaceUnconstrained(t *testing.T) {
	f := newUniform(t, 3, 3, 1)
	addBlocks(t, f, "a", "b", "c", "skipped")
	f.BuildLegalPositions()

	rng := rand.New(rand.NewPCG(7, 7^0xdeadbeef))
	err := f.PlaceUnconstrained(rng, func(id int) bool { return f.Blocks[id].Name == "skipped" })
	require.NoError(t, err)
	assert.Equal(t, 3, f.Placed())
	assert.False(t, f.Blocks[3].Placed())
	require.NoError(t, f.Verify())
}

func TestPlaceUnconstrainedExhausted(t *testing.T) {
	f := newUniform(t, 1, 2, 1)
	addBlocks(t, f, "a", "b", "c")
	f.BuildLegalPositions()

	rng := rand.New(rand.NewPCG(1, 2))
	err := f.PlaceUnconstrained(rng, nil)
	assert.True(t, errors.Is(err, errors.ErrCodePlacementExhausted))
}

func TestCommitSwap(t *testing.T) {
	f := newUniform(t, 4, 1, 1)
	addBlocks(t, f, "a", "b")
	require.NoError(t, f.PlaceBlock(0, geom.Pt(0, 0, 0)))
	require.NoError(t, f.PlaceBlock(1, geom.Pt(3, 0, 0)))

	// Swap a with b, then move b on to the empty cell (1,0).
	ba := &fabric.BlocksAffected{Moved: []fabric.MovedBlock{
		{Block: 0, Old: geom.Pt(0, 0, 0), New: geom.Pt(3, 0, 0)},
		{Block: 1, Old: geom.Pt(3, 0, 0), New: geom.Pt(0, 0, 0)},
	}}
	for _, m := range ba.Moved {
		f.Blocks[m.Block].SetPoint(m.New)
	}
	f.Commit(ba)
	require.NoError(t, f.Verify())
	assert.Equal(t, 1, f.BlockAt(geom.Pt(0, 0, 0)))
	assert.Equal(t, 0, f.BlockAt(geom.Pt(3, 0, 0)))

	ba = &fabric.BlocksAffected{Moved: []fabric.MovedBlock{
		{Block: 1, Old: geom.Pt(0, 0, 0), New: geom.Pt(1, 0, 0), ToEmpty: true, FromEmpty: true},
	}}
	f.Blocks[1].SetPoint(geom.Pt(1, 0, 0))
	f.Commit(ba)
	require.NoError(t, f.Verify())
	assert.Equal(t, fabric.Empty, f.BlockAt(geom.Pt(0, 0, 0)))
	assert.Equal(t, 0, f.Grid[0][0].Usage)
	assert.Equal(t, 1, f.Grid[1][0].Usage)
}

func TestRevert(t *testing.T) {
	f := newUniform(t, 2, 1, 1)
	addBlocks(t, f, "a")
	require.NoError(t, f.PlaceBlock(0, geom.Pt(0, 0, 0)))

	ba := &fabric.BlocksAffected{Moved: []fabric.MovedBlock{
		{Block: 0, Old: geom.Pt(0, 0, 0), New: geom.Pt(1, 0, 0), ToEmpty: true, FromEmpty: true},
	}}
	f.Blocks[0].SetPoint(geom.Pt(1, 0, 0))
	f.Revert(ba)
	assert.Equal(t, geom.Pt(0, 0, 0), f.Blocks[0].Point())
	require.NoError(t, f.Verify())

	ba.Reset()
	assert.Equal(t, 0, ba.Len())
}

func TestVerifyDetectsDrift(t *testing.T) {
	f := newUniform(t, 2, 1, 1)
	addBlocks(t, f, "a")
	require.NoError(t, f.PlaceBlock(0, geom.Pt(0, 0, 0)))

	f.Blocks[0].SetPoint(geom.Pt(1, 0, 0))
	err := f.Verify()
	require.Error(t, err)
	assert.GreaterOrEqual(t, errors.Count(err, errors.ErrCodeInternal), 2)
}

func TestCloneIsIndependent(t *testing.T) {
	f := newUniform(t, 2, 2, 1)
	addBlocks(t, f, "a")
	require.NoError(t, f.PlaceBlock(0, geom.Pt(0, 0, 0)))
	f.BuildLegalPositions()

	c := f.Clone()
	assert.Equal(t, f.Blocks[0].Point(), c.Blocks[0].Point())
	assert.Same(t, &c.Types[0], c.Blocks[0].Type, "type pointers remapped")
	assert.Same(t, &c.Types[0], c.Grid[1][1].Type)

	require.NoError(t, c.PlaceBlock(0, geom.Pt(1, 1, 0)))
	assert.Equal(t, 0, f.BlockAt(geom.Pt(0, 0, 0)), "original untouched")
	id, ok := c.BlockByName("a")
	assert.True(t, ok)
	assert.Equal(t, 0, id)
}
