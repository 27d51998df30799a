package relplace_test

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/relplace/pkg/errors"
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
	"github.com/matzehuels/relplace/pkg/relplace"
)

func TestInitialPlacePair(t *testing.T) {
	names := []string{"a", "b"}
	e := configure(t, relplace.Config{}, names, constraint{"a", "b", geom.SideRight})
	f := uniformFabric(t, 4, 4, names...)

	require.NoError(t, e.InitialPlace(f))

	a, b := pointOf(t, f, "a"), pointOf(t, f, "b")
	assert.Equal(t, a.X+1, b.X)
	assert.Equal(t, a.Y, b.Y)
	aID, _ := f.BlockByName("a")
	bID, _ := f.BlockByName("b")
	assert.Equal(t, aID, f.BlockAt(a))
	assert.Equal(t, bID, f.BlockAt(b))
	assert.Equal(t, 1, f.Grid[a.X][a.Y].Usage)
	assert.Equal(t, 1, f.Grid[b.X][b.Y].Usage)
	require.NoError(t, f.Verify())

	m := e.Macro(0)
	assert.ElementsMatch(t, []geom.Point{a, b}, m.Points(), "node points follow the host")
}

func TestInitialPlaceWithRotation(t *testing.T) {
	names := []string{"a", "b", "c"}
	blocks := specs(names,
		constraint{"a", "b", geom.SideRight},
		constraint{"b", "c", geom.SideUpper})

	for seed := uint64(1); seed <= 10; seed++ {
		e := relplace.New(relplace.Options{Seed: seed})
		require.NoError(t, e.Configure(relplace.Config{RotateEnable: true}, blocks))
		f := uniformFabric(t, 5, 5, names...)
		require.NoError(t, e.InitialPlace(f), "seed %d", seed)

		a, b, c := pointOf(t, f, "a"), pointOf(t, f, "b"), pointOf(t, f, "c")
		assert.Equal(t, 1, manhattan(a, b), "seed %d", seed)
		assert.Equal(t, 1, manhattan(b, c), "seed %d", seed)
		assert.Equal(t, 2, manhattan(a, c), "seed %d: the corner stays a corner", seed)
		require.NoError(t, f.Verify())
	}
}

func TestInitialPlaceConsumesPoolWithoutRotation(t *testing.T) {
	names := []string{"a", "b"}
	e := relplace.New(relplace.Options{Rand: rand.New(rand.NewPCG(9, 9))})
	require.NoError(t, e.Configure(relplace.Config{}, specs(names, constraint{"a", "b", geom.SideRight})))
	f := uniformFabric(t, 4, 4, names...)
	aNode := nodeIndex(t, e, "a")

	// Replay the engine's draws on a twin stream: a node, then a pool index
	// whose entry is dropped by moving the last live entry into its place.
	// a fits left of x=3 and b right of x=0.
	twin := rand.New(rand.NewPCG(9, 9))
	pool := append([]geom.Point(nil), f.LegalPos[0]...)
	free := len(pool)
	var wantA geom.Point
	for {
		node := twin.IntN(2)
		i := twin.IntN(free)
		origin := pool[i]
		pool[i] = pool[free-1]
		free--
		if node == aNode && origin.X < 3 {
			wantA = origin
			break
		}
		if node != aNode && origin.X > 0 {
			wantA = geom.Pt(origin.X-1, origin.Y, origin.Z)
			break
		}
	}

	require.NoError(t, e.InitialPlace(f))
	assert.Equal(t, free, f.FreeLocations[0])
	assert.Equal(t, pool[:free], f.LegalPos[0][:f.FreeLocations[0]])
	assert.Equal(t, wantA, pointOf(t, f, "a"))

	// Reset restores the pristine pool, entry for entry.
	pristine := uniformFabric(t, 4, 4, names...)
	require.NoError(t, e.Reset(f))
	assert.Equal(t, pristine.FreeLocations, f.FreeLocations)
	assert.Equal(t, pristine.LegalPos, f.LegalPos)
	assert.Equal(t, 0, f.Placed())
}

func TestResetRestoresPoolsAfterRebinding(t *testing.T) {
	names := []string{"a", "b"}
	e := configure(t, relplace.Config{}, names, constraint{"a", "b", geom.SideRight})
	fa := uniformFabric(t, 4, 4, names...)
	fb := uniformFabric(t, 4, 4, names...)
	pristine := uniformFabric(t, 4, 4, names...)

	require.NoError(t, e.InitialPlace(fa))
	rng := rand.New(rand.NewPCG(5, 5))
	require.NoError(t, fa.PlaceUnconstrained(rng, nil))
	require.Less(t, fa.FreeLocations[0], 16)

	require.NoError(t, e.Reset(fb))
	require.NoError(t, e.Reset(fa))
	assert.Equal(t, pristine.FreeLocations, fa.FreeLocations)
	assert.Equal(t, pristine.LegalPos, fa.LegalPos)

	// The restored pools are usable again.
	require.NoError(t, e.InitialPlace(fa))
	require.NoError(t, e.InitialPlace(fb))
	require.NoError(t, e.InitialPlace(fa))
	require.NoError(t, fa.Verify())
}

func TestInitialPlaceKeepsPoolWithRotation(t *testing.T) {
	names := []string{"a", "b"}
	e := configure(t, relplace.Config{RotateEnable: true}, names, constraint{"a", "b", geom.SideRight})
	f := uniformFabric(t, 4, 4, names...)

	require.NoError(t, e.InitialPlace(f))
	assert.Equal(t, 16, f.FreeLocations[0])
}

func TestInitialPlaceNoRoom(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	cs := []constraint{
		{"a", "b", geom.SideRight},
		{"b", "c", geom.SideRight},
		{"c", "d", geom.SideRight},
		{"d", "e", geom.SideRight},
	}

	tests := []struct {
		name string
		cfg  relplace.Config
	}{
		{"without rotation", relplace.Config{MaxPlaceRetries: 2}},
		{"with rotation", relplace.Config{RotateEnable: true, MaxPlaceRetries: 2, MaxMacroRetries: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(3)
			require.NoError(t, e.Configure(tt.cfg, specs(names, cs...)))
			f := uniformFabric(t, 4, 1, names...)

			err := e.InitialPlace(f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodePlacementExhausted), "got %v", err)

			// No partial placement is left behind.
			assert.Equal(t, 0, f.Placed())
			for x := 0; x < f.Nx; x++ {
				assert.Equal(t, 0, f.Grid[x][0].Usage)
			}
			require.NoError(t, f.Verify())
		})
	}
}

func TestInitialPlaceRespectsTypes(t *testing.T) {
	f, err := fabric.New(6, 3, []fabric.Type{{Name: "clb", Capacity: 1}, {Name: "dsp", Capacity: 1}})
	require.NoError(t, err)
	clb, _ := f.TypeByName("clb")
	dsp, _ := f.TypeByName("dsp")
	require.NoError(t, f.FillRect(0, 0, 5, 2, clb))
	require.NoError(t, f.FillRect(3, 0, 3, 2, dsp))
	_, err = f.AddBlock("logic", clb)
	require.NoError(t, err)
	_, err = f.AddBlock("mult", dsp)
	require.NoError(t, err)
	f.BuildLegalPositions()

	e := configure(t, relplace.Config{}, []string{"logic", "mult"},
		constraint{"logic", "mult", geom.SideRight})
	require.NoError(t, e.InitialPlace(f))

	logic, mult := pointOf(t, f, "logic"), pointOf(t, f, "mult")
	assert.Equal(t, 2, logic.X, "only the column left of the dsp column fits")
	assert.Equal(t, 3, mult.X)
	assert.Equal(t, logic.Y, mult.Y)
	require.NoError(t, f.Verify())
}

func TestResetIsIdempotent(t *testing.T) {
	names := []string{"a", "b", "c", "single"}
	e := configure(t, relplace.Config{}, names,
		constraint{"a", "b", geom.SideRight},
		constraint{"a", "c", geom.SideUpper})
	f := uniformFabric(t, 4, 4, names...)

	snapshot := func() []any {
		var out []any
		for _, b := range e.Blocks() {
			out = append(out, b.Name(), b.DeviceIndex(), b.DeviceType(), b.MacroIndex(), b.NodeIndex())
		}
		for _, m := range e.Macros() {
			for i := 0; i < m.Len(); i++ {
				n := m.Node(i)
				out = append(out, n.BlockName(), n.Point(), n.DeviceType())
				for _, s := range geom.Sides {
					out = append(out, n.Side(s))
				}
			}
		}
		return out
	}

	require.NoError(t, e.Reset(f))
	first := snapshot()
	grid := f.Clone()
	require.NoError(t, e.Reset(f))
	assert.Equal(t, first, snapshot())
	assert.Equal(t, grid.Grid, f.Grid)
	assert.Equal(t, grid.FreeLocations, f.FreeLocations)

	// Registry matches the host block array.
	for _, b := range e.Blocks() {
		id, ok := f.BlockByName(b.Name())
		require.True(t, ok)
		assert.Equal(t, id, b.DeviceIndex())
		assert.Same(t, f.Blocks[id].Type, b.DeviceType())
	}
}

func TestResetKeepsFixedBlocks(t *testing.T) {
	names := []string{"a", "b", "pad"}
	e := configure(t, relplace.Config{}, names, constraint{"a", "b", geom.SideRight})
	f := uniformFabric(t, 3, 3, names...)
	padID, _ := f.BlockByName("pad")
	f.Blocks[padID].Fixed = true
	require.NoError(t, f.PlaceBlock(padID, geom.Pt(1, 1, 0)))
	f.BuildLegalPositions()

	require.NoError(t, e.InitialPlace(f))
	require.NoError(t, e.Reset(f))

	assert.Equal(t, geom.Pt(1, 1, 0), pointOf(t, f, "pad"))
	assert.Equal(t, padID, f.BlockAt(geom.Pt(1, 1, 0)))
	assert.Equal(t, 1, f.Placed())
	require.NoError(t, f.Verify())
}

func TestResetReportsMissingBlocks(t *testing.T) {
	var logs bytes.Buffer
	e := relplace.New(relplace.Options{Logger: log.New(&logs)})
	require.NoError(t, e.Configure(relplace.Config{}, specs([]string{"a", "b", "ghost"},
		constraint{"a", "b", geom.SideRight})))
	f := uniformFabric(t, 3, 3, "a", "b")

	err := e.Reset(f)
	assert.True(t, errors.Is(err, errors.ErrCodeMissingBlockName))
	assert.Contains(t, err.Error(), `"ghost"`)
	assert.Contains(t, logs.String(), "block missing from host block array")
	assert.Contains(t, logs.String(), "block=ghost")
	assert.NotContains(t, logs.String(), "invalid relative placement constraint")

	err = e.InitialPlace(f)
	assert.True(t, errors.Is(err, errors.ErrCodeMissingBlockName))
}

func TestResetRejectsFixedMacroMember(t *testing.T) {
	e := configure(t, relplace.Config{}, []string{"a", "b"},
		constraint{"a", "b", geom.SideRight})
	f := uniformFabric(t, 3, 3, "a", "b")
	f.Blocks[0].Fixed = true

	err := e.Reset(f)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConstraint))
}

func TestResetWithoutFabric(t *testing.T) {
	e := newEngine(1)
	assert.True(t, errors.Is(e.Reset(nil), errors.ErrCodeNotBound))
}

func TestInitialPlaceDeterministic(t *testing.T) {
	names := []string{"a", "b", "c", "d", "x", "y"}
	cs := []constraint{
		{"a", "b", geom.SideRight},
		{"b", "c", geom.SideUpper},
		{"x", "y", geom.SideLower},
		{"c", "d", geom.SideRight},
	}
	run := func(seed uint64) []geom.Point {
		e := relplace.New(relplace.Options{Seed: seed})
		require.NoError(t, e.Configure(relplace.Config{RotateEnable: true}, specs(names, cs...)))
		f := uniformFabric(t, 6, 6, names...)
		require.NoError(t, e.InitialPlace(f))
		out := make([]geom.Point, len(f.Blocks))
		for i := range f.Blocks {
			out[i] = f.Blocks[i].Point()
		}
		return out
	}

	assert.Equal(t, run(7), run(7))
	assert.Equal(t, run(99), run(99))
}
