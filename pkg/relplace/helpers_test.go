package relplace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
	"github.com/matzehuels/relplace/pkg/relplace"
)

// uniformFabric builds an nx by ny grid of capacity-1 "clb" tiles holding
// the named blocks, unplaced, with fresh free-location pools.
func uniformFabric(t *testing.T, nx, ny int, names ...string) *fabric.Fabric {
	t.Helper()
	f, err := fabric.New(nx, ny, []fabric.Type{{Name: "clb", Capacity: 1}})
	require.NoError(t, err)
	clb, _ := f.TypeByName("clb")
	require.NoError(t, f.FillRect(0, 0, nx-1, ny-1, clb))
	for _, n := range names {
		_, err := f.AddBlock(n, clb)
		require.NoError(t, err)
	}
	f.BuildLegalPositions()
	return f
}

// constraint is a compact "from has to on side" declaration for tests.
type constraint struct {
	from, to string
	side     geom.Side
}

// specs turns names and constraints into the Configure block list. Every
// constraint is declared on its from block.
func specs(names []string, cs ...constraint) []relplace.BlockSpec {
	out := make([]relplace.BlockSpec, len(names))
	idx := make(map[string]int, len(names))
	for i, n := range names {
		out[i] = relplace.BlockSpec{Name: n}
		idx[n] = i
	}
	for _, c := range cs {
		i := idx[c.from]
		out[i].Relative = append(out[i].Relative, relplace.Relative{Name: c.to, Side: c.side})
	}
	return out
}

func newEngine(seed uint64) *relplace.Engine {
	return relplace.New(relplace.Options{Seed: seed})
}

// configure builds an engine over names with the given constraints and
// fails the test on any constraint error.
func configure(t *testing.T, cfg relplace.Config, names []string, cs ...constraint) *relplace.Engine {
	t.Helper()
	e := newEngine(1)
	require.NoError(t, e.Configure(cfg, specs(names, cs...)))
	return e
}

// place puts each named block at the given point.
func place(t *testing.T, f *fabric.Fabric, at map[string]geom.Point) {
	t.Helper()
	for name, p := range at {
		id, ok := f.BlockByName(name)
		require.True(t, ok, name)
		require.NoError(t, f.PlaceBlock(id, p))
	}
}

func pointOf(t *testing.T, f *fabric.Fabric, name string) geom.Point {
	t.Helper()
	id, ok := f.BlockByName(name)
	require.True(t, ok, name)
	return f.Blocks[id].Point()
}

func manhattan(a, b geom.Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// nodeIndex returns the node index of a block, failing when it has none.
func nodeIndex(t *testing.T, e *relplace.Engine, name string) int {
	t.Helper()
	b, ok := e.Block(name)
	require.True(t, ok, name)
	i, ok := b.NodeIndex().Get()
	require.True(t, ok, "%s has no node", name)
	return i
}

// build registers names and then adds each constraint in the given order.
func build(t *testing.T, names []string, cs ...constraint) *relplace.Engine {
	t.Helper()
	e := configure(t, relplace.Config{}, names)
	for _, c := range cs {
		require.NoError(t, e.AddSideConstraint(c.from, c.to, c.side), "%s %s %s", c.from, c.side, c.to)
	}
	return e
}
