package relplace

import (
	"github.com/matzehuels/relplace/pkg/fabric"
	"github.com/matzehuels/relplace/pkg/geom"
)

// RelativeBlock ties a block name to its macro membership and, after
// Reset, to its entry in the host block array.
type RelativeBlock struct {
	name        string
	deviceIndex int
	deviceType  *fabric.Type
	macro       Index
	node        Index
}

func newRelativeBlock(name string) *RelativeBlock {
	return &RelativeBlock{name: name, deviceIndex: -1}
}

// Name returns the block name.
func (b *RelativeBlock) Name() string { return b.name }

// DeviceIndex returns the host block array index, or -1 before Reset.
func (b *RelativeBlock) DeviceIndex() int { return b.deviceIndex }

// DeviceType returns the block's device type, or nil before Reset.
func (b *RelativeBlock) DeviceType() *fabric.Type { return b.deviceType }

// MacroIndex returns the owning macro.
func (b *RelativeBlock) MacroIndex() Index { return b.macro }

// NodeIndex returns the block's node within its macro.
func (b *RelativeBlock) NodeIndex() Index { return b.node }

// HasMacro reports whether the block belongs to a macro.
func (b *RelativeBlock) HasMacro() bool { return b.macro.Valid() }

func (b *RelativeBlock) setMembership(macro, node int) {
	b.macro, b.node = IndexOf(macro), IndexOf(node)
}

func (b *RelativeBlock) clearMembership() {
	b.macro, b.node = NoIndex, NoIndex
}

// RelativeNode is one block's slot within a macro.
type RelativeNode struct {
	blockName  string
	deviceType *fabric.Type
	sides      [4]Index
	point      geom.Point
}

func newRelativeNode(blockName string) *RelativeNode {
	return &RelativeNode{blockName: blockName, point: geom.Invalid}
}

// BlockName returns the name of the block placed by this node.
func (n *RelativeNode) BlockName() string { return n.blockName }

// DeviceType returns the node's device type, derived on Reset.
func (n *RelativeNode) DeviceType() *fabric.Type { return n.deviceType }

// Side returns the neighbour node index on side s.
func (n *RelativeNode) Side(s geom.Side) Index {
	if !s.IsValid() {
		return NoIndex
	}
	return n.sides[s]
}

// Point returns the node's current or candidate grid point.
func (n *RelativeNode) Point() geom.Point { return n.point }

// RelativeMacro is a rigid group of nodes linked by side constraints. Nodes
// are only ever appended; Clear empties the macro but the engine keeps it
// in place so other macro indices never shift.
type RelativeMacro struct {
	nodes []*RelativeNode
}

// Len returns the number of nodes.
func (m *RelativeMacro) Len() int { return len(m.nodes) }

// IsEmpty reports whether the macro has no nodes.
func (m *RelativeMacro) IsEmpty() bool { return len(m.nodes) == 0 }

// Node returns node i.
func (m *RelativeMacro) Node(i int) *RelativeNode { return m.nodes[i] }

// SideIndex returns the neighbour of node i on side s.
func (m *RelativeMacro) SideIndex(i int, s geom.Side) Index {
	if i < 0 || i >= len(m.nodes) {
		return NoIndex
	}
	return m.nodes[i].Side(s)
}

// Clear removes every node.
func (m *RelativeMacro) Clear() { m.nodes = nil }

// Points returns the current point of every node, in node order.
func (m *RelativeMacro) Points() []geom.Point {
	pts := make([]geom.Point, len(m.nodes))
	for i, n := range m.nodes {
		pts[i] = n.point
	}
	return pts
}

func (m *RelativeMacro) add(blockName string) int {
	m.nodes = append(m.nodes, newRelativeNode(blockName))
	return len(m.nodes) - 1
}

// link records that node b lies on side s of node a.
func (m *RelativeMacro) link(a, b int, s geom.Side) {
	m.nodes[a].sides[s] = IndexOf(b)
	m.nodes[b].sides[geom.AntiSide(s)] = IndexOf(a)
}

// walk visits every node reachable from start breadth-first, passing each
// node's unrotated offset from start. Sides are followed in the order of
// geom.Sides.
func (m *RelativeMacro) walk(start int, visit func(i int, dx, dy int)) {
	type item struct{ i, dx, dy int }
	seen := make([]bool, len(m.nodes))
	seen[start] = true
	queue := []item{{start, 0, 0}}
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		visit(it.i, it.dx, it.dy)
		for _, s := range geom.Sides {
			next, ok := m.nodes[it.i].sides[s].Get()
			if !ok || seen[next] {
				continue
			}
			seen[next] = true
			sx, sy := s.Step()
			queue = append(queue, item{next, it.dx + sx, it.dy + sy})
		}
	}
}

// offsets returns the unrotated offset of every node reachable from start,
// keyed by offset.
func (m *RelativeMacro) offsets(start int) map[[2]int]int {
	out := make(map[[2]int]int, len(m.nodes))
	m.walk(start, func(i, dx, dy int) { out[[2]int{dx, dy}] = i })
	return out
}

// Set places node i at origin and derives every other node's point from the
// side graph under rotate. All nodes share the origin's z.
func (m *RelativeMacro) Set(i int, origin geom.Point, rotate geom.RotateMode) {
	if i < 0 || i >= len(m.nodes) {
		return
	}
	m.walk(i, func(j, dx, dy int) {
		rx, ry := rotate.Apply(dx, dy)
		m.nodes[j].point = geom.Pt(origin.X+rx, origin.Y+ry, origin.Z)
	})
}

// clone copies the macro's nodes so candidate placements can be evaluated
// without touching the live points.
func (m *RelativeMacro) clone() *RelativeMacro {
	c := &RelativeMacro{nodes: make([]*RelativeNode, len(m.nodes))}
	for i, n := range m.nodes {
		cp := *n
		c.nodes[i] = &cp
	}
	return c
}
