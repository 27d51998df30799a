// Package relplace keeps groups of blocks at fixed relative offsets on an
// FPGA device grid while a host simulated-annealing placer moves blocks
// around.
//
// # Macros
//
// A side constraint "block B lies on the right of block A" links two blocks.
// [Engine.Configure] folds every declared constraint into rigid groups
// called macros. Each macro is a tree of [RelativeNode] values joined by
// reciprocal side links; a constraint that conflicts with existing links,
// names an unknown block, or would stack two blocks on one relative cell is
// dropped and reported. Joining two macros re-issues the links of one into
// the other, so macro indices never shift: the emptied macro stays in the
// list as a placeholder.
//
// # Placement
//
// [Engine.InitialPlace] assigns each macro a random origin and orientation
// from the host's free-location pools, retrying within a budget.
// During annealing the host asks [Engine.IsCandidate] whether a proposed
// swap involves a macro and, if so, calls [Engine.Place], which expands the
// swap into the full list of block moves that keep every macro rigid, or
// rejects it.
//
// # Orientation
//
// When rotation is enabled a macro may be placed in any of the eight square
// orientations of [geom.RotateMode]. Otherwise only R0 is used, and origins
// drawn during initial placement are consumed from the pool.
//
// # Concurrency
//
// An [Engine] is single-threaded. The host owns the [fabric.Fabric] it is
// bound to and must not mutate it while an engine call is running.
package relplace
