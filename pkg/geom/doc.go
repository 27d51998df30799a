// Package geom provides the small geometric vocabulary shared by the fabric
// model and the relative placement engine.
//
// A [Point] addresses one occupancy slot of the device grid: X and Y select the
// tile, Z selects the slot inside a tile. A [Side] names one of the four
// orthogonal neighbours of a tile and [AntiSide] returns its opposite.
//
// # Orientations
//
// Relative macros may be placed in any of eight orientations, the dihedral
// group of the square. [RotateMode] enumerates them:
//
//	R0     identity        MX     mirror about the x axis
//	R90    quarter turn    MXR90  mirror about x, then quarter turn
//	R180   half turn       MY     mirror about the y axis
//	R270   three quarters  MYR90  mirror about y, then quarter turn
//
// A [Transform] maps a point expressed relative to one origin onto another
// origin under a rotate mode. Only X and Y are rotated; the Z offset is carried
// through unchanged.
package geom
