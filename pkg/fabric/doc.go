// Package fabric models the host side of a placement session: the device
// type table, the two dimensional grid of typed, capacity bounded tiles,
// the block array and the per-type free-location pools.
//
// A [Fabric] is owned by the host placer. The relative placement engine in
// package relplace only borrows it through a view that is rebound on every
// Reset, so everything here is plain data with exported fields plus a small
// set of helpers that keep the grid and the block array consistent:
//
//   - [Fabric.PlaceBlock] and [Fabric.UnplaceBlock] for direct placement
//   - [Fabric.BuildLegalPositions] to derive the free-location pools
//   - [Fabric.PlaceUnconstrained] to randomly place blocks no macro owns
//   - [Fabric.Commit] and [Fabric.Revert] to fold a [BlocksAffected] move
//     list into the grid, or to undo it when the annealer rejects a swap
//   - [Fabric.Verify] to check grid and block array agree
//
// Grid coordinates are (x, y, z) where z selects the occupancy slot within
// a tile. A tile slot holding [Empty] is free.
package fabric
