// Package design loads design description files and turns them into a
// host fabric plus the block list consumed by the relplace engine.
//
// A design names the device grid, its type table and typed regions, and
// the blocks to place. Blocks may be fixed to a location and may declare
// relative placement constraints on other blocks:
//
//	[grid]
//	width = 8
//	height = 4
//	default_type = "clb"
//
//	[[types]]
//	name = "clb"
//	capacity = 1
//
//	[[blocks]]
//	name = "a"
//	type = "clb"
//	relative = [{ block = "b", side = "right" }]
//
// The same document can be written as TOML, YAML or JSON; the format is
// chosen from the file extension. Every document is checked against an
// embedded JSON Schema before it is decoded, so structural mistakes are
// reported the same way regardless of format.
package design
