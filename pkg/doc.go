// Package pkg provides the libraries behind relplace, a relative placement
// constraint engine for FPGA placers.
//
// # Overview
//
// A design declares blocks and "block B lies on side S of block A"
// constraints. relplace merges those declarations into rigid macros, places
// every macro on a typed, capacity-bounded grid, and legalizes the swap
// proposals an annealer makes so that no macro is ever broken apart.
//
// The pkg directory is organized as follows:
//
//  1. [geom] - Points, sides and the eight macro orientations
//  2. [fabric] - The host grid, block list, free-slot pools and move lists
//  3. [relplace] - The engine: macro registry, initial placement, swap legalization
//  4. [design] - Design files (TOML, YAML, JSON) validated against a JSON Schema
//  5. [io] - Placement export and import, optionally zstd compressed
//  6. [pipeline] - Orchestration (load → configure → place → exercise)
//  7. [cache] - Placement caching keyed by design hash and options
//
// # Architecture
//
// The typical data flow through relplace:
//
//	Design file (.toml/.yaml/.json)
//	         ↓
//	    [design] package (schema validation, fabric build)
//	         ↓
//	    [relplace] package (macros, initial placement, legal swaps)
//	         ↓
//	    [io] package (placement JSON)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/relplace/pkg/design"
//	    "github.com/matzehuels/relplace/pkg/fabric"
//	    "github.com/matzehuels/relplace/pkg/relplace"
//	)
//
//	d, _ := design.Load("counter.toml")
//	f, blocks, _ := d.Build()
//
//	e := relplace.New(relplace.Options{Seed: 7})
//	_ = e.Configure(d.Config(), blocks) // rejected constraints are reported, not fatal
//	if err := e.InitialPlace(f); err != nil {
//	    return err
//	}
//
//	var ba fabric.BlocksAffected
//	if e.Place(from, to, &ba) {
//	    f.Commit(&ba)
//	}
//
// [geom]: github.com/matzehuels/relplace/pkg/geom
// [fabric]: github.com/matzehuels/relplace/pkg/fabric
// [relplace]: github.com/matzehuels/relplace/pkg/relplace
// [design]: github.com/matzehuels/relplace/pkg/design
// [io]: github.com/matzehuels/relplace/pkg/io
// [pipeline]: github.com/matzehuels/relplace/pkg/pipeline
// [cache]: github.com/matzehuels/relplace/pkg/cache
package pkg
