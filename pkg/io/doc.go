// Package io provides JSON import and export for placement results.
//
// # JSON Format
//
// A placement records the grid size, the location of every block and,
// optionally, the macros the relative placement engine built:
//
//	{
//	  "version": 1,
//	  "run_id": "5f0c...",
//	  "design": "counter",
//	  "seed": 42,
//	  "width": 6,
//	  "height": 4,
//	  "blocks": [
//	    {"name": "pad0", "type": "io", "x": 0, "y": 0, "z": 1, "fixed": true},
//	    {"name": "q0", "type": "clb", "x": 2, "y": 1, "z": 0},
//	    {"name": "q1", "type": "clb", "x": 3, "y": 1, "z": 0}
//	  ],
//	  "macros": [["q0", "q1"]]
//	}
//
// Unplaced blocks carry -1 coordinates.
//
// # Export
//
// Use [FromFabric] to capture a fabric, then [ExportJSON] to write it to a
// file or [WriteJSON] to write to any io.Writer. Paths ending in ".zst"
// are written zstd compressed:
//
//	p := io.FromFabric(f)
//	err := io.ExportJSON(p, "placement.json.zst")
//
// # Import
//
// [ImportJSON] reads a file (decompressing ".zst"), [ReadJSON] any
// io.Reader. [Placement.Apply] moves the blocks of a fabric built from the
// same design to the recorded locations, all or nothing.
package io
