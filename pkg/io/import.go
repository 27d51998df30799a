package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// ReadJSON decodes a placement from r.
//
// The input must be an object with the grid size and a "blocks" array:
//
//	{
//	  "version": 1,
//	  "width": 4, "height": 2,
//	  "blocks": [{"name": "a", "type": "clb", "x": 0, "y": 0, "z": 0}]
//	}
//
// Unplaced blocks carry -1 coordinates. ReadJSON rejects files written by
// a newer format version and does not close r.
func ReadJSON(r io.Reader) (*Placement, error) {
	var p Placement
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if p.Version > FormatVersion {
		return nil, fmt.Errorf("unsupported placement version %d (max %d)", p.Version, FormatVersion)
	}
	seen := make(map[string]bool, len(p.Blocks))
	for _, b := range p.Blocks {
		if seen[b.Name] {
			return nil, fmt.Errorf("block %s: duplicate entry", b.Name)
		}
		seen[b.Name] = true
	}
	return &p, nil
}

// ImportJSON reads a placement file written by [ExportJSON]. Files ending
// in ".zst" are decompressed.
func ImportJSON(path string) (*Placement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if !IsCompressed(path) {
		return ReadJSON(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	defer dec.Close()
	return ReadJSON(dec)
}
