package io

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// compressedExt marks zstd-compressed placement files.
const compressedExt = ".zst"

// WriteJSON encodes a placement as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(p *Placement, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a placement to a JSON file at path. A path ending in
// ".zst" is zstd compressed.
func ExportJSON(p *Placement, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if !IsCompressed(path) {
		return WriteJSON(p, f)
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	bw := bufio.NewWriter(enc)
	if err := WriteJSON(p, bw); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close %s: %w", path, err)
	}
	return nil
}

// IsCompressed reports whether path names a zstd-compressed export.
func IsCompressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), compressedExt)
}
