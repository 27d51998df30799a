package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxBlockNameLength bounds block and type names coming from design files.
const maxBlockNameLength = 256

// ValidateBlockName validates a block (or type) name from a design file.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No whitespace (names are used as keys in logs and exports)
//   - Maximum length of 256 characters
func ValidateBlockName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBlockName, "block name cannot be empty")
	}

	if len(name) > maxBlockNameLength {
		return New(ErrCodeInvalidBlockName, "block name too long (max %d characters)", maxBlockNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBlockName, "block name contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidBlockName, "block name %q contains whitespace", name)
		}
	}

	return nil
}

// designExtensions lists the design file extensions relplace can load.
var designExtensions = map[string]bool{
	".toml": true,
	".yaml": true,
	".yml":  true,
	".json": true,
}

// ValidateDesignPath validates a design file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Extension must be .toml, .yaml, .yml or .json
func ValidateDesignPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !designExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported design format %q (must be one of: .toml, .yaml, .yml, .json)", ext)
	}

	return nil
}

// ValidateRetryBudget rejects negative retry counts. Zero is allowed and
// means "use the default".
func ValidateRetryBudget(name string, n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "%s must not be negative (got %d)", name, n)
	}
	return nil
}
