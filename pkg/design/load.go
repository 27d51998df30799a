package design

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/relplace/pkg/errors"
)

// Format is a design file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf returns the format implied by a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported design format %q", filepath.Ext(path))
}

// Load reads, validates and decodes the design file at path.
func Load(path string) (*Design, error) {
	d, _, err := LoadBytes(path)
	return d, err
}

// LoadBytes is Load that also returns the raw file content, which callers
// hash to key cached placements.
func LoadBytes(path string) (*Design, []byte, error) {
	if err := errors.ValidateDesignPath(path); err != nil {
		return nil, nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "design file %s not found", path)
		}
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	d, err := Parse(data, format)
	if err != nil {
		return nil, nil, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return d, data, nil
}

// Parse decodes a design document. The document is checked against the
// design schema first and then for cross references.
func Parse(data []byte, format Format) (*Design, error) {
	raw, err := decodeRaw(data, format)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var d Design
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &d)
	case FormatYAML:
		err = yaml.Unmarshal(data, &d)
	case FormatJSON:
		err = json.Unmarshal(data, &d)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s design", format)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// decodeRaw decodes data into generic JSON values so that the schema sees
// the same shapes for every format.
func decodeRaw(data []byte, format Format) (any, error) {
	var v any
	var err error
	switch format {
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		v = m
	case FormatYAML:
		err = yaml.Unmarshal(data, &v)
	case FormatJSON:
		err = json.Unmarshal(data, &v)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported design format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s design", format)
	}
	if format == FormatJSON {
		return v, nil
	}

	// TOML and YAML produce int64/int and time values; round-trip through
	// JSON to get the value kinds the validator expects.
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "normalize %s design", format)
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "normalize %s design", format)
	}
	return out, nil
}
