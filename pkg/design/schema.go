package design

import (
	"bytes"
	_ "embed"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/matzehuels/relplace/pkg/errors"
)

const schemaURL = "design.schema.json"

//go:embed schema/design.schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Schema returns the embedded design JSON Schema document.
func Schema() []byte { return bytes.Clone(schemaJSON) }

func validateSchema(v any) error {
	s, err := compiledSchema()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "compile design schema")
	}
	if err := s.Validate(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDesign, err, "design does not match schema")
	}
	return nil
}
