package dataset

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["features"],
  "properties": {
    "features": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "properties": {"type": ["object", "null"]},
          "geometry": {"type": ["object", "null"]}
        }
      }
    }
  }
}`

// Validator checks that a document has the shape the loader expects.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the document schema.
func NewValidator() (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling dataset schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate returns an error wrapping ErrInvalidDocument when data is not
// JSON or lacks a features array of objects.
func (v *Validator) Validate(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if result.Valid() {
		return nil
	}

	var msgs []string
	for i, e := range result.Errors() {
		if i == 3 {
			msgs = append(msgs, fmt.Sprintf("and %d more", len(result.Errors())-3))
			break
		}
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}
