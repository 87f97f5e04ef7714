package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds one compiled validator per Schema.Name.
var compiledSchemas sync.Map

// Validate checks raw against schema and returns *ErrInvalidResponse when
// it is not JSON or violates the schema. A nil schema accepts anything.
// Providers call it on every schema-constrained response; callers may use
// it on content from providers that do not.
func Validate(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("decode %s response: %w", schema.Name, err)}
	}

	sch, err := compile(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := sch.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("%s: %w", schema.Name, err)}
	}
	return nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	if v, ok := compiledSchemas.Load(schema.Name); ok {
		return v.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so Go-typed definitions (ints, []any) reach
	// the compiler as plain JSON values.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", schema.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", schema.Name, err)
	}

	url := "mem://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", schema.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", schema.Name, err)
	}

	actual, _ := compiledSchemas.LoadOrStore(schema.Name, sch)
	return actual.(*jsonschema.Schema), nil
}
