package curriculum

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCurriculum []byte

// documentSchema constrains the YAML curriculum document before it is
// decoded into topics.
const documentSchema = `{
  "type": "object",
  "required": ["topics"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "topics": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "difficulty", "complexity"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "pattern": "^[a-z][a-z0-9_]*$"},
          "name": {"type": "string"},
          "category": {"type": "string"},
          "difficulty": {"enum": ["beginner", "intermediate", "advanced", "expert"]},
          "prerequisites": {"type": "array", "items": {"type": "string"}, "uniqueItems": true},
          "complexity": {"type": "string"},
          "depth": {"type": "integer", "minimum": 0, "maximum": 10},
          "key_algorithms": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("parse curriculum schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("curriculum.json", doc); err != nil {
		return nil, fmt.Errorf("add curriculum schema: %w", err)
	}
	return c.Compile("curriculum.json")
})

type document struct {
	Version int        `yaml:"version"`
	Topics  []topicDoc `yaml:"topics"`
}

type topicDoc struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Category      string   `yaml:"category"`
	Difficulty    string   `yaml:"difficulty"`
	Prerequisites []string `yaml:"prerequisites"`
	Complexity    string   `yaml:"complexity"`
	Depth         int      `yaml:"depth"`
	KeyAlgorithms []string `yaml:"key_algorithms"`
}

// Default builds the embedded eight-topic curriculum.
func Default() (*Graph, error) {
	return Parse(defaultCurriculum)
}

// LoadFile reads a YAML curriculum from path and builds its Graph.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load curriculum %s: %w", path, err)
	}
	return g, nil
}

// Parse validates a YAML curriculum document against its JSON Schema,
// decodes it and builds the Graph.
func Parse(data []byte) (*Graph, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}

	topics := make([]Topic, 0, len(doc.Topics))
	for _, td := range doc.Topics {
		t, err := td.topic()
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return Build(topics)
}

func (td topicDoc) topic() (Topic, error) {
	d, err := ParseDifficulty(td.Difficulty)
	if err != nil {
		return Topic{}, fmt.Errorf("topic %q: %w", td.ID, err)
	}
	c, err := ParseComplexity(td.Complexity)
	if err != nil {
		return Topic{}, fmt.Errorf("topic %q: %w", td.ID, err)
	}
	return Topic{
		ID:            td.ID,
		Name:          td.Name,
		Category:      Category(td.Category),
		Difficulty:    d,
		Prerequisites: td.Prerequisites,
		Complexity:    c,
		Depth:         td.Depth,
		KeyAlgorithms: td.KeyAlgorithms,
	}, nil
}

// validateDocument runs the YAML through JSON so the schema validator sees
// plain JSON values.
func validateDocument(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse curriculum: %w", err)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert curriculum: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("convert curriculum: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("curriculum document invalid: %w", err)
	}
	return nil
}
