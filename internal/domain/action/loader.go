package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

const optionsSchemaURL = "https://markconsole.local/schemas/option-sets.json"

// optionsSchemaJSON describes the YAML document accepted by LoadOptionSets
const optionsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["option_sets"],
  "properties": {
    "option_sets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "options"],
        "properties": {
          "name": { "type": "string", "minLength": 1 },
          "searchable": { "type": "boolean" },
          "options": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["value"],
              "properties": {
                "value": { "type": "string", "minLength": 1 },
                "label_key": { "type": "string" }
              },
              "additionalProperties": false
            }
          }
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

type optionsDocument struct {
	OptionSets []OptionSet `yaml:"option_sets" json:"option_sets"`
}

var optionsSchema = mustCompileOptionsSchema()

func mustCompileOptionsSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(optionsSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("action: unmarshal option schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(optionsSchemaURL, doc); err != nil {
		panic(fmt.Sprintf("action: add option schema: %v", err))
	}
	sch, err := c.Compile(optionsSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("action: compile option schema: %v", err))
	}
	return sch
}

// ParseOptionSets decodes and validates a YAML option-set document
func ParseOptionSets(data []byte) ([]OptionSet, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse option sets: %w", err)
	}

	// Round-trip through JSON so the validator sees JSON-native types.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode option sets: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode option sets: %w", err)
	}
	if err := optionsSchema.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid option sets: %w", err)
	}

	var doc optionsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse option sets: %w", err)
	}
	return doc.OptionSets, nil
}

// LoadOptionSets reads an option-set document from disk
func LoadOptionSets(path string) ([]OptionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read option sets %s: %w", path, err)
	}
	return ParseOptionSets(data)
}

// MergeOptionSets replaces base sets by name with overrides and appends new ones
func MergeOptionSets(base, overrides []OptionSet) []OptionSet {
	out := make([]OptionSet, 0, len(base)+len(overrides))
	index := make(map[string]int, len(base))
	for _, s := range base {
		index[s.Name] = len(out)
		out = append(out, s)
	}
	for _, s := range overrides {
		if i, ok := index[s.Name]; ok {
			out[i] = s
			continue
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}
