package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// configSchema bounds every numeric tunable so a typo'd config fails at load
// time instead of producing garbage requests hours into a run.
const configSchema = `{
  "type": "object",
  "properties": {
    "api": {
      "type": "object",
      "properties": {
        "url": {"type": "string"},
        "key": {"type": "string"},
        "model": {"type": "string"},
        "timeout_seconds": {"type": "integer", "minimum": 1},
        "max_tokens": {"type": "integer", "minimum": 1},
        "temperature": {"type": "number", "minimum": 0, "maximum": 2},
        "repeat_penalty": {"type": "number", "minimum": 0},
        "presence_penalty": {"type": "number", "minimum": -2, "maximum": 2}
      }
    },
    "processing": {
      "type": "object",
      "properties": {
        "pdf_dpi": {"type": "integer", "minimum": 36, "maximum": 1200},
        "max_image_pixels": {"type": "integer", "minimum": 1},
        "jpeg_quality": {"type": "integer", "minimum": 1, "maximum": 100}
      }
    },
    "models": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "enable_thinking": {"type": "boolean"},
          "thinking_budget": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("config.schema.json", configSchema)

// Validate checks cfg against the embedded JSON schema.
func Validate(cfg *Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config for validation: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode config for validation: %w", err)
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
