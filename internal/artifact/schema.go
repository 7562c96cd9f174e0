package artifact

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const documentSchema = `{
  "type": "object",
  "required": ["format", "version", "id", "schema", "labels", "scaler", "forest"],
  "properties": {
    "format": {"type": "string"},
    "version": {"type": "integer", "minimum": 1},
    "id": {"type": "string", "minLength": 1},
    "schema": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"enum": ["integer", "number"]}
        }
      }
    },
    "labels": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "scaler": {
      "type": "object",
      "required": ["mean", "scale"],
      "properties": {
        "mean": {"type": "array", "items": {"type": "number"}},
        "scale": {"type": "array", "items": {"type": "number"}}
      }
    },
    "forest": {
      "type": "object",
      "required": ["n_classes", "trees"],
      "properties": {
        "n_classes": {"type": "integer", "minimum": 1},
        "trees": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["nodes"],
            "properties": {
              "nodes": {
                "type": "array",
                "minItems": 1,
                "items": {
                  "type": "object",
                  "required": ["f"],
                  "properties": {
                    "f": {"type": "integer", "minimum": -1},
                    "t": {"type": "number"},
                    "l": {"type": "integer", "minimum": 0},
                    "r": {"type": "integer", "minimum": 0},
                    "v": {"type": "array", "items": {"type": "number", "minimum": 0, "maximum": 1}}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

func validateDocument(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate bundle: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("bundle does not match document schema: %s", strings.Join(errs, "; "))
	}
	return nil
}
