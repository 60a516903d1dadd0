// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// seedSchema validates the structural shape of a catalog seed file before it
// touches the database.
var seedSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"version", "events"},
	"properties": map[string]interface{}{
		"version": map[string]interface{}{"type": "string"},
		"events": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"key", "name", "templates"},
				"properties": map[string]interface{}{
					"key":      map[string]interface{}{"type": "string", "pattern": `^[a-z_]+\.[a-z_]+$`},
					"name":     map[string]interface{}{"type": "string"},
					"isActive": map[string]interface{}{"type": "boolean"},
					"templates": map[string]interface{}{
						"type": "array",
						"items": map[string]interface{}{
							"type":     "object",
							"required": []interface{}{"recipientType"},
							"properties": map[string]interface{}{
								"recipientType": map[string]interface{}{
									"type": "string",
									"enum": []interface{}{"customer", "provider", "admin"},
								},
							},
						},
					},
				},
			},
		},
	},
}

// Load reads and validates a catalog seed file.
func Load(path string) (*CatalogSeed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	if err := Validate(doc); err != nil {
		return nil, err
	}

	var seed CatalogSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &seed, nil
}

// Validate checks a decoded seed document against the registry schema.
func Validate(doc interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(seedSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("invalid catalog seed: %s", strings.Join(problems, "; "))
	}
	return nil
}
