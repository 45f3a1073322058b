package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Response payloads are validated against these schemas before decoding so
// a malformed backend reply surfaces as ErrBadPayload instead of a half
// decoded struct.

var catalogSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"q_id", "domain", "text", "options"},
				"properties": map[string]any{
					"q_id":               map[string]any{"type": "string", "minLength": 1},
					"domain":             map[string]any{"type": "string", "minLength": 1},
					"text":               map[string]any{"type": "string"},
					"guidance":           map[string]any{"type": "string"},
					"evidence_policy_id": map[string]any{"type": "string"},
					"options": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type":     "object",
							"required": []any{"a_id", "text", "score"},
							"properties": map[string]any{
								"a_id":  map[string]any{"type": "string", "minLength": 1},
								"text":  map[string]any{"type": "string"},
								"score": map[string]any{"type": "integer", "minimum": 0},
								"tag":   map[string]any{"type": "string"},
							},
						},
					},
				},
			},
		},
		"evidence_policies": map[string]any{"type": "array"},
	},
	"required": []any{"questions"},
}

var resumptionSchema = map[string]any{
	"type":     "object",
	"required": []any{"responses", "reachable_path"},
	"properties": map[string]any{
		"responses": map[string]any{
			"type": "object",
			"additionalProperties": map[string]any{
				"anyOf": []any{
					map[string]any{"type": "string"},
					map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		},
		"deferred_ids":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"flagged_ids":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"reachable_path": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"sidebar_context": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []any{"q_id", "status"},
				"properties": map[string]any{
					"q_id":   map[string]any{"type": "string"},
					"domain": map[string]any{"type": "string"},
					"title":  map[string]any{"type": "string"},
					"status": map[string]any{"enum": []any{"locked", "unlocked", "hidden", "override"}},
				},
			},
		},
		"next_best_qid": map[string]any{"type": "string"},
		"logic_reason":  map[string]any{"type": "string"},
	},
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validatePayload checks raw JSON against the named schema definition.
func validatePayload(name string, definition map[string]any, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(name, definition)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(name string, definition map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value, not raw bytes.
	defBytes, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
