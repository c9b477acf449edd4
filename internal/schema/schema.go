// Package schema publishes JSON Schemas for the report types the CLI emits,
// so front ends can validate --json output.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Generate reflects a JSON Schema for Go type T from its json tags. The
// root type is expanded inline; nested types live under $defs.
func Generate[T any]() *jsonschema.Schema {
	var zero T
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	return r.Reflect(&zero)
}

// Properties flattens the top-level properties of T's schema into plain
// maps, resolving $ref to $defs where needed.
func Properties[T any]() map[string]any {
	s := Generate[T]()
	return schemaProperties(s, s.Definitions)
}

// schemaProperties converts an ordered map of properties into a plain
// map[string]any.
func schemaProperties(s *jsonschema.Schema, defs jsonschema.Definitions) map[string]any {
	if s.Properties == nil {
		return nil
	}
	props := make(map[string]any)
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		props[pair.Key] = propertySchema(pair.Value, defs)
	}
	return props
}

// propertySchema converts a single property schema to a serializable map.
func propertySchema(s *jsonschema.Schema, defs jsonschema.Definitions) map[string]any {
	s = resolve(s, defs)
	m := make(map[string]any)

	if s.Type != "" {
		m["type"] = s.Type
	}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if s.Format != "" {
		m["format"] = s.Format
	}

	// Nested object properties
	if s.Properties != nil {
		m["type"] = "object"
		m["properties"] = schemaProperties(s, defs)
		if len(s.Required) > 0 {
			m["required"] = s.Required
		}
	}

	// Array items
	if s.Items != nil {
		m["items"] = propertySchema(s.Items, defs)
	}

	return m
}

// resolve follows a "#/$defs/Name" reference.
func resolve(s *jsonschema.Schema, defs jsonschema.Definitions) *jsonschema.Schema {
	const prefix = "#/$defs/"
	if s.Ref == "" || len(s.Ref) <= len(prefix) || defs == nil {
		return s
	}
	if def, ok := defs[s.Ref[len(prefix):]]; ok {
		return def
	}
	return s
}

// GenerateJSON returns T's schema as indented JSON.
func GenerateJSON[T any]() ([]byte, error) {
	return json.MarshalIndent(Generate[T](), "", "  ")
}
