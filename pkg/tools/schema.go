package tools

import (
	"fmt"
	"math"
	"sort"

	"scoutgpt-be/internal/apperrors"
)

// Property is one input field of a tool schema, following JSON Schema
// object conventions.
type Property struct {
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// Schema describes the input object a tool accepts.
type Schema struct {
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

var knownPropertyTypes = map[string]struct{}{
	"string":  {},
	"integer": {},
	"number":  {},
	"boolean": {},
	"array":   {},
	"object":  {},
}

// Check verifies the schema itself is well formed. Run at registration so
// a bad tool definition fails startup rather than a live conversation.
func (s Schema) Check(toolName string) error {
	for name, prop := range s.Properties {
		if _, ok := knownPropertyTypes[prop.Type]; !ok {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("tools.%s.%s", toolName, name),
				fmt.Sprintf("unknown property type %q", prop.Type),
			)
		}
	}
	for _, req := range s.Required {
		if _, ok := s.Properties[req]; !ok {
			return apperrors.NewConfigurationError(
				fmt.Sprintf("tools.%s", toolName),
				fmt.Sprintf("required field %q is not declared as a property", req),
			)
		}
	}
	return nil
}

// Validate checks input against the schema and fills declared defaults for
// absent optional fields. The returned map is a copy; the caller's input
// is not mutated.
func (s Schema) Validate(toolName string, input map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(input))
	for k, v := range input {
		out[k] = v
	}

	for _, req := range s.Required {
		if _, ok := out[req]; !ok {
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("missing required field %q", req))
		}
	}

	for name, value := range out {
		prop, ok := s.Properties[name]
		if !ok {
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("unknown field %q", name))
		}
		coerced, err := checkType(toolName, name, prop, value)
		if err != nil {
			return nil, err
		}
		out[name] = coerced
	}

	for name, prop := range s.Properties {
		if _, ok := out[name]; !ok && prop.Default != nil {
			out[name] = prop.Default
		}
	}

	return out, nil
}

func checkType(toolName, field string, prop Property, value interface{}) (interface{}, error) {
	switch prop.Type {
	case "string":
		str, ok := value.(string)
		if !ok {
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("field %q must be a string", field))
		}
		if len(prop.Enum) > 0 && !contains(prop.Enum, str) {
			sorted := append([]string(nil), prop.Enum...)
			sort.Strings(sorted)
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("field %q must be one of %v", field, sorted))
		}
		return str, nil
	case "integer":
		// JSON numbers decode as float64; accept only integral values.
		switch n := value.(type) {
		case float64:
			if n != math.Trunc(n) {
				return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("field %q must be an integer", field))
			}
			return int(n), nil
		case int:
			return n, nil
		default:
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("field %q must be an integer", field))
		}
	case "number":
		switch n := value.(type) {
		case float64:
			return n, nil
		case int:
			return float64(n), nil
		default:
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("field %q must be a number", field))
		}
	case "boolean":
		b, ok := value.(bool)
		if !ok {
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("field %q must be a boolean", field))
		}
		return b, nil
	case "array":
		arr, ok := value.([]interface{})
		if !ok {
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("field %q must be an array", field))
		}
		return arr, nil
	case "object":
		obj, ok := value.(map[string]interface{})
		if !ok {
			return nil, apperrors.NewToolInputInvalid(toolName, fmt.Sprintf("field %q must be an object", field))
		}
		return obj, nil
	}
	return value, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
