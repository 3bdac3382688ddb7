package recovery

import (
	"encoding/json"
	"fmt"
)

// Validate maps a parsed value onto schema. The value must be an array;
// each element must be an object carrying every required field with the
// declared type. Validation stops at the first defect and reports its
// element index and field. Unknown fields are ignored and a null optional
// field counts as absent.
func Validate(value any, schema Schema) ([]Record, error) {
	elements, ok := value.([]any)
	if !ok {
		return nil, notAnArray(typeName(value))
	}

	records := make([]Record, 0, len(elements))
	for i, element := range elements {
		obj, ok := element.(map[string]any)
		if !ok {
			return nil, validationFailure(i, "", "expected object, got "+typeName(element))
		}

		record, err := validateElement(i, obj, schema)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func validateElement(index int, obj map[string]any, schema Schema) (Record, error) {
	fields := make([]FieldValue, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		fv := FieldValue{Name: field.Name, Type: field.Type}

		raw, ok := obj[field.Name]
		if !ok || raw == nil {
			if field.Required {
				return Record{}, validationFailure(index, field.Name, "missing required field")
			}
			fields = append(fields, fv)
			continue
		}

		switch field.Type {
		case FieldString:
			s, ok := raw.(string)
			if !ok {
				return Record{}, validationFailure(index, field.Name, "expected string, got "+typeName(raw))
			}
			fv.Str = s
		case FieldStringList:
			list, reason := stringList(raw)
			if reason != "" {
				return Record{}, validationFailure(index, field.Name, reason)
			}
			fv.List = list
		}
		fv.Present = true
		fields = append(fields, fv)
	}
	return Record{fields: fields}, nil
}

func stringList(raw any) ([]string, string) {
	items, ok := raw.([]any)
	if !ok {
		return nil, "expected list of strings, got " + typeName(raw)
	}
	list := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Sprintf("item %d: expected string, got %s", i, typeName(item))
		}
		list[i] = s
	}
	return list, ""
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
