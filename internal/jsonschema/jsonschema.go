package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Schema is the subset of JSON Schema used to describe the records a model
// is asked to return: a top-level array of flat objects whose properties are
// strings or lists of strings.
type Schema struct {
	// Type is the JSON type ("array", "object", "string").
	Type        string             `json:"type,omitempty"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	// Items is the element schema of an array.
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties is left unset: extra fields in a reply are tolerated.
	AdditionalProperties any `json:"additionalProperties,omitempty"`

	// PropertyOrder lists Properties in struct declaration order.
	PropertyOrder []string `json:"-"`
}

// Generate derives an object schema from the struct type T. Only exported
// fields of kind string or []string are supported; any other kind is an
// error, since the record validator could not check it.
//
// A field is required unless its json tag carries omitempty. A jsonschema
// tag may add "description=..." and force "required".
func Generate[T any]() (*Schema, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("jsonschema: %s is not a struct", t)
	}

	schema := &Schema{Type: "object", Title: t.Name(), Properties: map[string]*Schema{}}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		prop, err := fieldSchema(field.Type)
		if err != nil {
			return nil, fmt.Errorf("jsonschema: field %s: %w", field.Name, err)
		}
		requiredByTag := parseTag(field.Tag, prop)

		schema.Properties[name] = prop
		schema.PropertyOrder = append(schema.PropertyOrder, name)
		if !omitEmpty || requiredByTag {
			schema.Required = append(schema.Required, name)
		}
	}
	return schema, nil
}

// ArrayOf wraps an element schema into an array schema.
func ArrayOf(items *Schema, description string) *Schema {
	return &Schema{Type: "array", Description: description, Items: items}
}

// IsRequired reports whether name is listed in Required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

func jsonName(field reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = field.Name
	if tag == "" {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func fieldSchema(t reflect.Type) (*Schema, error) {
	switch {
	case t.Kind() == reflect.String:
		return &Schema{Type: "string"}, nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String:
		return &Schema{Type: "array", Items: &Schema{Type: "string"}}, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

// parseTag applies a jsonschema struct tag to prop. Supported keys:
// "description=xxx" and the bare flag "required". Descriptions cannot
// contain commas.
func parseTag(tag reflect.StructTag, prop *Schema) bool {
	raw := tag.Get("jsonschema")
	if raw == "" {
		return false
	}

	required := false
	for _, item := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(item, "=")
		switch {
		case found && key == "description":
			prop.Description = value
		case !found && key == "required":
			required = true
		}
	}
	return required
}

// JsonString converts the Schema to its JSON representation.
// indent: optional bool parameter. If true, formats JSON with indentation.
func (s *Schema) JsonString(indent ...bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(indent) > 0 && indent[0] {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(data), nil
}

func (s *Schema) String() string {
	jsonStr, err := s.JsonString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return jsonStr
}
