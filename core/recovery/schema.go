package recovery

import (
	"bytes"
	"encoding/json"
)

// FieldType is the value type a record field must hold.
type FieldType int

const (
	FieldString FieldType = iota
	FieldStringList
)

func (t FieldType) String() string {
	if t == FieldStringList {
		return "list of strings"
	}
	return "string"
}

// Field declares one named record field.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// Schema is the ordered field declaration every element must satisfy.
type Schema struct {
	Name   string
	Fields []Field
}

// FieldValue is the validated value of one field. Present is false for an
// optional field the element did not carry.
type FieldValue struct {
	Name    string
	Type    FieldType
	Present bool
	Str     string
	List    []string
}

// Record is one validated element. Fields appear in schema order.
type Record struct {
	fields []FieldValue
}

// Fields returns the record's field values in schema order.
func (r Record) Fields() []FieldValue {
	return r.fields
}

// Has reports whether the named field was present in the element.
func (r Record) Has(name string) bool {
	f, ok := r.lookup(name)
	return ok && f.Present
}

// String returns the named string field, or "" when absent.
func (r Record) String(name string) string {
	f, _ := r.lookup(name)
	return f.Str
}

// Strings returns the named string-list field, or nil when absent.
func (r Record) Strings(name string) []string {
	f, _ := r.lookup(name)
	return f.List
}

func (r Record) lookup(name string) (FieldValue, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldValue{}, false
}

// MarshalJSON encodes the record as an object with keys in schema order.
// Absent optional fields are omitted.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range r.fields {
		if !f.Present {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if f.Type == FieldStringList {
			list := f.List
			if list == nil {
				list = []string{}
			}
			val, err = json.Marshal(list)
		} else {
			val, err = json.Marshal(f.Str)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
