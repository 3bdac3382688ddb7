// Package jsonschema derives JSON Schema documents for flat record types
// through reflection.
//
// The main entry point is [Generate], which builds an object [Schema] from a
// struct type T at compile time without requiring a runtime value. Record
// types are limited to string and []string fields, which is exactly what the
// reply validator can check. [ArrayOf] wraps the result into the top-level
// array the model is asked to produce.
package jsonschema
