// Package as3 compiles declarative AS3 schema documents into executable
// validators that coerce arbitrary structured input (objects, sequences,
// mappings, scalars) into canonical, type-checked output, collecting every
// validation failure instead of stopping at the first.
//
// A schema document is either a bare type name ("Integer", "String?" for
// nullable) or an attribute map keyed by `+`-prefixed attributes (+Type,
// +None, +Label, +Default, ...). Object nodes additionally map plain keys to
// nested schemas. See normalize.go for the full attribute table.
//
// The pipeline:
//
//   - normalization parses the raw document into an immutable Node tree,
//     rejecting malformed documents with *SchemaError
//   - compilation lowers the tree into a closure program, once per Schema
//   - Apply runs the program, returning the canonical output or Issues
//
// Design policy:
//   - Keep only public APIs in the root package; messages live in i18n/ and
//     the CLI under cmd/as3.
//   - Errors aggregate into Issues (path, code, message, key, value); an
//     internal defect surfaces as *CompiledError, never as Issues.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	doc, err := as3.LoadYAML(schemaBytes)
//	s, err := as3.New(doc)
//	out, err := s.Apply(ctx, input)
package as3
