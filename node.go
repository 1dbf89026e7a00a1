package as3

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// Kind is the closed set of schema node kinds. Adding a kind means extending
// this enum and the builder's dispatch; there is no string-keyed lookup at
// validation time.
type Kind uint8

const (
	KindAny Kind = iota
	KindBoolean
	KindInteger
	KindDecimal
	KindFloat
	KindEnum
	KindString
	KindEmail
	KindObject
	KindMap
	KindSet
	KindList
)

var kindNames = [...]string{
	KindAny:     "Any",
	KindBoolean: "Boolean",
	KindInteger: "Integer",
	KindDecimal: "Decimal",
	KindFloat:   "Float",
	KindEnum:    "Enum",
	KindString:  "String",
	KindEmail:   "Email",
	KindObject:  "Object",
	KindMap:     "Map",
	KindSet:     "Set",
	KindList:    "List",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// kindByName maps the `+Type` attribute value to its Kind.
var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	return m
}()

// Field is one declared Object member. Order is the declaration order of the
// raw document.
type Field struct {
	Name string
	Node *Node
}

// Node is the canonical, validated form of one schema document node. Trees
// are built once by normalization and immutable afterwards; the compiled
// program holds them for the lifetime of the owning Schema.
type Node struct {
	Kind     Kind
	Path     Path
	Nullable bool
	Label    string // Display name; defaults to the last path segment.
	Help     string
	Source   any // Opaque passthrough metadata.

	// Default is deep-cloned at normalization time and cloned again each
	// time it is substituted, so no two outputs alias mutable state.
	Default    any
	HasDefault bool

	// Integer/Decimal/Float. Parsed but not enforced by any compiled check.
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal

	// String/Email. MinLength/MaxLength are shared with List.
	MinLength *int
	MaxLength *int
	Strip     bool
	Pattern   *regexp.Regexp // Anchored at the start of the text.

	// Enum
	Values []any

	// Object
	Fields []Field
	Extra  bool // Pass undeclared input keys through to the output.

	// Map
	KeyType *Node

	// Map/Set/List
	ValueType *Node

	// List
	Length *int // Exact element count.
}
