package as3_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	as3 "github.com/DilecPadovani/appcovecompiler"
)

func mustSchema(t *testing.T, doc any, opts ...as3.Option) *as3.Schema {
	t.Helper()
	s, err := as3.New(doc, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func schemaErr(t *testing.T, doc any) *as3.SchemaError {
	t.Helper()
	_, err := as3.New(doc)
	if err == nil {
		t.Fatalf("expected SchemaError, got nil")
	}
	var se *as3.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %T: %v", err, err)
	}
	return se
}

func TestNormalize_BareTypeName(t *testing.T) {
	s := mustSchema(t, "Integer")
	root := s.Root()
	if root.Kind != as3.KindInteger || root.Nullable {
		t.Fatalf("root = kind %v nullable %v", root.Kind, root.Nullable)
	}
	if root.Label != "data" {
		t.Fatalf("label = %q, want path segment default", root.Label)
	}
}

func TestNormalize_NullableSuffix(t *testing.T) {
	s := mustSchema(t, "String?")
	if !s.Root().Nullable {
		t.Fatalf("expected nullable root")
	}
	if s.Root().Kind != as3.KindString {
		t.Fatalf("kind = %v", s.Root().Kind)
	}
}

func TestNormalize_ConflictingNullability(t *testing.T) {
	se := schemaErr(t, map[string]any{"+Type": "String?", "+None": true})
	if !strings.Contains(se.Message, "+None") {
		t.Fatalf("message = %q", se.Message)
	}
}

func TestNormalize_UnknownType(t *testing.T) {
	se := schemaErr(t, map[string]any{"+Type": "Widget"})
	if !strings.Contains(se.Message, "Widget") || se.Path != "data" {
		t.Fatalf("got %v", se)
	}
}

func TestNormalize_UnrecognizedAttributes(t *testing.T) {
	se := schemaErr(t, map[string]any{"+Type": "Boolean", "+Sparkle": 1, "+Wobble": 2})
	if !strings.Contains(se.Message, "+Sparkle") || !strings.Contains(se.Message, "+Wobble") {
		t.Fatalf("message should list leftover attributes: %q", se.Message)
	}
}

func TestNormalize_AttributesRejectedForWrongKind(t *testing.T) {
	// +MaxLength belongs to String/Email/List, not Integer
	se := schemaErr(t, map[string]any{"+Type": "Integer", "+MaxLength": 3})
	if !strings.Contains(se.Message, "+MaxLength") {
		t.Fatalf("message = %q", se.Message)
	}
}

func TestNormalize_MapRequiresKeyAndValueTypes(t *testing.T) {
	se := schemaErr(t, map[string]any{"+Type": "Map", "+ValueType": "String"})
	if !strings.Contains(se.Message, "+KeyType") {
		t.Fatalf("message = %q", se.Message)
	}
	se = schemaErr(t, map[string]any{"+Type": "Map", "+KeyType": "String"})
	if !strings.Contains(se.Message, "+ValueType") {
		t.Fatalf("message = %q", se.Message)
	}
}

func TestNormalize_SetAndListRequireValueType(t *testing.T) {
	for _, typ := range []string{"Set", "List"} {
		se := schemaErr(t, map[string]any{"+Type": typ})
		if !strings.Contains(se.Message, "+ValueType") {
			t.Fatalf("%s: message = %q", typ, se.Message)
		}
	}
}

func TestNormalize_EnumRequiresValues(t *testing.T) {
	se := schemaErr(t, map[string]any{"+Type": "Enum"})
	if !strings.Contains(se.Message, "+Values") {
		t.Fatalf("message = %q", se.Message)
	}
	se = schemaErr(t, map[string]any{"+Type": "Enum", "+Values": []any{}})
	if !strings.Contains(se.Message, "empty") {
		t.Fatalf("message = %q", se.Message)
	}
}

func TestNormalize_ObjectFieldPathsAndOrder(t *testing.T) {
	doc := as3.NewDocument().
		Set("+Type", "Object").
		Set("zeta", "Integer").
		Set("alpha", "String")
	s := mustSchema(t, doc)
	fields := s.Root().Fields
	if len(fields) != 2 || fields[0].Name != "zeta" || fields[1].Name != "alpha" {
		t.Fatalf("field order not preserved: %+v", fields)
	}
	if fields[0].Node.Path.String() != "data/zeta" {
		t.Fatalf("path = %q", fields[0].Node.Path.String())
	}
	if fields[0].Node.Label != "zeta" {
		t.Fatalf("label = %q", fields[0].Node.Label)
	}
}

func TestNormalize_PlainMapFieldsSortForDeterminism(t *testing.T) {
	doc := map[string]any{"+Type": "Object", "zeta": "Integer", "alpha": "String"}
	s := mustSchema(t, doc)
	fields := s.Root().Fields
	if len(fields) != 2 || fields[0].Name != "alpha" || fields[1].Name != "zeta" {
		t.Fatalf("expected sorted fields for unordered documents: %+v", fields)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	doc := map[string]any{
		"+Type": "Object",
		"name":  map[string]any{"+Type": "String", "+MaxLength": 10},
		"tags":  map[string]any{"+Type": "List", "+ValueType": "String", "+MaxLength": 3},
		"age":   "Integer?",
	}
	a := mustSchema(t, doc)
	b := mustSchema(t, doc)
	pa, err := a.Program()
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	pb, err := b.Program()
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	if pa != pb {
		t.Fatalf("normalizing the same document twice produced different programs:\n%s\n----\n%s", pa, pb)
	}
}

func TestNormalize_NumericBoundsParsedButInert(t *testing.T) {
	s := mustSchema(t, map[string]any{"+Type": "Integer", "+MinValue": 10, "+MaxValue": 20})
	root := s.Root()
	if root.MinValue == nil || root.MaxValue == nil {
		t.Fatalf("bounds not parsed: %+v", root)
	}
	// bounds are accepted but no compiled check enforces them
	out, err := s.Apply(context.Background(), 99)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out != int64(99) {
		t.Fatalf("out = %#v", out)
	}
}

func TestNormalize_DefaultDeepCloned(t *testing.T) {
	def := map[string]any{"inner": []any{1, 2}}
	doc := map[string]any{
		"+Type": "Object",
		"+None": false,
		"cfg": map[string]any{
			"+Type":    "Any",
			"+Default": def,
		},
	}
	s := mustSchema(t, doc)

	// mutating the raw document after construction must not leak in
	def["inner"].([]any)[0] = 99

	ctx := context.Background()
	first, err := s.Apply(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	got := first.(map[string]any)["cfg"].(map[string]any)
	if !reflect.DeepEqual(got["inner"], []any{1, 2}) {
		t.Fatalf("default aliased document mutation: %#v", got["inner"])
	}

	// mutating one output must not leak into the next
	got["inner"].([]any)[1] = 77
	second, err := s.Apply(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	got2 := second.(map[string]any)["cfg"].(map[string]any)
	if !reflect.DeepEqual(got2["inner"], []any{1, 2}) {
		t.Fatalf("defaults alias across invocations: %#v", got2["inner"])
	}
}

func TestNormalize_LabelAndHelp(t *testing.T) {
	s := mustSchema(t, map[string]any{"+Type": "String", "+Label": "Display Name", "+Help": "shown in forms"})
	if s.Root().Label != "Display Name" || s.Root().Help != "shown in forms" {
		t.Fatalf("got %+v", s.Root())
	}
}

func TestNormalize_WithPath(t *testing.T) {
	s := mustSchema(t, map[string]any{"+Type": "Object", "x": "Integer"}, as3.WithPath("Create", "payload"))
	if got := s.Root().Fields[0].Node.Path.String(); got != "Create/payload/x" {
		t.Fatalf("path = %q", got)
	}
}

func TestNormalize_InvalidRegex(t *testing.T) {
	se := schemaErr(t, map[string]any{"+Type": "String", "+Regex": "("})
	if !strings.Contains(se.Message, "+Regex") {
		t.Fatalf("message = %q", se.Message)
	}
}

func TestNormalize_SourcePassthrough(t *testing.T) {
	s := mustSchema(t, map[string]any{"+Type": "Boolean", "+Source": "db.users.active"})
	if s.Root().Source != "db.users.active" {
		t.Fatalf("source = %#v", s.Root().Source)
	}
}
