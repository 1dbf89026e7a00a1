package as3

import (
	"context"
	"strings"
	"testing"
)

func TestApply_UnknownKindIsCompiledError(t *testing.T) {
	s := &Schema{root: &Node{Kind: Kind(99), Path: Path{"x"}}}
	_, err := s.Apply(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := AsIssues(err); ok {
		t.Fatalf("defect must not surface as Issues: %v", err)
	}
	ce, ok := AsCompiledError(err)
	if !ok {
		t.Fatalf("expected *CompiledError, got %T: %v", err, err)
	}
	if ce.Cause == nil || !strings.Contains(ce.Cause.Error(), "no rule for kind 99") {
		t.Fatalf("cause = %v", ce.Cause)
	}
	if !strings.Contains(ce.Program, "unavailable") {
		t.Fatalf("program rendering = %q", ce.Program)
	}
}

func TestApply_NilChildIsCompiledError(t *testing.T) {
	// a List node without a ValueType can only come from a builder defect;
	// normalization always rejects the document first
	s := &Schema{root: &Node{Kind: KindList, Path: Path{"data"}}}
	_, err := s.Apply(context.Background(), []any{1})
	ce, ok := AsCompiledError(err)
	if !ok {
		t.Fatalf("expected *CompiledError, got %T: %v", err, err)
	}
	if !strings.Contains(ce.Cause.Error(), "nil node") {
		t.Fatalf("cause = %v", ce.Cause)
	}
	// the build failure is sticky
	if _, err2 := s.Program(); err2 == nil {
		t.Fatalf("Program should report the build failure")
	}
}

func TestApply_CompiledErrorCarriesInput(t *testing.T) {
	s := &Schema{root: &Node{Kind: Kind(99), Path: Path{"x"}}}
	_, err := s.Apply(context.Background(), map[string]any{"marker": 42})
	ce, _ := AsCompiledError(err)
	if ce == nil || !strings.Contains(ce.Input, "marker") {
		t.Fatalf("input not captured: %+v", ce)
	}
	if !strings.Contains(ce.Error(), "an error occurred in the compiled validator") {
		t.Fatalf("message = %q", ce.Error())
	}
}

func TestRenderedProgram_LineNumbers(t *testing.T) {
	s := MustNew(map[string]any{"+Type": "Integer"})
	if err := s.ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	rendered := s.renderedProgram()
	if !strings.HasPrefix(rendered, "   1: ") {
		t.Fatalf("rendering not line-numbered:\n%s", rendered)
	}
}

func TestSlot_Projection(t *testing.T) {
	if got := slotOut(Present("x")); got != "x" {
		t.Fatalf("present = %#v", got)
	}
	if got := slotOut(Null()); got != nil {
		t.Fatalf("null = %#v", got)
	}
	if got := slotOut(Absent()); got != Undefined {
		t.Fatalf("absent = %#v", got)
	}
	if !slotOf(nil).IsNull() {
		t.Fatalf("nil input should classify as explicit null")
	}
	if !slotOf(0).IsPresent() {
		t.Fatalf("zero values are present, not null")
	}
}
