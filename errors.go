package as3

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType = "invalid_type"
	CodeNotNull     = "not_null"
	CodeCoercion    = "coercion"
	CodeInvalidEnum = "invalid_enum"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodePattern     = "pattern"
	CodeListLength  = "list_length"
	CodeListMax     = "list_max"
	CodeListMin     = "list_min"
	CodeNotHashable = "not_hashable"
)

// Issue represents a single validation entry. Key and Value are populated
// only when the failing node sits inside a container: the enclosing input
// key (Map pairs, Object fields) and/or element value (Map/Set/List).
type Issue struct {
	Path    string // Node path, segments joined with "/" (for example: data/items/+ValueType).
	Code    string // One of the codes listed above.
	Message string
	Key     any // Optional: offending input key.
	Value   any // Optional: offending input value.
}

// Issues is a collection of validation errors that implements error. It is
// the expected, recoverable failure mode of Apply: the input was rejected.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at data/items
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// SchemaError reports a malformed schema document: unknown type name, missing
// required attribute, conflicting nullability, unrecognized attribute. It is
// raised at construction time and is fatal to that schema; the document must
// be fixed.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: %s at `%s`", e.Message, e.Path)
}

func schemaErrorf(path Path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path.String(), Message: fmt.Sprintf(format, args...)}
}

// CompiledError wraps any failure that escapes the structured Issues path: a
// defect in the compiled program or the builder, not a data-quality problem.
// Callers should treat it as a bug to report, while Issues remain the
// expected, recoverable outcome.
type CompiledError struct {
	Program string // Line-numbered rendering of the compiled program.
	Input   string // Textual form of the offending input.
	Stack   string // Recovered stack trace when the failure was a panic.
	Cause   error
}

func (e *CompiledError) Error() string {
	b := &strings.Builder{}
	b.WriteString("an error occurred in the compiled validator:\n\n")
	b.WriteString(e.Program)
	b.WriteString("\n")
	b.WriteString(e.Input)
	if e.Cause != nil {
		b.WriteString("\n\n")
		b.WriteString(e.Cause.Error())
	}
	if e.Stack != "" {
		b.WriteString("\n\n")
		b.WriteString(e.Stack)
	}
	return b.String()
}

func (e *CompiledError) Unwrap() error { return e.Cause }

// AsCompiledError extracts a *CompiledError from an error chain.
func AsCompiledError(err error) (*CompiledError, bool) {
	var ce *CompiledError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
