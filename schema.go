package as3

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

// Schema is a compiled validator for one schema document. The node tree is
// immutable after construction; the compiled program is built at most once
// and reused for every Apply. A Schema is safe for concurrent use.
type Schema struct {
	root *Node

	buildOnce sync.Once
	prog      *program
	buildErr  error
}

// Option configures schema construction.
type Option func(*schemaConfig)

type schemaConfig struct {
	path       Path
	deferBuild bool
}

// WithPath sets the root path used in diagnostics and error keys. The
// default is "data".
func WithPath(segments ...string) Option {
	return func(cfg *schemaConfig) { cfg.path = Path(segments) }
}

// WithDeferredBuild postpones program compilation until the first Apply.
func WithDeferredBuild() Option {
	return func(cfg *schemaConfig) { cfg.deferBuild = true }
}

// New normalizes doc into a canonical node tree and, unless deferred,
// compiles the validation program immediately. Malformed documents return
// *SchemaError.
func New(doc any, opts ...Option) (*Schema, error) {
	cfg := schemaConfig{path: DefaultRootPath}
	for _, opt := range opts {
		opt(&cfg)
	}
	root, err := normalize(cfg.path, doc)
	if err != nil {
		return nil, err
	}
	s := &Schema{root: root}
	if !cfg.deferBuild {
		if err := s.ensure(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNew is New, panicking on error. Intended for schema literals in
// package setup.
func MustNew(doc any, opts ...Option) *Schema {
	s, err := New(doc, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Root returns the canonical node tree. Callers must not modify it.
func (s *Schema) Root() *Node { return s.root }

// ensure builds the program exactly once, even under concurrent first use.
func (s *Schema) ensure() error {
	s.buildOnce.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				s.buildErr = fmt.Errorf("build panic: %v", r)
			}
		}()
		s.prog, s.buildErr = buildProgram(s.root)
	})
	return s.buildErr
}

// Apply validates and transforms input through the compiled program. It
// returns Issues when the input is rejected — the expected, recoverable
// outcome — or *CompiledError when the failure is an internal defect.
// Sibling errors do not mask each other: every rejecting node contributes
// one Issue, in tree order.
func (s *Schema) Apply(ctx context.Context, input any) (out any, err error) {
	_ = ctx // no cancellation points; accepted for call-site symmetry
	if berr := s.ensure(); berr != nil {
		return nil, &CompiledError{
			Program: s.renderedProgram(),
			Input:   fmt.Sprintf("%+v", input),
			Cause:   berr,
		}
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &CompiledError{
				Program: s.renderedProgram(),
				Input:   fmt.Sprintf("%+v", input),
				Stack:   string(debug.Stack()),
				Cause:   fmt.Errorf("validator panic: %v", r),
			}
		}
	}()
	c := &collector{}
	res := s.prog.root(c, slotOf(input), nil, nil)
	if len(c.issues) > 0 {
		return nil, c.issues
	}
	return res.Value(), nil
}

// Program returns the pseudo-assembly rendering of the compiled validator,
// building it first when construction was deferred.
func (s *Schema) Program() (string, error) {
	if err := s.ensure(); err != nil {
		return "", err
	}
	return s.prog.trace, nil
}

func (s *Schema) renderedProgram() string {
	if s.prog == nil {
		return "(program unavailable: build failed)"
	}
	return numberLines(s.prog.trace)
}

func numberLines(s string) string {
	lines := strings.Split(s, "\n")
	b := &strings.Builder{}
	for i, line := range lines {
		fmt.Fprintf(b, "%4d: %s\n", i+1, line)
	}
	return b.String()
}
