package as3

// Binder is the integration contract for the convenience layer that applies
// schemas around a callable: every declared parameter's bound argument is
// transformed through that parameter's schema before the callable runs, and
// the return value, when a return schema is declared, is transformed before
// it reaches the caller.
//
// Implementations live outside this module. Matching actual arguments to
// declared parameter names must follow the callable's own binding rules
// (positional and named), independent of validation; failures surface with
// the same Issues / *CompiledError split as Apply.
type Binder interface {
	// Bind wraps fn. params maps declared parameter names to their schemas;
	// ret is the optional return schema, nil when the result passes through
	// unchecked.
	Bind(fn any, params map[string]*Schema, ret *Schema) (any, error)
}
