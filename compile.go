package as3

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/DilecPadovani/appcovecompiler/i18n"
)

// program is the compiled artifact: an executable closure tree plus a
// pseudo-assembly rendering of the generation steps, kept for diagnostics.
type program struct {
	root  step
	trace string
}

// step processes one slot through a node. key and value carry the enclosing
// container's key and element for diagnostics; both are nil outside
// containers.
type step func(c *collector, in Slot, key, value any) Slot

// rule is the kind-specific part of a node, run only on present values.
// Containers append their children's issues through c; their own failures
// return a *valueError caught at the node boundary.
type rule func(c *collector, v any, key, value any) (any, *valueError)

// collector accumulates the ordered Issues of one invocation.
type collector struct {
	issues Issues
}

func (c *collector) append(it Issue) { c.issues = append(c.issues, it) }

// valueError is a kind-rule failure caught at the owning node's boundary.
type valueError struct {
	code string
	msg  string
}

func (e *valueError) Error() string { return e.msg }

func fail(code string, data map[string]string) *valueError {
	return &valueError{code: code, msg: i18n.T(code, data)}
}

// builder lowers a Node tree into a program. Registers are indexed by
// nesting depth (vi0/vo0 at the root, vi1/vo1 one level down, ...) so the
// rendered trace never reuses a name across levels.
type builder struct {
	lines []string
}

func (b *builder) linef(depth int, format string, args ...any) {
	b.lines = append(b.lines, strings.Repeat("  ", depth)+fmt.Sprintf(format, args...))
}

func buildProgram(root *Node) (*program, error) {
	b := &builder{}
	b.linef(0, "vi0 = input")
	b.linef(0, "vo0 = undef")
	st, err := b.compile(root, 0)
	if err != nil {
		return nil, err
	}
	b.linef(0, "if errs: fail(errs)")
	b.linef(0, "return vo0")
	return &program{root: st, trace: strings.Join(b.lines, "\n")}, nil
}

// compile wraps the kind rule with the uniform per-node contract: default
// substitution, nullability, then the kind rule, with every failure caught
// at this boundary and appended as one Issue.
func (b *builder) compile(n *Node, depth int) (step, error) {
	if n == nil {
		return nil, fmt.Errorf("compile: nil node at depth %d", depth)
	}
	path := n.Path.String()
	b.linef(depth, "; start %s (%s)", path, n.Kind)
	b.linef(depth, "try:")
	switch {
	case n.HasDefault:
		b.linef(depth+1, "if vi%d is missing: vi%d = clone(default)", depth, depth)
	case n.Nullable:
		b.linef(depth+1, "if vi%d is missing: vo%d = null; goto end", depth, depth)
	default:
		b.linef(depth+1, "if vi%d is missing: fail %s", depth, CodeNotNull)
	}

	apply, err := b.compileKind(n, depth)
	if err != nil {
		return nil, err
	}

	b.linef(depth, "except e: errs.append((%q, e, key, value))", path)
	b.linef(depth, "; end %s", path)

	hasDefault := n.HasDefault
	def := n.Default
	nullable := n.Nullable
	return func(c *collector, in Slot, key, value any) Slot {
		if !in.IsPresent() {
			switch {
			case hasDefault:
				in = Present(deepClone(def))
			case nullable:
				return Null()
			default:
				c.append(Issue{Path: path, Code: CodeNotNull, Message: i18n.T(CodeNotNull, nil), Key: key, Value: value})
				return Absent()
			}
		}
		out, verr := apply(c, in.Value(), key, value)
		if verr != nil {
			c.append(Issue{Path: path, Code: verr.code, Message: verr.msg, Key: key, Value: value})
			return Absent()
		}
		return Present(out)
	}, nil
}

func (b *builder) compileKind(n *Node, depth int) (rule, error) {
	switch n.Kind {
	case KindAny:
		b.linef(depth+1, "vo%d = vi%d", depth, depth)
		return func(_ *collector, v, _, _ any) (any, *valueError) {
			return v, nil
		}, nil
	case KindBoolean:
		b.linef(depth+1, "vo%d = bool(vi%d)", depth, depth)
		return func(_ *collector, v, _, _ any) (any, *valueError) {
			return truthy(v), nil
		}, nil
	case KindInteger:
		b.linef(depth+1, "vo%d = integer(vi%d)", depth, depth)
		return func(_ *collector, v, _, _ any) (any, *valueError) {
			out, verr := coerceInt(v)
			if verr != nil {
				return nil, verr
			}
			return out, nil
		}, nil
	case KindDecimal:
		b.linef(depth+1, "vo%d = decimal(vi%d)", depth, depth)
		return func(_ *collector, v, _, _ any) (any, *valueError) {
			out, verr := coerceDecimal(v)
			if verr != nil {
				return nil, verr
			}
			return out, nil
		}, nil
	case KindFloat:
		b.linef(depth+1, "vo%d = float(vi%d)", depth, depth)
		return func(_ *collector, v, _, _ any) (any, *valueError) {
			out, verr := coerceFloat(v)
			if verr != nil {
				return nil, verr
			}
			return out, nil
		}, nil
	case KindEnum:
		return b.compileEnum(n, depth), nil
	case KindString, KindEmail:
		return b.compileText(n, depth), nil
	case KindObject:
		return b.compileObject(n, depth)
	case KindMap:
		return b.compileMap(n, depth)
	case KindSet:
		return b.compileSet(n, depth)
	case KindList:
		return b.compileList(n, depth)
	default:
		return nil, fmt.Errorf("compile: no rule for kind %d at `%s`", int(n.Kind), n.Path)
	}
}

func (b *builder) compileEnum(n *Node, depth int) rule {
	allowed := n.Values
	repr := fmt.Sprintf("%v", allowed)
	b.linef(depth+1, "vo%d = vi%d", depth, depth)
	b.linef(depth+1, "if vo%d not in %s: fail %s", depth, repr, CodeInvalidEnum)
	return func(_ *collector, v, _, _ any) (any, *valueError) {
		for _, a := range allowed {
			if reflect.DeepEqual(v, a) {
				return v, nil
			}
		}
		return nil, fail(CodeInvalidEnum, map[string]string{"allowed": repr})
	}
}

func (b *builder) compileText(n *Node, depth int) rule {
	b.linef(depth+1, "vo%d = string(vi%d)", depth, depth)
	if n.Strip {
		b.linef(depth+1, "vo%d = strip(vo%d)", depth, depth)
	}
	if n.MinLength != nil {
		b.linef(depth+1, "if len(vo%d) > %d: fail %s", depth, *n.MinLength, CodeTooShort)
	}
	if n.MaxLength != nil {
		b.linef(depth+1, "if len(vo%d) > %d: fail %s", depth, *n.MaxLength, CodeTooLong)
	}
	if n.Pattern != nil {
		b.linef(depth+1, "if not match(%q, vo%d): fail %s", n.Pattern.String(), depth, CodePattern)
	}
	strip := n.Strip
	minLen := n.MinLength
	maxLen := n.MaxLength
	pattern := n.Pattern
	return func(_ *collector, v, _, _ any) (any, *valueError) {
		s, verr := coerceString(v)
		if verr != nil {
			return nil, verr
		}
		if strip {
			s = strings.TrimSpace(s)
		}
		count := utf8.RuneCountInString(s)
		// the minimum check compares with > like the maximum; the dialect
		// has always shipped this sense and documents depend on it
		if minLen != nil && count > *minLen {
			return nil, fail(CodeTooShort, map[string]string{"min": strconv.Itoa(*minLen), "got": strconv.Itoa(count)})
		}
		if maxLen != nil && count > *maxLen {
			return nil, fail(CodeTooLong, map[string]string{"max": strconv.Itoa(*maxLen), "got": strconv.Itoa(count)})
		}
		if pattern != nil && !pattern.MatchString(s) {
			return nil, fail(CodePattern, map[string]string{"regex": pattern.String()})
		}
		return s, nil
	}
}

func (b *builder) compileObject(n *Node, depth int) (rule, error) {
	b.linef(depth+1, "if vi%d is not mapping: fail %s", depth, CodeInvalidType)
	b.linef(depth+1, "vo%d = {}", depth)

	type fieldStep struct {
		name string
		st   step
	}
	steps := make([]fieldStep, 0, len(n.Fields))
	declared := make(map[string]struct{}, len(n.Fields))
	for _, f := range n.Fields {
		b.linef(depth+1, "vi%d = vi%d[%q]", depth+1, depth, f.Name)
		b.linef(depth+1, "vo%d = undef", depth+1)
		st, err := b.compile(f.Node, depth+1)
		if err != nil {
			return nil, err
		}
		b.linef(depth+1, "vo%d[%q] = vo%d", depth, f.Name, depth+1)
		steps = append(steps, fieldStep{name: f.Name, st: st})
		declared[f.Name] = struct{}{}
	}
	if n.Extra {
		b.linef(depth+1, "for k, v in vi%d: if k not declared: vo%d[k] = v", depth, depth)
	}

	extra := n.Extra
	return func(c *collector, v, _, _ any) (any, *valueError) {
		get, each, ok := asMapping(v)
		if !ok {
			return nil, fail(CodeInvalidType, map[string]string{"want": "mapping", "got": typeLabel(v)})
		}
		out := make(map[string]any, len(steps))
		for _, f := range steps {
			raw, exists := get(f.name)
			in := Absent()
			if exists {
				in = slotOf(raw)
			}
			out[f.name] = slotOut(f.st(c, in, f.name, raw))
		}
		if extra {
			each(func(k string, ev any) {
				if _, known := declared[k]; !known {
					out[k] = ev
				}
			})
		}
		return out, nil
	}, nil
}

func (b *builder) compileMap(n *Node, depth int) (rule, error) {
	b.linef(depth+1, "if vi%d is not mapping: fail %s", depth, CodeInvalidType)
	b.linef(depth+1, "vo%d = {}", depth)
	b.linef(depth+1, "for vi%dk, vi%dv in vi%d:", depth+1, depth+1, depth)
	b.linef(depth+1, "; key")
	b.linef(depth+1, "vi%d = vi%dk", depth+1, depth+1)
	b.linef(depth+1, "vo%d = undef", depth+1)
	keyStep, err := b.compile(n.KeyType, depth+1)
	if err != nil {
		return nil, err
	}
	b.linef(depth+1, "vo%dk = vo%d", depth+1, depth+1)
	b.linef(depth+1, "; value")
	b.linef(depth+1, "vi%d = vi%dv", depth+1, depth+1)
	b.linef(depth+1, "vo%d = undef", depth+1)
	valStep, err := b.compile(n.ValueType, depth+1)
	if err != nil {
		return nil, err
	}
	b.linef(depth+1, "vo%dv = vo%d", depth+1, depth+1)
	b.linef(depth+1, "vo%d[vo%dk] = vo%dv", depth, depth+1, depth+1)

	return func(c *collector, v, _, _ any) (any, *valueError) {
		pairs, ok := asPairs(v)
		if !ok {
			return nil, fail(CodeInvalidType, map[string]string{"want": "mapping", "got": typeLabel(v)})
		}
		out := map[any]any{}
		var verr *valueError
		pairs(func(ik, iv any) bool {
			ko := keyStep(c, slotOf(ik), ik, nil)
			k := slotOut(ko)
			// value diagnostics carry the computed key, not the raw one
			vo := valStep(c, slotOf(iv), k, iv)
			if k != nil && !reflect.TypeOf(k).Comparable() {
				verr = fail(CodeNotHashable, map[string]string{"got": typeLabel(k)})
				return false
			}
			out[k] = slotOut(vo)
			return true
		})
		if verr != nil {
			return nil, verr
		}
		return out, nil
	}, nil
}

func (b *builder) compileSet(n *Node, depth int) (rule, error) {
	b.linef(depth+1, "if vi%d is not iterable: fail %s", depth, CodeInvalidType)
	b.linef(depth+1, "vo%d = set()", depth)
	b.linef(depth+1, "for vi%d in vi%d:", depth+1, depth)
	b.linef(depth+1, "vo%d = undef", depth+1)
	elemStep, err := b.compile(n.ValueType, depth+1)
	if err != nil {
		return nil, err
	}
	b.linef(depth+1, "vo%d.add(vo%d)", depth, depth+1)

	return func(c *collector, v, _, _ any) (any, *valueError) {
		elems, ok := asElements(v, true)
		if !ok {
			return nil, fail(CodeInvalidType, map[string]string{"want": "iterable", "got": typeLabel(v)})
		}
		out := map[any]struct{}{}
		var verr *valueError
		elems(func(e any) bool {
			res := slotOut(elemStep(c, slotOf(e), nil, e))
			if res != nil && !reflect.TypeOf(res).Comparable() {
				verr = fail(CodeNotHashable, map[string]string{"got": typeLabel(res)})
				return false
			}
			out[res] = struct{}{}
			return true
		})
		if verr != nil {
			return nil, verr
		}
		return out, nil
	}, nil
}

func (b *builder) compileList(n *Node, depth int) (rule, error) {
	b.linef(depth+1, "if vi%d is text: fail %s", depth, CodeInvalidType)
	b.linef(depth+1, "if vi%d is not iterable: fail %s", depth, CodeInvalidType)
	b.linef(depth+1, "vo%d = []", depth)
	b.linef(depth+1, "for vi%d in vi%d:", depth+1, depth)
	b.linef(depth+1, "vo%d = undef", depth+1)
	elemStep, err := b.compile(n.ValueType, depth+1)
	if err != nil {
		return nil, err
	}
	b.linef(depth+1, "vo%d.append(vo%d)", depth, depth+1)
	if n.Length != nil {
		b.linef(depth+1, "if len(vo%d) != %d: fail %s", depth, *n.Length, CodeListLength)
	}
	if n.MaxLength != nil {
		b.linef(depth+1, "if len(vo%d) > %d: fail %s", depth, *n.MaxLength, CodeListMax)
	}
	if n.MinLength != nil {
		b.linef(depth+1, "if len(vo%d) < %d: fail %s", depth, *n.MinLength, CodeListMin)
	}

	exact := n.Length
	maxLen := n.MaxLength
	minLen := n.MinLength
	return func(c *collector, v, _, _ any) (any, *valueError) {
		// text is iterable but never a valid list
		if _, isText := v.(string); isText {
			return nil, fail(CodeInvalidType, map[string]string{"want": "sequence", "got": "text"})
		}
		elems, ok := asElements(v, false)
		if !ok {
			return nil, fail(CodeInvalidType, map[string]string{"want": "sequence", "got": typeLabel(v)})
		}
		out := []any{}
		elems(func(e any) bool {
			out = append(out, slotOut(elemStep(c, slotOf(e), nil, e)))
			return true
		})
		got := strconv.Itoa(len(out))
		if exact != nil && len(out) != *exact {
			return nil, fail(CodeListLength, map[string]string{"want": strconv.Itoa(*exact), "got": got})
		}
		if maxLen != nil && len(out) > *maxLen {
			return nil, fail(CodeListMax, map[string]string{"max": strconv.Itoa(*maxLen), "got": got})
		}
		if minLen != nil && len(out) < *minLen {
			return nil, fail(CodeListMin, map[string]string{"min": strconv.Itoa(*minLen), "got": got})
		}
		return out, nil
	}, nil
}

// ---- input adapters ----

// asMapping adapts keyed-mapping inputs for Object nodes: lookup by field
// name plus iteration over string keys (for extra-field passthrough).
func asMapping(v any) (get func(string) (any, bool), each func(func(string, any)), ok bool) {
	switch t := v.(type) {
	case *Document:
		return func(k string) (any, bool) { return t.Get(k) },
			func(fn func(string, any)) {
				t.Each(func(k string, val any) bool { fn(k, val); return true })
			}, true
	case map[string]any:
		return func(k string) (any, bool) { val, ok := t[k]; return val, ok },
			func(fn func(string, any)) {
				for _, k := range sortedKeys(t) {
					fn(k, t[k])
				}
			}, true
	case map[any]any:
		return func(k string) (any, bool) { val, ok := t[k]; return val, ok },
			func(fn func(string, any)) {
				ks := make([]string, 0, len(t))
				for k := range t {
					if s, isStr := k.(string); isStr {
						ks = append(ks, s)
					}
				}
				sort.Strings(ks)
				for _, k := range ks {
					fn(k, t[k])
				}
			}, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, nil, false
	}
	return func(k string) (any, bool) {
			mv := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			return mv.Interface(), true
		},
		func(fn func(string, any)) {
			ks := make([]string, 0, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				ks = append(ks, iter.Key().String())
			}
			sort.Strings(ks)
			for _, k := range ks {
				fn(k, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			}
		}, true
}

// asPairs adapts key/value-iterable inputs for Map nodes. Unordered inputs
// iterate in sorted-key order so error order stays deterministic.
func asPairs(v any) (func(func(k, v any) bool), bool) {
	if d, isDoc := v.(*Document); isDoc {
		return func(fn func(k, v any) bool) {
			d.Each(func(k string, val any) bool { return fn(k, val) })
		}, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map {
		return nil, false
	}
	return func(fn func(k, v any) bool) {
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, kv := range keys {
			if !fn(kv.Interface(), rv.MapIndex(kv).Interface()) {
				return
			}
		}
	}, true
}

// asElements adapts iterable inputs for Set and List nodes. Text iterates as
// single-character strings when allowText is set; mappings are never
// accepted.
func asElements(v any, allowText bool) (func(func(any) bool), bool) {
	if s, isText := v.(string); isText {
		if !allowText {
			return nil, false
		}
		return func(fn func(any) bool) {
			for _, r := range s {
				if !fn(string(r)) {
					return
				}
			}
		}, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return func(fn func(any) bool) {
			for i := 0; i < rv.Len(); i++ {
				if !fn(rv.Index(i).Interface()) {
					return
				}
			}
		}, true
	default:
		return nil, false
	}
}

func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func typeLabel(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
