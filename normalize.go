package as3

import (
	"regexp"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// Attribute table, by kind. Every key a document supplies must be consumed
// by exactly one handler below or normalization fails; this is the schema's
// closed-world validation.
//
//	all kinds:       +Source +Type +None +Label +Help +Default
//	Integer/Decimal/Float: +MinValue +MaxValue (parsed, not enforced)
//	Enum:            +Values (required)
//	String/Email:    +MaxLength +MinLength +Strip +Regex
//	Object:          +Extra, plus non-`+` keys naming fields
//	Map:             +KeyType +ValueType (required)
//	Set:             +ValueType (required)
//	List:            +ValueType (required), +Length +MaxLength +MinLength

// attrs is a consumable working copy of one raw attribute map. Keys are
// removed as handlers recognize them; whatever remains is an error.
type attrs struct {
	keys []string
	vals map[string]any
}

func newAttrs(raw any) (*attrs, bool) {
	switch t := raw.(type) {
	case *Document:
		a := &attrs{keys: t.Keys(), vals: make(map[string]any, t.Len())}
		for _, k := range a.keys {
			v, _ := t.Get(k)
			a.vals[k] = v
		}
		return a, true
	case map[string]any:
		a := &attrs{keys: make([]string, 0, len(t)), vals: make(map[string]any, len(t))}
		for k, v := range t {
			a.keys = append(a.keys, k)
			a.vals[k] = v
		}
		// plain maps carry no order; sort for determinism
		sort.Strings(a.keys)
		return a, true
	default:
		return nil, false
	}
}

func (a *attrs) pop(key string) (any, bool) {
	v, ok := a.vals[key]
	if !ok {
		return nil, false
	}
	delete(a.vals, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i], a.keys[i+1:]...)
			break
		}
	}
	return v, true
}

func (a *attrs) remaining() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// normalize parses one raw schema document node into its canonical Node.
func normalize(path Path, raw any) (*Node, error) {
	if s, ok := raw.(string); ok {
		raw = map[string]any{"+Type": s}
	}
	in, ok := newAttrs(raw)
	if !ok {
		return nil, schemaErrorf(path, "schema node must be a type name or an attribute map, got %T", raw)
	}

	n := &Node{Path: path}
	n.Source, _ = in.pop("+Source")

	tv, ok := in.pop("+Type")
	if !ok {
		return nil, schemaErrorf(path, "missing `+Type`")
	}
	typeName, ok := tv.(string)
	if !ok {
		return nil, schemaErrorf(path, "`+Type` must be a string, got %T", tv)
	}
	if strings.HasSuffix(typeName, "?") {
		typeName = strings.TrimSuffix(typeName, "?")
		n.Nullable = true
		if _, conflict := in.pop("+None"); conflict {
			return nil, schemaErrorf(path, "`+Type` ended with `?` yet `+None` was specified anyway")
		}
	} else if nv, ok := in.pop("+None"); ok {
		b, ok := nv.(bool)
		if !ok {
			return nil, schemaErrorf(path, "`+None` must be a boolean, got %T", nv)
		}
		n.Nullable = b
	}

	if lv, ok := in.pop("+Label"); ok {
		s, ok := lv.(string)
		if !ok {
			return nil, schemaErrorf(path, "`+Label` must be a string, got %T", lv)
		}
		n.Label = s
	} else {
		n.Label = path.Last()
	}
	if hv, ok := in.pop("+Help"); ok {
		s, ok := hv.(string)
		if !ok {
			return nil, schemaErrorf(path, "`+Help` must be a string, got %T", hv)
		}
		n.Help = s
	}

	kind, ok := kindByName[typeName]
	if !ok {
		return nil, schemaErrorf(path, "unrecognized type `%s`", typeName)
	}
	n.Kind = kind

	if err := normalizeKind(n, in); err != nil {
		return nil, err
	}

	if dv, ok := in.pop("+Default"); ok && dv != nil {
		n.Default = deepClone(dv)
		n.HasDefault = true
	}

	if rem := in.remaining(); len(rem) > 0 {
		return nil, schemaErrorf(path, "unrecognized attributes for type `%s`: %s", typeName, strings.Join(rem, ", "))
	}
	return n, nil
}

func normalizeKind(n *Node, in *attrs) error {
	switch n.Kind {
	case KindAny, KindBoolean:
		return nil
	case KindInteger, KindDecimal, KindFloat:
		return normalizeNumeric(n, in)
	case KindEnum:
		return normalizeEnum(n, in)
	case KindString, KindEmail:
		return normalizeText(n, in)
	case KindObject:
		return normalizeObject(n, in)
	case KindMap:
		var err error
		if n.KeyType, err = popNode(in, n, "+KeyType"); err != nil {
			return err
		}
		n.ValueType, err = popNode(in, n, "+ValueType")
		return err
	case KindSet:
		var err error
		n.ValueType, err = popNode(in, n, "+ValueType")
		return err
	case KindList:
		return normalizeList(n, in)
	}
	return schemaErrorf(n.Path, "no normalizer for type `%s`", n.Kind)
}

func normalizeNumeric(n *Node, in *attrs) error {
	var err error
	if n.MinValue, err = popDecimal(in, n.Path, "+MinValue"); err != nil {
		return err
	}
	n.MaxValue, err = popDecimal(in, n.Path, "+MaxValue")
	return err
}

func normalizeEnum(n *Node, in *attrs) error {
	raw, ok := in.pop("+Values")
	if !ok {
		return schemaErrorf(n.Path, "missing `+Values` for type `Enum`")
	}
	vals, ok := raw.([]any)
	if !ok {
		return schemaErrorf(n.Path, "`+Values` must be a list, got %T", raw)
	}
	if len(vals) == 0 {
		return schemaErrorf(n.Path, "`+Values` must not be empty")
	}
	n.Values = deepClone(vals).([]any)
	return nil
}

func normalizeText(n *Node, in *attrs) error {
	var err error
	if n.MaxLength, err = popInt(in, n.Path, "+MaxLength"); err != nil {
		return err
	}
	if n.MinLength, err = popInt(in, n.Path, "+MinLength"); err != nil {
		return err
	}
	strip, err := popBool(in, n.Path, "+Strip")
	if err != nil {
		return err
	}
	n.Strip = true
	if strip != nil {
		n.Strip = *strip
	}
	src, err := popString(in, n.Path, "+Regex")
	if err != nil {
		return err
	}
	if src != nil {
		// match is anchored at the start of the text
		re, err := regexp.Compile("^(?:" + *src + ")")
		if err != nil {
			return schemaErrorf(n.Path, "invalid `+Regex`: %v", err)
		}
		n.Pattern = re
	}
	return nil
}

func normalizeObject(n *Node, in *attrs) error {
	extra, err := popBool(in, n.Path, "+Extra")
	if err != nil {
		return err
	}
	if extra != nil {
		n.Extra = *extra
	}
	for _, k := range in.remaining() {
		if strings.HasPrefix(k, "+") {
			continue
		}
		raw, _ := in.pop(k)
		child, err := normalize(n.Path.Child(k), raw)
		if err != nil {
			return err
		}
		n.Fields = append(n.Fields, Field{Name: k, Node: child})
	}
	return nil
}

func normalizeList(n *Node, in *attrs) error {
	var err error
	if n.Length, err = popInt(in, n.Path, "+Length"); err != nil {
		return err
	}
	if n.MaxLength, err = popInt(in, n.Path, "+MaxLength"); err != nil {
		return err
	}
	if n.MinLength, err = popInt(in, n.Path, "+MinLength"); err != nil {
		return err
	}
	n.ValueType, err = popNode(in, n, "+ValueType")
	return err
}

func popNode(in *attrs, parent *Node, key string) (*Node, error) {
	raw, ok := in.pop(key)
	if !ok {
		return nil, schemaErrorf(parent.Path, "missing `%s` for type `%s`", key, parent.Kind)
	}
	return normalize(parent.Path.Child(key), raw)
}

func popInt(in *attrs, path Path, key string) (*int, error) {
	raw, ok := in.pop(key)
	if !ok || raw == nil {
		return nil, nil
	}
	switch t := raw.(type) {
	case int:
		return &t, nil
	case int64:
		v := int(t)
		return &v, nil
	case uint64:
		v := int(t)
		return &v, nil
	case float64:
		v := int(t)
		if float64(v) != t {
			return nil, schemaErrorf(path, "`%s` must be an integer, got %v", key, t)
		}
		return &v, nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return nil, schemaErrorf(path, "`%s` must be an integer, got %v", key, t)
		}
		v := int(i)
		return &v, nil
	default:
		return nil, schemaErrorf(path, "`%s` must be an integer, got %T", key, raw)
	}
}

func popBool(in *attrs, path Path, key string) (*bool, error) {
	raw, ok := in.pop(key)
	if !ok || raw == nil {
		return nil, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return nil, schemaErrorf(path, "`%s` must be a boolean, got %T", key, raw)
	}
	return &b, nil
}

func popString(in *attrs, path Path, key string) (*string, error) {
	raw, ok := in.pop(key)
	if !ok || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, schemaErrorf(path, "`%s` must be a string, got %T", key, raw)
	}
	return &s, nil
}

func popDecimal(in *attrs, path Path, key string) (*decimal.Decimal, error) {
	raw, ok := in.pop(key)
	if !ok || raw == nil {
		return nil, nil
	}
	var (
		d   decimal.Decimal
		err error
	)
	switch t := raw.(type) {
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case float64:
		d = decimal.NewFromFloat(t)
	case string:
		d, err = decimal.NewFromString(t)
	case json.Number:
		d, err = decimal.NewFromString(t.String())
	default:
		return nil, schemaErrorf(path, "`%s` must be a number, got %T", key, raw)
	}
	if err != nil {
		return nil, schemaErrorf(path, "`%s` must be a number: %v", key, err)
	}
	return &d, nil
}
