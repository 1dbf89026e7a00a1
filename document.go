package as3

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Document is an insertion-ordered attribute map. The YAML and JSON loaders
// produce Documents so that Object field order in a raw schema document
// survives normalization; plain map[string]any documents fall back to sorted
// key order instead.
type Document struct {
	keys []string
	vals map[string]any
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{vals: map[string]any{}}
}

// Set assigns key to value, keeping first-insertion order. It returns the
// Document for chaining when building documents in code.
func (d *Document) Set(key string, value any) *Document {
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = value
	return d
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	v, ok := d.vals[key]
	return v, ok
}

// Len returns the number of keys.
func (d *Document) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order. The slice is a copy.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Each calls fn for every key/value pair in insertion order until fn returns
// false.
func (d *Document) Each(fn func(key string, value any) bool) {
	for _, k := range d.keys {
		if !fn(k, d.vals[k]) {
			return
		}
	}
}

func (d *Document) clone() *Document {
	out := NewDocument()
	for _, k := range d.keys {
		out.Set(k, deepClone(d.vals[k]))
	}
	return out
}

// LoadYAML parses a YAML document into loader values: *Document for
// mappings, []any for sequences, and plain scalars otherwise. Mapping order
// is preserved.
func LoadYAML(data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("load yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	return yamlValue(root.Content[0])
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		d := NewDocument()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("load yaml: line %d: %w", n.Content[i].Line, err)
			}
			val, err := yamlValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			d.Set(key, val)
		}
		return d, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("load yaml: line %d: %w", n.Line, err)
		}
		return v, nil
	}
}

// LoadJSON parses a JSON document into loader values: *Document for objects,
// []any for arrays, json.Number for numbers, and plain scalars otherwise.
// Object key order is preserved.
func LoadJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := jsonValue(dec)
	if err != nil {
		return nil, fmt.Errorf("load json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("load json: trailing data after document")
	}
	return v, nil
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		d := NewDocument()
		for dec.More() {
			ktok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := ktok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, want string", ktok)
			}
			val, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			d.Set(key, val)
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
		return d, nil
	case '[':
		out := []any{}
		for dec.More() {
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// deepClone copies loader and plain container values recursively. Defaults
// pass through here both at normalization time and at every substitution, so
// outputs never alias the schema document.
func deepClone(v any) any {
	switch t := v.(type) {
	case *Document:
		return t.clone()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepClone(e)
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(t))
		for k, e := range t {
			out[k] = deepClone(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepClone(e)
		}
		return out
	default:
		return v
	}
}
