package doctransform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Value is the universal tree document type: Null, Bool, Number, String,
// Array or Object. Object preserves insertion order, mirroring how the
// teacher's yaml.Node children are kept in document order. Array
// elements and Object fields are stored behind pointers so that writers
// which hold a *Value into the middle of a tree (the evaluator's prefix
// walk, the flatten engine) can mutate in place without the caller
// re-assembling every ancestor by hand.
type Value struct {
	kind   Kind
	b      bool
	num    float64
	str    string
	arr    []*Value
	keys   []string
	fields map[string]*Value
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean scalar.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric scalar.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// String wraps a string scalar.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array wraps a sequence of values.
func Array(items ...Value) Value {
	v := Value{kind: KindArray}
	for _, it := range items {
		v.Append(it)
	}
	return v
}

// NewObject returns an empty object value.
func NewObject() Value {
	return Value{kind: KindObject, fields: make(map[string]*Value)}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) BoolValue() bool      { return v.b }
func (v Value) NumberValue() float64 { return v.num }
func (v Value) StringValue() string  { return v.str }

// Items returns the elements of an Array value (nil for any other kind).
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.arr))
	for i, p := range v.arr {
		out[i] = *p
	}
	return out
}

// Len reports the number of elements (Array) or fields (Object), else 0.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.keys)
	default:
		return 0
	}
}

// Keys returns the field names of an Object value, in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Field looks up a key on an Object value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, ok := v.fields[key]
	if !ok {
		return Value{}, false
	}
	return *f, true
}

// Index looks up an element of an Array value.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return *v.arr[i], true
}

// Set assigns a field on an Object value, preserving first-seen order.
// Converts v to an empty Object first if it wasn't already one.
func (v *Value) Set(key string, val Value) {
	if v.kind != KindObject {
		*v = NewObject()
	}
	if v.fields == nil {
		v.fields = make(map[string]*Value)
	}
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	cp := val
	v.fields[key] = &cp
}

// objectChild returns a pointer to the Object-kind child at key,
// creating it (or converting an existing non-object value) as needed.
// Used by prefix-path materialization, where a rule's destination must
// be built up one object level at a time before the leaf write.
func (v *Value) objectChild(key string) *Value {
	if v.kind != KindObject {
		*v = NewObject()
	}
	if v.fields == nil {
		v.fields = make(map[string]*Value)
	}
	child, ok := v.fields[key]
	if !ok {
		child = &Value{kind: KindObject, fields: make(map[string]*Value)}
		v.fields[key] = child
		v.keys = append(v.keys, key)
	} else if child.kind != KindObject {
		*child = NewObject()
	}
	return child
}

// Append pushes an element onto an Array value, converting non-arrays in place.
func (v *Value) Append(val Value) {
	if v.kind != KindArray {
		*v = Value{kind: KindArray}
	}
	cp := val
	v.arr = append(v.arr, &cp)
}

// GrowArray extends v (which must already be Array, or becomes one) to
// length n, padding new slots with Null. No-op if v already has length >= n.
func (v *Value) GrowArray(n int) {
	if v.kind != KindArray {
		*v = Value{kind: KindArray}
	}
	for len(v.arr) < n {
		null := Null()
		v.arr = append(v.arr, &null)
	}
}

// SetIndex writes val at index i of an Array value, growing as needed.
func (v *Value) SetIndex(i int, val Value) {
	v.GrowArray(i + 1)
	cp := val
	v.arr[i] = &cp
}

// Clone returns a deep copy, grounded on the teacher's Node.Clone/cloneWithSeen.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		out := Value{kind: KindArray, arr: make([]*Value, len(v.arr))}
		for i, p := range v.arr {
			cp := p.Clone()
			out.arr[i] = &cp
		}
		return out
	case KindObject:
		out := Value{kind: KindObject, fields: make(map[string]*Value, len(v.fields))}
		out.keys = append([]string(nil), v.keys...)
		for _, k := range v.keys {
			cp := v.fields[k].Clone()
			out.fields[k] = &cp
		}
		return out
	default:
		return v
	}
}

// Equal reports whether v and other are structurally identical. Object
// comparison ignores key order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.num == other.num
	case KindString:
		return v.str == other.str
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(*other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.keys) != len(other.keys) {
			return false
		}
		for _, k := range v.keys {
			ov, ok := other.fields[k]
			if !ok || !v.fields[k].Equal(*ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a debug form of the value, grounded on Node.stringify.
func (v Value) String() string {
	var sb strings.Builder
	v.stringify(&sb, 0)
	return sb.String()
}

func (v Value) stringify(sb *strings.Builder, indent int) {
	indentStr := strings.Repeat("  ", indent)
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		fmt.Fprintf(sb, "%v", v.b)
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
	case KindString:
		fmt.Fprintf(sb, "%q", v.str)
	case KindArray:
		for _, item := range v.arr {
			sb.WriteString("\n")
			sb.WriteString(indentStr)
			sb.WriteString("- ")
			item.stringify(sb, indent+1)
		}
	case KindObject:
		for _, k := range v.keys {
			sb.WriteString("\n")
			sb.WriteString(indentStr)
			fmt.Fprintf(sb, "%s: ", k)
			v.fields[k].stringify(sb, indent+1)
		}
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.fields[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("doctransform: unknown value kind %v", v.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = fromInterface(raw)
	return nil
}

func fromInterface(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case json.Number:
		f, _ := t.Float64()
		return Number(f)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case string:
		return String(t)
	case []interface{}:
		out := Value{kind: KindArray}
		for _, e := range t {
			out.Append(fromInterface(e))
		}
		return out
	case map[string]interface{}:
		out := NewObject()
		for k, e := range t {
			out.Set(k, fromInterface(e))
		}
		return out
	default:
		return Null()
	}
}

// MarshalYAML implements yaml.Marshaler by building a *yaml.Node
// directly, the same approach the teacher's convertToYAMLNode takes,
// since gopkg.in/yaml.v3 (unlike v2) has no MapSlice type to lean on
// for order-preserving map encoding.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.toYAMLNode(), nil
}

func (v Value) toYAMLNode() *yaml.Node {
	switch v.kind {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case KindBool:
		val := "false"
		if v.b {
			val = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: val}
	case KindNumber:
		// Leave Tag empty so the encoder infers !!int vs !!float from the
		// formatted value itself — a whole number like 5 must round-trip
		// as plain "5", not be force-tagged "!!float 5".
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(v.num, 'g', -1, 64)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}
	case KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range v.arr {
			node.Content = append(node.Content, e.toYAMLNode())
		}
		return node
	case KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range v.keys {
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			node.Content = append(node.Content, keyNode, v.fields[k].toYAMLNode())
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// UnmarshalYAML implements yaml.Unmarshaler, preserving mapping key order
// the way the teacher's ConvertFromYAMLNode preserves document order.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	*v = fromYAMLNode(node)
	return nil
}

func fromYAMLNode(node *yaml.Node) Value {
	if node == nil {
		return Null()
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) > 0 {
			return fromYAMLNode(node.Content[0])
		}
		return Null()
	case yaml.MappingNode:
		out := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			out.Set(node.Content[i].Value, fromYAMLNode(node.Content[i+1]))
		}
		return out
	case yaml.SequenceNode:
		out := Value{kind: KindArray}
		for _, child := range node.Content {
			out.Append(fromYAMLNode(child))
		}
		return out
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	default:
		return Null()
	}
}

func scalarFromYAML(node *yaml.Node) Value {
	switch node.Tag {
	case "!!null":
		return Null()
	case "!!bool":
		return Bool(node.Value == "true")
	case "!!int":
		if n, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
			return Number(float64(n))
		}
		return String(node.Value)
	case "!!float":
		if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
			return Number(f)
		}
		return String(node.Value)
	default:
		// An explicitly-quoted scalar is already resolved to !!str by the
		// decoder; its text must never be reinterpreted as bool/int/float
		// (a quoted "true" or "007" stays the literal string it was
		// written as).
		if node.Tag == "!!str" {
			return String(node.Value)
		}
		switch node.Value {
		case "true":
			return Bool(true)
		case "false":
			return Bool(false)
		case "null", "~", "":
			return Null()
		}
		if n, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
			return Number(float64(n))
		}
		if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
			return Number(f)
		}
		return String(node.Value)
	}
}
