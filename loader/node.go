package loader

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the shape of a Node.
type Kind uint8

const (
	// ScalarNode holds a string, int64, float64, bool or nil value.
	ScalarNode Kind = iota + 1
	// MappingNode holds ordered key/value pairs with unique keys.
	MappingNode
	// SequenceNode holds an ordered list of nodes.
	SequenceNode
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case ScalarNode:
		return "scalar"
	case MappingNode:
		return "mapping"
	case SequenceNode:
		return "sequence"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IncludeMarker records an !include directive found on a scalar during
// parsing. It is consumed by include expansion and never survives a load.
type IncludeMarker struct {
	// Path is the include target as written after the tag
	Path string
}

// Pair is a single mapping entry.
type Pair struct {
	Key   string
	Value *Node
}

// Node is a document tree node: a mapping, a sequence or a scalar.
//
// Nodes form a tree: a node has at most one parent. Content injected by
// reference resolution is always a deep copy of its source.
type Node struct {
	// Kind is the node shape
	Kind Kind
	// Value is the scalar value: string, int64, float64, bool or nil
	Value any
	// Pairs holds mapping entries in source order
	Pairs []*Pair
	// Items holds sequence elements in source order
	Items []*Node
	// Include is set on scalars produced by an !include tag
	Include *IncludeMarker

	// Line is the 1-based source line (0 if unknown)
	Line int
	// Column is the 1-based source column (0 if unknown)
	Column int
	// File is the file or URL the node was parsed from
	File string
}

// NewScalar returns a scalar node. Integer and float types are normalized to
// int64 and float64.
func NewScalar(v any) *Node {
	return &Node{Kind: ScalarNode, Value: normalizeScalar(v)}
}

// NewString returns a string scalar node.
func NewString(s string) *Node {
	return &Node{Kind: ScalarNode, Value: s}
}

// NewMapping returns a mapping node holding pairs.
func NewMapping(pairs ...*Pair) *Node {
	return &Node{Kind: MappingNode, Pairs: pairs}
}

// NewSequence returns a sequence node holding items.
func NewSequence(items ...*Node) *Node {
	return &Node{Kind: SequenceNode, Items: items}
}

// P is shorthand for building a mapping Pair.
func P(key string, value *Node) *Pair {
	return &Pair{Key: key, Value: value}
}

func normalizeScalar(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int64, float64:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint:
		if uint64(t) <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	case uint64:
		if t <= math.MaxInt64 {
			return int64(t)
		}
		return float64(t)
	case float32:
		return float64(t)
	default:
		return fmt.Sprint(t)
	}
}

// IsMapping reports whether n is a mapping.
func (n *Node) IsMapping() bool { return n != nil && n.Kind == MappingNode }

// IsSequence reports whether n is a sequence.
func (n *Node) IsSequence() bool { return n != nil && n.Kind == SequenceNode }

// IsScalar reports whether n is a scalar.
func (n *Node) IsScalar() bool { return n != nil && n.Kind == ScalarNode }

// IsNull reports whether n is a null scalar.
func (n *Node) IsNull() bool { return n.IsScalar() && n.Value == nil }

// Len returns the number of mapping pairs or sequence items, 0 for scalars.
func (n *Node) Len() int {
	switch {
	case n.IsMapping():
		return len(n.Pairs)
	case n.IsSequence():
		return len(n.Items)
	default:
		return 0
	}
}

func (n *Node) indexOf(key string) int {
	for i, p := range n.Pairs {
		if p.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key in a mapping.
func (n *Node) Get(key string) (*Node, bool) {
	if !n.IsMapping() {
		return nil, false
	}
	if i := n.indexOf(key); i >= 0 {
		return n.Pairs[i].Value, true
	}
	return nil, false
}

// Has reports whether a mapping contains key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Set stores value under key in a mapping. An existing key keeps its
// position; a new key is appended. Set panics if n is not a mapping.
func (n *Node) Set(key string, value *Node) {
	if !n.IsMapping() {
		panic("loader: Set on " + n.kindName())
	}
	if i := n.indexOf(key); i >= 0 {
		n.Pairs[i].Value = value
		return
	}
	n.Pairs = append(n.Pairs, &Pair{Key: key, Value: value})
}

// Delete removes key from a mapping and reports whether it was present.
func (n *Node) Delete(key string) bool {
	if !n.IsMapping() {
		return false
	}
	i := n.indexOf(key)
	if i < 0 {
		return false
	}
	n.Pairs = append(n.Pairs[:i], n.Pairs[i+1:]...)
	return true
}

// Keys returns mapping keys in order.
func (n *Node) Keys() []string {
	if !n.IsMapping() {
		return nil
	}
	keys := make([]string, len(n.Pairs))
	for i, p := range n.Pairs {
		keys[i] = p.Key
	}
	return keys
}

// Index returns the i-th sequence item.
func (n *Node) Index(i int) (*Node, bool) {
	if !n.IsSequence() || i < 0 || i >= len(n.Items) {
		return nil, false
	}
	return n.Items[i], true
}

// AsString returns the value of a string scalar.
func (n *Node) AsString() (string, bool) {
	if !n.IsScalar() {
		return "", false
	}
	s, ok := n.Value.(string)
	return s, ok
}

// AsBool returns the value of a boolean scalar.
func (n *Node) AsBool() (bool, bool) {
	if !n.IsScalar() {
		return false, false
	}
	b, ok := n.Value.(bool)
	return b, ok
}

// AsInt returns the value of an integer scalar.
func (n *Node) AsInt() (int64, bool) {
	if !n.IsScalar() {
		return 0, false
	}
	i, ok := n.Value.(int64)
	return i, ok
}

// AsFloat returns the value of a numeric scalar as a float64.
func (n *Node) AsFloat() (float64, bool) {
	if !n.IsScalar() {
		return 0, false
	}
	switch v := n.Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Interface converts the tree to plain Go values: map[string]any, []any and
// scalar values. Key order is lost.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case MappingNode:
		m := make(map[string]any, len(n.Pairs))
		for _, p := range n.Pairs {
			m[p.Key] = p.Value.Interface()
		}
		return m
	case SequenceNode:
		s := make([]any, len(n.Items))
		for i, item := range n.Items {
			s[i] = item.Interface()
		}
		return s
	default:
		return n.Value
	}
}

// Copy returns a deep copy of the tree rooted at n.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Include != nil {
		inc := *n.Include
		cp.Include = &inc
	}
	if n.Pairs != nil {
		cp.Pairs = make([]*Pair, len(n.Pairs))
		for i, p := range n.Pairs {
			cp.Pairs[i] = &Pair{Key: p.Key, Value: p.Value.Copy()}
		}
	}
	if n.Items != nil {
		cp.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			cp.Items[i] = item.Copy()
		}
	}
	return &cp
}

// Walk visits n and every descendant in pre-order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, p := range n.Pairs {
		p.Value.Walk(fn)
	}
	for _, item := range n.Items {
		item.Walk(fn)
	}
}

// Equal reports whether two trees hold the same content in the same order.
// Source positions are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case MappingNode:
		if len(a.Pairs) != len(b.Pairs) {
			return false
		}
		for i := range a.Pairs {
			if a.Pairs[i].Key != b.Pairs[i].Key || !Equal(a.Pairs[i].Value, b.Pairs[i].Value) {
				return false
			}
		}
		return true
	case SequenceNode:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !Equal(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	default:
		if (a.Include == nil) != (b.Include == nil) {
			return false
		}
		if a.Include != nil && a.Include.Path != b.Include.Path {
			return false
		}
		return a.Value == b.Value
	}
}

// String renders the tree as compact JSON.
func (n *Node) String() string {
	data, err := n.MarshalJSON()
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(data)
}

func (n *Node) kindName() string {
	if n == nil {
		return "nil node"
	}
	return n.Kind.String()
}
