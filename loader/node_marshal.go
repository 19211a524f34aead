package loader

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

// MarshalJSON encodes the tree as JSON, keeping mapping keys in order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNodeJSON(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSONIndent encodes the tree as indented JSON, keeping key order.
func (n *Node) MarshalJSONIndent(prefix, indent string) ([]byte, error) {
	data, err := n.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNodeJSON(buf *bytes.Buffer, n *Node) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case MappingNode:
		buf.WriteByte('{')
		for i, p := range n.Pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, p.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeNodeJSON(buf, p.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNodeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	default:
		if n.Include != nil {
			return writeJSON(buf, includeTag+" "+n.Include.Path)
		}
		return writeJSON(buf, n.Value)
	}
}

// writeJSON writes a single JSON value without a trailing newline.
func writeJSON(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// MarshalYAML implements yaml.Marshaler, keeping mapping keys in order.
func (n *Node) MarshalYAML() (any, error) {
	return n.ToYAMLNode(), nil
}

// ToYAMLNode converts the tree to a yaml.Node.
func (n *Node) ToYAMLNode() *yaml.Node {
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch n.Kind {
	case MappingNode:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: make([]*yaml.Node, 0, 2*len(n.Pairs))}
		for _, p := range n.Pairs {
			out.Content = append(out.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key},
				p.Value.ToYAMLNode(),
			)
		}
		return out

	case SequenceNode:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: make([]*yaml.Node, 0, len(n.Items))}
		for _, item := range n.Items {
			out.Content = append(out.Content, item.ToYAMLNode())
		}
		return out

	default:
		if n.Include != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: includeTag, Value: n.Include.Path}
		}
		return scalarToYAML(n.Value)
	}
}

func scalarToYAML(v any) *yaml.Node {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}
	case float64:
		var s string
		switch {
		case math.IsInf(t, 1):
			s = ".inf"
		case math.IsInf(t, -1):
			s = "-.inf"
		case math.IsNaN(t):
			s = ".nan"
		default:
			s = strconv.FormatFloat(t, 'g', -1, 64)
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
	case string:
		out := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
		if strings.Contains(t, "\n") {
			out.Style = yaml.LiteralStyle
		}
		return out
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ""}
	}
}
