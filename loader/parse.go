package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/ramltools/internal/fileutil"
	"github.com/erraggy/ramltools/ramlerrors"
)

// includeTag marks a scalar whose value is a path to splice in.
const includeTag = "!include"

// maxAliasNodes bounds the nodes produced by expanding YAML aliases, which
// otherwise grow exponentially with nested anchors.
const maxAliasNodes = 1_000_000

// scalarTags are the YAML core tags accepted on scalars.
var scalarTags = map[string]bool{
	"!!str":       true,
	"!!int":       true,
	"!!float":     true,
	"!!bool":      true,
	"!!null":      true,
	"!!timestamp": true,
	"!!binary":    true,
	"!!merge":     true,
}

var yamlErrLine = regexp.MustCompile(`line (\d+)`)

// ParseBytes parses RAML/YAML text into a Node tree. Scalars tagged with
// !include become nodes carrying an IncludeMarker; no file is read. file is
// recorded in node positions and errors only.
//
// Errors are *ramlerrors.LoadError of kind Syntax or UnknownTag.
func ParseBytes(data []byte, file string) (*Node, error) {
	return parseText(data, file, true)
}

// parseJSON parses JSON content. JSON has no tag syntax, so any tag,
// !include included, is reported as UnknownTag.
func parseJSON(data []byte, file string) (*Node, error) {
	text, err := fileutil.DecodeText(data)
	if err != nil {
		return nil, ramlerrors.New(ramlerrors.Syntax, "invalid text encoding").WithFile(file).WithCause(err)
	}
	// The YAML parser accepts a superset of JSON; reject what JSON does not.
	if !json.Valid(text) {
		return nil, jsonSyntaxError(text, file)
	}
	return parseText(text, file, false)
}

func jsonSyntaxError(text []byte, file string) *ramlerrors.LoadError {
	var v any
	err := json.Unmarshal(text, &v)
	if err == nil {
		err = errors.New("invalid JSON")
	}
	loadErr := ramlerrors.New(ramlerrors.Syntax, "invalid JSON").WithFile(file).WithCause(err)
	var synErr *json.SyntaxError
	if errors.As(err, &synErr) && synErr.Offset > 0 && synErr.Offset <= int64(len(text)) {
		prefix := text[:synErr.Offset]
		line := bytes.Count(prefix, []byte{'\n'}) + 1
		col := len(prefix) - bytes.LastIndexByte(prefix, '\n')
		loadErr.WithPosition(line, col)
	}
	return loadErr
}

func parseText(data []byte, file string, allowInclude bool) (*Node, error) {
	text, err := fileutil.DecodeText(data)
	if err != nil {
		return nil, ramlerrors.New(ramlerrors.Syntax, "invalid text encoding").WithFile(file).WithCause(err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, syntaxError(err, file)
	}

	c := &converter{file: file, allowInclude: allowInclude}
	if doc.Kind == 0 {
		// Empty input
		return &Node{Kind: ScalarNode, File: file}, nil
	}
	return c.convert(&doc)
}

// syntaxError converts a yaml error into a Syntax LoadError, recovering the
// line number from the message when present.
func syntaxError(err error, file string) *ramlerrors.LoadError {
	loadErr := ramlerrors.New(ramlerrors.Syntax, "").WithFile(file).WithCause(err)
	if m := yamlErrLine.FindStringSubmatch(err.Error()); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			loadErr.Line = line
		}
	}
	return loadErr
}

// converter turns a yaml.Node tree into a Node tree.
type converter struct {
	file         string
	allowInclude bool
	aliasNodes   int
}

func (c *converter) errorAt(kind ramlerrors.Kind, n *yaml.Node, format string, args ...any) *ramlerrors.LoadError {
	return ramlerrors.Newf(kind, format, args...).WithFile(c.file).WithPosition(n.Line, n.Column)
}

func (c *converter) position(out *Node, n *yaml.Node) *Node {
	out.Line = n.Line
	out.Column = n.Column
	out.File = c.file
	return out
}

func (c *converter) convert(n *yaml.Node) (*Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return c.position(&Node{Kind: ScalarNode}, n), nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		return c.convertAlias(n)
	case yaml.ScalarNode:
		return c.convertScalar(n)
	case yaml.MappingNode:
		return c.convertMapping(n)
	case yaml.SequenceNode:
		return c.convertSequence(n)
	default:
		return nil, c.errorAt(ramlerrors.Syntax, n, "unexpected YAML node kind %d", n.Kind)
	}
}

func (c *converter) convertAlias(n *yaml.Node) (*Node, error) {
	if n.Alias == nil {
		return nil, c.errorAt(ramlerrors.Syntax, n, "unknown anchor %q", n.Value)
	}
	c.aliasNodes++
	if c.aliasNodes > maxAliasNodes {
		return nil, c.errorAt(ramlerrors.ResourceLimit, n, "too many alias expansions (limit %d)", maxAliasNodes)
	}
	// Each alias yields its own copy so the result stays a tree.
	return c.convert(n.Alias)
}

func (c *converter) convertScalar(n *yaml.Node) (*Node, error) {
	if n.Tag == includeTag {
		if !c.allowInclude {
			return nil, c.errorAt(ramlerrors.UnknownTag, n, "tag %s is not supported in JSON content", includeTag)
		}
		path := strings.TrimSpace(n.Value)
		if path == "" {
			return nil, c.errorAt(ramlerrors.Syntax, n, "%s requires a file path", includeTag)
		}
		return c.position(&Node{Kind: ScalarNode, Value: path, Include: &IncludeMarker{Path: path}}, n), nil
	}

	tag := n.ShortTag()
	if !scalarTags[tag] {
		return nil, c.errorAt(ramlerrors.UnknownTag, n, "could not determine a constructor for the tag %s", n.Tag)
	}

	out := c.position(&Node{Kind: ScalarNode}, n)
	switch tag {
	case "!!null":
		out.Value = nil
	case "!!bool", "!!int", "!!float":
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, c.errorAt(ramlerrors.Syntax, n, "invalid %s value %q: %w", tag, n.Value, err)
		}
		out.Value = normalizeScalar(v)
		if _, isInt := out.Value.(int64); tag == "!!int" && !isInt {
			// Integers beyond int64 keep the digits as written.
			out.Value = n.Value
		}
	default:
		// Timestamps and binary stay textual, as written.
		out.Value = n.Value
	}
	return out, nil
}

func (c *converter) convertSequence(n *yaml.Node) (*Node, error) {
	if err := c.checkCollectionTag(n, "!!seq"); err != nil {
		return nil, err
	}
	out := c.position(&Node{Kind: SequenceNode, Items: make([]*Node, 0, len(n.Content))}, n)
	for _, item := range n.Content {
		child, err := c.convert(item)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, child)
	}
	return out, nil
}

func (c *converter) checkCollectionTag(n *yaml.Node, want string) error {
	if n.Tag == includeTag {
		return c.errorAt(ramlerrors.Syntax, n, "%s requires a scalar file path, got a %s", includeTag, kindOfYAML(n))
	}
	if tag := n.ShortTag(); tag != want {
		return c.errorAt(ramlerrors.UnknownTag, n, "could not determine a constructor for the tag %s", n.Tag)
	}
	return nil
}

// mappingEntry tracks where a key landed and whether it came from a merge key.
type mappingEntry struct {
	index  int
	merged bool
}

func (c *converter) convertMapping(n *yaml.Node) (*Node, error) {
	if err := c.checkCollectionTag(n, "!!map"); err != nil {
		return nil, err
	}
	if len(n.Content)%2 != 0 {
		return nil, c.errorAt(ramlerrors.Syntax, n, "mapping has an odd number of nodes")
	}

	out := c.position(&Node{Kind: MappingNode, Pairs: make([]*Pair, 0, len(n.Content)/2)}, n)
	seen := make(map[string]mappingEntry, len(n.Content)/2)

	for i := 0; i < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.ShortTag() == "!!merge" {
			if err := c.applyMerge(out, seen, valNode); err != nil {
				return nil, err
			}
			continue
		}

		key, err := c.mappingKey(keyNode)
		if err != nil {
			return nil, err
		}
		value, err := c.convert(valNode)
		if err != nil {
			return nil, err
		}

		if entry, dup := seen[key]; dup {
			if !entry.merged {
				return nil, c.errorAt(ramlerrors.Syntax, keyNode, "mapping key %q already defined at line %d", key, out.Pairs[entry.index].Value.Line)
			}
			// Explicit keys override merged ones in place.
			out.Pairs[entry.index].Value = value
			seen[key] = mappingEntry{index: entry.index}
			continue
		}
		seen[key] = mappingEntry{index: len(out.Pairs)}
		out.Pairs = append(out.Pairs, &Pair{Key: key, Value: value})
	}
	return out, nil
}

// applyMerge handles a "<<" key whose value is a mapping or a sequence of
// mappings. Keys already present are left alone.
func (c *converter) applyMerge(out *Node, seen map[string]mappingEntry, valNode *yaml.Node) error {
	merged, err := c.convert(valNode)
	if err != nil {
		return err
	}

	var sources []*Node
	switch {
	case merged.IsMapping():
		sources = []*Node{merged}
	case merged.IsSequence():
		sources = merged.Items
	}
	if len(sources) == 0 && !merged.IsMapping() {
		return c.errorAt(ramlerrors.Syntax, valNode, "merge key requires a mapping or a sequence of mappings")
	}

	for _, src := range sources {
		if !src.IsMapping() {
			return c.errorAt(ramlerrors.Syntax, valNode, "merge key requires a mapping or a sequence of mappings")
		}
		for _, p := range src.Pairs {
			if _, exists := seen[p.Key]; exists {
				continue
			}
			seen[p.Key] = mappingEntry{index: len(out.Pairs), merged: true}
			out.Pairs = append(out.Pairs, &Pair{Key: p.Key, Value: p.Value})
		}
	}
	return nil
}

func (c *converter) mappingKey(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind != yaml.ScalarNode {
		return "", c.errorAt(ramlerrors.Syntax, n, "mapping key must be a scalar, got a %s", kindOfYAML(n))
	}
	if n.Tag == includeTag {
		return "", c.errorAt(ramlerrors.Syntax, n, "%s cannot be used on a mapping key", includeTag)
	}
	if tag := n.ShortTag(); !scalarTags[tag] {
		return "", c.errorAt(ramlerrors.UnknownTag, n, "could not determine a constructor for the tag %s", n.Tag)
	}
	return n.Value, nil
}

func kindOfYAML(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("node kind %d", n.Kind)
	}
}
