package loader

import (
	"context"
	"fmt"
	"strconv"

	"github.com/erraggy/ramltools/internal/pathutil"
	"github.com/erraggy/ramltools/ramlerrors"
)

// refResolver replaces $ref mappings in one JSON document.
//
// Resolution is depth-first and post-order: the sibling values of a $ref
// mapping, and every nested reference, are resolved before the mapping
// itself. Same-document targets are resolved on demand, so a pointer may
// pass through or land on content that still holds references.
type refResolver struct {
	s  *loadSession
	rc resolutionContext
	// root is the document being resolved
	root *Node
	// active holds the collections currently being resolved; reaching one
	// again through a pointer is a cycle
	active map[*Node]bool
	// hops counts the $ref values being followed on the current path
	hops int
}

// resolveRefs resolves every reference in the document n loaded in rc and
// returns the resolved root.
func (s *loadSession) resolveRefs(ctx context.Context, n *Node, rc resolutionContext) (*Node, error) {
	r := &refResolver{s: s, rc: rc, root: n, active: make(map[*Node]bool)}
	path := pathutil.Get("$")
	defer pathutil.Put(path)
	return r.resolveNode(ctx, n, path)
}

func (r *refResolver) resolveNode(ctx context.Context, n *Node, path *pathutil.PathBuilder) (*Node, error) {
	if n == nil || n.Kind == ScalarNode {
		return n, nil
	}
	if r.active[n] {
		return nil, ramlerrors.New(ramlerrors.CyclicReference, "reference resolves back into itself").
			WithFile(r.rc.file).WithPosition(n.Line, n.Column).WithPath(path.String())
	}
	r.active[n] = true
	defer delete(r.active, n)

	if n.Kind == SequenceNode {
		for i, item := range n.Items {
			path.PushIndex(i)
			v, err := r.resolveNode(ctx, item, path)
			path.Pop()
			if err != nil {
				return nil, err
			}
			n.Items[i] = v
		}
		return n, nil
	}

	for _, p := range n.Pairs {
		if p.Key == refKey {
			continue
		}
		path.PushKey(p.Key)
		v, err := r.resolveNode(ctx, p.Value, path)
		path.Pop()
		if err != nil {
			return nil, err
		}
		p.Value = v
	}

	refNode, ok := n.Get(refKey)
	if !ok {
		return n, nil
	}
	return r.dereference(ctx, n, refNode, path)
}

// dereference returns the replacement for the $ref mapping n.
func (r *refResolver) dereference(ctx context.Context, n, refNode *Node, path *pathutil.PathBuilder) (*Node, error) {
	raw, ok := refNode.AsString()
	if !ok {
		err := ramlerrors.Newf(ramlerrors.InvalidReference, "%s value must be a string, got a %s", refKey, refNode.kindName())
		return nil, annotate(err, r.rc.file, refNode, path.String(), "")
	}

	target, spec, err := r.follow(ctx, raw)
	if err != nil {
		return nil, annotate(err, r.rc.file, refNode, path.String(), raw)
	}

	replacement, err := mergeReference(n, target)
	if err != nil {
		return nil, annotate(err, r.rc.file, refNode, path.String(), raw)
	}

	r.s.stats.RefsResolved++
	r.s.metrics.recordRef(spec.Target)
	r.s.log.Debug("resolved reference", "ref", raw, "file", r.rc.file, "path", path.String(), "target", spec.Target.String())
	return replacement, nil
}

// follow returns the node a $ref value points to. The node belongs to its
// document and must be copied before use.
func (r *refResolver) follow(ctx context.Context, raw string) (*Node, ReferenceSpec, error) {
	spec, err := ParseReference(raw)
	if err != nil {
		return nil, spec, err
	}
	tokens, err := spec.Tokens()
	if err != nil {
		return nil, spec, invalidRef(raw, "malformed fragment").WithCause(err)
	}

	r.hops++
	defer func() { r.hops-- }()
	if r.hops > r.s.cfg.MaxRefDepth {
		return nil, spec, ramlerrors.Newf(ramlerrors.ResourceLimit, "reference chain exceeds maximum depth of %d", r.s.cfg.MaxRefDepth)
	}

	if spec.Target == TargetNone {
		target, err := r.lookup(ctx, tokens, spec.Fragment)
		return target, spec, err
	}

	if spec.Target == TargetRemoteURL && r.s.cfg.NoRemoteRefs {
		return nil, spec, invalidRef(raw, "remote references are disabled")
	}
	loc, err := r.s.locate(spec.Location, r.rc)
	if err != nil {
		return nil, spec, err
	}
	if loc.id == r.rc.file {
		// A reference naming its own file is a same-document reference.
		target, err := r.lookup(ctx, tokens, spec.Fragment)
		return target, spec, err
	}

	doc, err := r.s.jsonDocument(ctx, loc, r.rc)
	if err != nil {
		return nil, spec, err
	}
	target, err := walkPointer(doc, tokens, spec.Fragment, loc.id)
	return target, spec, err
}

// lookup walks a pointer through the document being resolved. A reference
// met on the way, or at the target, is resolved first and written back into
// the tree. A mapping on the way that is itself being resolved, such as the
// root holding the $ref being followed, is walked through its raw pairs;
// only landing on it is a cycle.
func (r *refResolver) lookup(ctx context.Context, tokens []string, fragment string) (*Node, error) {
	path := pathutil.Get("$")
	defer pathutil.Put(path)

	cur := r.root
	set := func(v *Node) { r.root = v }
	for i := 0; ; i++ {
		final := i == len(tokens)
		if final || (cur.Has(refKey) && !r.active[cur]) {
			resolved, err := r.resolveNode(ctx, cur, path)
			if err != nil {
				return nil, err
			}
			set(resolved)
			cur = resolved
		}
		if final {
			return cur, nil
		}

		switch cur.Kind {
		case MappingNode:
			idx := cur.indexOf(tokens[i])
			if idx < 0 {
				return nil, missingSegment(fragment, tokens, i, r.rc.file)
			}
			p := cur.Pairs[idx]
			cur, set = p.Value, func(v *Node) { p.Value = v }
			path.PushKey(tokens[i])
		case SequenceNode:
			idx, ok := sequenceIndex(tokens[i], len(cur.Items))
			if !ok {
				return nil, missingSegment(fragment, tokens, i, r.rc.file)
			}
			items := cur.Items
			cur, set = items[idx], func(v *Node) { items[idx] = v }
			path.PushIndex(idx)
		default:
			return nil, missingSegment(fragment, tokens, i, r.rc.file)
		}
	}
}

// walkPointer returns the node addressed by tokens in a resolved document.
func walkPointer(doc *Node, tokens []string, fragment, file string) (*Node, error) {
	cur := doc
	for i, tok := range tokens {
		switch cur.Kind {
		case MappingNode:
			next, ok := cur.Get(tok)
			if !ok {
				return nil, missingSegment(fragment, tokens, i, file)
			}
			cur = next
		case SequenceNode:
			idx, ok := sequenceIndex(tok, len(cur.Items))
			if !ok {
				return nil, missingSegment(fragment, tokens, i, file)
			}
			cur = cur.Items[idx]
		default:
			return nil, missingSegment(fragment, tokens, i, file)
		}
	}
	return cur, nil
}

// sequenceIndex parses a pointer token as an index into a sequence of n
// items. Per RFC 6901 indices are decimal without leading zeros.
func sequenceIndex(tok string, n int) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	idx, err := strconv.Atoi(tok)
	if err != nil || idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

// missingSegment reports that tokens[i] does not exist under the node
// reached by the tokens before it.
func missingSegment(fragment string, tokens []string, i int, file string) *ramlerrors.LoadError {
	msg := fmt.Sprintf("pointer #%s: %q not found under #%s", fragment, tokens[i], pathutil.JoinPointer(tokens[:i]))
	if file != "" {
		msg += " in " + file
	}
	return ramlerrors.New(ramlerrors.UnresolvableFragment, msg)
}

// mergeReference builds the replacement for the $ref mapping n from a deep
// copy of target: sibling keys of $ref are set over the copy.
func mergeReference(n, target *Node) (*Node, error) {
	resolved := target.Copy()
	siblings := make([]*Pair, 0, len(n.Pairs))
	for _, p := range n.Pairs {
		if p.Key != refKey {
			siblings = append(siblings, p)
		}
	}
	if len(siblings) == 0 {
		return resolved, nil
	}
	if !resolved.IsMapping() {
		return nil, ramlerrors.Newf(ramlerrors.InvalidReference,
			"reference target is a %s; sibling keys require a mapping", resolved.kindName())
	}
	for _, p := range siblings {
		resolved.Set(p.Key, p.Value)
	}
	return resolved, nil
}
