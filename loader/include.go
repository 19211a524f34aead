package loader

import (
	"context"

	"github.com/erraggy/ramltools/internal/pathutil"
	"github.com/erraggy/ramltools/ramlerrors"
)

// expand replaces every include marker under n with the processed content
// of its target. Mapping values and sequence items are expanded in place;
// an included mapping replaces its slot and is never merged with siblings.
func (s *loadSession) expand(ctx context.Context, n *Node, rc resolutionContext) (*Node, error) {
	path := pathutil.Get("$")
	defer pathutil.Put(path)
	return s.expandNode(ctx, n, rc, path)
}

func (s *loadSession) expandNode(ctx context.Context, n *Node, rc resolutionContext, path *pathutil.PathBuilder) (*Node, error) {
	switch {
	case n == nil:
		return n, nil

	case n.Include != nil:
		target := n.Include.Path
		content, err := s.load(ctx, target, rc)
		if err != nil {
			return nil, annotate(err, rc.file, n, path.String(), target)
		}
		s.stats.IncludesExpanded++
		s.log.Debug("include expanded", "file", rc.file, "path", path.String(), "target", target)
		return content, nil

	case n.Kind == MappingNode:
		for _, p := range n.Pairs {
			path.PushKey(p.Key)
			v, err := s.expandNode(ctx, p.Value, rc, path)
			path.Pop()
			if err != nil {
				return nil, err
			}
			p.Value = v
		}

	case n.Kind == SequenceNode:
		for i, item := range n.Items {
			path.PushIndex(i)
			v, err := s.expandNode(ctx, item, rc, path)
			path.Pop()
			if err != nil {
				return nil, err
			}
			n.Items[i] = v
		}
	}
	return n, nil
}

// annotate adds the context of the directive at n in file to err. An error
// raised inside another file keeps its own position and records file in its
// trace instead.
func annotate(err error, file string, n *Node, path, directive string) *ramlerrors.LoadError {
	loadErr := ramlerrors.Wrap(err)
	if loadErr.File != "" && loadErr.File != file {
		return loadErr.Through(file)
	}
	loadErr.WithFile(file).WithPath(path).WithDirective(directive)
	if n != nil {
		loadErr.WithPosition(n.Line, n.Column)
	}
	return loadErr
}
