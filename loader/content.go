package loader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"

	"github.com/erraggy/ramltools/internal/fileutil"
	"github.com/erraggy/ramltools/ramlerrors"
)

// location identifies a file or URL to open.
type location struct {
	// id is the absolute path or URL; it keys the open-file chain and the
	// document cache
	id     string
	remote bool
}

// resolutionContext is the per-file state threaded through expansion and
// resolution. It is passed by value; enter returns a fresh copy.
type resolutionContext struct {
	// baseDir resolves relative targets of local files
	baseDir string
	// baseURL resolves relative targets of remote files; empty for local files
	baseURL string
	// file is the file being processed, empty for in-memory input
	file string
	// chain lists the files currently open, outermost first
	chain []string
}

func (rc resolutionContext) isOpen(id string) bool {
	return slices.Contains(rc.chain, id)
}

// enter returns the context for processing loc from within rc.
func (rc resolutionContext) enter(loc location) resolutionContext {
	chain := make([]string, len(rc.chain), len(rc.chain)+1)
	copy(chain, rc.chain)
	next := resolutionContext{file: loc.id, chain: append(chain, loc.id)}
	if loc.remote {
		next.baseURL = loc.id
	} else {
		next.baseDir = filepath.Dir(loc.id)
	}
	return next
}

// docState tracks an external JSON document through a load.
type docState uint8

const (
	docOpening docState = iota + 1
	docResolving
	docResolved
	docFailed
)

type document struct {
	state docState
	role  ContentRole
	root  *Node
	err   error
}

func (d *document) get(id string) (*Node, error) {
	switch d.state {
	case docResolved:
		return d.root, nil
	case docFailed:
		return nil, d.err
	default:
		return nil, ramlerrors.Newf(ramlerrors.CyclicReference, "%s is referenced while it is still being resolved", id)
	}
}

// loadSession holds the state of a single load call: the document cache,
// the list of opened files and statistics. It is never shared between calls.
type loadSession struct {
	cfg     *config
	log     Logger
	fetch   *fetcher
	metrics *Metrics
	roles   roleTable

	docs map[string]*document
	// refDocs counts the documents opened as $ref targets
	refDocs int
	files   []string
	stats   Stats
}

func (l *Loader) newSession() *loadSession {
	return &loadSession{
		cfg:     l.cfg,
		log:     l.log,
		fetch:   l.fetch,
		metrics: l.cfg.Metrics,
		roles:   roleTable(l.cfg.Roles),
		docs:    make(map[string]*document),
	}
}

// locate resolves target against rc. Relative targets resolve against the
// includer's URL when it was remote, else against its directory.
func (s *loadSession) locate(target string, rc resolutionContext) (location, error) {
	switch {
	case isURL(target):
		u, err := url.Parse(target)
		if err != nil {
			return location{}, ramlerrors.Newf(ramlerrors.MissingFile, "malformed URL %q: %w", target, err)
		}
		return location{id: u.String(), remote: true}, nil

	case hasScheme(target, "file"):
		u, err := url.Parse(target)
		if err != nil {
			return location{}, ramlerrors.Newf(ramlerrors.MissingFile, "malformed file URL %q: %w", target, err)
		}
		return location{id: filepath.Clean(filepath.FromSlash(u.Path))}, nil

	case filepath.IsAbs(target):
		return location{id: filepath.Clean(target)}, nil

	case rc.baseURL != "":
		base, err := url.Parse(rc.baseURL)
		if err != nil {
			return location{}, ramlerrors.Newf(ramlerrors.MissingFile, "malformed base URL %q: %w", rc.baseURL, err)
		}
		ref, err := url.Parse(filepath.ToSlash(target))
		if err != nil {
			return location{}, ramlerrors.Newf(ramlerrors.MissingFile, "malformed relative URL %q: %w", target, err)
		}
		return location{id: base.ResolveReference(ref).String(), remote: true}, nil

	default:
		p := filepath.Join(rc.baseDir, target)
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		return location{id: p}, nil
	}
}

// read returns the content of loc and its role.
func (s *loadSession) read(ctx context.Context, loc location) ([]byte, ContentRole, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, ramlerrors.New(ramlerrors.Canceled, "load canceled").WithCause(err)
	}

	var (
		data []byte
		role ContentRole
	)
	if loc.remote {
		body, contentType, err := s.fetch.fetch(ctx, loc.id)
		if err != nil {
			return nil, 0, err
		}
		s.stats.RemoteFetches++
		data, role = body, s.roles.forURL(loc.id, contentType)
	} else {
		body, err := fileutil.ReadFile(loc.id, s.cfg.MaxFileSize)
		if err != nil {
			if errors.Is(err, fileutil.ErrTooLarge) {
				return nil, 0, ramlerrors.New(ramlerrors.ResourceLimit,
					fmt.Sprintf("%s exceeds the maximum size of %d bytes", loc.id, s.cfg.MaxFileSize)).WithCause(err)
			}
			return nil, 0, ramlerrors.Newf(ramlerrors.MissingFile, "cannot read %s: %w", loc.id, err)
		}
		data, role = body, s.roles.forPath(loc.id)
	}

	s.files = append(s.files, loc.id)
	s.stats.FilesLoaded++
	s.metrics.recordFile(role)
	s.log.Debug("opened file", "file", loc.id, "role", role.String(), "bytes", len(data))
	return data, role, nil
}

// load reads an include target and returns its fully processed content:
// documents are expanded, JSON is resolved, anything else is kept verbatim.
func (s *loadSession) load(ctx context.Context, target string, rc resolutionContext) (*Node, error) {
	loc, err := s.locate(target, rc)
	if err != nil {
		return nil, err
	}
	if loc.remote && s.cfg.NoRemoteIncludes {
		return nil, ramlerrors.Newf(ramlerrors.MissingFile, "remote includes are disabled: %s", loc.id)
	}
	if rc.isOpen(loc.id) {
		return nil, ramlerrors.Newf(ramlerrors.CyclicInclude, "%s is already being loaded", loc.id)
	}
	if len(rc.chain) > s.cfg.MaxIncludeDepth {
		return nil, ramlerrors.Newf(ramlerrors.ResourceLimit, "include depth exceeds maximum of %d", s.cfg.MaxIncludeDepth)
	}

	// A reference target opened under another role is read again.
	if d, ok := s.docs[loc.id]; ok && d.role == RoleJSON {
		root, err := d.get(loc.id)
		if err != nil {
			return nil, err
		}
		return root.Copy(), nil
	}

	data, role, err := s.read(ctx, loc)
	if err != nil {
		return nil, err
	}
	return s.decode(ctx, loc, data, role, rc)
}

// decode processes content already read from loc according to role.
func (s *loadSession) decode(ctx context.Context, loc location, data []byte, role ContentRole, rc resolutionContext) (*Node, error) {
	switch role {
	case RoleDocument:
		n, err := ParseBytes(data, loc.id)
		if err != nil {
			return nil, err
		}
		return s.expand(ctx, n, rc.enter(loc))

	case RoleJSON:
		root, err := s.openDocument(ctx, loc, data, role, rc)
		if err != nil {
			return nil, err
		}
		return root.Copy(), nil

	default:
		return &Node{Kind: ScalarNode, Value: string(data), Line: 1, Column: 1, File: loc.id}, nil
	}
}

// jsonDocument returns the resolved external document at loc, opening it
// on first use.
func (s *loadSession) jsonDocument(ctx context.Context, loc location, rc resolutionContext) (*Node, error) {
	if d, ok := s.docs[loc.id]; ok {
		return d.get(loc.id)
	}
	if s.refDocs >= s.cfg.MaxCachedDocuments {
		return nil, ramlerrors.Newf(ramlerrors.ResourceLimit, "number of referenced documents exceeds maximum of %d", s.cfg.MaxCachedDocuments)
	}
	s.refDocs++
	data, role, err := s.read(ctx, loc)
	if err != nil {
		return nil, err
	}
	return s.openDocument(ctx, loc, data, role, rc)
}

// openDocument parses data as an external document and resolves its
// references, recording its state in the document cache. Reference
// targets are JSON whatever their extension, except YAML documents which
// are parsed as YAML without include support.
func (s *loadSession) openDocument(ctx context.Context, loc location, data []byte, role ContentRole, rc resolutionContext) (*Node, error) {
	d := &document{state: docOpening, role: role}
	s.docs[loc.id] = d

	var (
		n   *Node
		err error
	)
	if role == RoleDocument {
		n, err = parseText(data, loc.id, false)
	} else {
		n, err = parseJSON(data, loc.id)
	}
	if err != nil {
		d.state, d.err = docFailed, err
		return nil, err
	}

	d.state = docResolving
	root, err := s.resolveRefs(ctx, n, rc.enter(loc))
	if err != nil {
		d.state, d.err = docFailed, err
		return nil, err
	}
	d.state, d.root = docResolved, root
	return root, nil
}
