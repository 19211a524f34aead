package loader

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/erraggy/ramltools/internal/fileutil"
	"github.com/erraggy/ramltools/ramlerrors"
)

// Loader loads RAML root documents, expanding !include directives and
// resolving $ref values in included JSON.
//
// A Loader is safe for concurrent use: all state of a load (document
// cache, open-file chain, statistics) is created per call.
type Loader struct {
	cfg   *config
	log   Logger
	fetch *fetcher
}

// Stats contains counters collected during a load.
type Stats struct {
	// FilesLoaded is the number of files and URLs opened
	FilesLoaded int
	// IncludesExpanded is the number of !include directives replaced
	IncludesExpanded int
	// RefsResolved is the number of $ref values replaced
	RefsResolved int
	// RemoteFetches is the number of HTTP requests made
	RemoteFetches int
}

// Result is a fully loaded document.
type Result struct {
	// Root is the resolved tree; it holds no include markers and no $ref mappings
	Root *Node
	// SourcePath is the root file path or URL. For in-memory input it is
	// the name of the method and ends in ".raml"
	SourcePath string
	// Files lists every file opened, root first, in open order
	Files []string
	// LoadTime is the time taken by the whole load
	LoadTime time.Duration
	// SourceSize is the size of the root document in bytes
	SourceSize int64
	// Stats contains load counters
	Stats Stats
}

// New creates a Loader configured by opts.
func New(opts ...Option) (*Loader, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("loader: invalid options: %w", err)
	}
	return &Loader{cfg: cfg, log: cfg.Logger, fetch: newFetcher(cfg, cfg.Logger)}, nil
}

// LoadWithOptions loads a document using functional options, combining
// input source selection and configuration in a single call.
//
// Example:
//
//	result, err := loader.LoadWithOptions(ctx,
//	    loader.WithFilePath("api.raml"),
//	    loader.WithRemoteRefs(false),
//	)
func LoadWithOptions(ctx context.Context, opts ...Option) (*Result, error) {
	l, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := l.cfg.validateInput(); err != nil {
		return nil, fmt.Errorf("loader: invalid options: %w", err)
	}

	in := l.cfg.input
	switch {
	case in.filePath != nil:
		return l.LoadFile(ctx, *in.filePath)
	case in.reader != nil:
		return l.LoadReader(ctx, in.reader)
	default:
		return l.LoadBytes(ctx, in.bytes)
	}
}

// Load loads the root document at path with default options.
func Load(path string) (*Node, error) {
	l, err := New()
	if err != nil {
		return nil, err
	}
	res, err := l.LoadFile(context.Background(), path)
	if err != nil {
		return nil, err
	}
	return res.Root, nil
}

// LoadFile loads the root document at path, which may be a local path or
// an http(s) URL. Relative includes resolve against the document's own
// directory (or URL).
func (l *Loader) LoadFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	s := l.newSession()

	loc, err := s.locate(path, resolutionContext{baseDir: "."})
	if err != nil {
		return l.finish(s, nil, start, err)
	}
	data, role, err := s.read(ctx, loc)
	if err != nil {
		return l.finish(s, nil, start, err)
	}
	if role != RoleJSON {
		// Root documents are always RAML, whatever their extension.
		role = RoleDocument
	}
	root, err := s.decode(ctx, loc, data, role, resolutionContext{})
	res := &Result{Root: root, SourcePath: loc.id, SourceSize: int64(len(data))}
	return l.finish(s, res, start, err)
}

// LoadReader loads a root document from r. Relative includes resolve
// against the WithBaseDir directory.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader) (*Result, error) {
	start := time.Now()
	s := l.newSession()

	data, err := fileutil.ReadLimited(r, l.cfg.MaxFileSize)
	if err != nil {
		return l.finish(s, nil, start, ramlerrors.New(ramlerrors.MissingFile, "failed to read input").WithCause(err))
	}
	return l.loadData(ctx, s, start, data, "LoadReader.raml")
}

// LoadBytes loads a root document from data. Relative includes resolve
// against the WithBaseDir directory.
func (l *Loader) LoadBytes(ctx context.Context, data []byte) (*Result, error) {
	return l.loadData(ctx, l.newSession(), time.Now(), data, "LoadBytes.raml")
}

func (l *Loader) loadData(ctx context.Context, s *loadSession, start time.Time, data []byte, name string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return l.finish(s, nil, start, ramlerrors.New(ramlerrors.Canceled, "load canceled").WithCause(err))
	}
	if l.cfg.MaxFileSize > 0 && int64(len(data)) > l.cfg.MaxFileSize {
		return l.finish(s, nil, start, ramlerrors.Newf(ramlerrors.ResourceLimit,
			"input of %d bytes exceeds the maximum size of %d bytes", len(data), l.cfg.MaxFileSize))
	}

	n, err := ParseBytes(data, "")
	if err != nil {
		return l.finish(s, nil, start, err)
	}
	root, err := s.expand(ctx, n, resolutionContext{baseDir: l.baseDir()})
	res := &Result{Root: root, SourcePath: name, SourceSize: int64(len(data))}
	return l.finish(s, res, start, err)
}

// Resolve resolves every $ref in root, an in-memory JSON tree, against
// baseDir and returns the resolved copy. root itself is not modified.
// Resolving an already resolved tree returns an equal tree.
func (l *Loader) Resolve(ctx context.Context, root *Node, baseDir string) (*Node, error) {
	start := time.Now()
	s := l.newSession()
	if baseDir == "" {
		baseDir = l.baseDir()
	} else if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	resolved, err := s.resolveRefs(ctx, root.Copy(), resolutionContext{baseDir: baseDir})
	res, err := l.finish(s, &Result{Root: resolved}, start, err)
	if err != nil {
		return nil, err
	}
	return res.Root, nil
}

// Resolve resolves every $ref in root against baseDir with default options.
func Resolve(ctx context.Context, root *Node, baseDir string) (*Node, error) {
	l, err := New()
	if err != nil {
		return nil, err
	}
	return l.Resolve(ctx, root, baseDir)
}

func (l *Loader) baseDir() string {
	if abs, err := filepath.Abs(l.cfg.BaseDir); err == nil {
		return abs
	}
	return l.cfg.BaseDir
}

// finish completes a load call: on failure the error is normalized and no
// tree is returned.
func (l *Loader) finish(s *loadSession, res *Result, start time.Time, err error) (*Result, error) {
	elapsed := time.Since(start)
	if err != nil {
		loadErr := ramlerrors.Wrap(err)
		s.metrics.recordLoad(s.stats, elapsed, loadErr)
		l.log.Debug("load failed", "kind", loadErr.Kind.String(), "error", loadErr.Error())
		return nil, loadErr
	}
	res.Files = s.files
	res.LoadTime = elapsed
	res.Stats = s.stats
	s.metrics.recordLoad(s.stats, elapsed, nil)
	l.log.Debug("load complete",
		"source", res.SourcePath,
		"files", s.stats.FilesLoaded,
		"includes", s.stats.IncludesExpanded,
		"refs", s.stats.RefsResolved,
		"duration", elapsed,
	)
	return res, nil
}
