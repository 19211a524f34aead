package ramlerrors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
)

// Prefix starts the message of every LoadError.
const Prefix = "Error parsing RAML:"

// Kind classifies a load failure.
type Kind int

const (
	// Syntax indicates malformed YAML or JSON source text.
	Syntax Kind = iota + 1
	// UnknownTag indicates a tag the parser does not recognize.
	UnknownTag
	// MissingFile indicates a path or URL that cannot be read.
	MissingFile
	// InvalidReference indicates a malformed $ref value.
	InvalidReference
	// UnresolvableFragment indicates a JSON pointer segment absent from its target.
	UnresolvableFragment
	// CyclicInclude indicates a file including itself through a chain of includes.
	CyclicInclude
	// CyclicReference indicates a $ref chain that re-enters itself.
	CyclicReference
	// ResourceLimit indicates a depth, size or cache limit was exceeded.
	ResourceLimit
	// Canceled indicates the load's context was canceled or its deadline passed.
	Canceled
)

var kindNames = map[Kind]string{
	Syntax:               "syntax error",
	UnknownTag:           "unknown tag",
	MissingFile:          "missing file",
	InvalidReference:     "invalid reference",
	UnresolvableFragment: "unresolvable fragment",
	CyclicInclude:        "cyclic include",
	CyclicReference:      "cyclic reference",
	ResourceLimit:        "resource limit exceeded",
	Canceled:             "load canceled",
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors for use with errors.Is().
var (
	// ErrLoad matches any LoadError.
	ErrLoad = errors.New("load error")

	ErrSyntax               = errors.New("syntax error")
	ErrUnknownTag           = errors.New("unknown tag")
	ErrMissingFile          = errors.New("missing file")
	ErrInvalidReference     = errors.New("invalid reference")
	ErrUnresolvableFragment = errors.New("unresolvable fragment")
	ErrCyclicInclude        = errors.New("cyclic include")
	ErrCyclicReference      = errors.New("cyclic reference")
	ErrResourceLimit        = errors.New("resource limit exceeded")
	ErrCanceled             = errors.New("load canceled")
)

var sentinels = map[Kind]error{
	Syntax:               ErrSyntax,
	UnknownTag:           ErrUnknownTag,
	MissingFile:          ErrMissingFile,
	InvalidReference:     ErrInvalidReference,
	UnresolvableFragment: ErrUnresolvableFragment,
	CyclicInclude:        ErrCyclicInclude,
	CyclicReference:      ErrCyclicReference,
	ResourceLimit:        ErrResourceLimit,
	Canceled:             ErrCanceled,
}

// LoadError is the single error type surfaced by a load call.
type LoadError struct {
	// Kind classifies the failure
	Kind Kind
	// Message describes the failure
	Message string
	// File is the file or URL being processed when the failure occurred
	File string
	// Line is the 1-based line number in File (0 if unknown)
	Line int
	// Column is the 1-based column number in File (0 if unknown)
	Column int
	// Path is the location in the document tree, e.g. "$.schemas[0].json"
	Path string
	// Directive is the !include path or $ref value being processed, if any
	Directive string
	// Trace lists the including files the error propagated through, innermost first
	Trace []string
	// Cause is the underlying error, if any
	Cause error
}

// New returns a LoadError of the given kind.
func New(kind Kind, msg string) *LoadError {
	return &LoadError{Kind: kind, Message: msg}
}

// Newf returns a LoadError of the given kind with a formatted message.
// A %w verb in format sets Cause.
func Newf(kind Kind, format string, args ...any) *LoadError {
	err := fmt.Errorf(format, args...)
	return &LoadError{Kind: kind, Message: err.Error(), Cause: errors.Unwrap(err)}
}

// WithCause sets the underlying cause.
func (e *LoadError) WithCause(cause error) *LoadError {
	e.Cause = cause
	return e
}

// WithFile sets the source file if it is not already known.
func (e *LoadError) WithFile(file string) *LoadError {
	if e.File == "" {
		e.File = file
	}
	return e
}

// WithPosition sets the source line and column if they are not already known.
func (e *LoadError) WithPosition(line, column int) *LoadError {
	if e.Line == 0 {
		e.Line = line
		e.Column = column
	}
	return e
}

// WithPath sets the document tree location if it is not already known.
func (e *LoadError) WithPath(path string) *LoadError {
	if e.Path == "" {
		e.Path = path
	}
	return e
}

// WithDirective sets the include path or $ref value if it is not already known.
func (e *LoadError) WithDirective(directive string) *LoadError {
	if e.Directive == "" {
		e.Directive = directive
	}
	return e
}

// Through records that the error propagated out of an including file.
func (e *LoadError) Through(file string) *LoadError {
	if file != "" && file != e.File {
		e.Trace = append(e.Trace, file)
	}
	return e
}

// Error returns a human-readable error message starting with Prefix.
func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(Prefix)
	b.WriteString(" ")
	b.WriteString(e.Kind.String())
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
		if e.Column > 0 {
			fmt.Fprintf(&b, ", column %d", e.Column)
		}
	}
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Directive != "" {
		fmt.Fprintf(&b, ": %q", e.Directive)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil && !strings.Contains(e.Message, e.Cause.Error()) {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if len(e.Trace) > 0 {
		b.WriteString(" (included from ")
		b.WriteString(strings.Join(e.Trace, " <- "))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chaining.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrLoad or the sentinel of this error's kind.
func (e *LoadError) Is(target error) bool {
	if target == ErrLoad {
		return true
	}
	sentinel, ok := sentinels[e.Kind]
	return ok && target == sentinel
}

// KindOf returns the kind of the first LoadError in err's chain, or 0.
func KindOf(err error) Kind {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Kind
	}
	return 0
}

// Wrap normalizes err into a LoadError. A LoadError anywhere in the chain is
// returned as is. Context errors become Canceled, filesystem and URL errors
// become MissingFile, anything else is reported as Syntax.
func Wrap(err error) *LoadError {
	if err == nil {
		return nil
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}

	var (
		pathErr *fs.PathError
		urlErr  *url.Error
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &LoadError{Kind: Canceled, Cause: err}
	case errors.As(err, &pathErr):
		return &LoadError{Kind: MissingFile, File: pathErr.Path, Cause: err}
	case errors.As(err, &urlErr):
		return &LoadError{Kind: MissingFile, File: urlErr.URL, Cause: err}
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return &LoadError{Kind: MissingFile, Cause: err}
	default:
		return &LoadError{Kind: Syntax, Cause: err}
	}
}
