package loader

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/erraggy/ramltools/internal/pathutil"
	"github.com/erraggy/ramltools/ramlerrors"
)

// refKey is the mapping key that marks a JSON reference.
const refKey = "$ref"

// TargetKind identifies the document a $ref points into.
type TargetKind uint8

const (
	// TargetNone means the reference is a fragment of the current document.
	TargetNone TargetKind = iota
	// TargetLocalFile is a path relative to the referencing file's directory.
	TargetLocalFile
	// TargetAbsoluteFile is an OS-absolute path or a file:// URL.
	TargetAbsoluteFile
	// TargetRemoteURL is an http:// or https:// URL.
	TargetRemoteURL
)

// String returns the target kind name.
func (k TargetKind) String() string {
	switch k {
	case TargetNone:
		return "local"
	case TargetLocalFile:
		return "file"
	case TargetAbsoluteFile:
		return "absolute"
	case TargetRemoteURL:
		return "http"
	default:
		return "unknown"
	}
}

// ReferenceSpec is the parsed form of a $ref value.
type ReferenceSpec struct {
	// Raw is the $ref value as written
	Raw string
	// Target is the kind of document the reference points into
	Target TargetKind
	// Location is the file path (decoded) or URL (without fragment);
	// empty when Target is TargetNone
	Location string
	// Fragment is the JSON pointer after '#', without the '#'
	Fragment string
	// HasFragment reports whether the value contained a '#'
	HasFragment bool
}

// Tokens returns the unescaped JSON pointer tokens of the fragment.
func (r ReferenceSpec) Tokens() ([]string, error) {
	return pathutil.SplitPointer(r.Fragment)
}

// ParseReference parses a $ref value such as "#/a/b", "other.json#/a",
// "file:///abs/x.json" or "https://host/x.json#/a".
func ParseReference(raw string) (ReferenceSpec, error) {
	spec := ReferenceSpec{Raw: raw}
	value := strings.TrimSpace(raw)
	if value == "" {
		return spec, invalidRef(raw, "reference is empty")
	}

	loc, frag, hasFrag := strings.Cut(value, "#")
	spec.Fragment, spec.HasFragment = frag, hasFrag
	if frag != "" {
		if _, err := pathutil.SplitPointer(frag); err != nil {
			return spec, invalidRef(raw, "malformed fragment").WithCause(err)
		}
	}

	switch {
	case loc == "":
		spec.Target = TargetNone

	case hasScheme(loc, "http"), hasScheme(loc, "https"):
		u, err := url.Parse(loc)
		if err != nil {
			return spec, invalidRef(raw, "malformed URL").WithCause(err)
		}
		if u.Host == "" {
			return spec, invalidRef(raw, "URL has no host")
		}
		spec.Target, spec.Location = TargetRemoteURL, u.String()

	case hasScheme(loc, "file"):
		u, err := url.Parse(loc)
		if err != nil {
			return spec, invalidRef(raw, "malformed file URL").WithCause(err)
		}
		if u.Host != "" && u.Host != "localhost" {
			return spec, invalidRef(raw, "file URL must not name a remote host")
		}
		path := filepath.FromSlash(u.Path)
		if !filepath.IsAbs(path) {
			return spec, invalidRef(raw, "file URL must hold an absolute path")
		}
		spec.Target, spec.Location = TargetAbsoluteFile, path

	case strings.Contains(loc, "://"):
		return spec, invalidRef(raw, "unsupported URL scheme")

	default:
		path, err := url.PathUnescape(loc)
		if err != nil {
			return spec, invalidRef(raw, "malformed path").WithCause(err)
		}
		path = filepath.FromSlash(path)
		if filepath.IsAbs(path) {
			spec.Target = TargetAbsoluteFile
		} else {
			spec.Target = TargetLocalFile
		}
		spec.Location = path
	}
	return spec, nil
}

func hasScheme(s, scheme string) bool {
	return len(s) > len(scheme)+3 && strings.EqualFold(s[:len(scheme)+3], scheme+"://")
}

func invalidRef(raw, msg string) *ramlerrors.LoadError {
	return ramlerrors.New(ramlerrors.InvalidReference, msg).WithDirective(raw)
}
