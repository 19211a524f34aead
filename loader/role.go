package loader

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ContentRole decides how the content of a loaded file is interpreted.
type ContentRole uint8

const (
	// RoleDocument content is parsed as RAML/YAML and its includes expanded.
	RoleDocument ContentRole = iota + 1
	// RoleJSON content is parsed as JSON and its $ref values resolved.
	RoleJSON
	// RoleRaw content is kept verbatim as a single string scalar.
	RoleRaw
)

// String returns the role name.
func (r ContentRole) String() string {
	switch r {
	case RoleDocument:
		return "document"
	case RoleJSON:
		return "json"
	case RoleRaw:
		return "raw"
	default:
		return "unknown"
	}
}

func defaultRoles() map[string]ContentRole {
	return map[string]ContentRole{
		".raml": RoleDocument,
		".yaml": RoleDocument,
		".yml":  RoleDocument,
		".json": RoleJSON,
	}
}

// roleTable maps lowercased extensions (with the dot) to roles.
type roleTable map[string]ContentRole

func (t roleTable) lookup(p string) (ContentRole, bool) {
	ext := strings.ToLower(filepath.Ext(p))
	if ext == "" {
		return 0, false
	}
	role, ok := t[ext]
	return role, ok
}

// forPath returns the role of a local file. Unknown extensions are raw.
func (t roleTable) forPath(p string) ContentRole {
	if role, ok := t.lookup(p); ok {
		return role
	}
	return RoleRaw
}

// forURL returns the role of remote content, trying the URL path extension
// first and the Content-Type header second.
func (t roleTable) forURL(rawURL, contentType string) ContentRole {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		if role, ok := t.lookup(path.Base(u.Path)); ok {
			return role
		}
	}

	contentType = strings.ToLower(contentType)
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	switch strings.TrimSpace(contentType) {
	case "application/json", "application/schema+json":
		return RoleJSON
	case "application/raml+yaml", "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return RoleDocument
	default:
		return RoleRaw
	}
}
