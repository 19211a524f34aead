package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleForPath(t *testing.T) {
	roles := roleTable(defaultRoles())
	tests := []struct {
		path string
		want ContentRole
	}{
		{"api.raml", RoleDocument},
		{"types/Item.YAML", RoleDocument},
		{"x.yml", RoleDocument},
		{"schema.json", RoleJSON},
		{"schema.xsd", RoleRaw},
		{"README", RoleRaw},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roles.forPath(tt.path), tt.path)
	}
}

func TestRoleForURL(t *testing.T) {
	roles := roleTable(defaultRoles())
	tests := []struct {
		name        string
		url         string
		contentType string
		want        ContentRole
	}{
		{"extension wins", "https://example.com/a.json", "text/plain", RoleJSON},
		{"json content type", "https://example.com/schema", "application/json; charset=utf-8", RoleJSON},
		{"schema content type", "https://example.com/schema", "application/schema+json", RoleJSON},
		{"yaml content type", "https://example.com/api", "application/x-yaml", RoleDocument},
		{"raml content type", "https://example.com/api", "Application/RAML+YAML", RoleDocument},
		{"unknown", "https://example.com/doc", "text/html", RoleRaw},
		{"no content type", "https://example.com/", "", RoleRaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roles.forURL(tt.url, tt.contentType))
		})
	}
}

func TestContentRoleString(t *testing.T) {
	assert.Equal(t, "document", RoleDocument.String())
	assert.Equal(t, "json", RoleJSON.String())
	assert.Equal(t, "raw", RoleRaw.String())
	assert.Equal(t, "unknown", ContentRole(0).String())
}
