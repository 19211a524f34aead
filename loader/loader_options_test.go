package loader

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ramltools "github.com/erraggy/ramltools"
)

func TestApplyOptionsDefaults(t *testing.T) {
	cfg, err := applyOptions()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.BaseDir)
	assert.Equal(t, ramltools.UserAgent(), cfg.UserAgent)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultMaxRefDepth, cfg.MaxRefDepth)
	assert.Equal(t, DefaultMaxIncludeDepth, cfg.MaxIncludeDepth)
	assert.Equal(t, DefaultMaxCachedDocuments, cfg.MaxCachedDocuments)
	assert.Equal(t, DefaultMaxFileSize, cfg.MaxFileSize)
	assert.Equal(t, defaultRoles(), cfg.Roles)
	assert.IsType(t, NopLogger{}, cfg.Logger)
	assert.False(t, cfg.NoRemoteRefs)
	assert.False(t, cfg.NoRemoteIncludes)
	assert.Nil(t, cfg.Metrics)
	assert.Nil(t, cfg.HTTPClient)
}

func TestApplyOptionsOverrides(t *testing.T) {
	client := &http.Client{}
	logger := NewSlogAdapter(nil)
	cfg, err := applyOptions(
		WithBaseDir("specs"),
		WithUserAgent("custom/1.0"),
		WithHTTPClient(client),
		WithHTTPTimeout(time.Second),
		WithRemoteRefs(false),
		WithRemoteIncludes(false),
		WithInsecureSkipVerify(true),
		WithLogger(logger),
		WithMaxRefDepth(5),
		WithMaxIncludeDepth(6),
		WithMaxCachedDocuments(7),
		WithMaxFileSize(8),
	)
	require.NoError(t, err)

	assert.Equal(t, "specs", cfg.BaseDir)
	assert.Equal(t, "custom/1.0", cfg.UserAgent)
	assert.Same(t, client, cfg.HTTPClient)
	assert.Equal(t, time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.NoRemoteRefs)
	assert.True(t, cfg.NoRemoteIncludes)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Same(t, logger, cfg.Logger)
	assert.Equal(t, 5, cfg.MaxRefDepth)
	assert.Equal(t, 6, cfg.MaxIncludeDepth)
	assert.Equal(t, 7, cfg.MaxCachedDocuments)
	assert.Equal(t, int64(8), cfg.MaxFileSize)
}

func TestApplyOptionsNegativeLimits(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want string
	}{
		{"ref depth", WithMaxRefDepth(-1), "loader: max ref depth cannot be negative"},
		{"include depth", WithMaxIncludeDepth(-1), "loader: max include depth cannot be negative"},
		{"cached documents", WithMaxCachedDocuments(-1), "loader: max cached documents cannot be negative"},
		{"file size", WithMaxFileSize(-1), "loader: max file size cannot be negative"},
		{"HTTP timeout", WithHTTPTimeout(-time.Second), "loader: HTTP timeout cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := applyOptions(tt.opt)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())

			_, err = New(tt.opt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "loader: invalid options")
		})
	}
}

func TestWithRoleExtensions(t *testing.T) {
	cfg, err := applyOptions(
		WithRoleExtensions(RoleJSON, "schema", ".JSD"),
		WithRoleExtensions(RoleRaw, ".yaml"),
	)
	require.NoError(t, err)

	assert.Equal(t, RoleJSON, cfg.Roles[".schema"])
	assert.Equal(t, RoleJSON, cfg.Roles[".jsd"])
	assert.Equal(t, RoleRaw, cfg.Roles[".yaml"], "user entries win over defaults")
	assert.Equal(t, RoleDocument, cfg.Roles[".raml"], "defaults fill the rest")
	assert.Equal(t, RoleJSON, cfg.Roles[".json"])

	_, err = applyOptions(WithRoleExtensions(ContentRole(0), ".x"))
	assert.EqualError(t, err, "loader: unknown content role 0")

	_, err = applyOptions(WithRoleExtensions(RoleRaw, " "))
	assert.EqualError(t, err, "loader: empty extension for role raw")
}

func TestValidateInput(t *testing.T) {
	path := "api.raml"
	tests := []struct {
		name    string
		opts    []Option
		wantErr string
	}{
		{"none", nil, "must specify an input source"},
		{"file", []Option{WithFilePath(path)}, ""},
		{"bytes", []Option{WithBytes([]byte("a: 1"))}, ""},
		{"file and bytes", []Option{WithFilePath(path), WithBytes([]byte("a: 1"))}, "exactly one input source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := applyOptions(tt.opts...)
			require.NoError(t, err)
			err = cfg.validateInput()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
