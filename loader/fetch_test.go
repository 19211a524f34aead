package loader

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/ramltools/ramlerrors"
)

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("http://example.com/api.raml"))
	assert.True(t, isURL("HTTPS://example.com/api.raml"))
	assert.False(t, isURL("file:///tmp/api.raml"))
	assert.False(t, isURL("api.raml"))
	assert.False(t, isURL("/tmp/http/api.raml"))
}

func TestFetchTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.FileServer(http.Dir(filepath.Join("testdata", "includes"))))
	defer server.Close()
	url := server.URL + "/foo.yaml"

	l, err := New()
	require.NoError(t, err)
	_, err = l.LoadFile(context.Background(), url)
	assert.Equal(t, ramlerrors.MissingFile, ramlerrors.KindOf(err), "self-signed certificate is rejected by default")

	l, err = New(WithInsecureSkipVerify(true))
	require.NoError(t, err)
	res, err := l.LoadFile(context.Background(), url)
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo": "FooBar", "bar": "BarBaz"}`, res.Root.String())

	l, err = New(WithHTTPClient(server.Client()))
	require.NoError(t, err)
	_, err = l.LoadFile(context.Background(), url)
	assert.NoError(t, err)
}

func TestFetchCustomClientIgnoresInsecure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	client := &http.Client{}
	l, err := New(WithHTTPClient(client), WithInsecureSkipVerify(true), WithLogger(logger))
	require.NoError(t, err)
	assert.Same(t, client, l.fetch.client)
	assert.Contains(t, buf.String(), "InsecureSkipVerify ignored")
}
