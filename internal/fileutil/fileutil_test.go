package fileutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.raml")
	require.NoError(t, os.WriteFile(path, []byte("title: x\n"), OwnerReadWrite))

	t.Run("within limit", func(t *testing.T) {
		data, err := ReadFile(path, 64)
		require.NoError(t, err)
		assert.Equal(t, "title: x\n", string(data))
	})

	t.Run("exactly at limit", func(t *testing.T) {
		data, err := ReadFile(path, 9)
		require.NoError(t, err)
		assert.Len(t, data, 9)
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := ReadFile(path, 4)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTooLarge))
	})

	t.Run("no limit", func(t *testing.T) {
		data, err := ReadFile(path, 0)
		require.NoError(t, err)
		assert.Len(t, data, 9)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "nope.raml"), 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(bytes.NewReader([]byte("abc")), 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	_, err = ReadLimited(bytes.NewReader([]byte("abcd")), 3)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain UTF-8 untouched", []byte("title: x"), "title: x"},
		{"UTF-8 BOM stripped", []byte("\xEF\xBB\xBFtitle: x"), "title: x"},
		{"UTF-16BE converted", []byte("\xFE\xFF\x00a\x00:\x00 \x00b"), "a: b"},
		{"UTF-16LE converted", []byte("\xFF\xFEa\x00:\x00 \x00b\x00"), "a: b"},
		{"empty", []byte{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
