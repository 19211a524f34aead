// Package fileutil provides file reading helpers shared by the loader.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OwnerReadWrite is the file permission mode used for files written by tests
// and tooling (owner read/write only).
const OwnerReadWrite os.FileMode = 0o600

// ErrTooLarge is wrapped by ReadLimited when the content exceeds the limit.
var ErrTooLarge = errors.New("content exceeds maximum size")

// ReadFile reads path, failing if it is larger than maxSize bytes.
// A maxSize of zero or less disables the limit.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadLimited(f, maxSize)
}

// ReadLimited reads r to EOF, failing if more than maxSize bytes are available.
// A maxSize of zero or less disables the limit.
func ReadLimited(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}
	// Read one byte past the limit so oversize input is detectable.
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxSize)
	}
	return data, nil
}

// DecodeText strips a leading byte order mark and converts UTF-16 input to
// UTF-8. Input without a BOM is returned unchanged.
func DecodeText(data []byte) ([]byte, error) {
	if !hasBOM(data) {
		return data, nil
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return out, nil
}

func hasBOM(data []byte) bool {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return true
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return true
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return true
	}
	return false
}
