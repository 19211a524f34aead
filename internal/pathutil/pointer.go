package pathutil

import (
	"fmt"
	"net/url"
	"strings"
)

// SplitPointer splits a JSON Pointer into unescaped reference tokens.
// The pointer is the fragment of a $ref without its leading '#'.
// Both "" and "/" address the whole document. Tokens are percent-decoded
// first (fragments are URI components), then "~1" and "~0" are unescaped.
func SplitPointer(pointer string) ([]string, error) {
	if pointer == "" || pointer == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("pointer %q must start with '/'", pointer)
	}
	raw := strings.Split(pointer[1:], "/")
	tokens := make([]string, len(raw))
	for i, tok := range raw {
		decoded, err := url.PathUnescape(tok)
		if err != nil {
			return nil, fmt.Errorf("pointer %q: invalid escape in token %q: %w", pointer, tok, err)
		}
		tokens[i] = UnescapeToken(decoded)
	}
	return tokens, nil
}

// JoinPointer builds a JSON Pointer from reference tokens.
func JoinPointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(tok))
	}
	return b.String()
}

// UnescapeToken unescapes a JSON Pointer token.
// Per RFC 6901, ~1 represents / and ~0 represents ~
func UnescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token
}

// EscapeToken escapes a key for use as a JSON Pointer token.
func EscapeToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return token
}
