package ramlerrors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"testing"
)

func TestLoadErrorMessage(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("did not find expected key")
		err := &LoadError{
			Kind:      Syntax,
			File:      "/api/base.raml",
			Line:      4,
			Column:    7,
			Path:      "$.schemas[0]",
			Directive: "types.raml",
			Message:   "invalid YAML",
			Cause:     cause,
		}

		expected := `Error parsing RAML: syntax error in /api/base.raml at line 4, column 7 ($.schemas[0]): "types.raml": invalid YAML: did not find expected key`
		if msg := err.Error(); msg != expected {
			t.Errorf("unexpected error message: %s", msg)
		}
	})

	t.Run("Error message with kind only", func(t *testing.T) {
		err := &LoadError{Kind: MissingFile}
		if err.Error() != "Error parsing RAML: missing file" {
			t.Errorf("unexpected error message: %s", err.Error())
		}
	})

	t.Run("Message already containing cause is not repeated", func(t *testing.T) {
		err := Newf(MissingFile, "failed to read %s: %w", "x.json", fs.ErrNotExist)
		msg := err.Error()
		if strings.Count(msg, fs.ErrNotExist.Error()) != 1 {
			t.Errorf("cause repeated in message: %s", msg)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Error("Newf with %w should set Cause")
		}
	})

	t.Run("Trace lists including files", func(t *testing.T) {
		err := New(CyclicInclude, "p.raml is already open").WithFile("q.raml")
		err.Through("q.raml").Through("p.raml").Through("root.raml")
		msg := err.Error()
		if !strings.HasSuffix(msg, "(included from p.raml <- root.raml)") {
			t.Errorf("unexpected trace in message: %s", msg)
		}
	})

	t.Run("Every kind carries the prefix", func(t *testing.T) {
		for kind := Syntax; kind <= Canceled; kind++ {
			if msg := New(kind, "x").Error(); !strings.HasPrefix(msg, Prefix) {
				t.Errorf("kind %v: message lacks prefix: %s", kind, msg)
			}
		}
	})
}

func TestLoadErrorSetters(t *testing.T) {
	err := New(UnresolvableFragment, "missing key").
		WithFile("a.json").
		WithPosition(3, 9).
		WithPath("$.a").
		WithDirective("#/b")

	// Inner frames win: setters keep the first value.
	err.WithFile("outer.raml").WithPosition(1, 1).WithPath("$.outer").WithDirective("outer")

	if err.File != "a.json" || err.Line != 3 || err.Column != 9 || err.Path != "$.a" || err.Directive != "#/b" {
		t.Errorf("setters overwrote inner context: %+v", err)
	}
}

func TestLoadErrorIs(t *testing.T) {
	tests := []struct {
		kind     Kind
		sentinel error
	}{
		{Syntax, ErrSyntax},
		{UnknownTag, ErrUnknownTag},
		{MissingFile, ErrMissingFile},
		{InvalidReference, ErrInvalidReference},
		{UnresolvableFragment, ErrUnresolvableFragment},
		{CyclicInclude, ErrCyclicInclude},
		{CyclicReference, ErrCyclicReference},
		{ResourceLimit, ErrResourceLimit},
		{Canceled, ErrCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", New(tt.kind, "test"))
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("%v should match its sentinel", tt.kind)
			}
			if !errors.Is(err, ErrLoad) {
				t.Errorf("%v should match ErrLoad", tt.kind)
			}
			for _, other := range tests {
				if other.kind != tt.kind && errors.Is(err, other.sentinel) {
					t.Errorf("%v should not match %v", tt.kind, other.sentinel)
				}
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if Syntax.String() != "syntax error" {
		t.Errorf("unexpected name: %s", Syntax.String())
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("unexpected name for unknown kind: %s", Kind(99).String())
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("x: %w", New(CyclicReference, ""))); got != CyclicReference {
		t.Errorf("KindOf = %v", got)
	}
	if got := KindOf(errors.New("plain")); got != 0 {
		t.Errorf("KindOf plain error = %v", got)
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if Wrap(nil) != nil {
			t.Error("Wrap(nil) should return nil")
		}
	})

	t.Run("existing LoadError is returned untouched", func(t *testing.T) {
		orig := New(UnknownTag, "!foo")
		//nolint:errorlint // testing pointer identity
		if got := Wrap(fmt.Errorf("outer: %w", orig)); got != orig {
			t.Error("Wrap should return the LoadError in the chain")
		}
	})

	t.Run("filesystem error becomes MissingFile", func(t *testing.T) {
		_, cause := os.Open("/definitely/not/here.raml")
		err := Wrap(cause)
		if err.Kind != MissingFile {
			t.Errorf("unexpected kind: %v", err.Kind)
		}
		if err.File != "/definitely/not/here.raml" {
			t.Errorf("unexpected file: %s", err.File)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Error("cause should be retained")
		}
	})

	t.Run("URL error becomes MissingFile", func(t *testing.T) {
		cause := &url.Error{Op: "Get", URL: "https://example.com/x.json", Err: errors.New("connection refused")}
		err := Wrap(cause)
		if err.Kind != MissingFile || err.File != "https://example.com/x.json" {
			t.Errorf("unexpected error: %+v", err)
		}
	})

	t.Run("context errors become Canceled", func(t *testing.T) {
		if Wrap(context.Canceled).Kind != Canceled {
			t.Error("context.Canceled should map to Canceled")
		}
		if Wrap(fmt.Errorf("fetch: %w", context.DeadlineExceeded)).Kind != Canceled {
			t.Error("context.DeadlineExceeded should map to Canceled")
		}
	})

	t.Run("anything else is Syntax", func(t *testing.T) {
		err := Wrap(errors.New("yaml: line 2: mapping values are not allowed in this context"))
		if err.Kind != Syntax {
			t.Errorf("unexpected kind: %v", err.Kind)
		}
		if !strings.HasPrefix(err.Error(), Prefix) {
			t.Errorf("missing prefix: %s", err.Error())
		}
	})
}
