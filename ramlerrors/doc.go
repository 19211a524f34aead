// Package ramlerrors provides the structured error type returned by the
// ramltools loader.
//
// Import path: github.com/erraggy/ramltools/ramlerrors
//
// Every failure surfaced by a load call is a [*LoadError]. Its message always
// begins with [Prefix] ("Error parsing RAML:") followed by a description of
// the underlying cause, and its [Kind] tells callers what went wrong.
//
// # Kinds
//
//   - [Syntax]: malformed YAML or JSON source text
//   - [UnknownTag]: a tag other than !include or the YAML core tags
//   - [MissingFile]: a path or URL that cannot be read
//   - [InvalidReference]: a malformed $ref value
//   - [UnresolvableFragment]: a JSON pointer segment that does not exist
//   - [CyclicInclude], [CyclicReference]: a self-referential chain
//   - [ResourceLimit]: a depth, size or cache limit was exceeded
//   - [Canceled]: the load's context was canceled or timed out
//
// # Sentinel Errors
//
// Each kind has a sentinel for use with [errors.Is]:
//
//	root, err := loader.LoadFile(ctx, "api.raml")
//	if errors.Is(err, ramlerrors.ErrMissingFile) {
//	    // an included file or referenced document could not be read
//	}
//
// [ErrLoad] matches every LoadError regardless of kind.
//
// # Error Chaining
//
// The original cause is kept in the Cause field and exposed through Unwrap:
//
//	var loadErr *ramlerrors.LoadError
//	if errors.As(err, &loadErr) {
//	    if errors.Is(loadErr.Cause, fs.ErrNotExist) {
//	        fmt.Println("missing:", loadErr.File)
//	    }
//	}
package ramlerrors
