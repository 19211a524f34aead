// Package pathutil provides path utilities for document tree traversal:
// the [PathBuilder] used to report tree locations, and JSON Pointer
// (RFC 6901) tokenizing for $ref fragments.
//
// # PathBuilder Usage
//
// Use [Get] to obtain a pooled PathBuilder rooted at a name, and [Put] to
// return it:
//
//	path := pathutil.Get("$")
//	defer pathutil.Put(path)
//
//	path.PushKey("schemas")
//	path.PushIndex(0)
//	// ... recurse ...
//	path.Pop()
//
//	// Only call String() when needed (e.g., reporting an error)
//	return fmt.Errorf("error at %s", path.String()) // "$.schemas[0]"
//
// Keys that are not plain identifiers use bracket notation:
//
//	path.PushKey("application/json") // "$['application/json']"
//
// # JSON Pointers
//
// [SplitPointer] turns a fragment such as "/definitions/a~1b/0" into its
// unescaped reference tokens, and [JoinPointer] reverses it.
package pathutil
