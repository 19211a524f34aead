// Package ramltools provides tools for loading RAML documents.
//
// RAML documents are commonly split across many files: types, examples and
// schemas are pulled in with the !include tag, and the JSON schemas they
// include often use $ref to point into themselves or into other files.
// ramltools turns such a set of files into one self-contained document
// tree.
//
// # Overview
//
// The library consists of the following packages:
//
//   - loader: Load a root document, expand !include directives and resolve
//     $ref values in included JSON
//   - ramlerrors: Structured error types shared by all packages
//
// # Installation
//
//	go get github.com/erraggy/ramltools
//
// # Quick Start
//
// Load a RAML document:
//
//	import "github.com/erraggy/ramltools/loader"
//
//	root, err := loader.Load("api.raml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	title, _ := root.Get("title")
//	fmt.Println(title.Value)
//
// Load with options and inspect what was read:
//
//	l, err := loader.New(
//		loader.WithRemoteRefs(false),
//		loader.WithMaxFileSize(1<<20),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := l.LoadFile(ctx, "api.raml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(res.Files, res.Stats.IncludesExpanded)
//
// # Errors
//
// Every failed load returns a *ramlerrors.LoadError whose message starts
// with "Error parsing RAML:". Use errors.Is with the sentinels in
// ramlerrors to test the kind:
//
//	if errors.Is(err, ramlerrors.ErrCyclicInclude) {
//		// ...
//	}
//
// # Build Information
//
// Version, Commit and BuildTime report the values set with -ldflags at
// build time. UserAgent is the User-Agent header sent with remote fetches.
package ramltools
