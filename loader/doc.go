// Package loader loads RAML documents into a fully resolved tree.
//
// Loading a root document parses it as YAML, then replaces every
// "!include path" scalar with the content of the named file. What that
// content becomes depends on its extension:
//
//   - .raml, .yaml and .yml files are parsed and their own includes expanded,
//     relative to the included file's directory;
//   - .json files are parsed and every JSON reference ($ref) in them resolved;
//   - any other file (.md, .xsd, ...) is kept verbatim as a string.
//
// Extra extensions can be mapped to a role with [WithRoleExtensions].
//
// # Quick Start
//
//	result, err := loader.LoadWithOptions(ctx, loader.WithFilePath("api.raml"))
//	if err != nil {
//		log.Fatal(err) // "Error parsing RAML: ..."
//	}
//	schemas, _ := result.Root.Get("schemas")
//
// Or create a reusable Loader:
//
//	l, err := loader.New(loader.WithRemoteRefs(false))
//	res1, err := l.LoadFile(ctx, "api1.raml")
//	res2, err := l.LoadFile(ctx, "https://example.com/api2.raml")
//
// # References
//
// A mapping holding a "$ref" key inside JSON content is replaced by the
// value it points to. Supported forms are "#/json/pointer" within the same
// document, "other.json#/pointer" relative to the referencing file,
// "file:///abs/path.json#/pointer" and "https://host/x.json#/pointer".
// Keys next to "$ref" are merged over a copy of the target:
//
//	{"$ref": "person.json", "title": "Employee"}
//
// yields the person mapping with its title replaced. Resolving is
// post-order, so nested references are resolved before their containers.
//
// # Errors
//
// Every failure is a *ramlerrors.LoadError whose message starts with
// "Error parsing RAML:". Use errors.Is with the ramlerrors sentinels, or
// ramlerrors.KindOf, to tell failures apart. A load returns either a tree
// or an error, never both.
//
// # Security
//
// Remote includes and references are fetched by default. Disable them
// with [WithRemoteIncludes] and [WithRemoteRefs] when loading untrusted
// documents; [WithMaxFileSize], [WithMaxRefDepth], [WithMaxIncludeDepth]
// and [WithMaxCachedDocuments] bound the work a single load may do.
//
// # Watching
//
// A [Watcher] reloads a document whenever any local file it was built from
// changes, which suits editors and development servers.
package loader
