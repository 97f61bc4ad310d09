// Package manifest parses the per-project build manifest (build_infos.txt).
//
// # Manifest Format
//
// The manifest is line oriented:
//
//	# comment
//	$NAME:ExampleTool
//	$DOC_LINK:https://example.com/docs
//	$VERSION:python/example/__init__.py
//	otls:otls
//	icons/tool.svg:res/tool.svg
//
// Lines starting with `$` are directives (`$KEY:VALUE`), lines starting with
// `#` are comments, blank lines are skipped, and every other line maps a
// target path inside the archive to a source path inside the project. Both
// sides of a mapping are `/`-separated relative paths; lines are split on the
// first colon only.
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrMissingManifest: the manifest file does not exist
//   - ErrMissingName: there is no `$NAME` directive or it is empty
//   - ErrInvalidBuildName: `$NAME` is not usable as a file name
//   - ErrMalformedEntry: a line cannot be parsed
package manifest
