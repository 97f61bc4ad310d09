// Package selector supplies the project to build.
//
// The packager depends only on the Selector interface; Console reads a
// numeric ID from a terminal prompt, Dialog shows an interactive list, and
// Fixed resolves a name or ID given on the command line.
package selector
