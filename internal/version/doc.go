// Package version reports which tool-packager binary is running.
//
// Release builds set Version, Commit and BuildTime with -ldflags -X. Plain
// `go build` binaries fall back to the VCS stamps recorded by the toolchain.
package version
