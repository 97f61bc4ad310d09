// Package staging manages the temporary build directories under the builds root.
//
// A Repository owns the builds root filesystem; an Area is one staging
// directory that mirrors the final archive layout. Both work on go-billy
// filesystems, so the same code runs against the OS and against memfs in tests.
package staging
