// Package packager builds a distributable archive from a project manifest.
//
// A build parses the manifest, stages every mapping into a temporary
// directory under the builds root, writes the install instructions next to
// the staged files, zips the staging directory into the archives folder and
// removes the staging directory. Any error aborts the build before an
// archive is published.
package packager
