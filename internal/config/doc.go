// Package config defines the packager settings and provides helpers to load,
// validate and save them in YAML format.
//
// The Config type holds the projects root, the builds layout, the manifest
// file name, the ignore rules and the install document settings. Every field
// has a default, so the tool runs without a settings file.
package config
