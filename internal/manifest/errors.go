package manifest

import "errors"

// Sentinel errors for the manifest package.
var (
	// ErrMissingManifest indicates the project has no manifest file.
	ErrMissingManifest = errors.New("manifest file not found")

	// ErrMissingName indicates the manifest lacks a $NAME directive.
	ErrMissingName = errors.New("no build name $NAME found")

	// ErrInvalidBuildName indicates $NAME cannot be used as a directory or archive name.
	ErrInvalidBuildName = errors.New("invalid build name")

	// ErrMalformedEntry indicates a manifest line that is neither a valid directive nor a valid mapping.
	ErrMalformedEntry = errors.New("malformed manifest entry")
)
