package packager

import (
	"errors"
	"fmt"
)

// ErrInvalidSource is matched by InvalidSourceError.
var ErrInvalidSource = errors.New("source is neither a file nor a directory")

// InvalidSourceError reports a mapping whose source cannot be staged.
type InvalidSourceError struct {
	// Path is the resolved source path.
	Path string
	// Line is the manifest line of the mapping.
	Line int
}

// Error implements error.
func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("manifest line %d: %s: %s", e.Line, e.Path, ErrInvalidSource)
}

// Unwrap lets errors.Is match ErrInvalidSource.
func (e *InvalidSourceError) Unwrap() error {
	return ErrInvalidSource
}
