package selector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidSelection is returned for non-numeric or out-of-range project IDs.
	ErrInvalidSelection = errors.New("invalid project ID")
	// ErrUnknownProject is returned when a project name does not exist.
	ErrUnknownProject = errors.New("unknown project")
	// errNoProjects is returned when there is nothing to choose from.
	errNoProjects = errors.New("no projects to choose from")
)

// Selector picks one project out of the listed ones and returns its index.
type Selector interface {
	Select(ctx context.Context, projects []string) (int, error)
}

// Fixed selects a project named on the command line, by name or by ID.
type Fixed struct {
	// Ref is a project name or a numeric ID.
	Ref string
}

// Select implements Selector. An exact name match wins over a numeric interpretation.
func (f Fixed) Select(_ context.Context, projects []string) (int, error) {
	if len(projects) == 0 {
		return 0, errNoProjects
	}

	ref := strings.TrimSpace(f.Ref)
	for i, name := range projects {
		if name == ref {
			return i, nil
		}
	}

	if _, err := strconv.Atoi(ref); err == nil {
		return parseIndex(ref, len(projects))
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownProject, ref)
}

// parseIndex converts a typed ID into an index in [0, count).
func parseIndex(input string, count int) (int, error) {
	input = strings.TrimSpace(input)

	index, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidSelection, input)
	}

	if index < 0 || index >= count {
		return 0, fmt.Errorf("%w: %d is out of range [0, %d]", ErrInvalidSelection, index, count-1)
	}

	return index, nil
}
