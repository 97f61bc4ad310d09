package selector

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
)

// Dialog shows an interactive terminal list of projects.
type Dialog struct {
	// Title is shown above the list.
	Title string
	// Input and Output override the terminal streams when set.
	Input  io.Reader
	Output io.Writer
	// Accessible switches to a plain prompt for screen readers and dumb terminals.
	Accessible bool
}

// Select implements Selector.
func (d *Dialog) Select(ctx context.Context, projects []string) (int, error) {
	if len(projects) == 0 {
		return 0, errNoProjects
	}

	title := d.Title
	if title == "" {
		title = "Select a project to build"
	}

	options := make([]huh.Option[int], 0, len(projects))
	for i, name := range projects {
		options = append(options, huh.NewOption(name, i))
	}

	choice := -1

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(options...).
				Value(&choice),
		),
	).WithAccessible(d.Accessible)

	if d.Input != nil {
		form = form.WithInput(d.Input)
	}

	if d.Output != nil {
		form = form.WithOutput(d.Output)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return 0, fmt.Errorf("%w: selection cancelled", ErrInvalidSelection)
		}

		return 0, fmt.Errorf("project dialog: %w", err)
	}

	if choice < 0 || choice >= len(projects) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSelection, choice)
	}

	return choice, nil
}
