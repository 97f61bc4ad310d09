package selector

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Console prints an indexed project list and reads the chosen ID.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole creates a console selector over the given streams.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Select implements Selector.
func (c *Console) Select(ctx context.Context, projects []string) (int, error) {
	if len(projects) == 0 {
		return 0, errNoProjects
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var b strings.Builder

	b.WriteString("Build:\n-------\n")

	for i, name := range projects {
		fmt.Fprintf(&b, "[%d] %s\n", i, name)
	}

	b.WriteString("-------\nEnter ID: ")

	if _, err := io.WriteString(c.out, b.String()); err != nil {
		return 0, fmt.Errorf("print projects: %w", err)
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return 0, fmt.Errorf("%w: no input: %w", ErrInvalidSelection, err)
	}

	return parseIndex(line, len(projects))
}
