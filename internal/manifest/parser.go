package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Load reads and parses the manifest at the given path.
func Load(filename string) (*Manifest, error) {
	f, err := os.Open(filepath.Clean(filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingManifest, filename)
	}

	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	return Parse(f)
}

// ParseString parses a manifest held in memory.
func ParseString(src string) (*Manifest, error) {
	return Parse(strings.NewReader(src))
}

// Parse reads manifest lines from r.
//
// Semantics:
//   - blank lines are skipped
//   - "#" starts a comment
//   - "$KEY:VALUE" is a directive; the first occurrence of a key wins
//   - anything else is "TARGET:SOURCE", split on the first colon
//
// Parsing goes on past a malformed line so that a missing $NAME is still
// reported; the error then matches both ErrMissingName and ErrMalformedEntry.
func Parse(r io.Reader) (*Manifest, error) {
	s := bufio.NewScanner(r)
	m := &Manifest{
		Entries: make([]Entry, 0, 16),
	}
	seen := make(map[string]int)

	var lineErr error

	for lineNo := 1; s.Scan(); lineNo++ {
		line := strings.TrimSpace(strings.TrimRight(s.Text(), "\r"))
		if line == "" {
			continue
		}

		entry, err := parseLine(line, lineNo)
		if err != nil {
			if lineErr == nil {
				lineErr = err
			}

			continue
		}

		if entry.Kind == KindDirective {
			if first, dup := seen[entry.Key]; dup {
				m.warnings = append(m.warnings,
					fmt.Sprintf("line %d: duplicate $%s ignored, line %d wins", lineNo, entry.Key, first))
			} else {
				seen[entry.Key] = lineNo
			}
		}

		m.Entries = append(m.Entries, entry)
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}

	if lineErr != nil {
		if m.Name() == "" {
			return nil, fmt.Errorf("%w: %w", ErrMissingName, lineErr)
		}

		return nil, lineErr
	}

	return m, nil
}

func parseLine(line string, lineNo int) (Entry, error) {
	switch {
	case strings.HasPrefix(line, "#"):
		return Entry{
			Line: lineNo,
			Kind: KindComment,
			Text: strings.TrimSpace(line[1:]),
		}, nil
	case strings.HasPrefix(line, "$"):
		key, value, _ := strings.Cut(line[1:], ":")

		key = strings.TrimSpace(key)
		if key == "" {
			return Entry{}, fmt.Errorf("%w: line %d: directive without key", ErrMalformedEntry, lineNo)
		}

		return Entry{
			Line:  lineNo,
			Kind:  KindDirective,
			Key:   key,
			Value: strings.TrimSpace(value),
		}, nil
	}

	target, source, found := strings.Cut(line, ":")
	if !found {
		return Entry{}, fmt.Errorf("%w: line %d: expected TARGET:SOURCE, got %q", ErrMalformedEntry, lineNo, line)
	}

	target, err := CleanPath(target)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: line %d: target %w", ErrMalformedEntry, lineNo, err)
	}

	source, err = CleanPath(source)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: line %d: source %w", ErrMalformedEntry, lineNo, err)
	}

	mapping := Mapping{
		Line:   lineNo,
		Target: target,
		Source: source,
	}

	return Entry{
		Line:    lineNo,
		Kind:    KindMapping,
		Mapping: mapping,
	}, nil
}

var (
	errEmptyPath    = errors.New("path is empty")
	errAbsolutePath = errors.New("path must be relative")
	errEscapingPath = errors.New("path escapes its root")
)

// CleanPath normalizes a `/`-separated relative path and rejects paths leaving their root.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return "", errEmptyPath
	}

	if path.IsAbs(p) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", fmt.Errorf("%w: %q", errAbsolutePath, p)
	}

	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", errEscapingPath, p)
	}

	return cleaned, nil
}
