package manifest

import (
	"fmt"
	"strings"
)

// Kind classifies a manifest line.
type Kind uint8

const (
	// KindComment is a line starting with '#'.
	KindComment Kind = iota + 1
	// KindDirective is a `$KEY:VALUE` line.
	KindDirective
	// KindMapping is a `TARGET:SOURCE` line.
	KindMapping
)

// Recognized directive keys.
const (
	DirectiveName    = "NAME"
	DirectiveDocLink = "DOC_LINK"
	DirectiveVersion = "VERSION"
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindDirective:
		return "directive"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Entry is one non-blank manifest line.
type Entry struct {
	// Line is the 1-based line number in the manifest file.
	Line int
	// Kind tells which of the fields below are set.
	Kind Kind
	// Text is the comment text without the leading '#'.
	Text string
	// Key and Value are set for directives.
	Key   string
	Value string
	// Mapping is set for mapping lines.
	Mapping Mapping
}

// Mapping pairs a target path inside the archive with a source path inside the project.
type Mapping struct {
	// Line is the 1-based line number of the mapping.
	Line int
	// Target is the cleaned `/`-separated path under the staging directory.
	Target string
	// Source is the cleaned `/`-separated path under the project root.
	Source string
}

// TargetSegments splits the target path into its segments.
func (m Mapping) TargetSegments() []string {
	return segments(m.Target)
}

// SourceSegments splits the source path into its segments.
func (m Mapping) SourceSegments() []string {
	return segments(m.Source)
}

// String renders the mapping the way it appears in the install document.
func (m Mapping) String() string {
	return m.Target + " => " + m.Source
}

// Manifest is a parsed manifest in file order.
type Manifest struct {
	// Entries holds every non-blank line in input order.
	Entries []Entry

	warnings []string
}

// Directive returns the value of the first directive with the given key.
func (m *Manifest) Directive(key string) (string, bool) {
	for _, e := range m.Entries {
		if e.Kind == KindDirective && e.Key == key {
			return e.Value, true
		}
	}

	return "", false
}

// Name returns the $NAME directive value.
func (m *Manifest) Name() string {
	v, _ := m.Directive(DirectiveName)

	return v
}

// DocLink returns the $DOC_LINK directive value or an empty string.
func (m *Manifest) DocLink() string {
	v, _ := m.Directive(DirectiveDocLink)

	return v
}

// VersionFile returns the $VERSION directive value, the project-relative path of the version file.
func (m *Manifest) VersionFile() (string, bool) {
	return m.Directive(DirectiveVersion)
}

// Mappings returns mapping entries in manifest order.
func (m *Manifest) Mappings() []Mapping {
	out := make([]Mapping, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e.Kind == KindMapping {
			out = append(out, e.Mapping)
		}
	}

	return out
}

// Warnings returns non-fatal issues found while parsing, such as duplicate directives.
func (m *Manifest) Warnings() []string {
	return append([]string(nil), m.warnings...)
}

// Validate checks that the manifest names a usable build.
// Reserved names (for example the archives directory) are rejected as build names.
func (m *Manifest) Validate(reserved ...string) error {
	return ValidateName(m.Name(), reserved...)
}

// ValidateName checks a build name: non-empty, a single path segment, not reserved.
func ValidateName(name string, reserved ...string) error {
	if name == "" {
		return ErrMissingName
	}

	if name == "." || name == ".." || strings.ContainsAny(name, `/\:`) {
		return fmt.Errorf("%w: %q", ErrInvalidBuildName, name)
	}

	for _, r := range reserved {
		if strings.EqualFold(name, r) {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidBuildName, name)
		}
	}

	return nil
}

func segments(p string) []string {
	if p == "." {
		return nil
	}

	return strings.Split(p, "/")
}
