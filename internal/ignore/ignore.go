// Package ignore decides which files are left out of a build.
//
// Rules use gitignore syntax and are evaluated with go-git's matcher: the
// last matching rule wins and a leading '!' re-includes a path.
package ignore

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher evaluates paths against an ordered set of ignore rules.
type Matcher struct {
	patterns []string
	matcher  gitignore.Matcher
}

// New compiles the given rules. Blank rules and comments are skipped.
func New(rules []string) *Matcher {
	patterns := make([]string, 0, len(rules))
	compiled := make([]gitignore.Pattern, 0, len(rules))

	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" || strings.HasPrefix(rule, "#") {
			continue
		}

		patterns = append(patterns, rule)
		compiled = append(compiled, gitignore.ParsePattern(rule, nil))
	}

	return &Matcher{
		patterns: patterns,
		matcher:  gitignore.NewMatcher(compiled),
	}
}

// Patterns returns the effective rules in evaluation order.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Ignored reports whether the `/`-separated relative path must be skipped.
// A nil matcher ignores nothing.
func (m *Matcher) Ignored(relPath string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	relPath = strings.Trim(strings.ReplaceAll(relPath, `\`, "/"), "/")
	if relPath == "" || relPath == "." {
		return false
	}

	return m.matcher.Match(strings.Split(relPath, "/"), isDir)
}
