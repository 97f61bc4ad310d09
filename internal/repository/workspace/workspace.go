// Package workspace describes the on-disk layout around the packager:
// projects are sibling directories under one root, next to a builds
// directory that holds staging areas and an archives subdirectory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/oshokin/tool-packager/internal/config"
)

// ErrNoProjects is returned when the projects root has no candidate directories.
var ErrNoProjects = errors.New("no projects found")

// Workspace resolves project, manifest and output paths under a projects root.
type Workspace struct {
	root         string
	fs           billy.Filesystem
	buildsDir    string
	archivesDir  string
	manifestName string
}

// New creates a workspace rooted at root using the layout names from cfg.
func New(root string, cfg *config.Config) *Workspace {
	return &Workspace{
		root:         root,
		fs:           osfs.New(root),
		buildsDir:    cfg.BuildsDir,
		archivesDir:  cfg.ArchivesDir,
		manifestName: cfg.ManifestName,
	}
}

// Root returns the projects root.
func (w *Workspace) Root() string {
	return w.root
}

// Projects lists project directories in lexical order.
// Hidden directories and the builds directory are not projects.
func (w *Workspace) Projects() ([]string, error) {
	entries, err := w.fs.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("list projects in %s: %w", w.root, err)
	}

	projects := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == w.buildsDir {
			continue
		}

		info := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			// Dangling links are not projects.
			if info, err = w.fs.Stat(name); err != nil {
				continue
			}
		}

		if !info.IsDir() {
			continue
		}

		projects = append(projects, name)
	}

	if len(projects) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoProjects, w.root)
	}

	sort.Strings(projects)

	return projects, nil
}

// ProjectDir returns the absolute source root of a project.
func (w *Workspace) ProjectDir(project string) string {
	return filepath.Join(w.root, project)
}

// ManifestPath returns the manifest location of a project.
func (w *Workspace) ManifestPath(project string) string {
	return filepath.Join(w.root, project, w.manifestName)
}

// BuildsRoot returns the directory holding staging areas and archives.
func (w *Workspace) BuildsRoot() string {
	return filepath.Join(w.root, w.buildsDir)
}

// ArchivesDir returns the archives subdirectory name inside BuildsRoot.
func (w *Workspace) ArchivesDir() string {
	return w.archivesDir
}
