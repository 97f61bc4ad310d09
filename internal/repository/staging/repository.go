package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const (
	// DefaultDirMode is used for every directory created while staging.
	DefaultDirMode os.FileMode = 0o755

	// DefaultFileMode is used for generated files.
	DefaultFileMode os.FileMode = 0o644
)

// Repository creates, publishes and removes staging areas under the builds root.
type Repository struct {
	// fs is rooted at the builds root.
	fs billy.Filesystem
}

// NewRepository creates a repository over a filesystem rooted at the builds root.
func NewRepository(fs billy.Filesystem) *Repository {
	return &Repository{
		fs: fs,
	}
}

// Root returns the builds root path as reported by the filesystem.
func (r *Repository) Root() string {
	return r.fs.Root()
}

// Exists reports whether the given path exists under the builds root.
func (r *Repository) Exists(name string) (bool, error) {
	_, err := r.fs.Stat(name)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("stat %s: %w", name, err)
}

// Reset creates an empty staging area, removing whatever an interrupted run left behind.
// It reports whether a leftover directory was removed.
func (r *Repository) Reset(name string) (*Area, bool, error) {
	leftover, err := r.Exists(name)
	if err != nil {
		return nil, false, err
	}

	if leftover {
		if err = util.RemoveAll(r.fs, name); err != nil {
			return nil, true, fmt.Errorf("remove leftover staging directory: %w", err)
		}
	}

	if err = r.fs.MkdirAll(name, DefaultDirMode); err != nil {
		return nil, leftover, fmt.Errorf("create staging directory: %w", err)
	}

	area, err := r.fs.Chroot(name)
	if err != nil {
		return nil, leftover, fmt.Errorf("open staging directory: %w", err)
	}

	return &Area{
		name: name,
		fs:   area,
	}, leftover, nil
}

// Remove deletes a staging area and everything in it.
func (r *Repository) Remove(name string) error {
	if err := util.RemoveAll(r.fs, name); err != nil {
		return fmt.Errorf("remove staging directory: %w", err)
	}

	return nil
}

// Publish writes a file under the builds root through a temporary file and renames it into place,
// so a failed write never leaves a partial file at the final path.
func (r *Repository) Publish(name string, write func(w io.Writer) error) error {
	dir := path.Dir(name)
	if err := r.fs.MkdirAll(dir, DefaultDirMode); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := r.fs.TempFile(dir, "."+path.Base(name)+"-")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	tmpName := tmp.Name()

	if err = write(tmp); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)

		return err
	}

	if err = tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)

		return fmt.Errorf("close temporary file: %w", err)
	}

	if err = r.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = r.fs.Remove(tmpName)

		return fmt.Errorf("replace %s: %w", name, err)
	}

	if err = r.fs.Rename(tmpName, name); err != nil {
		_ = r.fs.Remove(tmpName)

		return fmt.Errorf("rename into %s: %w", name, err)
	}

	return nil
}
