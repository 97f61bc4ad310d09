package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ErrIrregularFile is returned when a directory copy meets something that is neither a file nor a directory.
var ErrIrregularFile = errors.New("not a regular file or directory")

// SkipFunc reports whether a path relative to the copied directory must be left out.
type SkipFunc func(relPath string, isDir bool) bool

// CopyReport summarizes one copy operation.
type CopyReport struct {
	// Copied lists staged file paths relative to the staging area.
	Copied []string
	// Skipped lists source paths left out by the skip function.
	Skipped []string
	// Overwritten lists staged paths that already existed and were replaced.
	Overwritten []string
}

// Area is one staging directory.
type Area struct {
	// name is the staging directory name under the builds root.
	name string
	// fs is chrooted at the staging directory.
	fs billy.Filesystem
}

// Name returns the staging directory name.
func (a *Area) Name() string {
	return a.name
}

// FS returns the staging directory as a filesystem, for archiving.
//
//nolint:ireturn // billy.Filesystem is the abstraction shared with the archiver.
func (a *Area) FS() billy.Filesystem {
	return a.fs
}

// CopyFile copies srcPath from src to dstPath in the area, creating parent directories.
func (a *Area) CopyFile(src billy.Filesystem, srcPath, dstPath string) (CopyReport, error) {
	var report CopyReport

	info, err := src.Stat(srcPath)
	if err != nil {
		return report, fmt.Errorf("stat %s: %w", srcPath, err)
	}

	overwritten, err := a.copyFile(src, srcPath, dstPath, info.Mode())
	if err != nil {
		return report, err
	}

	report.Copied = append(report.Copied, dstPath)
	if overwritten {
		report.Overwritten = append(report.Overwritten, dstPath)
	}

	return report, nil
}

// CopyTree copies the srcDir tree from src into dstDir in the area.
// Entries are visited in lexical order; skip is called with paths relative to srcDir.
// Existing files are overwritten, existing directories are merged.
func (a *Area) CopyTree(src billy.Filesystem, srcDir, dstDir string, skip SkipFunc) (CopyReport, error) {
	var report CopyReport

	if err := a.fs.MkdirAll(dstDir, DefaultDirMode); err != nil {
		return report, fmt.Errorf("create %s: %w", dstDir, err)
	}

	err := a.copyTree(src, srcDir, dstDir, "", skip, &report)

	return report, err
}

// WriteFile writes generated content into the area.
func (a *Area) WriteFile(name string, data []byte) error {
	if err := util.WriteFile(a.fs, name, data, DefaultFileMode); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

func (a *Area) copyTree(src billy.Filesystem, srcDir, dstDir, rel string, skip SkipFunc, report *CopyReport) error {
	entries, err := src.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", srcDir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		var (
			srcPath = src.Join(srcDir, entry.Name())
			dstPath = path.Join(dstDir, entry.Name())
			relPath = path.Join(rel, entry.Name())
		)

		info := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			if info, err = src.Stat(srcPath); err != nil {
				return fmt.Errorf("follow symlink %s: %w", srcPath, err)
			}
		}

		if skip != nil && skip(relPath, info.IsDir()) {
			report.Skipped = append(report.Skipped, relPath)

			continue
		}

		switch {
		case info.IsDir():
			if err = a.fs.MkdirAll(dstPath, DefaultDirMode); err != nil {
				return fmt.Errorf("create %s: %w", dstPath, err)
			}

			if err = a.copyTree(src, srcPath, dstPath, relPath, skip, report); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			overwritten, err := a.copyFile(src, srcPath, dstPath, info.Mode())
			if err != nil {
				return err
			}

			report.Copied = append(report.Copied, dstPath)
			if overwritten {
				report.Overwritten = append(report.Overwritten, dstPath)
			}
		default:
			return fmt.Errorf("%w: %s", ErrIrregularFile, srcPath)
		}
	}

	return nil
}

func (a *Area) copyFile(src billy.Filesystem, srcPath, dstPath string, mode os.FileMode) (bool, error) {
	overwritten := false

	existing, err := a.fs.Stat(dstPath)
	switch {
	case err == nil && existing.IsDir():
		return false, fmt.Errorf("copy %s: destination %s is a directory", srcPath, dstPath)
	case err == nil:
		overwritten = true
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("stat %s: %w", dstPath, err)
	}

	if dir := path.Dir(dstPath); dir != "." {
		if err = a.fs.MkdirAll(dir, DefaultDirMode); err != nil {
			return false, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	in, err := src.Open(srcPath)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", srcPath, err)
	}

	defer func() {
		_ = in.Close()
	}()

	perm := mode.Perm()
	if perm == 0 {
		perm = DefaultFileMode
	}

	out, err := a.fs.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", dstPath, err)
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return false, fmt.Errorf("copy %s: %w", srcPath, err)
	}

	if err = out.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", dstPath, err)
	}

	return overwritten, nil
}
